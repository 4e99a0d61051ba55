package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment variables read by FromEnv and ProxyFromEnv.
const (
	EnvPrefix              = "DEFECTDOJO"
	EnvURL                 = "DEFECTDOJO_URL"
	EnvUsername            = "DEFECTDOJO_USERNAME"
	EnvAPIKey              = "DEFECTDOJO_APIKEY"
	EnvUserID              = "DEFECTDOJO_USER_ID"
	EnvMaxPageCountForGets = "DEFECTDOJO_MAX_PAGE_COUNT_FOR_GETS"
	EnvProxyHost           = "DEFECTDOJO_PROXY_HOST"
	EnvProxyPort           = "DEFECTDOJO_PROXY_PORT"
	EnvProxyUser           = "DEFECTDOJO_PROXY_USER"
	EnvProxyPassword       = "DEFECTDOJO_PROXY_PASSWORD"
)

// EnvOption configures environment loading.
type EnvOption func(*envOptions)

type envOptions struct {
	files []string
}

// WithEnvFile layers a dotenv file beneath the process environment.
// Process variables take precedence; later files override earlier ones.
func WithEnvFile(path string) EnvOption {
	return func(o *envOptions) {
		o.files = append(o.files, path)
	}
}

// FromEnv builds a Config from DEFECTDOJO_* environment variables.
func FromEnv(opts ...EnvOption) (Config, error) {
	env, err := newEnvReader(opts)
	if err != nil {
		return Config{}, err
	}

	url, err := env.required(EnvURL)
	if err != nil {
		return Config{}, err
	}
	username, err := env.required(EnvUsername)
	if err != nil {
		return Config{}, err
	}
	apiKey, err := env.required(EnvAPIKey)
	if err != nil {
		return Config{}, err
	}

	var userID *int64
	if raw := env.get(EnvUserID); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, invalid(EnvUserID, raw, fmt.Sprintf(
				"given user id for environment variable '%s' is not a valid id, given was '%s'", EnvUserID, raw))
		}
		userID = &id
	}

	maxPages := DefaultMaxPageCountForGets
	if raw := env.get(EnvMaxPageCountForGets); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, invalid(EnvMaxPageCountForGets, raw, fmt.Sprintf(
				"given value for environment variable '%s' is not a valid number, given was '%s'", EnvMaxPageCountForGets, raw))
		}
		maxPages = n
	}

	return New(url, apiKey, username, userID, maxPages)
}

// envReader resolves DEFECTDOJO_* variables through viper.
type envReader struct {
	v *viper.Viper
}

func newEnvReader(opts []EnvOption) (*envReader, error) {
	var o envOptions
	for _, opt := range opts {
		opt(&o)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// File values are registered as defaults so the process environment wins.
	for _, path := range o.files {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, invalid(path, "", fmt.Sprintf("cannot read env file '%s': %v", path, err))
		}
		for name, value := range values {
			if key, ok := viperKey(name); ok {
				v.SetDefault(key, value)
			}
		}
	}

	return &envReader{v: v}, nil
}

// viperKey maps DEFECTDOJO_USER_ID to user_id.
func viperKey(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, EnvPrefix+"_")
	if !ok || rest == "" {
		return "", false
	}
	return strings.ToLower(rest), true
}

func (e *envReader) get(name string) string {
	key, ok := viperKey(name)
	if !ok {
		return ""
	}
	return e.v.GetString(key)
}

func (e *envReader) required(name string) (string, error) {
	value := e.get(name)
	if value == "" {
		return "", missing(name, fmt.Sprintf("missing environment variable '%s'", name))
	}
	return value, nil
}

// Package config holds the settings a DefectDojo client is built from.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// DefaultMaxPageCountForGets is used when no page limit is configured.
const DefaultMaxPageCountForGets = 100

// Config holds DefectDojo connection settings.
//
// Config is a value type. A client keeps its own copy and never modifies it.
type Config struct {
	// URL is the DefectDojo base URL, without the /api/v2 suffix.
	URL string `json:"url" validate:"required"`

	// APIKey is the v2 API token sent as "Authorization: Token <APIKey>".
	APIKey string `json:"apiKey" validate:"required"`

	// Username is the DefectDojo user the API key belongs to.
	Username string `json:"username" validate:"required"`

	// UserID is the numeric id of Username, if known.
	UserID *int64 `json:"userId"`

	// MaxPageCountForGets bounds how many pages a single search may fetch.
	MaxPageCountForGets int `json:"maxPageCountForGets" validate:"gte=1"`
}

// New builds a validated Config.
func New(url, apiKey, username string, userID *int64, maxPageCountForGets int) (Config, error) {
	cfg := Config{
		URL:                 url,
		APIKey:              apiKey,
		Username:            username,
		UserID:              userID,
		MaxPageCountForGets: maxPageCountForGets,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate returns an *Error for the first invalid field, in declaration order.
func (c Config) Validate() error {
	err := structValidator().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	return fromFieldError(fieldErrs[0])
}

// ParsedURL returns URL as an absolute URL without a trailing slash.
func (c Config) ParsedURL() (*url.URL, error) {
	u, err := url.Parse(strings.TrimSuffix(c.URL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, invalid("url", c.URL, fmt.Sprintf("url must be an absolute URL with scheme and host, given was %s", c.URL))
	}
	return u, nil
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Report fields by their json names so messages match the documented setting names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

func fromFieldError(fe validator.FieldError) error {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return missing(name, fmt.Sprintf("%s must not be empty", name))
	case "gte":
		value := fmt.Sprint(fe.Value())
		return invalid(name, value, fmt.Sprintf("%s must be greater than or equal to %s, given was %s", name, fe.Param(), value))
	default:
		return invalid(name, fmt.Sprint(fe.Value()), fmt.Sprintf("%s failed validation %q", name, fe.Tag()))
	}
}

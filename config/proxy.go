package config

import (
	"fmt"
	"net"
	"strconv"
)

// ProxyConfig describes an optional authenticating HTTP proxy.
// It is only used when every field is set, see IsComplete.
type ProxyConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

// IsComplete reports whether host, port, user and password are all present.
func (p ProxyConfig) IsComplete() bool {
	return p.Host != "" && p.Port != 0 && p.User != "" && p.Password != ""
}

// Address returns host:port.
func (p ProxyConfig) Address() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// String omits the password.
func (p ProxyConfig) String() string {
	if p.Host == "" {
		return "<no proxy>"
	}
	if p.User == "" {
		return p.Address()
	}
	return fmt.Sprintf("%s@%s", p.User, p.Address())
}

// ProxyFromEnv reads DEFECTDOJO_PROXY_* variables. Absent variables yield an
// incomplete config rather than an error; only a malformed port fails.
func ProxyFromEnv(opts ...EnvOption) (ProxyConfig, error) {
	env, err := newEnvReader(opts)
	if err != nil {
		return ProxyConfig{}, err
	}

	p := ProxyConfig{
		Host:     env.get(EnvProxyHost),
		User:     env.get(EnvProxyUser),
		Password: env.get(EnvProxyPassword),
	}

	if raw := env.get(EnvProxyPort); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return ProxyConfig{}, invalid(EnvProxyPort, raw, fmt.Sprintf(
				"given value for environment variable '%s' is not a valid port, given was '%s'", EnvProxyPort, raw))
		}
		p.Port = port
	}

	return p, nil
}

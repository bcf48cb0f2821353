package connection

import (
	"fmt"
	"net/http"
	"time"

	"github.com/echopf/echo.go/internal/codec"
	"github.com/echopf/echo.go/pkg/constants"
	"github.com/echopf/echo.go/pkg/models"
)

type Config struct {
	// Domain is the host serving the app, e.g. "myapp.echopf.com".
	Domain string
	// Scheme defaults to https.
	Scheme string

	AppID       string
	AppKey      string
	AccessToken string

	Marshaler   codec.Marshaler
	Unmarshaler codec.Unmarshaler

	// HTTPClient replaces the default client. Timeout is ignored when set.
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewConfig creates a new Config for the app served at domain, encoding
// requests and decoding responses as JSON.
func NewConfig(domain, appID, appKey string) *Config {
	return &Config{
		Domain:      domain,
		Scheme:      constants.HTTPSecureScheme,
		AppID:       appID,
		AppKey:      appKey,
		Marshaler:   models.JSONMarshaler{},
		Unmarshaler: models.JSONUnmarshaler{},
	}
}

// BaseURL returns scheme://domain.
func (c *Config) BaseURL() string {
	scheme := c.Scheme
	if scheme == "" {
		scheme = constants.HTTPSecureScheme
	}
	return fmt.Sprintf("%s://%s", scheme, c.Domain)
}

// Validate reports the first missing setting. New calls it.
func (c *Config) Validate() error {
	switch {
	case c.Domain == "":
		return constants.ErrNoDomain
	case c.AppID == "":
		return constants.ErrNoAppID
	case c.AppKey == "":
		return constants.ErrNoAppKey
	case c.Marshaler == nil:
		return constants.ErrNoMarshaler
	case c.Unmarshaler == nil:
		return constants.ErrNoUnmarshaler
	}
	return nil
}

package signer

import (
	"fmt"

	"github.com/rs/zerolog"
)

// SigningContext holds the per-service credentials used for every signature.
// It is built once at startup and treated as read-only afterwards.
type SigningContext struct {
	AccessKey string
	SecretKey string
	Region    string
	Service   string
	Host      string
}

// NewContext validates credentials and fills in PA-API defaults for region,
// service and host.
func NewContext(accessKey, secretKey, region, host string) (SigningContext, error) {
	sc := SigningContext{
		AccessKey: accessKey,
		SecretKey: secretKey,
		Region:    region,
		Service:   DefaultService,
		Host:      host,
	}
	if sc.Region == "" {
		sc.Region = DefaultRegion
	}
	if sc.Host == "" {
		sc.Host = DefaultHost
	}
	if err := sc.Validate(); err != nil {
		return SigningContext{}, err
	}
	return sc, nil
}

// Validate checks that every field needed to sign is set.
func (c SigningContext) Validate() error {
	switch {
	case c.AccessKey == "":
		return &ConfigurationError{Field: "access_key", Message: "is required"}
	case c.SecretKey == "":
		return &ConfigurationError{Field: "secret_key", Message: "is required"}
	case c.Region == "":
		return &ConfigurationError{Field: "region", Message: "is required"}
	case c.Service == "":
		return &ConfigurationError{Field: "service", Message: "is required"}
	case c.Host == "":
		return &ConfigurationError{Field: "host", Message: "is required"}
	}
	return nil
}

// String renders the context without the secret key.
func (c SigningContext) String() string {
	return fmt.Sprintf("SigningContext{AccessKey:%s Region:%s Service:%s Host:%s}",
		c.AccessKey, c.Region, c.Service, c.Host)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler. The secret key
// is never written.
func (c SigningContext) MarshalZerologObject(e *zerolog.Event) {
	e.Str("access_key", c.AccessKey).
		Str("region", c.Region).
		Str("service", c.Service).
		Str("host", c.Host)
}

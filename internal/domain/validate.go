package domain

import (
	"errors"
	"net/url"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MaxNameLength = 255
	MaxURLLength  = 2048
)

// ServiceInput is the caller-editable part of a Service: what POST and PUT
// accept and what the seed file lists.
type ServiceInput struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Normalize trims surrounding whitespace from both fields.
func (s ServiceInput) Normalize() ServiceInput {
	return ServiceInput{Name: strings.TrimSpace(s.Name), URL: strings.TrimSpace(s.URL)}
}

// Validate reports field errors as validation.Errors keyed by JSON name.
func (s ServiceInput) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name,
			validation.Required,
			validation.RuneLength(1, MaxNameLength),
		),
		validation.Field(&s.URL,
			validation.Required,
			validation.Length(1, MaxURLLength),
			validation.By(validateProbeURL),
		),
	)
}

func validateProbeURL(value interface{}) error {
	raw, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || !u.IsAbs() {
		return validation.NewError("validation_invalid_url", "must be a valid absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}
	if u.Hostname() == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}
	return nil
}

// FieldErrors unwraps validation.Errors into a plain map for responses; other
// errors come back under the "_" key.
func FieldErrors(err error) map[string]string {
	out := map[string]string{}
	var ve validation.Errors
	if errors.As(err, &ve) {
		for k, v := range ve {
			out[k] = v.Error()
		}
		return out
	}
	if err != nil {
		out["_"] = err.Error()
	}
	return out
}

package errors

import (
	"errors"
	"net/http"

	"github.com/diariourbano/portaria/internal/errors/i18n"
)

// DefaultLocale is the default locale for error messages.
const DefaultLocale = "pt-BR"

// Response is the caller-facing error payload rendered by the HTTP surface.
type Response struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HandleError converts domain errors to an HTTP response payload.
// It formats the user-facing message using the i18n catalog for the given
// locale, defaulting to pt-BR if the locale is empty.
func HandleError(err error, locale string) Response {
	if err == nil {
		return Response{}
	}

	if locale == "" {
		locale = DefaultLocale
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		catalog := i18n.GetCatalog(locale)
		return Response{
			Status:  appErr.Code.HTTPStatus(),
			Code:    string(appErr.Code),
			Message: catalog.Format(string(appErr.Code), appErr.Metadata),
		}
	}

	// Unknown error - return internal with generic message
	return Response{
		Status:  http.StatusInternalServerError,
		Code:    string(CodeUnknown),
		Message: i18n.GetCatalog(locale).Format(string(CodeUnknown), nil),
	}
}

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// IsCode checks if the error has the specified code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// GetMetadata extracts metadata from an error if present.
// Returns nil if the error is not a domain error or has no metadata.
func GetMetadata(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Metadata
	}
	return nil
}

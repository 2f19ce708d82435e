package httpx

import (
	"errors"
	"net/http"

	"github.com/cscs/firecrest-ui-api/internal/firecrest"
	"github.com/cscs/firecrest-ui-api/internal/http/validation"
	"github.com/cscs/firecrest-ui-api/internal/observability/errtrack"
	"github.com/cscs/firecrest-ui-api/internal/service"
	"github.com/cscs/firecrest-ui-api/internal/util"
)

// Error envelope type discriminators surfaced to the browser.
const (
	errTypeValidation = "validation"
	errTypeHTTP       = "http"
)

// errorEnvelope is the uniform JSON error shape returned to the browser.
type errorEnvelope struct {
	Type       string                  `json:"type"`
	Message    string                  `json:"message"`
	StatusCode int                     `json:"statusCode,omitempty"`
	Fields     []validation.FieldError `json:"fields,omitempty"`
	LogoutURL  string                  `json:"logoutUrl,omitempty"`
}

// ErrorOpts tunes how WriteAPIError maps an error to a response.
type ErrorOpts struct {
	// Threshold swallows upstream HTTP errors at or below this status
	// code into a 200 response carrying the envelope (inline banner)
	// instead of re-raising at the original status. Zero disables
	// swallowing.
	Threshold int
	// Reporter receives unclassified errors. Nil means no reporting.
	Reporter errtrack.Reporter
}

// WriteAPIError maps a thrown value into the uniform JSON error envelope.
//
// Recognized kinds: local validation errors (400 with field detail),
// upstream HTTP errors (re-raised at the upstream status, or swallowed per
// Threshold), upload-size breaches (validation-shaped), and auth errors
// (401, never a raw 500). Anything else is reported to the error tracker
// and surfaced as a generic 500.
func WriteAPIError(w http.ResponseWriter, r *http.Request, err error, opts ErrorOpts) {
	var (
		validationErr *validation.Error
		upstreamErr   *firecrest.ErrorResponse
		localErr      *firecrest.LocalError
		maxBytesErr   *http.MaxBytesError
		unauthorized  *service.UnauthorizedError
		forcedLogout  *service.ForcedLogoutError
	)

	switch {
	case errors.As(err, &validationErr):
		WriteJSON(w, http.StatusBadRequest, errorEnvelope{
			Type:    errTypeValidation,
			Message: validationErr.Message,
			Fields:  validationErr.Fields,
		})

	case errors.As(err, &maxBytesErr):
		WriteJSON(w, http.StatusBadRequest, errorEnvelope{
			Type:    errTypeValidation,
			Message: "uploaded file exceeds the " + util.PrettyBytes(maxBytesErr.Limit) + " limit",
			Fields: []validation.FieldError{{
				Location: "form",
				Name:     "file",
				Message:  "file is larger than the configured limit",
			}},
		})

	case errors.As(err, &upstreamErr):
		envelope := errorEnvelope{
			Type:       errTypeHTTP,
			Message:    upstreamErr.Message,
			StatusCode: upstreamErr.StatusCode,
		}
		if opts.Threshold > 0 && upstreamErr.StatusCode <= opts.Threshold {
			// Below the handling threshold the failure renders as an
			// inline banner on an otherwise successful page.
			WriteJSON(w, http.StatusOK, envelope)
			return
		}
		WriteJSON(w, upstreamErr.StatusCode, envelope)

	case errors.As(err, &localErr):
		// A proxied local route already produced an envelope; pass it
		// through untouched.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(localErr.StatusCode)
		_, _ = w.Write(localErr.Body)

	case errors.As(err, &unauthorized):
		WriteJSON(w, http.StatusUnauthorized, errorEnvelope{
			Type:       errTypeHTTP,
			Message:    unauthorized.Reason,
			StatusCode: http.StatusUnauthorized,
		})

	case errors.As(err, &forcedLogout):
		WriteJSON(w, http.StatusUnauthorized, errorEnvelope{
			Type:       errTypeHTTP,
			Message:    "session ended by identity provider",
			StatusCode: http.StatusUnauthorized,
			LogoutURL:  forcedLogout.LogoutURL,
		})

	default:
		// Unclassified: report and fail loud.
		if opts.Reporter != nil {
			opts.Reporter.Capture(err)
		}
		WriteJSON(w, http.StatusInternalServerError, errorEnvelope{
			Type:       errTypeHTTP,
			Message:    firecrest.ReasonPhrase(http.StatusInternalServerError),
			StatusCode: http.StatusInternalServerError,
		})
	}
}

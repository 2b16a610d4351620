package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"reflect"
	"regexp"
	"runtime/debug"
	"strings"

	"forensics/core"
	"forensics/storage"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// maxJSONBodyBytes mirrors the 10mb body limit of the dashboard contract
const maxJSONBodyBytes = 10 << 20

var validate = newValidator()

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var (
	connectionStringPattern = regexp.MustCompile(`(?:sqlite|redis|file)://[^\s"']+`)
	credentialPattern       = regexp.MustCompile(`(?i)(password|secret|token|api[_-]?key)[:=]\s*["']?[^"'\s]+["']?`)
	queryCredentialPattern  = regexp.MustCompile(`(?i)([?&](?:key|api[_-]?key|access_token|token)=)[^&\s"']+`)
)

// errorResponse is the body of every non-ML error
type errorResponse struct {
	Error string `json:"error"`
	Stack string `json:"stack,omitempty"`
}

// mlErrorResponse is the envelope of every ML endpoint failure
type mlErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// sanitizeErrorMessage removes connection strings and credentials from messages sent to clients
func sanitizeErrorMessage(message string) string {
	message = connectionStringPattern.ReplaceAllString(message, "[CONNECTION]")
	message = queryCredentialPattern.ReplaceAllString(message, "${1}[REDACTED]")
	message = credentialPattern.ReplaceAllString(message, "$1=[REDACTED]")
	if len(message) > core.MaxErrorMessageLength {
		message = message[:core.MaxErrorMessageLength-3] + "..."
	}
	return message
}

// writeError writes a JSON error response to the client and logs it
func writeError(w http.ResponseWriter, statusCode int, message string, err error, logger *zap.SugaredLogger) {
	if logger != nil {
		if err != nil {
			logger.Errorw(message,
				"error", err.Error(),
				"status_code", statusCode,
			)
		} else {
			logger.Errorw(message,
				"status_code", statusCode,
			)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: sanitizeErrorMessage(message)})
}

// respondJSON writes a JSON response
func (a *API) respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Errorw("Failed to encode JSON response",
			"error", err,
			"data_type", fmt.Sprintf("%T", data))
	}
}

// statusFor maps an error to the HTTP status it should produce
func statusFor(err error) int {
	if errors.Is(err, storage.ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, storage.ErrInvalidRecord) {
		return http.StatusBadRequest
	}
	return core.StatusCode(err)
}

// writeServiceError writes err with its mapped status. Unexpected failures
// get a generic message, plus a stack trace outside production.
func (a *API) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	status := statusFor(err)
	if status < http.StatusInternalServerError {
		message := err.Error()
		var appErr *core.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
		writeError(w, status, message, err, a.logger)
		return
	}

	a.logger.Errorw(fallback,
		"error", err,
		"status_code", status,
	)
	body := errorResponse{Error: fallback}
	if !a.config.IsProduction() {
		body.Stack = string(debug.Stack())
	}
	a.respondJSON(w, body, status)
}

// writeMLError writes the {success:false,error} envelope used by ML endpoints
func (a *API) writeMLError(w http.ResponseWriter, err error, operation string) {
	status := statusFor(err)
	a.logger.Errorw(operation+" failed",
		"error", err,
		"status_code", status,
	)
	a.respondJSON(w, mlErrorResponse{Success: false, Error: sanitizeErrorMessage(err.Error())}, status)
}

// decodeJSONBody decodes a JSON request body with a size limit. An empty
// body leaves dst untouched so field validation reports what is missing. On
// failure it writes the 400/413 response and returns the error.
func (a *API) decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	status, message, err := readJSONBody(w, r, dst)
	if err != nil {
		writeError(w, status, message, err, a.logger)
	}
	return err
}

// decodeMLBody is decodeJSONBody for ML endpoints, answering with the
// {success:false,error} envelope.
func (a *API) decodeMLBody(w http.ResponseWriter, r *http.Request, dst interface{}, operation string) error {
	status, message, err := readJSONBody(w, r, dst)
	if err != nil {
		a.logger.Errorw(operation+" failed",
			"error", err,
			"status_code", status,
		)
		a.respondJSON(w, mlErrorResponse{Success: false, Error: message}, status)
	}
	return err
}

// readJSONBody decodes the body into dst and, on failure, returns the status
// and client-facing message describing the problem.
func readJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) (int, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return 0, "", nil
	}

	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	var maxBytesError *http.MaxBytesError

	switch {
	case errors.As(err, &maxBytesError):
		return http.StatusRequestEntityTooLarge, "Request body too large", err
	case errors.As(err, &syntaxError):
		return http.StatusBadRequest, fmt.Sprintf("Invalid JSON syntax at byte offset %d", syntaxError.Offset), err
	case errors.As(err, &unmarshalTypeError):
		return http.StatusBadRequest, fmt.Sprintf("Invalid type for field '%s': expected %s", unmarshalTypeError.Field, unmarshalTypeError.Type), err
	default:
		return http.StatusBadRequest, "Invalid JSON body", err
	}
}

// validationMessage flattens validator errors into one readable line
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(parts, "; ")
}

// getRealIP returns the client address. X-Forwarded-For is only honoured
// when the server sits behind a trusted proxy.
func getRealIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first := strings.TrimSpace(strings.Split(xff, ",")[0])
			if net.ParseIP(first) != nil {
				return first
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

package arm

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Static errors for err113 compliance.
var (
	// ErrProtocolViolation indicates a response that matches none of the
	// recognized operation conventions, or carries a malformed convention
	// header. It is fatal and never coerced into a guessed convention.
	ErrProtocolViolation = errors.New("response does not match a recognized operation protocol")

	// ErrOperationInProgress is returned when a final value is requested
	// from an operation that has not reached a terminal state.
	ErrOperationInProgress = errors.New("operation has not completed")

	// ErrOperationCanceled indicates the server reported the operation as
	// canceled on its side.
	ErrOperationCanceled = errors.New("operation was canceled by the service")

	// ErrNoMoreItems is returned by an iterator advanced past its last item.
	ErrNoMoreItems = errors.New("no more items")

	// ErrNoMorePages is returned by a pager advanced past its last page.
	ErrNoMorePages = errors.New("no more pages")
)

// Common ARM error code strings.
const (
	ErrorCodeResourceGroupNotFound = "ResourceGroupNotFound"
	ErrorCodeResourceNotFound      = "ResourceNotFound"
	ErrorCodeConflict              = "Conflict"
	ErrorCodeInvalidTemplate       = "InvalidTemplate"
	ErrorCodeAuthorizationFailed   = "AuthorizationFailed"
	ErrorCodeTooManyRequests       = "TooManyRequests"
)

// ErrorInfo is the service error object found inside the wire envelope
// {"error": {"code": "...", "message": "...", ...}}.
type ErrorInfo struct {
	Code           string                `json:"code,omitempty"           yaml:"code,omitempty"`
	Message        string                `json:"message,omitempty"        yaml:"message,omitempty"`
	Target         string                `json:"target,omitempty"         yaml:"target,omitempty"`
	Details        []ErrorInfo           `json:"details,omitempty"        yaml:"details,omitempty"`
	AdditionalInfo []ErrorAdditionalInfo `json:"additionalInfo,omitempty" yaml:"additionalInfo,omitempty"`
}

// ErrorAdditionalInfo is an extension entry attached to a service error.
type ErrorAdditionalInfo struct {
	Type string          `json:"type,omitempty"`
	Info json.RawMessage `json:"info,omitempty"`
}

type errorEnvelope struct {
	Error *ErrorInfo `json:"error"`
}

// ResponseError is the structured failure produced from a non-success
// response. It carries the HTTP status, the service error code and message
// when the body contained a recognizable envelope, and enough raw context to
// diagnose responses that did not.
type ResponseError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Status is the full status line, e.g. "409 Conflict".
	Status string

	// ErrorCode is the machine-readable service error code, if any.
	ErrorCode string

	// Message is the human-readable error message.
	Message string

	// RequestID is the service-assigned request identifier, if present.
	RequestID string

	// AdditionalInfo holds extension entries from the error envelope.
	AdditionalInfo []ErrorAdditionalInfo

	// RawBody is the verbatim body, captured when the envelope could not be
	// parsed (or was absent) so no diagnostic context is lost.
	RawBody string

	// headerDump is the pre-rendered, redacted header section.
	headerDump string

	// wrapped is an optional lower-level cause.
	wrapped error
}

// responseErrorOptions collects the optional inputs to NewResponseError.
type responseErrorOptions struct {
	message        string
	code           string
	cause          error
	allowedHeaders map[string]bool
}

// ResponseErrorOption customizes NewResponseError.
type ResponseErrorOption func(*responseErrorOptions)

// WithErrorMessage overrides the message extracted from the body.
func WithErrorMessage(message string) ResponseErrorOption {
	return func(o *responseErrorOptions) { o.message = message }
}

// WithErrorCode overrides the code extracted from the body.
func WithErrorCode(code string) ResponseErrorOption {
	return func(o *responseErrorOptions) { o.code = code }
}

// WithCause attaches a lower-level cause reachable via errors.Unwrap.
func WithCause(cause error) ResponseErrorOption {
	return func(o *responseErrorOptions) { o.cause = cause }
}

// WithAllowedHeaders replaces the default allow-list used when rendering the
// header dump. Values of headers not on the list are shown as REDACTED, not
// omitted.
func WithAllowedHeaders(names []string) ResponseErrorOption {
	return func(o *responseErrorOptions) {
		o.allowedHeaders = make(map[string]bool, len(names))
		for _, name := range names {
			o.allowedHeaders[strings.ToLower(name)] = true
		}
	}
}

// defaultAllowedHeaders are safe to show in diagnostics verbatim.
var defaultAllowedHeaders = map[string]bool{
	"azure-asyncoperation":        true,
	"content-length":              true,
	"content-type":                true,
	"date":                        true,
	"etag":                        true,
	"location":                    true,
	"retry-after":                 true,
	"x-ms-client-request-id":      true,
	"x-ms-correlation-request-id": true,
	"x-ms-request-id":             true,
}

// NewResponseError translates a non-success response into a ResponseError.
// It never fails: a body that is not textual is ignored, a body that does not
// parse as a JSON error envelope is kept verbatim, and the result always
// renders the HTTP status and a redacted header dump.
func NewResponseError(resp *Response, opts ...ResponseErrorOption) *ResponseError {
	options := responseErrorOptions{allowedHeaders: defaultAllowedHeaders}
	for _, opt := range opts {
		opt(&options)
	}

	respErr := &ResponseError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		wrapped:    options.cause,
	}

	if resp.Headers != nil {
		respErr.RequestID = resp.Headers.Get("x-ms-request-id")
		respErr.headerDump = renderHeaders(resp, options.allowedHeaders)
	}

	code, message, additional, raw := extractErrorBody(resp)
	respErr.ErrorCode = code
	respErr.Message = message
	respErr.AdditionalInfo = additional
	respErr.RawBody = raw

	// Explicit caller overrides win over anything found in the body.
	if options.code != "" {
		respErr.ErrorCode = options.code
	}

	if options.message != "" {
		respErr.Message = options.message
	}

	return respErr
}

// extractErrorBody pulls code/message out of a conventional error envelope.
// The body is read only when textual, parsed only when it begins with '{',
// and any parse failure degrades to capturing the body verbatim.
func extractErrorBody(resp *Response) (code, message string, additional []ErrorAdditionalInfo, raw string) {
	if len(resp.Body) == 0 || !isTextualContent(resp) {
		return "", "", nil, ""
	}

	trimmed := strings.TrimSpace(string(resp.Body))
	if !strings.HasPrefix(trimmed, "{") {
		return "", "", nil, trimmed
	}

	var envelope errorEnvelope

	err := json.Unmarshal(resp.Body, &envelope)
	if err != nil || envelope.Error == nil {
		return "", "", nil, trimmed
	}

	return envelope.Error.Code, envelope.Error.Message, envelope.Error.AdditionalInfo, ""
}

// isTextualContent reports whether the response body is safe to treat as text.
func isTextualContent(resp *Response) bool {
	if resp.Headers == nil {
		return true
	}

	contentType := strings.ToLower(resp.Headers.Get("Content-Type"))
	if contentType == "" {
		return true
	}

	return strings.HasPrefix(contentType, "text/") ||
		strings.Contains(contentType, "json") ||
		strings.Contains(contentType, "xml")
}

// renderHeaders produces a sorted header dump with non-allow-listed values
// redacted rather than dropped.
func renderHeaders(resp *Response, allowed map[string]bool) string {
	names := make([]string, 0, len(resp.Headers))
	for name := range resp.Headers {
		names = append(names, name)
	}

	sort.Strings(names)

	var builder strings.Builder

	for _, name := range names {
		for _, value := range resp.Headers[name] {
			if !allowed[strings.ToLower(name)] {
				value = "REDACTED"
			}

			fmt.Fprintf(&builder, "  %s: %s\n", name, value)
		}
	}

	return builder.String()
}

// Error renders the full diagnostic text: message, status line, error code,
// additional info, raw content when captured, and the redacted header dump.
func (e *ResponseError) Error() string {
	var builder strings.Builder

	if e.Message != "" {
		builder.WriteString(e.Message)
		builder.WriteString("\n")
	}

	fmt.Fprintf(&builder, "Status: %s\n", e.statusLine())

	if e.ErrorCode != "" {
		fmt.Fprintf(&builder, "Code: %s\n", e.ErrorCode)
	}

	if e.RequestID != "" {
		fmt.Fprintf(&builder, "Request ID: %s\n", e.RequestID)
	}

	for _, info := range e.AdditionalInfo {
		fmt.Fprintf(&builder, "Additional Info: %s: %s\n", info.Type, string(info.Info))
	}

	if e.RawBody != "" {
		fmt.Fprintf(&builder, "Content: %s\n", e.RawBody)
	}

	if e.headerDump != "" {
		builder.WriteString("Headers:\n")
		builder.WriteString(e.headerDump)
	}

	return strings.TrimSuffix(builder.String(), "\n")
}

func (e *ResponseError) statusLine() string {
	if e.Status != "" {
		return e.Status
	}

	return fmt.Sprintf("%d", e.StatusCode)
}

// Unwrap exposes the lower-level cause, if any.
func (e *ResponseError) Unwrap() error {
	return e.wrapped
}

// AsResponseError returns the ResponseError in err's chain, if there is one.
// A nil second value means err is a transport-level failure, not a
// server-reported one.
func AsResponseError(err error) (*ResponseError, bool) {
	respErr := &ResponseError{}
	if errors.As(err, &respErr) {
		return respErr, true
	}

	return nil, false
}

// HasStatusCode reports whether err is a ResponseError with one of the given
// HTTP status codes.
func HasStatusCode(err error, statusCodes ...int) bool {
	respErr, ok := AsResponseError(err)
	if !ok {
		return false
	}

	for _, code := range statusCodes {
		if respErr.StatusCode == code {
			return true
		}
	}

	return false
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return HasStatusCode(err, 404)
}

// IsConflict checks if the error is a conflict error.
func IsConflict(err error) bool {
	return HasStatusCode(err, 409)
}

// IsTooManyRequests checks if the error is a throttling error.
func IsTooManyRequests(err error) bool {
	return HasStatusCode(err, 429)
}

// IsUnauthorized checks if the error is an authentication error.
func IsUnauthorized(err error) bool {
	return HasStatusCode(err, 401)
}

// IsForbidden checks if the error is an authorization error.
func IsForbidden(err error) bool {
	return HasStatusCode(err, 403)
}

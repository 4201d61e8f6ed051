package arm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ansolan/armclient/internal/constants"
	"github.com/ansolan/armclient/pkg/metrics"
)

// Getter issues a single HTTP GET against an absolute URL. A response with
// status >= 400 is returned together with a *ResponseError; any other error
// is a transport-level failure. The internal HTTP client satisfies this.
type Getter interface {
	GetURL(ctx context.Context, url string) (*Response, error)
}

// pollConvention is the completion-signal convention detected from the
// initiating response. It is chosen once, at poller construction, so every
// call site stays convention-agnostic.
type pollConvention int

const (
	// conventionAsyncOperation polls the Azure-AsyncOperation URL; the
	// status field of the polled body is authoritative and the final value
	// requires a supplementary fetch.
	conventionAsyncOperation pollConvention = iota

	// conventionLocation re-requests the Location URL; 202 means still
	// running, any other 2xx is terminal with the body as the final value.
	conventionLocation

	// conventionOriginal means the initiating response was already terminal
	// and no polling is required.
	conventionOriginal
)

func (c pollConvention) String() string {
	switch c {
	case conventionAsyncOperation:
		return "azure-async-operation"
	case conventionLocation:
		return "location"
	default:
		return "original-uri"
	}
}

// Poller tracks a server-side asynchronous operation to completion. A Poller
// is owned by the call chain that created it and is not safe for concurrent
// use. Once a terminal state is reached the poller is immutable and further
// polls issue no requests.
type Poller[T any] struct {
	getter       Getter
	convention   pollConvention
	pollURL      string
	finalURL     string
	state        OperationState
	lastResponse *Response
	retryAfter   time.Duration
	result       *T
	failure      error

	// sleep is replaced by tests to observe scheduling without real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPoller classifies the completion-signal convention from the response to
// the initiating request and returns a poller tracking the operation. The
// conventions are tried in precedence order: Azure-AsyncOperation header,
// Location header, then the original response itself. A convention header
// that is present but not an absolute URL fails with ErrProtocolViolation,
// as does a 202 response carrying no operation headers.
func NewPoller[T any](getter Getter, resp *Response) (*Poller[T], error) {
	p := &Poller[T]{
		getter:       getter,
		state:        OperationStateNotStarted,
		lastResponse: resp,
		sleep:        sleepWithContext,
	}
	p.retryAfter = retryAfterFrom(resp)

	if asyncURL := headerValue(resp, "Azure-AsyncOperation"); asyncURL != "" {
		pollURL, err := parseAbsoluteURL("Azure-AsyncOperation", asyncURL)
		if err != nil {
			return nil, err
		}

		p.convention = conventionAsyncOperation
		p.pollURL = pollURL

		// The final value is not embedded in the status body: it comes from
		// a Location header when present, otherwise from re-fetching the
		// resource mutated by the initiating request.
		if location := headerValue(resp, "Location"); location != "" {
			finalURL, err := parseAbsoluteURL("Location", location)
			if err != nil {
				return nil, err
			}

			p.finalURL = finalURL
		} else if resp.RequestMethod == http.MethodPut || resp.RequestMethod == http.MethodPatch {
			p.finalURL = resp.RequestURL
		}

		return p, nil
	}

	if location := headerValue(resp, "Location"); location != "" {
		pollURL, err := parseAbsoluteURL("Location", location)
		if err != nil {
			return nil, err
		}

		p.convention = conventionLocation
		p.pollURL = pollURL

		return p, nil
	}

	p.convention = conventionOriginal

	if resp.StatusCode == http.StatusAccepted {
		return nil, fmt.Errorf("%w: 202 response carries no operation headers", ErrProtocolViolation)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		result, err := decodeBody[T](resp)
		if err != nil {
			return nil, err
		}

		p.state = OperationStateSucceeded
		p.result = result

		return p, nil
	}

	p.state = OperationStateFailed
	p.failure = NewResponseError(resp)

	return p, nil
}

// State returns the current status classification without polling.
func (p *Poller[T]) State() OperationState {
	return p.state
}

// Done reports whether the operation has reached a terminal state. It never
// triggers a poll.
func (p *Poller[T]) Done() bool {
	return p.state.Terminal()
}

// HasValue reports whether a final value has been resolved.
func (p *Poller[T]) HasValue() bool {
	return p.result != nil
}

// LastResponse returns the most recent response observed by the poller.
func (p *Poller[T]) LastResponse() *Response {
	return p.lastResponse
}

// Result returns the final value once the operation has succeeded, the
// captured failure once it has failed or been canceled, and
// ErrOperationInProgress otherwise.
func (p *Poller[T]) Result() (*T, error) {
	switch p.state {
	case OperationStateSucceeded:
		return p.result, nil
	case OperationStateFailed, OperationStateCanceled:
		return nil, p.failure
	default:
		return nil, ErrOperationInProgress
	}
}

// Poll issues exactly one status request. Re-polling an already-terminal
// operation is a no-op that issues zero requests. A transport-level failure
// is returned without mutating the poller; a server-reported failure
// transitions the operation to Failed and is surfaced through Result.
func (p *Poller[T]) Poll(ctx context.Context) error {
	if p.Done() {
		return nil
	}

	resp, err := p.getter.GetURL(ctx, p.pollURL)
	if err != nil {
		respErr, ok := AsResponseError(err)
		if !ok {
			return fmt.Errorf("polling operation: %w", err)
		}

		p.lastResponse = resp
		p.retryAfter = retryAfterFrom(resp)
		p.state = OperationStateFailed
		p.failure = respErr
		metrics.RecordPoll(p.convention.String(), string(p.state))

		return nil
	}

	p.lastResponse = resp
	p.retryAfter = retryAfterFrom(resp)

	if p.convention == conventionAsyncOperation {
		err = p.applyStatusBody(ctx, resp)
	} else {
		err = p.applyLocationResponse(resp)
	}

	if err != nil {
		return err
	}

	metrics.RecordPoll(p.convention.String(), string(p.state))

	return nil
}

// applyStatusBody interprets an Azure-AsyncOperation status document.
func (p *Poller[T]) applyStatusBody(ctx context.Context, resp *Response) error {
	var status OperationStatus

	err := json.Unmarshal(resp.Body, &status)
	if err != nil || status.Status == "" {
		return fmt.Errorf("%w: poll response carries no status field", ErrProtocolViolation)
	}

	switch ParseOperationState(status.Status) {
	case OperationStateSucceeded:
		return p.resolveFinalValue(ctx, resp)

	case OperationStateFailed:
		p.state = OperationStateFailed
		p.failure = failureFromStatus(resp, &status)

	case OperationStateCanceled:
		p.state = OperationStateCanceled
		p.failure = NewResponseError(resp,
			WithErrorMessage(canceledMessage(&status)),
			WithCause(ErrOperationCanceled))

	case OperationStateNotStarted:
		p.state = OperationStateNotStarted

	default:
		p.state = OperationStateRunning
	}

	return nil
}

// resolveFinalValue commits the Succeeded state, fetching the value from the
// final-value URL when the convention requires a supplementary request. A
// failure during the supplementary fetch leaves the poller non-terminal so
// the next poll retries the resolution.
func (p *Poller[T]) resolveFinalValue(ctx context.Context, resp *Response) error {
	if p.finalURL != "" {
		final, err := p.getter.GetURL(ctx, p.finalURL)
		if err != nil {
			return fmt.Errorf("fetching final resource state: %w", err)
		}

		result, err := decodeBody[T](final)
		if err != nil {
			return err
		}

		p.lastResponse = final
		p.state = OperationStateSucceeded
		p.result = result

		return nil
	}

	// No final-value URL: the status body is all there is. Decode is best
	// effort since delete-style operations produce no value at all.
	result := new(T)
	if len(resp.Body) > 0 {
		_ = json.Unmarshal(resp.Body, result)
	}

	p.state = OperationStateSucceeded
	p.result = result

	return nil
}

// applyLocationResponse interprets a Location-convention poll response:
// 202 means still running, any other 2xx is terminal with the body as value.
func (p *Poller[T]) applyLocationResponse(resp *Response) error {
	if resp.StatusCode == http.StatusAccepted {
		p.state = OperationStateRunning

		return nil
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		result, err := decodeBody[T](resp)
		if err != nil {
			return err
		}

		p.state = OperationStateSucceeded
		p.result = result

		return nil
	}

	p.state = OperationStateRunning

	return nil
}

// PollUntilDoneOptions configures the blocking wait.
type PollUntilDoneOptions struct {
	// Frequency is the delay between polls when the server does not suggest
	// one. A server Retry-After value acts as a floor: the wait is never
	// shorter than what the server asked for, a longer caller frequency only
	// lengthens it.
	Frequency time.Duration
}

// PollUntilDone polls the operation until it reaches a terminal state,
// sleeping between polls. It returns the final value on success, the
// captured ResponseError on failure, and ctx.Err() when canceled between
// polls. Calling it on an already-terminal poller issues no requests.
func (p *Poller[T]) PollUntilDone(ctx context.Context, options *PollUntilDoneOptions) (*T, error) {
	frequency := constants.DefaultPollFrequency
	if options != nil && options.Frequency > 0 {
		frequency = options.Frequency
	}

	for !p.Done() {
		err := p.Poll(ctx)
		if err != nil {
			return nil, err
		}

		if p.Done() {
			break
		}

		delay := frequency
		if p.retryAfter > delay {
			delay = p.retryAfter
		}

		err = p.sleep(ctx, delay)
		if err != nil {
			return nil, err
		}
	}

	return p.Result()
}

// failureFromStatus builds the structured failure for a Failed status body,
// preferring the error object embedded in the status document.
func failureFromStatus(resp *Response, status *OperationStatus) *ResponseError {
	opts := []ResponseErrorOption{}

	if status.Error != nil {
		if status.Error.Code != "" {
			opts = append(opts, WithErrorCode(status.Error.Code))
		}

		if status.Error.Message != "" {
			opts = append(opts, WithErrorMessage(status.Error.Message))
		}
	}

	if len(opts) == 0 {
		opts = append(opts, WithErrorMessage("operation failed"))
	}

	return NewResponseError(resp, opts...)
}

func canceledMessage(status *OperationStatus) string {
	if status.Error != nil && status.Error.Message != "" {
		return status.Error.Message
	}

	return "operation was canceled"
}

// ParseOperationState maps a wire status string to an OperationState. The
// comparison is case-insensitive; unrecognized values classify as Running so
// that an unknown intermediate state keeps the poll loop alive.
func ParseOperationState(value string) OperationState {
	switch strings.ToLower(value) {
	case "notstarted":
		return OperationStateNotStarted
	case "succeeded":
		return OperationStateSucceeded
	case "failed":
		return OperationStateFailed
	case "canceled", "cancelled":
		return OperationStateCanceled
	default:
		return OperationStateRunning
	}
}

// retryAfterFrom extracts the server-suggested delay. Retry-After carries
// integer seconds on the wire; anything else is ignored.
func retryAfterFrom(resp *Response) time.Duration {
	if resp == nil || resp.Headers == nil {
		return 0
	}

	raw := resp.Headers.Get("Retry-After")
	if raw == "" {
		return 0
	}

	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}

func headerValue(resp *Response, name string) string {
	if resp == nil || resp.Headers == nil {
		return ""
	}

	return resp.Headers.Get(name)
}

func parseAbsoluteURL(header, raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil || !parsed.IsAbs() {
		return "", fmt.Errorf("%w: %s header is not an absolute URL: %q", ErrProtocolViolation, header, raw)
	}

	return raw, nil
}

func decodeBody[T any](resp *Response) (*T, error) {
	result := new(T)

	if len(resp.Body) == 0 {
		return result, nil
	}

	err := json.Unmarshal(resp.Body, result)
	if err != nil {
		return nil, fmt.Errorf("parsing response body: %w", err)
	}

	return result, nil
}

// sleepWithContext waits for d or until ctx is canceled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

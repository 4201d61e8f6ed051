package arm

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGetter returns a fixed sequence of responses and records every URL
// it was asked for.
type scriptedGetter struct {
	responses []*Response
	errs      []error
	calls     []string
}

func (g *scriptedGetter) GetURL(_ context.Context, url string) (*Response, error) {
	g.calls = append(g.calls, url)

	if len(g.responses) == 0 {
		panic("scriptedGetter: no responses left for " + url)
	}

	resp := g.responses[0]
	g.responses = g.responses[1:]

	var err error
	if len(g.errs) > 0 {
		err = g.errs[0]
		g.errs = g.errs[1:]
	}

	return resp, err
}

func acceptedResponse(headers map[string]string, method, requestURL string) *Response {
	h := http.Header{}
	for name, value := range headers {
		h.Set(name, value)
	}

	return &Response{
		StatusCode:    http.StatusAccepted,
		Status:        "202 Accepted",
		Headers:       h,
		RequestMethod: method,
		RequestURL:    requestURL,
	}
}

func statusBody(state string) *Response {
	return &Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Headers:    http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(`{"status": "` + state + `"}`),
	}
}

type widget struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

func TestNewPoller_AsyncOperationConvention(t *testing.T) {
	resp := acceptedResponse(map[string]string{
		"Azure-AsyncOperation": "https://example.com/operations/op1",
		"Location":             "https://example.com/widgets/w1",
	}, http.MethodPut, "https://example.com/widgets/w1")

	poller, err := NewPoller[widget](&scriptedGetter{}, resp)
	require.NoError(t, err)

	assert.Equal(t, conventionAsyncOperation, poller.convention)
	assert.Equal(t, "https://example.com/operations/op1", poller.pollURL)
	assert.Equal(t, "https://example.com/widgets/w1", poller.finalURL)
	assert.False(t, poller.Done())
}

func TestNewPoller_AsyncOperationFinalURLFromRequest(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		finalURL string
	}{
		{name: "PUT refetches the request URL", method: http.MethodPut, finalURL: "https://example.com/widgets/w1"},
		{name: "PATCH refetches the request URL", method: http.MethodPatch, finalURL: "https://example.com/widgets/w1"},
		{name: "DELETE has no final URL", method: http.MethodDelete, finalURL: ""},
		{name: "POST has no final URL", method: http.MethodPost, finalURL: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := acceptedResponse(map[string]string{
				"Azure-AsyncOperation": "https://example.com/operations/op1",
			}, tt.method, "https://example.com/widgets/w1")

			poller, err := NewPoller[widget](&scriptedGetter{}, resp)
			require.NoError(t, err)
			assert.Equal(t, tt.finalURL, poller.finalURL)
		})
	}
}

func TestNewPoller_LocationConvention(t *testing.T) {
	resp := acceptedResponse(map[string]string{
		"Location": "https://example.com/operationresults/r1",
	}, http.MethodDelete, "https://example.com/widgets/w1")

	poller, err := NewPoller[widget](&scriptedGetter{}, resp)
	require.NoError(t, err)

	assert.Equal(t, conventionLocation, poller.convention)
	assert.Equal(t, "https://example.com/operationresults/r1", poller.pollURL)
}

func TestNewPoller_OriginalResponseAlreadyTerminal(t *testing.T) {
	resp := &Response{
		StatusCode:    http.StatusCreated,
		Status:        "201 Created",
		Headers:       http.Header{},
		Body:          []byte(`{"name": "w1", "state": "ready"}`),
		RequestMethod: http.MethodPut,
		RequestURL:    "https://example.com/widgets/w1",
	}

	getter := &scriptedGetter{}

	poller, err := NewPoller[widget](getter, resp)
	require.NoError(t, err)

	assert.True(t, poller.Done())
	assert.Equal(t, OperationStateSucceeded, poller.State())

	result, err := poller.Result()
	require.NoError(t, err)
	assert.Equal(t, "w1", result.Name)

	// Polling a terminal operation must not hit the network.
	require.NoError(t, poller.Poll(context.Background()))
	assert.Empty(t, getter.calls)
}

func TestNewPoller_AcceptedWithoutHeadersIsProtocolViolation(t *testing.T) {
	resp := acceptedResponse(nil, http.MethodPost, "https://example.com/widgets/w1")

	_, err := NewPoller[widget](&scriptedGetter{}, resp)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocolViolation)
}

func TestNewPoller_RelativeHeaderURLIsProtocolViolation(t *testing.T) {
	resp := acceptedResponse(map[string]string{
		"Azure-AsyncOperation": "/operations/op1",
	}, http.MethodPut, "https://example.com/widgets/w1")

	_, err := NewPoller[widget](&scriptedGetter{}, resp)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocolViolation)
}

func TestPoller_AsyncOperationSucceedsWithSupplementaryFetch(t *testing.T) {
	getter := &scriptedGetter{
		responses: []*Response{
			statusBody("InProgress"),
			statusBody("Succeeded"),
			{
				StatusCode: http.StatusOK,
				Status:     "200 OK",
				Body:       []byte(`{"name": "w1", "state": "ready"}`),
			},
		},
	}

	resp := acceptedResponse(map[string]string{
		"Azure-AsyncOperation": "https://example.com/operations/op1",
	}, http.MethodPut, "https://example.com/widgets/w1")

	poller, err := NewPoller[widget](getter, resp)
	require.NoError(t, err)

	ctx := context.Background()

	require.NoError(t, poller.Poll(ctx))
	assert.Equal(t, OperationStateRunning, poller.State())
	assert.False(t, poller.Done())

	_, err = poller.Result()
	assert.ErrorIs(t, err, ErrOperationInProgress)

	require.NoError(t, poller.Poll(ctx))
	assert.True(t, poller.Done())

	result, err := poller.Result()
	require.NoError(t, err)
	assert.Equal(t, "ready", result.State)

	// Two status polls plus one supplementary GET against the request URL.
	assert.Equal(t, []string{
		"https://example.com/operations/op1",
		"https://example.com/operations/op1",
		"https://example.com/widgets/w1",
	}, getter.calls)
}

func TestPoller_AsyncOperationWithoutFinalURLUsesStatusBody(t *testing.T) {
	getter := &scriptedGetter{
		responses: []*Response{statusBody("Succeeded")},
	}

	resp := acceptedResponse(map[string]string{
		"Azure-AsyncOperation": "https://example.com/operations/op1",
	}, http.MethodDelete, "https://example.com/widgets/w1")

	poller, err := NewPoller[widget](getter, resp)
	require.NoError(t, err)

	require.NoError(t, poller.Poll(context.Background()))
	assert.True(t, poller.Done())

	result, err := poller.Result()
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Len(t, getter.calls, 1)
}

func TestPoller_AsyncOperationFailure(t *testing.T) {
	failedBody := &Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Body:       []byte(`{"status": "Failed", "error": {"code": "DeploymentFailed", "message": "quota exceeded"}}`),
	}

	getter := &scriptedGetter{responses: []*Response{failedBody}}

	resp := acceptedResponse(map[string]string{
		"Azure-AsyncOperation": "https://example.com/operations/op1",
	}, http.MethodPut, "https://example.com/widgets/w1")

	poller, err := NewPoller[widget](getter, resp)
	require.NoError(t, err)

	// A server-reported failure is not a poll error; it surfaces via Result.
	require.NoError(t, poller.Poll(context.Background()))
	assert.Equal(t, OperationStateFailed, poller.State())

	_, err = poller.Result()
	require.Error(t, err)

	respErr, ok := AsResponseError(err)
	require.True(t, ok)
	assert.Equal(t, "DeploymentFailed", respErr.ErrorCode)
	assert.Equal(t, "quota exceeded", respErr.Message)
}

func TestPoller_AsyncOperationCanceled(t *testing.T) {
	canceledBody := &Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Body:       []byte(`{"status": "Canceled", "error": {"message": "canceled by operator"}}`),
	}

	getter := &scriptedGetter{responses: []*Response{canceledBody}}

	resp := acceptedResponse(map[string]string{
		"Azure-AsyncOperation": "https://example.com/operations/op1",
	}, http.MethodDelete, "https://example.com/widgets/w1")

	poller, err := NewPoller[widget](getter, resp)
	require.NoError(t, err)

	require.NoError(t, poller.Poll(context.Background()))
	assert.Equal(t, OperationStateCanceled, poller.State())

	_, err = poller.Result()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOperationCanceled)

	respErr, ok := AsResponseError(err)
	require.True(t, ok)
	assert.Equal(t, "canceled by operator", respErr.Message)
}

func TestPoller_AsyncOperationMissingStatusField(t *testing.T) {
	getter := &scriptedGetter{
		responses: []*Response{{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Body:       []byte(`{"unexpected": true}`),
		}},
	}

	resp := acceptedResponse(map[string]string{
		"Azure-AsyncOperation": "https://example.com/operations/op1",
	}, http.MethodPut, "https://example.com/widgets/w1")

	poller, err := NewPoller[widget](getter, resp)
	require.NoError(t, err)

	err = poller.Poll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProtocolViolation)
}

func TestPoller_LocationConventionCompletes(t *testing.T) {
	getter := &scriptedGetter{
		responses: []*Response{
			{StatusCode: http.StatusAccepted, Status: "202 Accepted"},
			{
				StatusCode: http.StatusOK,
				Status:     "200 OK",
				Body:       []byte(`{"name": "w1", "state": "ready"}`),
			},
		},
	}

	resp := acceptedResponse(map[string]string{
		"Location": "https://example.com/operationresults/r1",
	}, http.MethodDelete, "https://example.com/widgets/w1")

	poller, err := NewPoller[widget](getter, resp)
	require.NoError(t, err)

	ctx := context.Background()

	require.NoError(t, poller.Poll(ctx))
	assert.Equal(t, OperationStateRunning, poller.State())

	require.NoError(t, poller.Poll(ctx))
	assert.True(t, poller.Done())

	result, err := poller.Result()
	require.NoError(t, err)
	assert.Equal(t, "w1", result.Name)
	assert.Len(t, getter.calls, 2)
}

func TestPoller_PollRecordsServerFailureResponse(t *testing.T) {
	errResp := &Response{
		StatusCode: http.StatusConflict,
		Status:     "409 Conflict",
		Headers:    http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(`{"error": {"code": "Conflict", "message": "operation conflict"}}`),
	}

	getter := &scriptedGetter{
		responses: []*Response{errResp},
		errs:      []error{NewResponseError(errResp)},
	}

	resp := acceptedResponse(map[string]string{
		"Location": "https://example.com/operationresults/r1",
	}, http.MethodDelete, "https://example.com/widgets/w1")

	poller, err := NewPoller[widget](getter, resp)
	require.NoError(t, err)

	require.NoError(t, poller.Poll(context.Background()))
	assert.Equal(t, OperationStateFailed, poller.State())

	_, err = poller.Result()
	assert.True(t, IsConflict(err))
}

func TestPoller_PollUntilDoneHonorsRetryAfterFloor(t *testing.T) {
	running := statusBody("InProgress")
	running.Headers.Set("Retry-After", "5")

	getter := &scriptedGetter{
		responses: []*Response{running, statusBody("Succeeded")},
	}

	resp := acceptedResponse(map[string]string{
		"Azure-AsyncOperation": "https://example.com/operations/op1",
	}, http.MethodDelete, "https://example.com/widgets/w1")

	poller, err := NewPoller[widget](getter, resp)
	require.NoError(t, err)

	var sleeps []time.Duration

	poller.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)

		return nil
	}

	_, err = poller.PollUntilDone(context.Background(), &PollUntilDoneOptions{Frequency: time.Second})
	require.NoError(t, err)

	// The server asked for 5s; the 1s caller frequency must not shorten it.
	assert.Equal(t, []time.Duration{5 * time.Second}, sleeps)
}

func TestPoller_PollUntilDoneUsesLongerCallerFrequency(t *testing.T) {
	running := statusBody("InProgress")
	running.Headers.Set("Retry-After", "1")

	getter := &scriptedGetter{
		responses: []*Response{running, statusBody("Succeeded")},
	}

	resp := acceptedResponse(map[string]string{
		"Azure-AsyncOperation": "https://example.com/operations/op1",
	}, http.MethodDelete, "https://example.com/widgets/w1")

	poller, err := NewPoller[widget](getter, resp)
	require.NoError(t, err)

	var sleeps []time.Duration

	poller.sleep = func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)

		return nil
	}

	_, err = poller.PollUntilDone(context.Background(), &PollUntilDoneOptions{Frequency: 3 * time.Second})
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{3 * time.Second}, sleeps)
}

func TestPoller_PollUntilDoneCanceledBetweenPolls(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	getter := &scriptedGetter{
		responses: []*Response{statusBody("InProgress")},
	}

	resp := acceptedResponse(map[string]string{
		"Azure-AsyncOperation": "https://example.com/operations/op1",
	}, http.MethodDelete, "https://example.com/widgets/w1")

	poller, err := NewPoller[widget](getter, resp)
	require.NoError(t, err)

	poller.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()

		return ctx.Err()
	}

	_, err = poller.PollUntilDone(ctx, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, poller.Done())
}

func TestPoller_PollUntilDoneAlreadyTerminal(t *testing.T) {
	resp := &Response{
		StatusCode:    http.StatusOK,
		Status:        "200 OK",
		Body:          []byte(`{"name": "w1"}`),
		RequestMethod: http.MethodGet,
		RequestURL:    "https://example.com/widgets/w1",
	}

	getter := &scriptedGetter{}

	poller, err := NewPoller[widget](getter, resp)
	require.NoError(t, err)

	result, err := poller.PollUntilDone(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "w1", result.Name)
	assert.Empty(t, getter.calls)
}

func TestParseOperationState(t *testing.T) {
	tests := []struct {
		value    string
		expected OperationState
	}{
		{value: "Succeeded", expected: OperationStateSucceeded},
		{value: "succeeded", expected: OperationStateSucceeded},
		{value: "Failed", expected: OperationStateFailed},
		{value: "Canceled", expected: OperationStateCanceled},
		{value: "Cancelled", expected: OperationStateCanceled},
		{value: "NotStarted", expected: OperationStateNotStarted},
		{value: "InProgress", expected: OperationStateRunning},
		{value: "Provisioning", expected: OperationStateRunning},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseOperationState(tt.value))
		})
	}
}

func TestRetryAfterFrom(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Duration
	}{
		{name: "integer seconds", value: "10", expected: 10 * time.Second},
		{name: "zero", value: "0", expected: 0},
		{name: "negative ignored", value: "-1", expected: 0},
		{name: "http date ignored", value: "Fri, 29 Aug 2026 10:00:00 GMT", expected: 0},
		{name: "empty", value: "", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{}
			if tt.value != "" {
				headers.Set("Retry-After", tt.value)
			}

			resp := &Response{Headers: headers}
			assert.Equal(t, tt.expected, retryAfterFrom(resp))
		})
	}
}

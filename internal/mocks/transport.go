package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/phrazzld/atm-session/internal/remote"
)

// TransportCall records one request made through MockTransport.
type TransportCall struct {
	Path string
	Body map[string]interface{}
}

// MockTransport implements remote.Transport for testing.
type MockTransport struct {
	// PostFn allows test cases to mock the Post behavior
	PostFn func(ctx context.Context, path string, body any) (*remote.Response, error)

	// Default values used when PostFn isn't defined
	Response *remote.Response
	Err      error

	mu    sync.Mutex
	calls []TransportCall
}

// Ensure MockTransport implements remote.Transport
var _ remote.Transport = (*MockTransport)(nil)

// Post implements the remote.Transport interface
func (m *MockTransport) Post(ctx context.Context, path string, body any) (*remote.Response, error) {
	call := TransportCall{Path: path}
	if data, err := json.Marshal(body); err == nil {
		_ = json.Unmarshal(data, &call.Body)
	}
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()

	if m.PostFn != nil {
		return m.PostFn(ctx, path, body)
	}
	return m.Response, m.Err
}

// Calls returns the requests made so far.
func (m *MockTransport) Calls() []TransportCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TransportCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// JSONResponse builds a response with the given status and raw JSON body.
func JSONResponse(status int, body string) *remote.Response {
	return &remote.Response{StatusCode: status, Body: []byte(body)}
}

package llm

import "context"

// MockClient is a Completer for tests: it records the parts it was handed
// and returns a canned response or error.
type MockClient struct {
	Response string
	Err      error

	Calls     int
	LastParts []Part
}

// Ensure MockClient implements the Completer interface.
var _ Completer = (*MockClient)(nil)

// NewMockClient creates a mock returning response.
func NewMockClient(response string) *MockClient {
	return &MockClient{Response: response}
}

// Complete records the call and returns the configured result.
func (m *MockClient) Complete(ctx context.Context, parts []Part) (string, error) {
	m.Calls++
	m.LastParts = parts
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

package provider

import (
	"context"
	"strings"
	"sync"

	"github.com/ZaguanLabs/gotdoc"
)

// MockProvider is a mock AI provider for testing. It translates line by
// line from Translations, wrapping unknown lines in brackets, and can be
// scripted to fail.
type MockProvider struct {
	Translations map[string]string // Map of source line to translation
	FailTimes    int               // Number of leading calls that fail with Err
	Err          error             // Error returned by failing calls (default: retryable ProviderError)

	mu       sync.Mutex
	requests []TranslateRequest
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":                "Szia",
			"World":                "Világ",
			"Hello World":          "Szia Világ",
			"Welcome to our site.": "Üdvözöljük az oldalunkon.",
		},
	}
}

// Translate returns mock translations, one line per input line.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	call := len(m.requests)
	m.mu.Unlock()

	if call <= m.FailTimes {
		if m.Err != nil {
			return "", m.Err
		}
		return "", &gotdoc.ProviderError{Message: "mock failure", Retryable: true}
	}

	lines := strings.Split(req.Text, gotdoc.ParagraphSeparator)
	out := make([]string, len(lines))
	for i, line := range lines {
		if translation, ok := m.Translations[line]; ok {
			out[i] = translation
		} else {
			out[i] = "[" + line + "]"
		}
	}
	return strings.Join(out, gotdoc.ParagraphSeparator), nil
}

// CallCount returns the number of times Translate was called.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every request received, in order.
func (m *MockProvider) Requests() []TranslateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TranslateRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequest returns the most recent request, or nil.
func (m *MockProvider) LastRequest() *TranslateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	req := m.requests[len(m.requests)-1]
	return &req
}

// Reset clears recorded requests.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// Verify MockProvider implements AIProvider
var _ AIProvider = (*MockProvider)(nil)

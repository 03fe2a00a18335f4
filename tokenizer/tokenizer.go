// Package tokenizer provides token counters used to size translation chunks.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/ZaguanLabs/gotdoc"
)

// Tokenizer is an alias to the main package interface.
type Tokenizer = gotdoc.Tokenizer

// Kinds accepted by New.
const (
	KindTiktoken = "tiktoken"
	KindEstimate = "estimate"
)

// New returns a tokenizer of the given kind for model.
// An empty kind selects tiktoken.
func New(kind, model string) (Tokenizer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindTiktoken:
		return NewTiktoken(model)
	case KindEstimate:
		return NewEstimator(0), nil
	default:
		return nil, fmt.Errorf("unknown tokenizer %q (want %s or %s)", kind, KindTiktoken, KindEstimate)
	}
}

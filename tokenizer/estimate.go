package tokenizer

import "unicode/utf8"

// DefaultCharsPerToken is the ratio used when no ratio is configured.
// English averages about four characters per token.
const DefaultCharsPerToken = 4

// Estimator approximates token counts from the character count. It needs
// no encoding tables, so it works offline and for unknown models.
type Estimator struct {
	charsPerToken int
}

// NewEstimator creates an estimator; charsPerToken <= 0 selects the default.
func NewEstimator(charsPerToken int) *Estimator {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return &Estimator{charsPerToken: charsPerToken}
}

// Count returns the estimated token count, rounding up.
func (e *Estimator) Count(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + e.charsPerToken - 1) / e.charsPerToken
}

var _ Tokenizer = (*Estimator)(nil)

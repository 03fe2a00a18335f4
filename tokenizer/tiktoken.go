package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// FallbackEncoding is used for models tiktoken does not know.
const FallbackEncoding = "cl100k_base"

// Tiktoken counts tokens with the BPE encoding of an OpenAI model.
type Tiktoken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTiktoken loads the encoding for model, falling back to cl100k_base.
// Encoding tables are downloaded on first use and cached in the directory
// named by TIKTOKEN_CACHE_DIR.
func NewTiktoken(model string) (*Tiktoken, error) {
	enc, err := tiktoken.EncodingForModel(model)
	name := model
	if err != nil {
		enc, err = tiktoken.GetEncoding(FallbackEncoding)
		name = FallbackEncoding
	}
	if err != nil {
		return nil, fmt.Errorf("loading tiktoken encoding for %q: %w", model, err)
	}
	return &Tiktoken{encoding: enc, name: name}, nil
}

// Count returns the number of tokens in text.
func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.encoding.Encode(text, nil, nil))
}

// Name returns the model or encoding name the tokenizer was built for.
func (t *Tiktoken) Name() string {
	return t.name
}

var _ Tokenizer = (*Tiktoken)(nil)

package gotdoc

import "unicode/utf8"

// SplitChunks groups paragraphs into order-preserving chunks whose text,
// measured by tok, stays within maxTokens.
//
// Chunks are filled greedily: a paragraph joins the current chunk unless the
// joined text would exceed maxTokens, in which case the current chunk is
// closed first. A paragraph that exceeds maxTokens on its own is never split;
// it becomes a chunk of its own, over budget.
func SplitChunks(paragraphs []string, maxTokens int, tok Tokenizer) ([]Chunk, error) {
	if maxTokens <= 0 {
		return nil, ErrInvalidMaxTokens
	}
	if len(paragraphs) == 0 {
		return nil, nil
	}

	var chunks []Chunk
	var current []string
	currentText := ""
	currentTokens := 0

	for _, para := range paragraphs {
		candidate := para
		if len(current) > 0 {
			candidate = currentText + ParagraphSeparator + para
		}
		candidateTokens := tok.Count(candidate)

		if len(current) > 0 && candidateTokens > maxTokens {
			chunks = append(chunks, Chunk{Paragraphs: current, Tokens: currentTokens})
			current = nil
			candidate = para
			candidateTokens = tok.Count(para)
		}

		current = append(current, para)
		currentText = candidate
		currentTokens = candidateTokens
	}

	if len(current) > 0 {
		chunks = append(chunks, Chunk{Paragraphs: current, Tokens: currentTokens})
	}

	return chunks, nil
}

// EstimateTokens approximates a token count at four characters per token.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	tokens := (n + 3) / 4
	return tokens
}

// estimator is the Tokenizer used when none is configured.
type estimator struct{}

func (estimator) Count(text string) int {
	return EstimateTokens(text)
}

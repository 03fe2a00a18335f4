package gotdoc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Translator is the main translation engine.
type Translator struct {
	targetLang     string
	sourceLang     string
	provider       AIProvider
	tokenizer      Tokenizer
	cache          TranslationCache
	cacheNamespace string
	maxTokens      int
	sample         string
	style          TranslationStyle
	instructions   string
	retry          RetryConfig
	logger         *slog.Logger
}

// AIProvider is the interface for AI translation backends.
// Translate returns the translation of req.Text, one line per input line.
type AIProvider interface {
	Translate(ctx context.Context, req TranslateRequest) (string, error)
}

// TranslateRequest contains the parameters for translating one chunk.
type TranslateRequest struct {
	Text         string           // Chunk text, paragraphs separated by ParagraphSeparator
	SourceLang   string           // Source language code or name
	TargetLang   string           // Target language code or name
	Previous     ChunkContext     // Previous chunk and its translation, zero for the first chunk
	Sample       string           // Optional style exemplar
	Style        TranslationStyle // Register to translate in
	Instructions string           // Extra instructions appended to the system prompt
}

// Tokenizer counts tokens the way the target model does.
type Tokenizer interface {
	Count(text string) int
}

// TranslationCache is the interface for chunk translation caching.
type TranslationCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}

// DocumentFormat reads and writes one document container format.
type DocumentFormat interface {
	Name() string
	Extensions() []string
	Read(r io.Reader) (*Document, error)
	Write(w io.Writer, doc *Document) error
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithTokenizer sets the tokenizer used to size chunks.
func WithTokenizer(tok Tokenizer) TranslatorOption {
	return func(t *Translator) {
		t.tokenizer = tok
	}
}

// WithMaxTokens sets the token ceiling per chunk.
func WithMaxTokens(n int) TranslatorOption {
	return func(t *Translator) {
		t.maxTokens = n
	}
}

// WithCache sets the chunk translation cache.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithCacheNamespace scopes cache keys, typically to the model name.
func WithCacheNamespace(ns string) TranslatorOption {
	return func(t *Translator) {
		t.cacheNamespace = ns
	}
}

// WithSample sets the sample translation included in every prompt.
func WithSample(sample string) TranslatorOption {
	return func(t *Translator) {
		t.sample = strings.TrimSpace(sample)
	}
}

// WithStyle sets the translation style/register.
func WithStyle(style TranslationStyle) TranslatorOption {
	return func(t *Translator) {
		t.style = style
	}
}

// WithInstructions appends free-form instructions to the system prompt.
func WithInstructions(s string) TranslatorOption {
	return func(t *Translator) {
		t.instructions = strings.TrimSpace(s)
	}
}

// WithRetryConfig sets the retry policy for provider calls.
func WithRetryConfig(cfg RetryConfig) TranslatorOption {
	return func(t *Translator) {
		t.retry = cfg
	}
}

// WithLogger sets the logger used for progress and retry messages.
func WithLogger(logger *slog.Logger) TranslatorOption {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTranslator creates a new Translator for the given language pair and provider.
func NewTranslator(sourceLang, targetLang string, provider AIProvider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		sourceLang: sourceLang,
		targetLang: targetLang,
		provider:   provider,
		tokenizer:  estimator{},
		maxTokens:  DefaultMaxTokens,
		style:      StyleFormal,
		retry:      DefaultRetryConfig(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Plan returns the chunks the non-blank paragraphs of doc would be sent in.
func (t *Translator) Plan(doc *Document) ([]Chunk, error) {
	_, texts := splitBlank(doc)
	return SplitChunks(texts, t.maxTokens, t.tokenizer)
}

// Translate translates doc chunk by chunk and returns a new document with
// exactly one paragraph per source paragraph. Each chunk is sent together
// with the previous chunk and its translation. Any chunk that still fails
// after retries aborts the whole run.
func (t *Translator) Translate(ctx context.Context, doc *Document) (*ProcessedDocument, error) {
	if doc == nil {
		return nil, &TranslationError{Message: "nil document"}
	}
	if t.provider == nil {
		return nil, &TranslationError{Message: "no provider configured"}
	}

	slots, texts := splitBlank(doc)
	out := &Document{Paragraphs: make([]string, doc.Len()), Lang: t.targetLang}
	result := &ProcessedDocument{Document: out, Paragraphs: doc.Len()}

	if len(texts) == 0 {
		return result, nil
	}

	if SameLanguage(t.sourceLang, t.targetLang) {
		t.logger.Info("source and target language match, copying document", "lang", t.targetLang)
		copy(out.Paragraphs, doc.Paragraphs)
		return result, nil
	}

	chunks, err := SplitChunks(texts, t.maxTokens, t.tokenizer)
	if err != nil {
		return nil, err
	}
	result.Chunks = len(chunks)

	translated := make([]string, 0, len(texts))
	var prev ChunkContext

	for i, chunk := range chunks {
		if chunk.Tokens > t.maxTokens {
			t.logger.Warn("paragraph exceeds token ceiling, sending it alone",
				"chunk", i+1, "tokens", chunk.Tokens, "max_tokens", t.maxTokens)
		}
		t.logger.Info("translating chunk",
			"chunk", i+1, "total", len(chunks), "paragraphs", len(chunk.Paragraphs), "tokens", chunk.Tokens)

		req := TranslateRequest{
			Text:         chunk.Text(),
			SourceLang:   t.sourceLang,
			TargetLang:   t.targetLang,
			Previous:     prev,
			Sample:       t.sample,
			Style:        t.style,
			Instructions: t.instructions,
		}

		lines, cached, err := t.translateChunk(ctx, req, len(chunk.Paragraphs))
		if err != nil {
			return nil, &TranslationError{
				Message: fmt.Sprintf("chunk %d/%d failed", i+1, len(chunks)),
				Cause:   err,
			}
		}
		if cached {
			result.CachedChunks++
		} else {
			result.TranslatedChunks++
		}

		translated = append(translated, lines...)
		prev = ChunkContext{
			Source:      req.Text,
			Translation: strings.Join(lines, ParagraphSeparator),
		}
	}

	for i, slot := range slots {
		out.Paragraphs[slot] = translated[i]
	}

	return result, nil
}

// translateChunk returns the translated paragraphs of one chunk, from the
// cache when possible, otherwise from the provider under the retry policy.
func (t *Translator) translateChunk(ctx context.Context, req TranslateRequest, expected int) ([]string, bool, error) {
	key := ""
	if t.cache != nil {
		key = ChunkCacheKey(req, t.cacheNamespace)
		if cached, ok := t.cache.Get(ctx, key); ok {
			if lines := SplitTranslation(cached); len(lines) == expected {
				t.logger.Debug("chunk served from cache", "key", key)
				return lines, true, nil
			}
		}
	}

	retry := t.retry
	retry.OnRetry = func(attempt int, delay time.Duration, err error) {
		t.logger.Warn("provider call failed, retrying",
			"attempt", attempt, "max_retries", t.retry.MaxRetries, "delay", delay, "error", err)
		if t.retry.OnRetry != nil {
			t.retry.OnRetry(attempt, delay, err)
		}
	}

	lines, err := WithRetry(ctx, retry, func() ([]string, error) {
		text, err := t.provider.Translate(ctx, req)
		if err != nil {
			return nil, err
		}
		lines := SplitTranslation(text)
		if len(lines) == 0 {
			return nil, &ProviderError{Message: "no translated text", Cause: ErrEmptyResponse, Retryable: true}
		}
		if len(lines) != expected {
			return nil, &ProviderError{
				Message:   "malformed translation",
				Cause:     &CountMismatchError{Expected: expected, Got: len(lines)},
				Retryable: true,
			}
		}
		return lines, nil
	})
	if err != nil {
		return nil, false, err
	}

	if t.cache != nil {
		if err := t.cache.Set(ctx, key, strings.Join(lines, ParagraphSeparator)); err != nil {
			t.logger.Warn("cache write failed", "error", err)
		}
	}

	return lines, false, nil
}

// SplitTranslation splits a translated chunk back into paragraphs, dropping
// blank lines the model may have added between them.
func SplitTranslation(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []string
	for _, line := range strings.Split(text, ParagraphSeparator) {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// splitBlank returns the positions of the non-blank paragraphs of doc and
// their text with inner line breaks flattened to spaces.
func splitBlank(doc *Document) ([]int, []string) {
	var slots []int
	var texts []string
	for i, para := range doc.Paragraphs {
		flat := strings.TrimSpace(lineBreaks.Replace(para))
		if flat == "" {
			continue
		}
		slots = append(slots, i)
		texts = append(texts, flat)
	}
	return slots, texts
}

// TargetLang returns the target language.
func (t *Translator) TargetLang() string {
	return t.targetLang
}

// SourceLang returns the source language.
func (t *Translator) SourceLang() string {
	return t.sourceLang
}

// MaxTokens returns the token ceiling per chunk.
func (t *Translator) MaxTokens() int {
	return t.maxTokens
}

// Style returns the translation style.
func (t *Translator) Style() TranslationStyle {
	return t.style
}

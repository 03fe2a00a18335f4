package gotdoc

import "strings"

// ParagraphSeparator joins paragraphs inside a chunk and splits them back
// out of a translated chunk.
const ParagraphSeparator = "\n"

// DefaultMaxTokens is the default token ceiling for a single chunk.
const DefaultMaxTokens = 2048

// TranslationStyle controls the register the model is asked to translate in.
type TranslationStyle string

const (
	// StyleFormal asks for formal equivalence: meaning, style and sentence
	// structure kept as close to the source as the target language allows.
	StyleFormal TranslationStyle = "formal"
	// StyleNeutral uses a neutral, professional tone suitable for general content.
	StyleNeutral TranslationStyle = "neutral"
	// StyleLiterary favours natural, idiomatic prose over sentence-level fidelity.
	StyleLiterary TranslationStyle = "literary"
	// StyleTechnical uses precise, technical language for documentation.
	StyleTechnical TranslationStyle = "technical"
)

var styleDescriptions = map[TranslationStyle]string{
	StyleFormal:    "Your task is to translate the text with an emphasis on formal equivalence. Please preserve the original meaning, style, and sentence structure as closely as possible.",
	StyleNeutral:   "Your task is to translate the text in a neutral, professional tone. Preserve the original meaning and structure.",
	StyleLiterary:  "Your task is to translate the text as fluent, idiomatic prose. Preserve the original meaning, tone and imagery, rephrasing where a literal rendering would sound unnatural.",
	StyleTechnical: "Your task is to translate the text with precise, consistent technical terminology. Preserve the original meaning and structure exactly.",
}

// StyleDescription returns the prompt instruction for a style.
// Unknown and empty styles fall back to StyleFormal.
func StyleDescription(style TranslationStyle) string {
	if desc, ok := styleDescriptions[style]; ok {
		return desc
	}
	return styleDescriptions[StyleFormal]
}

// ParseStyle converts a user supplied style name into a TranslationStyle.
func ParseStyle(s string) (TranslationStyle, bool) {
	style := TranslationStyle(strings.ToLower(strings.TrimSpace(s)))
	if style == "" {
		return StyleFormal, true
	}
	_, ok := styleDescriptions[style]
	return style, ok
}

// Document is an ordered sequence of paragraph texts.
type Document struct {
	Paragraphs []string
	Lang       string // Language of the paragraphs, if known (code or name)
}

// NewDocument creates a document holding a copy of paragraphs.
func NewDocument(paragraphs []string) *Document {
	cp := make([]string, len(paragraphs))
	copy(cp, paragraphs)
	return &Document{Paragraphs: cp}
}

// Len returns the number of paragraphs.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Paragraphs)
}

// Text returns the paragraphs joined with ParagraphSeparator.
func (d *Document) Text() string {
	if d == nil {
		return ""
	}
	return strings.Join(d.Paragraphs, ParagraphSeparator)
}

// Chunk is a contiguous run of paragraphs sent to the provider in one request.
type Chunk struct {
	Paragraphs []string
	Tokens     int // Token count of Text() as measured when the chunk was built
}

// Text returns the chunk's paragraphs joined with ParagraphSeparator.
func (c Chunk) Text() string {
	return strings.Join(c.Paragraphs, ParagraphSeparator)
}

// ChunkContext is the previous chunk's source text and its translation.
// The zero value means there is no previous chunk.
type ChunkContext struct {
	Source      string
	Translation string
}

// IsZero reports whether the context carries nothing.
func (c ChunkContext) IsZero() bool {
	return c.Source == "" || c.Translation == ""
}

// ProcessedDocument is the result of translating a document.
type ProcessedDocument struct {
	Document         *Document // Translated document, one paragraph per source paragraph
	Paragraphs       int       // Number of source paragraphs
	Chunks           int       // Number of chunks the non-blank paragraphs were split into
	TranslatedChunks int       // Chunks translated by the provider
	CachedChunks     int       // Chunks served from the cache
}

// RTLLanguages contains base language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
	"yi": true, // Yiddish
}

package gotdoc

import (
	"fmt"
	"strings"
)

// Default model limits used to keep a prompt inside the context window.
const (
	DefaultContextWindow       = 8192
	LargeContextWindow         = 32768
	DefaultMaxCompletionTokens = 1024
)

// Prompt is the pair of chat messages sent for one chunk.
type Prompt struct {
	System string
	User   string
}

// Text returns both messages as one string, for token counting.
func (p Prompt) Text() string {
	return p.System + "\n\n" + p.User
}

// BuildPrompt renders the system and user messages for a chunk request.
func BuildPrompt(req TranslateRequest) Prompt {
	source := LanguageName(req.SourceLang)
	target := LanguageName(req.TargetLang)

	var sys strings.Builder
	fmt.Fprintf(&sys, "You are a professional translator proficient in %s and %s. ", source, target)
	sys.WriteString(StyleDescription(req.Style))
	sys.WriteString(" Each line of the input is one paragraph: answer with exactly one translated line per input line, in the same order.")
	sys.WriteString(" Return only the translated text, without notes, quotes or explanations.")
	if req.Instructions != "" {
		sys.WriteString(" ")
		sys.WriteString(req.Instructions)
	}
	if req.Sample != "" {
		fmt.Fprintf(&sys, "\n\nUse the following sample translation as a style guide:\n\n%s", req.Sample)
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Translate the following text from %s to %s.", source, target)

	if !req.Previous.IsZero() {
		user.WriteString("\n\nPrevious segments for context (original and translation):\n")
		origLines := strings.Split(strings.TrimSpace(req.Previous.Source), ParagraphSeparator)
		transLines := strings.Split(strings.TrimSpace(req.Previous.Translation), ParagraphSeparator)
		n := min(len(origLines), len(transLines))
		for i := 0; i < n; i++ {
			fmt.Fprintf(&user, "\nOriginal: %s\nTranslation: %s\n", origLines[i], transLines[i])
		}
	}

	fmt.Fprintf(&user, "\n\nText to translate:\n\n%s", req.Text)

	return Prompt{System: sys.String(), User: user.String()}
}

// ContextWindow returns the context window assumed for a model name.
func ContextWindow(model string) int {
	if strings.Contains(strings.ToLower(model), "32k") {
		return LargeContextWindow
	}
	return DefaultContextWindow
}

// FitRequest trims req until its prompt fits in budget tokens. The previous
// context goes first, oldest line pair at a time, then the sample. The text
// to translate is never touched; ok is false when even the bare request is
// over budget.
func FitRequest(req TranslateRequest, tok Tokenizer, budget int) (fitted TranslateRequest, ok bool) {
	for {
		if tok.Count(BuildPrompt(req).Text()) <= budget {
			return req, true
		}

		switch {
		case !req.Previous.IsZero():
			req.Previous = dropOldestPair(req.Previous)
		case req.Sample != "":
			req.Sample = ""
		default:
			return req, false
		}
	}
}

func dropOldestPair(c ChunkContext) ChunkContext {
	orig := strings.Split(strings.TrimSpace(c.Source), ParagraphSeparator)
	trans := strings.Split(strings.TrimSpace(c.Translation), ParagraphSeparator)
	if len(orig) <= 1 || len(trans) <= 1 {
		return ChunkContext{}
	}
	return ChunkContext{
		Source:      strings.Join(orig[1:], ParagraphSeparator),
		Translation: strings.Join(trans[1:], ParagraphSeparator),
	}
}

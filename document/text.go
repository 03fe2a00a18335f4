package document

import (
	"bytes"
	"io"
	"strings"

	"github.com/ZaguanLabs/gotdoc"
)

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
)

// TextFormat treats every line of a UTF-8 text file as one paragraph.
type TextFormat struct{}

// NewTextFormat creates a plain text format.
func NewTextFormat() *TextFormat {
	return &TextFormat{}
}

// Name returns "txt".
func (f *TextFormat) Name() string { return "txt" }

// Extensions returns ".txt".
func (f *TextFormat) Extensions() []string { return []string{".txt"} }

// Read splits the input into lines. A final newline does not start an
// extra paragraph and an empty file has no paragraphs.
func (f *TextFormat) Read(r io.Reader) (*gotdoc.Document, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, &gotdoc.DocumentError{Format: f.Name(), Message: "cannot read document", Cause: err}
	}

	text := string(bytes.TrimPrefix(content, utf8BOM))
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return &gotdoc.Document{}, nil
	}

	return &gotdoc.Document{Paragraphs: strings.Split(text, "\n")}, nil
}

// Write writes one paragraph per line. Line breaks inside a paragraph are
// replaced with spaces so the line count stays equal to the paragraph count.
func (f *TextFormat) Write(w io.Writer, doc *gotdoc.Document) error {
	if doc == nil {
		return nil
	}

	var b strings.Builder
	for _, para := range doc.Paragraphs {
		b.WriteString(lineBreaks.Replace(para))
		b.WriteString("\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return &gotdoc.DocumentError{Format: f.Name(), Message: "cannot write document", Cause: err}
	}
	return nil
}

// Verify TextFormat implements Format
var _ Format = (*TextFormat)(nil)

package document

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaguanLabs/gotdoc"
)

func TestTextFormat_Read(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single line no newline", "Hello", []string{"Hello"}},
		{"trailing newline", "Hello\nWorld\n", []string{"Hello", "World"}},
		{"blank lines kept", "Hello\n\nWorld", []string{"Hello", "", "World"}},
		{"crlf", "Hello\r\nWorld\r\n", []string{"Hello", "World"}},
		{"bom", "\xEF\xBB\xBFHello", []string{"Hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewTextFormat().Read(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Paragraphs)
		})
	}
}

func TestTextFormat_Write(t *testing.T) {
	var buf bytes.Buffer
	err := NewTextFormat().Write(&buf, &gotdoc.Document{Paragraphs: []string{"Szia", "", "two\nlines"}})
	require.NoError(t, err)
	assert.Equal(t, "Szia\n\ntwo lines\n", buf.String())
}

func TestTextFormat_RoundTrip(t *testing.T) {
	f := NewTextFormat()
	in := &gotdoc.Document{Paragraphs: []string{"First", "", "Third"}}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf, in))

	out, err := f.Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, in.Paragraphs, out.Paragraphs)
}

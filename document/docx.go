package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/ZaguanLabs/gotdoc"
)

const (
	wordNS           = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	documentPart     = "word/document.xml"
	docxFontName     = "Calibri"
	docxFontHalfPts  = 24 // 12pt
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/><Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/></Types>`
	docxPackageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`
	docxDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/></Relationships>`
)

// DOCXFormat reads and writes WordprocessingML (.docx) documents.
// Only the body-level paragraphs are read; tables, headers and footnotes
// are not part of the paragraph sequence.
type DOCXFormat struct{}

// NewDOCXFormat creates a DOCX format.
func NewDOCXFormat() *DOCXFormat {
	return &DOCXFormat{}
}

// Name returns "docx".
func (f *DOCXFormat) Name() string { return "docx" }

// Extensions returns ".docx".
func (f *DOCXFormat) Extensions() []string { return []string{".docx"} }

// Read extracts the body paragraphs of a .docx file.
func (f *DOCXFormat) Read(r io.Reader) (*gotdoc.Document, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, &gotdoc.DocumentError{Format: f.Name(), Message: "cannot read document", Cause: err}
	}

	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, &gotdoc.DocumentError{Format: f.Name(), Message: "not a zip archive", Cause: err}
	}

	for _, file := range reader.File {
		if file.Name != documentPart {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, &gotdoc.DocumentError{Format: f.Name(), Message: "cannot open " + documentPart, Cause: err}
		}
		defer rc.Close()

		paragraphs, err := parseDocumentXML(rc)
		if err != nil {
			return nil, &gotdoc.DocumentError{Format: f.Name(), Message: "malformed " + documentPart, Cause: err}
		}
		return &gotdoc.Document{Paragraphs: paragraphs}, nil
	}

	return nil, &gotdoc.DocumentError{Format: f.Name(), Message: "missing " + documentPart}
}

// parseDocumentXML streams word/document.xml and returns the text of every
// w:p that is a direct child of w:body. Inside a paragraph w:t contributes
// its text, w:tab a tab and w:br/w:cr a line break.
func parseDocumentXML(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		stack      []string // local names of open w: elements
		paragraphs []string
		current    strings.Builder
		pDepth     int  // open w:p elements
		inText     bool // inside a w:t of the body paragraph
		rootSeen   bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !rootSeen {
				rootSeen = true
				if t.Name.Space != wordNS || t.Name.Local != "document" {
					return nil, errors.New("root element is not w:document")
				}
			}
			if t.Name.Space != wordNS {
				stack = append(stack, "")
				continue
			}

			switch t.Name.Local {
			case "p":
				if pDepth == 0 && len(stack) > 0 && stack[len(stack)-1] == "body" {
					current.Reset()
					pDepth = 1
				} else if pDepth > 0 {
					pDepth++
				}
			case "t":
				inText = pDepth == 1
			case "tab":
				if pDepth == 1 {
					current.WriteString("\t")
				}
			case "br", "cr":
				if pDepth == 1 {
					current.WriteString("\n")
				}
			}
			stack = append(stack, t.Name.Local)

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			name := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			switch name {
			case "t":
				inText = false
			case "p":
				if pDepth == 1 {
					paragraphs = append(paragraphs, current.String())
				}
				if pDepth > 0 {
					pDepth--
				}
			}

		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	if !rootSeen {
		return nil, errors.New("empty document part")
	}
	return paragraphs, nil
}

// Write produces a minimal .docx holding one paragraph per entry of doc,
// set in Calibri 12pt. Blank entries become empty paragraphs. Paragraphs
// are marked right-to-left when doc.Lang is an RTL language.
func (f *DOCXFormat) Write(w io.Writer, doc *gotdoc.Document) error {
	zw := zip.NewWriter(w)

	parts := []struct {
		name    string
		content []byte
	}{
		{"[Content_Types].xml", []byte(docxContentTypes)},
		{"_rels/.rels", []byte(docxPackageRels)},
		{"word/_rels/document.xml.rels", []byte(docxDocumentRels)},
		{"word/styles.xml", []byte(stylesXML())},
		{documentPart, documentXML(doc)},
	}

	for _, part := range parts {
		pw, err := zw.Create(part.name)
		if err != nil {
			return &gotdoc.DocumentError{Format: f.Name(), Message: "cannot add " + part.name, Cause: err}
		}
		if _, err := pw.Write(part.content); err != nil {
			return &gotdoc.DocumentError{Format: f.Name(), Message: "cannot write " + part.name, Cause: err}
		}
	}

	if err := zw.Close(); err != nil {
		return &gotdoc.DocumentError{Format: f.Name(), Message: "cannot finish archive", Cause: err}
	}
	return nil
}

func stylesXML() string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:styles xmlns:w="` + wordNS + `">`)
	b.WriteString(`<w:docDefaults><w:rPrDefault><w:rPr>`)
	b.WriteString(`<w:rFonts w:ascii="` + docxFontName + `" w:hAnsi="` + docxFontName + `" w:eastAsia="` + docxFontName + `" w:cs="` + docxFontName + `"/>`)
	b.WriteString(`<w:sz w:val="` + strconv.Itoa(docxFontHalfPts) + `"/><w:szCs w:val="` + strconv.Itoa(docxFontHalfPts) + `"/>`)
	b.WriteString(`</w:rPr></w:rPrDefault></w:docDefaults>`)
	b.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>`)
	b.WriteString(`</w:styles>`)
	return b.String()
}

func documentXML(doc *gotdoc.Document) []byte {
	rtl := doc != nil && gotdoc.IsRTL(doc.Lang)

	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:document xmlns:w="` + wordNS + `"><w:body>`)

	if doc != nil {
		for _, para := range doc.Paragraphs {
			if para == "" {
				b.WriteString(`<w:p/>`)
				continue
			}

			b.WriteString(`<w:p>`)
			if rtl {
				b.WriteString(`<w:pPr><w:bidi/></w:pPr>`)
			}
			b.WriteString(`<w:r>`)
			if rtl {
				b.WriteString(`<w:rPr><w:rtl/></w:rPr>`)
			}
			writeRunContent(&b, para)
			b.WriteString(`</w:r></w:p>`)
		}
	}

	b.WriteString(`<w:sectPr/></w:body></w:document>`)
	return b.Bytes()
}

// writeRunContent emits text as w:t elements, with tabs and line breaks as
// w:tab and w:br.
func writeRunContent(b *bytes.Buffer, text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	start := 0
	flush := func(end int) {
		if end > start {
			b.WriteString(`<w:t xml:space="preserve">`)
			_ = xml.EscapeText(b, []byte(text[start:end]))
			b.WriteString(`</w:t>`)
		}
	}

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\t':
			flush(i)
			b.WriteString(`<w:tab/>`)
			start = i + 1
		case '\n', '\r':
			flush(i)
			b.WriteString(`<w:br/>`)
			start = i + 1
		}
	}
	flush(len(text))
}

// Verify DOCXFormat implements Format
var _ Format = (*DOCXFormat)(nil)

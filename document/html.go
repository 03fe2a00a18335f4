package document

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ZaguanLabs/gotdoc"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// paragraphTags are the elements that always form a paragraph, even when empty.
var paragraphTags = tagSet("p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "blockquote",
	"td", "th", "dt", "dd", "figcaption", "caption", "pre", "address", "summary", "legend")

// containerTags separate paragraphs but only form one from their own loose text.
var containerTags = tagSet("body", "div", "section", "article", "header", "footer", "main",
	"nav", "aside", "ul", "ol", "dl", "menu", "table", "thead", "tbody", "tfoot", "tr",
	"figure", "form", "fieldset", "details", "dialog", "hgroup", "hr")

// silentTags never contribute text, not even inside a paragraph.
var silentTags = tagSet("script", "style", "template", "noscript", "textarea", "head", "title")

// IgnoredTags contains HTML tags whose content is never translated.
var IgnoredTags = []string{"script", "style", "code", "pre", "textarea", "noscript", "template"}

// HTMLFormat reads the block-level text of an HTML page and writes
// paragraphs back out as a simple HTML document.
type HTMLFormat struct {
	ignored map[string]bool
}

// NewHTMLFormat creates an HTML format skipping IgnoredTags and any element
// marked with data-no-translate.
func NewHTMLFormat() *HTMLFormat {
	return NewHTMLFormatWithIgnoredTags(IgnoredTags)
}

// NewHTMLFormatWithIgnoredTags creates an HTML format with custom ignored tags.
func NewHTMLFormatWithIgnoredTags(tags []string) *HTMLFormat {
	return &HTMLFormat{ignored: tagSet(tags...)}
}

// Name returns "html".
func (f *HTMLFormat) Name() string { return "html" }

// Extensions returns ".html" and ".htm".
func (f *HTMLFormat) Extensions() []string { return []string{".html", ".htm"} }

// Read returns the body text grouped by its nearest block ancestor, in
// document order, with runs of whitespace collapsed to one space. Text an
// outer block holds before, between or after its inner blocks becomes a
// paragraph of its own. Ignored elements are left out, except inline ones
// inside a paragraph, whose text stays in place.
func (f *HTMLFormat) Read(r io.Reader) (*gotdoc.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &gotdoc.DocumentError{Format: f.Name(), Message: "failed to parse HTML", Cause: err}
	}

	out := &gotdoc.Document{}
	if lang, ok := doc.Find("html").Attr("lang"); ok {
		out.Lang = lang
	}

	w := &htmlWalker{format: f}
	for _, body := range doc.Find("body").Nodes {
		w.walk(body)
	}
	w.flush()
	out.Paragraphs = w.paragraphs

	return out, nil
}

type htmlWalker struct {
	format     *HTMLFormat
	paragraphs []string
	buf        strings.Builder
	depth      int // open paragraph elements
}

// flush closes the pending text run, dropping it when it is blank.
func (w *htmlWalker) flush() {
	if text := strings.Join(strings.Fields(w.buf.String()), " "); text != "" {
		w.paragraphs = append(w.paragraphs, text)
	}
	w.buf.Reset()
}

func (w *htmlWalker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.buf.WriteString(n.Data)
		return
	case html.ElementNode:
	default:
		return
	}

	name := strings.ToLower(n.Data)
	block := paragraphTags[name] || containerTags[name]

	switch {
	case silentTags[name]:
		return
	case w.format.skipped(n, name):
		if block || w.depth == 0 {
			if block {
				w.flush()
			}
			return
		}
	case name == "br":
		w.buf.WriteByte(' ')
		return
	}

	if !block {
		w.children(n)
		return
	}

	w.flush()
	if paragraphTags[name] {
		before := len(w.paragraphs)
		w.depth++
		w.children(n)
		w.depth--
		w.flush()
		if len(w.paragraphs) == before && !hasText(n) {
			w.paragraphs = append(w.paragraphs, "")
		}
		return
	}
	w.children(n)
	w.flush()
}

func (w *htmlWalker) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

// skipped reports whether n is an ignored tag or marked data-no-translate.
func (f *HTMLFormat) skipped(n *html.Node, name string) bool {
	if f.ignored[name] {
		return true
	}
	for _, a := range n.Attr {
		if a.Key == "data-no-translate" {
			return true
		}
	}
	return false
}

func hasText(n *html.Node) bool {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data) != ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasText(c) {
			return true
		}
	}
	return false
}

func tagSet(tags ...string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, tag := range tags {
		set[strings.ToLower(strings.TrimSpace(tag))] = true
	}
	return set
}

// Write renders doc as an HTML page with one <p> per paragraph. The html
// element carries the document language and, for RTL languages, dir="rtl".
func (f *HTMLFormat) Write(w io.Writer, doc *gotdoc.Document) error {
	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	htmlEl := element(atom.Html)
	if doc != nil && doc.Lang != "" {
		if tag := gotdoc.LanguageTag(doc.Lang); tag != "" {
			htmlEl.Attr = append(htmlEl.Attr, html.Attribute{Key: "lang", Val: tag})
		}
		htmlEl.Attr = append(htmlEl.Attr, html.Attribute{Key: "dir", Val: gotdoc.GetDirection(doc.Lang)})
	}
	root.AppendChild(htmlEl)

	head := element(atom.Head)
	meta := element(atom.Meta)
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)
	htmlEl.AppendChild(head)

	body := element(atom.Body)
	htmlEl.AppendChild(body)

	if doc != nil {
		for _, para := range doc.Paragraphs {
			p := element(atom.P)
			if para != "" {
				p.AppendChild(&html.Node{Type: html.TextNode, Data: para})
			}
			body.AppendChild(p)
			body.AppendChild(&html.Node{Type: html.TextNode, Data: "\n"})
		}
	}

	if err := html.Render(w, root); err != nil {
		return &gotdoc.DocumentError{Format: f.Name(), Message: "failed to serialize HTML", Cause: err}
	}
	return nil
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

// Verify HTMLFormat implements Format
var _ Format = (*HTMLFormat)(nil)

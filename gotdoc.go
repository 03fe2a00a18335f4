// Package gotdoc provides an AI-powered document translation engine.
//
// Gotdoc translates the paragraphs of a document with an LLM completion
// provider. Paragraphs are grouped into chunks under a token ceiling, and
// each chunk is sent together with the previous chunk and its translation
// so terminology and tone carry across chunk boundaries. An optional sample
// translation can be included in every prompt as a style guide.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/gotdoc"
//	    "github.com/ZaguanLabs/gotdoc/document"
//	    "github.com/ZaguanLabs/gotdoc/provider"
//	    "github.com/ZaguanLabs/gotdoc/tokenizer"
//	)
//
//	func main() {
//	    tok, _ := tokenizer.NewTiktoken("gpt-4")
//	    p := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey:    os.Getenv("OPENAI_API_KEY"),
//	        Tokenizer: tok,
//	    })
//
//	    t := gotdoc.NewTranslator("English", "Hungarian", p,
//	        gotdoc.WithTokenizer(tok),
//	        gotdoc.WithMaxTokens(2048),
//	    )
//
//	    formats := document.DefaultRegistry()
//	    doc, err := formats.ReadFile("input.docx")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    result, err := t.Translate(context.Background(), doc)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if err := formats.WriteFile("output.docx", result.Document); err != nil {
//	        log.Fatal(err)
//	    }
//	}
package gotdoc

package content

import (
	"strings"

	"golang.org/x/net/html"
)

// htmlToText projects rendered HTML back to plain text using the standard
// tokenizer. Paragraph ends become blank lines and <br> becomes a newline,
// so the bilingual splitter sees the same blank-line structure it expects
// from plain-text documents.
func htmlToText(markup string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	var textBuilder strings.Builder

	for {
		tokenType := tokenizer.Next()

		switch tokenType {
		case html.ErrorToken:
			return strings.TrimSpace(textBuilder.String())

		case html.StartTagToken, html.SelfClosingTagToken:
			if tokenizer.Token().Data == "br" {
				textBuilder.WriteString("\n")
			}

		case html.EndTagToken:
			if tokenizer.Token().Data == "p" {
				textBuilder.WriteString("\n\n")
			}

		case html.TextToken:
			textBuilder.WriteString(tokenizer.Token().Data)
		}
	}
}

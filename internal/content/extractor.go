package content

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/monsterbox/backend/internal/models"
)

// Placeholder markup served when a document cannot be located or decoded.
const (
	PlaceholderVi = "<p>Nội dung không có sẵn</p>"
	PlaceholderEn = "<p>Content unavailable</p>"

	// Used when the document exists but has no English section.
	placeholderEnMissing = "<p>English content unavailable</p>"
)

var (
	// English section marker: a line starting with "Article:" after at
	// least two blank lines.
	englishSectionRe = regexp.MustCompile(`\n\s*\n\s*\n\s*Article:\s*.+\n`)
	englishLineRe    = regexp.MustCompile(`(?m)^Article:\s`)

	// Body markers. The corpus was authored inconsistently, so each
	// section gets three chances before the whole section is taken as
	// the body.
	viBodyRe    = regexp.MustCompile(`(?i)\n\s*Bài viết:\s*\n`)
	enBodyRe    = regexp.MustCompile(`(?i)\n\s*Content:\s*\n`)
	descRe      = regexp.MustCompile(`(?i)\n\s*Description:\s*\n`)
	refsRe      = regexp.MustCompile(`\n\s*\[\d+\]\s`)
	paragraphRe = regexp.MustCompile(`\n\s*\n`)
)

// Extractor turns located source files into bilingual article content.
type Extractor struct {
	log *logrus.Entry
}

func NewExtractor(log *logrus.Entry) *Extractor {
	return &Extractor{log: log}
}

// Placeholder is the degraded content pair used when no source document is
// available for an article.
func Placeholder() models.BilingualContent {
	return models.BilingualContent{
		ContentVi: PlaceholderVi,
		ContentEn: PlaceholderEn,
	}
}

// Extract reads one source document and produces its bilingual content. A
// file starting with the zip magic is decoded as a .docx container; anything
// else is treated as raw UTF-8 text using the same marker conventions.
//
// Extract returns an error only when the file itself cannot be read.
// Malformed content degrades to placeholder values instead, so a single bad
// document never aborts a warm-up batch.
func (e *Extractor) Extract(path string) (models.BilingualContent, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return models.BilingualContent{}, fmt.Errorf("read document %s: %w", path, err)
	}

	text := string(raw)
	if isContainer(raw) {
		markup, err := decodeContainer(raw)
		if err != nil {
			e.log.WithError(err).Warnf("Failed to decode container: %s", path)
			return Placeholder(), nil
		}
		text = htmlToText(markup)
	}

	return splitBilingual(text), nil
}

// splitBilingual locates the boundary between the Vietnamese and English
// sections, extracts the body of each, and renders both to HTML.
func splitBilingual(fullText string) models.BilingualContent {
	viSection := strings.TrimSpace(fullText)
	enSection := ""

	if loc := englishSectionRe.FindStringIndex(fullText); loc != nil {
		viSection = strings.TrimSpace(fullText[:loc[0]])
		enSection = strings.TrimSpace(fullText[loc[0]:])
	} else if loc := englishLineRe.FindStringIndex(fullText); loc != nil && loc[0] > 0 {
		viSection = strings.TrimSpace(fullText[:loc[0]])
		enSection = strings.TrimSpace(fullText[loc[0]:])
	}

	textVi := extractBody(viSection, true)
	textEn := extractBody(enSection, false)

	contentEn := placeholderEnMissing
	if enSection != "" {
		contentEn = textToHTML(textEn)
	}

	return models.BilingualContent{
		ContentVi: textToHTML(textVi),
		ContentEn: contentEn,
		TextVi:    textVi,
		TextEn:    textEn,
	}
}

// extractBody takes the article body out of one language section. The body
// starts after "Bài viết:" (Vietnamese) or "Content:" (English); documents
// missing those markers fall back to "Description:", then to the whole
// section. An empty English section stays empty.
func extractBody(section string, vietnamese bool) string {
	if section == "" {
		return ""
	}

	marker := enBodyRe
	if vietnamese {
		marker = viBodyRe
	}

	if loc := marker.FindStringIndex(section); loc != nil {
		body := strings.TrimSpace(section[loc[1]:])
		if vietnamese {
			body = stripReferences(body)
		}
		return body
	}

	if loc := descRe.FindStringIndex(section); loc != nil {
		return strings.TrimSpace(section[loc[1]:])
	}

	return section
}

// stripReferences drops a trailing bracketed reference list ("[1] ...").
func stripReferences(body string) string {
	if loc := refsRe.FindStringIndex(body); loc != nil && loc[0] > 0 {
		return strings.TrimSpace(body[:loc[0]])
	}
	return body
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}

// textToHTML renders body text as escaped paragraph tags: blank lines are
// paragraph boundaries, inner newlines become line breaks.
func textToHTML(text string) string {
	if text == "" {
		return ""
	}

	var paragraphs []string
	for _, p := range paragraphRe.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paragraphs = append(paragraphs, "<p>"+strings.ReplaceAll(escapeHTML(p), "\n", "<br>")+"</p>")
	}
	return strings.Join(paragraphs, "\n")
}

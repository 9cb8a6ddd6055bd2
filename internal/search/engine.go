package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/monsterbox/backend/internal/catalog"
	"github.com/monsterbox/backend/internal/models"
	"github.com/monsterbox/backend/internal/vntext"
)

// Fixed per-field scoring weights.
const (
	titleWeight = 10
	tagWeight   = 5
	bodyWeight  = 1

	minQueryLength = 2
	snippetRadius  = 50
	maxHighlights  = 3
)

// Result is the ranked outcome of one search call. Total counts every
// scored candidate, not just the returned page.
type Result struct {
	Results    []*models.ArticleMetadata `json:"results"`
	Highlights map[string][]string       `json:"highlights"`
	Total      int                       `json:"total"`
}

// Engine scores and ranks catalog candidates for reader queries. It only
// reads the catalog, which is immutable once warmed.
type Engine struct {
	catalog *catalog.Catalog
	log     *logrus.Entry
}

func NewEngine(cat *catalog.Catalog, log *logrus.Entry) *Engine {
	return &Engine{catalog: cat, log: log}
}

type scoredArticle struct {
	meta       *models.ArticleMetadata
	score      int
	highlights []string
}

// Search runs one query against the warmed catalog. Queries shorter than two
// characters return an empty result rather than an error.
func (e *Engine) Search(query, lang string, limit int) Result {
	out := Result{
		Results:    []*models.ArticleMetadata{},
		Highlights: make(map[string][]string),
	}

	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < minQueryLength {
		return out
	}

	var terms []string
	for _, term := range vntext.Tokenize(trimmed) {
		if utf8.RuneCountInString(term) > 1 {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return out
	}

	var ranked []scoredArticle
	for _, slug := range e.catalog.Candidates(terms) {
		cached, ok := e.catalog.Article(slug)
		if !ok {
			continue
		}
		if scored, ok := scoreArticle(cached, terms, lang); ok {
			ranked = append(ranked, scored)
		}
	}

	// Stable: equal scores keep candidate encounter order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	e.log.WithFields(logrus.Fields{
		"query":   trimmed,
		"lang":    lang,
		"matches": len(ranked),
	}).Debug("Search completed")

	out.Total = len(ranked)
	top := ranked
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	for _, r := range top {
		out.Results = append(out.Results, r.meta)
		out.Highlights[r.meta.Slug] = r.highlights
	}
	return out
}

// scoreArticle sums the per-field weights over all query terms and collects
// highlight snippets. Candidates that score zero are discarded; substring
// candidate retrieval over-fetches and this is the filter.
func scoreArticle(cached *models.CachedArticle, terms []string, lang string) (scoredArticle, bool) {
	meta := cached.Metadata

	title := meta.TitleVi
	body := cached.Content.TextVi
	if lang == "en" {
		title = meta.TitleEn
		body = cached.Content.TextEn
	}

	foldedTitle := vntext.Fold(strings.ToLower(title))
	bodyRunes := []rune(body)
	foldedBody := foldLower(body)

	score := 0
	var highlights []string

	for _, term := range terms {
		if strings.Contains(foldedTitle, term) {
			score += titleWeight
			highlights = append(highlights, title)
		}
	}

	for _, term := range terms {
		if idx := strings.Index(foldedBody, term); idx >= 0 {
			score += bodyWeight
			runeIdx := utf8.RuneCountInString(foldedBody[:idx])
			highlights = append(highlights, snippet(bodyRunes, runeIdx, utf8.RuneCountInString(term)))
		}
	}

	for _, tag := range meta.Tags {
		foldedTag := vntext.Fold(strings.ToLower(tag))
		for _, term := range terms {
			if strings.Contains(foldedTag, term) {
				score += tagWeight
			}
		}
	}

	if score == 0 {
		return scoredArticle{}, false
	}
	if len(highlights) > maxHighlights {
		highlights = highlights[:maxHighlights]
	}
	return scoredArticle{meta: meta, score: score, highlights: highlights}, true
}

// foldLower folds rune-by-rune so match offsets stay aligned with the
// original text.
func foldLower(s string) string {
	folded := vntext.FoldRunes(s)
	for i, r := range folded {
		folded[i] = unicode.ToLower(r)
	}
	return string(folded)
}

// snippet extracts a window of the original body text around a matched term,
// wrapped in ellipsis markers.
func snippet(body []rune, runeIdx, termLen int) string {
	start := runeIdx - snippetRadius
	if start < 0 {
		start = 0
	}
	end := runeIdx + termLen + snippetRadius
	if end > len(body) {
		end = len(body)
	}
	if start > end {
		start = end
	}
	return "..." + string(body[start:end]) + "..."
}

package catalog

import (
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/monsterbox/backend/internal/content"
	"github.com/monsterbox/backend/internal/models"
	"github.com/monsterbox/backend/internal/vntext"
)

// Locator resolves slugs to source document paths.
type Locator interface {
	Find(slug, altTitle string) (string, bool)
}

// Extractor is the slice of the content layer the warm-up loop drives.
type Extractor interface {
	Extract(path string) (models.BilingualContent, error)
}

// Catalog owns the per-article content cache and the inverted search index.
// Both are populated during WarmUp and read-only for the rest of the process
// lifetime; a changed source file requires a restart.
type Catalog struct {
	mu       sync.Mutex
	articles map[string]*models.CachedArticle
	index    map[string]map[string]struct{}

	// Sorted snapshots built once warm-up finishes, so candidate
	// retrieval iterates tokens and posting lists in a fixed order.
	tokens   []string
	postings map[string][]string

	log *logrus.Entry
}

func New(log *logrus.Entry) *Catalog {
	return &Catalog{
		articles: make(map[string]*models.CachedArticle),
		index:    make(map[string]map[string]struct{}),
		postings: make(map[string][]string),
		log:      log,
	}
}

// WarmUp extracts and indexes every article in the worklist. The worklist is
// processed in fixed-size batches: extractions within a batch run
// concurrently and the next batch starts only after the whole batch has
// resolved. Batch size bounds peak concurrency, nothing more — the final
// cache and index are the same for any batch size.
func (c *Catalog) WarmUp(worklist []*models.ArticleMetadata, loc Locator, ext Extractor, batchSize int) {
	if batchSize < 1 {
		batchSize = 1
	}

	total := len(worklist)
	c.log.Infof("Warming up cache for %d articles...", total)

	processed := 0
	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		batch := worklist[start:end]

		var wg sync.WaitGroup
		for _, meta := range batch {
			wg.Add(1)
			go func(meta *models.ArticleMetadata) {
				defer wg.Done()
				c.cacheArticle(meta, loc, ext)
			}(meta)
		}
		wg.Wait()

		processed += len(batch)
		c.log.Infof("Cache progress: %d/%d", processed, total)
	}

	c.finalize()
	c.log.Infof("Cache warm-up complete. %d articles cached, %d search terms indexed.",
		len(c.articles), len(c.tokens))
}

// cacheArticle resolves, extracts, and indexes a single article. A missing
// source document degrades to placeholder content and still produces a cache
// entry; an extraction error drops the article from both cache and index.
func (c *Catalog) cacheArticle(meta *models.ArticleMetadata, loc Locator, ext Extractor) {
	var doc models.BilingualContent

	if path, ok := loc.Find(meta.Slug, meta.TitleVi); ok {
		extracted, err := ext.Extract(path)
		if err != nil {
			c.log.WithError(err).Warnf("Failed to cache article %s", meta.Slug)
			return
		}
		doc = extracted
	} else {
		c.log.Warnf("File not found for slug: %s", meta.Slug)
		doc = content.Placeholder()
	}

	cached := &models.CachedArticle{
		Slug:     meta.Slug,
		Content:  doc,
		Metadata: meta,
	}
	tokens := indexTokens(meta, doc)

	// One article's tokens merge in a single critical section, after its
	// extraction has fully completed.
	c.mu.Lock()
	defer c.mu.Unlock()

	c.articles[meta.Slug] = cached
	for _, token := range tokens {
		set, ok := c.index[token]
		if !ok {
			set = make(map[string]struct{})
			c.index[token] = set
		}
		set[meta.Slug] = struct{}{}
	}
}

// indexTokens builds the de-duplicated token set for one article from its
// metadata fields and extracted body text.
func indexTokens(meta *models.ArticleMetadata, doc models.BilingualContent) []string {
	searchable := strings.Join([]string{
		meta.TitleVi,
		meta.TitleEn,
		meta.Genres,
		strings.Join(meta.Tags, " "),
		strings.Join(meta.Creators, " "),
		doc.TextVi,
		doc.TextEn,
	}, " ")

	seen := make(map[string]struct{})
	var tokens []string
	for _, token := range vntext.Tokenize(searchable) {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	return tokens
}

// finalize snapshots the index into sorted slices once all writers are done.
func (c *Catalog) finalize() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tokens = make([]string, 0, len(c.index))
	for token, set := range c.index {
		c.tokens = append(c.tokens, token)

		slugs := make([]string, 0, len(set))
		for slug := range set {
			slugs = append(slugs, slug)
		}
		sort.Strings(slugs)
		c.postings[token] = slugs
	}
	sort.Strings(c.tokens)
}

// Article looks up one warmed cache entry.
func (c *Catalog) Article(slug string) (*models.CachedArticle, bool) {
	cached, ok := c.articles[slug]
	return cached, ok
}

// Size returns the number of cached articles.
func (c *Catalog) Size() int {
	return len(c.articles)
}

// TermCount returns the number of distinct indexed tokens.
func (c *Catalog) TermCount() int {
	return len(c.tokens)
}

// Postings returns the slugs indexed under an exact token.
func (c *Catalog) Postings(token string) []string {
	return c.postings[token]
}

// Candidates returns the slugs whose indexed tokens match any of the query
// terms, exactly or by substring in either direction. Candidates come back
// in deterministic first-encounter order: exact hits for a term first, then
// substring hits in sorted token order.
func (c *Catalog) Candidates(terms []string) []string {
	seen := make(map[string]struct{})
	var order []string

	add := func(slugs []string) {
		for _, slug := range slugs {
			if _, dup := seen[slug]; dup {
				continue
			}
			seen[slug] = struct{}{}
			order = append(order, slug)
		}
	}

	for _, term := range terms {
		add(c.postings[term])

		for _, token := range c.tokens {
			if token == term {
				continue
			}
			if strings.Contains(token, term) || strings.Contains(term, token) {
				add(c.postings[token])
			}
		}
	}

	return order
}

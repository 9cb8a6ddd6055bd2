package metadata

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/monsterbox/backend/internal/models"
	"github.com/monsterbox/backend/internal/vntext"
)

// Column layout of the metadata workbook, after the header row.
const (
	colSlug = iota
	colTitleVi
	colTitleEn
	colGenres
	colTags
	colCreators
	colPage
	colDifficulty
	colLength
	colCreatedAt
	colCrawlStatus
)

// Store holds the article metadata loaded from the .xlsx workbook. It is the
// read-only worklist driving cache warm-up.
type Store struct {
	bySlug map[string]*models.ArticleMetadata
	all    []*models.ArticleMetadata
	log    *logrus.Entry
}

func NewStore(log *logrus.Entry) *Store {
	return &Store{
		bySlug: make(map[string]*models.ArticleMetadata),
		log:    log,
	}
}

// LoadFile reads every row of the first worksheet into the store. Rows with
// neither a slug nor a Vietnamese title are skipped.
func (s *Store) LoadFile(path string) error {
	s.log.Infof("Loading metadata from: %s", path)

	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("no worksheet found in %s", path)
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return fmt.Errorf("read worksheet: %w", err)
	}

	loaded, skipped := 0, 0
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		meta, ok := parseRow(row)
		if !ok {
			skipped++
			continue
		}
		s.bySlug[meta.Slug] = meta
		s.all = append(s.all, meta)
		loaded++
	}

	s.log.Infof("Loaded %d articles, skipped %d rows", loaded, skipped)
	return nil
}

// Get returns the metadata stored under the exact slug.
func (s *Store) Get(slug string) (*models.ArticleMetadata, bool) {
	meta, ok := s.bySlug[slug]
	return meta, ok
}

// Match finds metadata whose slug equals or contains the requested slug.
func (s *Store) Match(slug string) (*models.ArticleMetadata, bool) {
	if meta, ok := s.bySlug[slug]; ok {
		return meta, true
	}
	for _, meta := range s.all {
		if strings.Contains(meta.Slug, slug) {
			return meta, true
		}
	}
	return nil, false
}

// All returns the full worklist in workbook order.
func (s *Store) All() []*models.ArticleMetadata {
	return s.all
}

// Size returns the number of loaded articles.
func (s *Store) Size() int {
	return len(s.all)
}

func parseRow(row []string) (*models.ArticleMetadata, bool) {
	rawSlug := cell(row, colSlug)
	titleVi := cell(row, colTitleVi)
	if rawSlug == "" && titleVi == "" {
		return nil, false
	}

	return &models.ArticleMetadata{
		Slug:            slugKey(rawSlug, titleVi),
		TitleVi:         titleVi,
		TitleEn:         cell(row, colTitleEn),
		Genres:          cell(row, colGenres),
		Tags:            parseList(cell(row, colTags)),
		Creators:        parseList(cell(row, colCreators)),
		Page:            parseInt(cell(row, colPage)),
		DifficultyLevel: cell(row, colDifficulty),
		Length:          parseInt(cell(row, colLength)),
		CreatedAt:       parseDate(cell(row, colCreatedAt)),
		CrawlStatus:     cell(row, colCrawlStatus),
	}, true
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// parseList accepts both "['a', 'b']" style cells and plain comma-separated
// values.
func parseList(value string) []string {
	if value == "" || value == "[]" || value == "nan" {
		return nil
	}
	cleaned := strings.NewReplacer("[", "", "]", "", "'", "", `"`, "").Replace(value)

	var out []string
	for _, part := range strings.Split(cleaned, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseInt(value string) int {
	if value == "" {
		return 0
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return int(n)
	}
	return 0
}

// slugKey derives the article key: the last path segment of the source URL,
// falling back to a slug built from the Vietnamese title.
func slugKey(rawSlug, titleVi string) string {
	if rawSlug != "" {
		trimmed := strings.TrimRight(rawSlug, "/")
		if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
			trimmed = trimmed[idx+1:]
		}
		if trimmed != "" {
			return trimmed
		}
	}
	return vntext.NormalizeName(titleVi)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01-02-06",
	"1/2/2006",
	"01/02/2006",
}

// parseDate handles both formatted date cells and raw Excel serial numbers.
func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		// Excel serial dates count days from 1899-12-30; 25569 is the
		// offset to the Unix epoch.
		return time.Unix(int64((serial-25569)*86400), 0).UTC()
	}
	return time.Time{}
}

// ListQuery narrows and orders the article listing.
type ListQuery struct {
	Genre      string
	Tags       []string
	Creators   []string
	Difficulty string
	Lang       string
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

// ListResult is one page of the article listing.
type ListResult struct {
	Articles []*models.ArticleMetadata `json:"articles"`
	Total    int                       `json:"total"`
	Page     int                       `json:"page"`
	HasMore  bool                      `json:"hasMore"`
}

// List filters, sorts, and paginates the catalog metadata.
func (s *Store) List(q ListQuery) ListResult {
	articles := make([]*models.ArticleMetadata, 0, len(s.all))
	for _, meta := range s.all {
		if q.Genre != "" && meta.Genres != q.Genre {
			continue
		}
		if len(q.Tags) > 0 && !anyMatch(q.Tags, meta.Tags) {
			continue
		}
		if len(q.Creators) > 0 && !anyMatch(q.Creators, meta.Creators) {
			continue
		}
		if q.Difficulty != "" && meta.DifficultyLevel != q.Difficulty {
			continue
		}
		articles = append(articles, meta)
	}

	sortArticles(articles, q.SortBy, q.SortOrder, q.Lang)

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = len(articles)
	}

	total := len(articles)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return ListResult{
		Articles: articles[start:end],
		Total:    total,
		Page:     page,
		HasMore:  end < total,
	}
}

func anyMatch(wanted, have []string) bool {
	for _, w := range wanted {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}

func sortArticles(articles []*models.ArticleMetadata, sortBy, sortOrder, lang string) {
	asc := sortOrder == "asc"

	less := func(a, b *models.ArticleMetadata) bool {
		switch sortBy {
		case "length":
			return a.Length < b.Length
		case "title":
			return vntext.Fold(title(a, lang)) < vntext.Fold(title(b, lang))
		default: // date
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}

	sort.SliceStable(articles, func(i, j int) bool {
		if asc {
			return less(articles[i], articles[j])
		}
		return less(articles[j], articles[i])
	})
}

func title(meta *models.ArticleMetadata, lang string) string {
	if lang == "en" && meta.TitleEn != "" {
		return meta.TitleEn
	}
	return meta.TitleVi
}

// FieldCounts aggregates the distinct values of one metadata field, ordered
// by how many articles carry each value.
func (s *Store) FieldCounts(field string) ([]string, map[string]int, error) {
	switch field {
	case "genres", "tags", "creators", "difficultyLevels":
	default:
		return nil, nil, fmt.Errorf("unknown metadata field: %s", field)
	}

	counts := make(map[string]int)
	for _, meta := range s.all {
		switch field {
		case "genres":
			if meta.Genres != "" {
				counts[meta.Genres]++
			}
		case "tags":
			for _, tag := range meta.Tags {
				counts[tag]++
			}
		case "creators":
			for _, creator := range meta.Creators {
				counts[creator]++
			}
		case "difficultyLevels":
			if meta.DifficultyLevel != "" {
				counts[meta.DifficultyLevel]++
			}
		}
	}

	values := make([]string, 0, len(counts))
	for value := range counts {
		values = append(values, value)
	}
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})

	return values, counts, nil
}

// Stats summarizes the corpus for the stats endpoint.
type Stats struct {
	TotalArticles int            `json:"totalArticles"`
	ByGenre       map[string]int `json:"byGenre"`
	ByCreator     map[string]int `json:"byCreator"`
	AvgLength     int            `json:"avgLength"`
}

func (s *Store) Stats() Stats {
	stats := Stats{
		TotalArticles: len(s.all),
		ByGenre:       make(map[string]int),
		ByCreator:     make(map[string]int),
	}

	totalLength := 0
	for _, meta := range s.all {
		if meta.Genres != "" {
			stats.ByGenre[meta.Genres]++
		}
		for _, creator := range meta.Creators {
			stats.ByCreator[creator]++
		}
		totalLength += meta.Length
	}

	if len(s.all) > 0 {
		stats.AvgLength = totalLength / len(s.all)
	}
	return stats
}

package models

import "time"

// ArticleMetadata is one row of the metadata workbook.
type ArticleMetadata struct {
	Slug            string    `json:"slug"`
	TitleVi         string    `json:"titleVi"`
	TitleEn         string    `json:"titleEn"`
	Genres          string    `json:"genres"`
	Tags            []string  `json:"tags"`
	Creators        []string  `json:"creators"`
	Page            int       `json:"page"`
	DifficultyLevel string    `json:"difficultyLevel"`
	CrawlStatus     string    `json:"crawlStatus"`
	Length          int       `json:"length"`
	CreatedAt       time.Time `json:"createdAt"`
}

// BilingualContent holds both renditions of one article: rendered HTML and
// the plain text it was rendered from, per language. The English pair falls
// back to a fixed placeholder when the source document has no English
// section, so callers never see a missing value.
type BilingualContent struct {
	ContentVi string `json:"contentVi"`
	ContentEn string `json:"contentEn"`
	TextVi    string `json:"textVi"`
	TextEn    string `json:"textEn"`
}

// CachedArticle is one fully warmed catalog entry. It is written once during
// warm-up and never mutated afterwards.
type CachedArticle struct {
	Slug     string
	Content  BilingualContent
	Metadata *ArticleMetadata
}

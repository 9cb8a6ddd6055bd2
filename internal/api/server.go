package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/monsterbox/backend/internal/catalog"
	"github.com/monsterbox/backend/internal/config"
	"github.com/monsterbox/backend/internal/metadata"
	"github.com/monsterbox/backend/internal/models"
	"github.com/monsterbox/backend/internal/search"
)

type Server struct {
	Catalog  *catalog.Catalog
	Metadata *metadata.Store
	Search   *search.Engine
	Config   *config.Config
	Logger   *logrus.Entry
	Router   chi.Router
}

func NewServer(cat *catalog.Catalog, meta *metadata.Store, eng *search.Engine, cfg *config.Config, logger *logrus.Entry) *Server {
	s := &Server{
		Catalog:  cat,
		Metadata: meta,
		Search:   eng,
		Config:   cfg,
		Logger:   logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/articles", s.handleListArticles)
		r.Get("/articles/{slug}", s.handleGetArticle)
		r.Get("/metadata", s.handleMetadata)
		r.Get("/metadata/stats", s.handleStats)
		r.Get("/search", s.handleSearch)
	})

	s.Router = r
}

// Responses
type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status         string `json:"status"`
	CachedArticles int    `json:"cachedArticles"`
}

type ArticleDetailResponse struct {
	Article   *models.ArticleMetadata `json:"article"`
	ContentVi string                  `json:"contentVi"`
	ContentEn string                  `json:"contentEn"`
}

type MetadataResponse struct {
	Values []string       `json:"values"`
	Counts map[string]int `json:"counts"`
}

// Handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, HealthResponse{
		Status:         "ok",
		CachedArticles: s.Catalog.Size(),
	})
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	result := s.Metadata.List(metadata.ListQuery{
		Genre:      strings.TrimSpace(q.Get("genre")),
		Tags:       parseCSV(q.Get("tags")),
		Creators:   parseCSV(q.Get("creators")),
		Difficulty: strings.TrimSpace(q.Get("difficulty")),
		Lang:       parseLang(q.Get("lang")),
		SortBy:     q.Get("sortBy"),
		SortOrder:  q.Get("sortOrder"),
		Page:       parsePositiveInt(q.Get("page"), 1),
		Limit:      parsePositiveInt(q.Get("limit"), s.Config.Search.DefaultLimit),
	})

	jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	cached, ok := s.Catalog.Article(slug)
	if !ok {
		// The slug may be a fragment of the real key; retry through the
		// metadata store before giving up.
		meta, found := s.Metadata.Match(slug)
		if !found {
			jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: "Article not found"})
			return
		}
		cached, ok = s.Catalog.Article(meta.Slug)
		if !ok {
			jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: "Article content not found"})
			return
		}
	}

	jsonResponse(w, http.StatusOK, ArticleDetailResponse{
		Article:   cached.Metadata,
		ContentVi: cached.Content.ContentVi,
		ContentEn: cached.Content.ContentEn,
	})
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	field := r.URL.Query().Get("field")

	values, counts, err := s.Metadata.FieldCounts(field)
	if err != nil {
		s.Logger.WithError(err).Debugf("Rejected metadata request for field %q", field)
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{
			Error: "Field must be one of: genres, tags, creators, difficultyLevels",
		})
		return
	}

	jsonResponse(w, http.StatusOK, MetadataResponse{Values: values, Counts: counts})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, s.Metadata.Stats())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Query 'q' is required"})
		return
	}

	lang := parseLang(r.URL.Query().Get("lang"))

	limit := parsePositiveInt(r.URL.Query().Get("limit"), s.Config.Search.DefaultLimit)
	if limit > s.Config.Search.MaxLimit {
		limit = s.Config.Search.MaxLimit
	}

	jsonResponse(w, http.StatusOK, s.Search.Search(query, lang, limit))
}

func parseLang(raw string) string {
	if raw == "en" {
		return "en"
	}
	return "vi"
}

func parsePositiveInt(raw string, fallback int) int {
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return n
	}
	return fallback
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func jsonResponse(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

package catalog_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/monsterbox/backend/internal/catalog"
	"github.com/monsterbox/backend/internal/content"
	"github.com/monsterbox/backend/internal/models"
)

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.ErrorLevel)
	return logger.WithField("service", "test")
}

// Mocks

type MockLocator struct {
	mock.Mock
}

func (m *MockLocator) Find(slug, altTitle string) (string, bool) {
	args := m.Called(slug, altTitle)
	return args.String(0), args.Bool(1)
}

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(path string) (models.BilingualContent, error) {
	args := m.Called(path)
	return args.Get(0).(models.BilingualContent), args.Error(1)
}

func metaFor(slug, titleVi string) *models.ArticleMetadata {
	return &models.ArticleMetadata{
		Slug:    slug,
		TitleVi: titleVi,
		Tags:    []string{"văn hóa"},
	}
}

func contentFor(body string) models.BilingualContent {
	return models.BilingualContent{
		ContentVi: "<p>" + body + "</p>",
		ContentEn: "<p>English content unavailable</p>",
		TextVi:    body,
	}
}

func TestWarmUpCachesAndIndexes(t *testing.T) {
	loc := new(MockLocator)
	ext := new(MockExtractor)

	meta := metaFor("con-meo", "Con Mèo")
	loc.On("Find", "con-meo", "Con Mèo").Return("/data/con-meo.docx", true)
	ext.On("Extract", "/data/con-meo.docx").Return(contentFor("Thân bài về mèo."), nil)

	cat := catalog.New(testLogger())
	cat.WarmUp([]*models.ArticleMetadata{meta}, loc, ext, 2)

	assert.Equal(t, 1, cat.Size())

	cached, ok := cat.Article("con-meo")
	require.True(t, ok)
	assert.Equal(t, "Thân bài về mèo.", cached.Content.TextVi)

	// Title, tag, and body tokens all land in the index, diacritics folded.
	assert.Equal(t, []string{"con-meo"}, cat.Postings("meo"))
	assert.Equal(t, []string{"con-meo"}, cat.Postings("van"))
	assert.Equal(t, []string{"con-meo"}, cat.Postings("than"))
}

func TestWarmUpDropsFailedExtraction(t *testing.T) {
	loc := new(MockLocator)
	ext := new(MockExtractor)

	worklist := make([]*models.ArticleMetadata, 0, 5)
	for i := 1; i <= 5; i++ {
		slug := fmt.Sprintf("bai-%d", i)
		worklist = append(worklist, metaFor(slug, fmt.Sprintf("Bài %d", i)))
		path := "/data/" + slug + ".docx"
		loc.On("Find", slug, mock.Anything).Return(path, true)
		if i == 3 {
			ext.On("Extract", path).Return(models.BilingualContent{}, fmt.Errorf("permission denied"))
		} else {
			ext.On("Extract", path).Return(contentFor("nội dung"), nil)
		}
	}

	cat := catalog.New(testLogger())
	cat.WarmUp(worklist, loc, ext, 2)

	// Article 3 is dropped from the cache entirely...
	assert.Equal(t, 4, cat.Size())
	_, ok := cat.Article("bai-3")
	assert.False(t, ok)

	// ...and contributes no tokens to the index.
	for _, slug := range cat.Postings("bai") {
		assert.NotEqual(t, "bai-3", slug)
	}
	assert.Len(t, cat.Postings("bai"), 4)
}

func TestWarmUpMissingFileGetsPlaceholder(t *testing.T) {
	loc := new(MockLocator)
	ext := new(MockExtractor)

	meta := metaFor("khong-co-file", "Không Có File")
	loc.On("Find", "khong-co-file", "Không Có File").Return("", false)

	cat := catalog.New(testLogger())
	cat.WarmUp([]*models.ArticleMetadata{meta}, loc, ext, 1)

	// A lookup miss still produces a cache entry, with placeholder
	// content and metadata-only index tokens.
	cached, ok := cat.Article("khong-co-file")
	require.True(t, ok)
	assert.Equal(t, content.PlaceholderVi, cached.Content.ContentVi)
	assert.Equal(t, content.PlaceholderEn, cached.Content.ContentEn)
	assert.Equal(t, "", cached.Content.TextVi)

	assert.Equal(t, []string{"khong-co-file"}, cat.Postings("file"))
	ext.AssertNotCalled(t, "Extract", mock.Anything)
}

func TestIndexCacheCoherence(t *testing.T) {
	loc := new(MockLocator)
	ext := new(MockExtractor)

	worklist := []*models.ArticleMetadata{
		metaFor("mot", "Bài Một"),
		metaFor("hai", "Bài Hai"),
		metaFor("ba", "Bài Ba"),
	}
	for _, meta := range worklist {
		path := "/data/" + meta.Slug + ".docx"
		loc.On("Find", meta.Slug, mock.Anything).Return(path, true)
		ext.On("Extract", path).Return(contentFor("thân bài"), nil)
	}

	cat := catalog.New(testLogger())
	cat.WarmUp(worklist, loc, ext, 10)

	// Every slug reachable through the index must be cached.
	for _, term := range []string{"bai", "mot", "hai", "ba", "than"} {
		for _, slug := range cat.Postings(term) {
			_, ok := cat.Article(slug)
			assert.True(t, ok, "indexed slug %q missing from cache", slug)
		}
	}
}

func TestCandidatesDeterministicOrder(t *testing.T) {
	loc := new(MockLocator)
	ext := new(MockExtractor)

	worklist := []*models.ArticleMetadata{
		metaFor("zz-cuoi", "Mèo Rừng"),
		metaFor("aa-dau", "Mèo Nhà"),
	}
	for _, meta := range worklist {
		path := "/data/" + meta.Slug + ".docx"
		loc.On("Find", meta.Slug, mock.Anything).Return(path, true)
		ext.On("Extract", path).Return(contentFor("nội dung"), nil)
	}

	cat := catalog.New(testLogger())
	cat.WarmUp(worklist, loc, ext, 2)

	first := cat.Candidates([]string{"meo"})
	require.Len(t, first, 2)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, cat.Candidates([]string{"meo"}))
	}
	// Posting lists are sorted, so the order is known, not just stable.
	assert.Equal(t, []string{"aa-dau", "zz-cuoi"}, first)
}

func TestCandidatesSubstringRetrieval(t *testing.T) {
	loc := new(MockLocator)
	ext := new(MockExtractor)

	meta := metaFor("sau-rieng", "Sầu Riêng")
	loc.On("Find", "sau-rieng", mock.Anything).Return("/data/sau-rieng.docx", true)
	ext.On("Extract", "/data/sau-rieng.docx").Return(contentFor("trái cây nhiệt đới"), nil)

	cat := catalog.New(testLogger())
	cat.WarmUp([]*models.ArticleMetadata{meta}, loc, ext, 1)

	// "rien" is a substring of the indexed token "rieng".
	assert.Equal(t, []string{"sau-rieng"}, cat.Candidates([]string{"rien"}))
	// "nhietdoi" contains the indexed token "nhiet".
	assert.Equal(t, []string{"sau-rieng"}, cat.Candidates([]string{"nhietdoi"}))
	// Unrelated terms retrieve nothing.
	assert.Empty(t, cat.Candidates([]string{"xyzzy"}))
}

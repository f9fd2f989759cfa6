// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librum/internal/core/book"
	"github.com/taibuivan/librum/internal/platform/apperr"
	"github.com/taibuivan/librum/pkg/document"
)

// # Test Doubles

type fakeBookDirectory struct {
	books map[string]*book.Book
}

func (directory *fakeBookDirectory) FindBySlug(_ context.Context, slug string) (*book.Book, error) {
	if found, ok := directory.books[slug]; ok {
		return found, nil
	}
	return nil, apperr.NotFound("book")
}

// fakeChapterRepo keeps chapters in memory and records every structural
// call so tests can assert on what was (or was not) written.
type fakeChapterRepo struct {
	chapters []*Chapter

	reorders  [][]IndexAssignment
	renumbers int
	merges    []*MergePlan
}

func (repo *fakeChapterRepo) ListByBook(_ context.Context, bookID string) ([]*Chapter, error) {
	var matched []*Chapter
	for _, chapter := range repo.chapters {
		if chapter.BookID == bookID {
			matched = append(matched, chapter)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Index != matched[j].Index {
			return matched[i].Index < matched[j].Index
		}
		return matched[i].ID < matched[j].ID
	})
	return matched, nil
}

func (repo *fakeChapterRepo) FindBySlug(_ context.Context, bookID, slug string) (*Chapter, error) {
	for _, chapter := range repo.chapters {
		if chapter.BookID == bookID && chapter.Slug == slug {
			return chapter, nil
		}
	}
	return nil, apperr.NotFound("chapter")
}

func (repo *fakeChapterRepo) Create(_ context.Context, chapter *Chapter) error {
	next := 0
	for _, existing := range repo.chapters {
		if existing.BookID == chapter.BookID && existing.Index > next {
			next = existing.Index
		}
	}
	chapter.Index = next + 1
	repo.chapters = append(repo.chapters, chapter)
	return nil
}

func (repo *fakeChapterRepo) Update(_ context.Context, _ *Chapter) error {
	return nil
}

func (repo *fakeChapterRepo) Delete(_ context.Context, bookID, id string) error {
	for position, chapter := range repo.chapters {
		if chapter.BookID == bookID && chapter.ID == id {
			repo.chapters = append(repo.chapters[:position], repo.chapters[position+1:]...)
			return nil
		}
	}
	return apperr.NotFound("chapter")
}

func (repo *fakeChapterRepo) Reorder(_ context.Context, _ string, writes []IndexAssignment) error {
	repo.reorders = append(repo.reorders, writes)
	return nil
}

func (repo *fakeChapterRepo) Renumber(_ context.Context, _ string) error {
	repo.renumbers++
	return nil
}

func (repo *fakeChapterRepo) ApplyMerge(_ context.Context, plan *MergePlan) error {
	repo.merges = append(repo.merges, plan)

	consumed := map[string]bool{}
	for _, source := range plan.Sources {
		consumed[source.ChapterID] = true
	}

	var survivors []*Chapter
	for _, chapter := range repo.chapters {
		if chapter.BookID == plan.BookID && consumed[chapter.ID] {
			continue
		}
		if chapter.ID == plan.TargetID {
			chapter.Title = plan.Title
			chapter.Slug = plan.Slug
			chapter.Content = plan.Content
			chapter.FirstPage = plan.FirstPage
			chapter.LastPage = plan.LastPage
		}
		survivors = append(survivors, chapter)
	}
	repo.chapters = survivors
	return nil
}

// # Fixture

func newTestService(repo *fakeChapterRepo) *Service {
	books := &fakeBookDirectory{
		books: map[string]*book.Book{
			"moby-dick": {ID: "book-1", Slug: "moby-dick", Title: "Moby Dick"},
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, books, nil, logger)
}

func seedChapters() *fakeChapterRepo {
	return &fakeChapterRepo{
		chapters: []*Chapter{
			{ID: "ch-a", BookID: "book-1", Slug: "loomings", Title: "Loomings", Index: 1, Content: textDoc("Hello ")},
			{ID: "ch-b", BookID: "book-1", Slug: "the-carpet-bag", Title: "The Carpet-Bag", Index: 2, Content: textDoc("World")},
			{ID: "ch-c", BookID: "book-1", Slug: "the-spouter-inn", Title: "The Spouter-Inn", Index: 3, Content: textDoc("Inn")},
		},
	}
}

// # Merge

func TestServiceMergeRequiresTwoSources(t *testing.T) {
	tests := []struct {
		name    string
		sources []string
	}{
		{name: "single source", sources: []string{"loomings"}},
		{name: "duplicates collapse to one", sources: []string{"loomings", "loomings"}},
		{name: "empty", sources: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := seedChapters()
			service := newTestService(repo)

			_, err := service.Merge(context.Background(), "moby-dick", MergeInput{SourceSlugs: tt.sources})

			require.Error(t, err)
			assert.Equal(t, "need at least 2 chapters", err.Error())
			assert.Empty(t, repo.merges)
			assert.Len(t, repo.chapters, 3)
		})
	}
}

func TestServiceMergeMissingSlugs(t *testing.T) {
	repo := seedChapters()
	service := newTestService(repo)

	_, err := service.Merge(context.Background(), "moby-dick", MergeInput{
		SourceSlugs: []string{"loomings", "ghost", "phantom"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
	assert.Contains(t, err.Error(), "phantom")
	assert.Empty(t, repo.merges)
}

func TestServiceMergeAutoTargetAndOffsets(t *testing.T) {
	repo := seedChapters()
	service := newTestService(repo)

	// Sources listed out of order; the lowest index must win the target slot.
	result, err := service.Merge(context.Background(), "moby-dick", MergeInput{
		SourceSlugs: []string{"the-carpet-bag", "loomings"},
	})

	require.NoError(t, err)
	assert.Equal(t, "loomings", result.TargetSlug)
	assert.Nil(t, result.Preview)

	require.Len(t, repo.merges, 1)
	plan := repo.merges[0]
	assert.Equal(t, "ch-a", plan.TargetID)
	assert.Equal(t, 11, plan.PlainLength)
	require.Len(t, plan.Sources, 1)
	assert.Equal(t, "ch-b", plan.Sources[0].ChapterID)
	assert.Equal(t, 6, plan.Sources[0].StartOffset)

	// The absorbed chapter is gone; the untouched one survives.
	assert.Len(t, repo.chapters, 2)
	_, err = repo.FindBySlug(context.Background(), "book-1", "the-carpet-bag")
	assert.Error(t, err)
	_, err = repo.FindBySlug(context.Background(), "book-1", "the-spouter-inn")
	assert.NoError(t, err)
}

func TestServiceMergeExplicitTarget(t *testing.T) {
	repo := seedChapters()
	service := newTestService(repo)

	result, err := service.Merge(context.Background(), "moby-dick", MergeInput{
		SourceSlugs: []string{"loomings", "the-carpet-bag"},
		TargetSlug:  "the-carpet-bag",
	})

	require.NoError(t, err)
	assert.Equal(t, "the-carpet-bag", result.TargetSlug)

	require.Len(t, repo.merges, 1)
	plan := repo.merges[0]
	assert.Equal(t, "ch-b", plan.TargetID)
	require.Len(t, plan.Sources, 1)
	// "Hello " opens the merged document, so it starts at offset zero even
	// though the surviving row is the second chapter.
	assert.Equal(t, "ch-a", plan.Sources[0].ChapterID)
	assert.Equal(t, 0, plan.Sources[0].StartOffset)
}

func TestServiceMergeUnknownExplicitTarget(t *testing.T) {
	repo := seedChapters()
	service := newTestService(repo)

	_, err := service.Merge(context.Background(), "moby-dick", MergeInput{
		SourceSlugs: []string{"loomings", "the-carpet-bag"},
		TargetSlug:  "ghost",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
	assert.Empty(t, repo.merges)
}

func TestServiceMergePreviewWritesNothing(t *testing.T) {
	repo := seedChapters()
	service := newTestService(repo)

	result, err := service.Merge(context.Background(), "moby-dick", MergeInput{
		SourceSlugs: []string{"loomings", "the-carpet-bag"},
		NewTitle:    "Combined",
		Preview:     true,
	})

	require.NoError(t, err)
	require.NotNil(t, result.Preview)
	assert.Equal(t, "loomings", result.Preview.TargetSlug)
	assert.Equal(t, "Combined", result.Preview.NewTitle)
	assert.Equal(t, 11, result.Preview.LengthPlain)

	// Nothing may have been applied.
	assert.Empty(t, repo.merges)
	assert.Len(t, repo.chapters, 3)
	for _, chapter := range repo.chapters {
		assert.NotEqual(t, "Combined", chapter.Title)
	}
}

func TestServiceMergeSlugifiesNewSlug(t *testing.T) {
	repo := seedChapters()
	service := newTestService(repo)

	result, err := service.Merge(context.Background(), "moby-dick", MergeInput{
		SourceSlugs: []string{"loomings", "the-carpet-bag"},
		NewSlug:     "Ishmael's Opening!",
	})

	require.NoError(t, err)
	assert.Equal(t, "ishmaels-opening", result.TargetSlug)
}

// # Reorder

func TestServiceReorderMapsSlugsToIDs(t *testing.T) {
	repo := seedChapters()
	service := newTestService(repo)

	one, two := 1, 2
	err := service.Reorder(context.Background(), "moby-dick", []OrderPair{
		{Slug: "the-spouter-inn", Index: &one},
		{Slug: "loomings", Index: &two},
	})

	require.NoError(t, err)
	require.Len(t, repo.reorders, 1)
	assert.Equal(t, []IndexAssignment{
		{ChapterID: "ch-c", Index: 1},
		{ChapterID: "ch-a", Index: 2},
	}, repo.reorders[0])
}

func TestServiceReorderRejectsBadInput(t *testing.T) {
	zero := 0
	one := 1

	tests := []struct {
		name    string
		pairs   []OrderPair
		message string
	}{
		{
			name:    "empty order",
			pairs:   nil,
			message: "order must be a non-empty array",
		},
		{
			name:    "null index",
			pairs:   []OrderPair{{Slug: "loomings", Index: nil}},
			message: "positive integer",
		},
		{
			name:    "zero index",
			pairs:   []OrderPair{{Slug: "loomings", Index: &zero}},
			message: "positive integer",
		},
		{
			name:    "missing slug",
			pairs:   []OrderPair{{Slug: "ghost", Index: &one}},
			message: "chapters not found: ghost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := seedChapters()
			service := newTestService(repo)

			err := service.Reorder(context.Background(), "moby-dick", tt.pairs)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.Empty(t, repo.reorders)
		})
	}
}

func TestServiceRenumber(t *testing.T) {
	repo := seedChapters()
	service := newTestService(repo)

	require.NoError(t, service.Renumber(context.Background(), "moby-dick"))
	assert.Equal(t, 1, repo.renumbers)
}

// # Lifecycle

func TestServiceCreateChapterDefaults(t *testing.T) {
	repo := seedChapters()
	service := newTestService(repo)

	chapter := &Chapter{Title: "The Counterpane"}
	err := service.CreateChapter(context.Background(), "moby-dick", chapter)

	require.NoError(t, err)
	assert.Equal(t, "the-counterpane", chapter.Slug)
	assert.Equal(t, 4, chapter.Index)
	assert.NotEmpty(t, chapter.ID)
	assert.Equal(t, document.Empty(), chapter.Content)
}

func TestServiceCreateChapterValidation(t *testing.T) {
	repo := seedChapters()
	service := newTestService(repo)

	err := service.CreateChapter(context.Background(), "moby-dick", &Chapter{Title: ""})

	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	assert.Len(t, repo.chapters, 3)
}

func TestServiceGetChapterHydratesParagraphCount(t *testing.T) {
	repo := seedChapters()
	service := newTestService(repo)

	chapter, err := service.GetChapter(context.Background(), "moby-dick", "loomings")

	require.NoError(t, err)
	assert.Equal(t, 1, chapter.ParagraphCount)
}

func TestServiceUnknownBook(t *testing.T) {
	repo := seedChapters()
	service := newTestService(repo)

	_, err := service.ListChapters(context.Background(), "no-such-book")

	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/librum/internal/platform/apperr"
	"github.com/taibuivan/librum/internal/platform/validate"
	"github.com/taibuivan/librum/pkg/document"
	"github.com/taibuivan/librum/pkg/slug"
	"github.com/taibuivan/librum/pkg/uuid"
)

// # Service Layer

// Service orchestrates the chapter ordering and merge engine.
type Service struct {
	chapterRepo Repository
	books       BookDirectory
	listCache   ListCache
	logger      *slog.Logger
}

// NewService constructs a new chapter [Service].
//
// The list cache may be nil, in which case every list goes to storage.
func NewService(chapterRepo Repository, books BookDirectory, listCache ListCache, logger *slog.Logger) *Service {
	return &Service{
		chapterRepo: chapterRepo,
		books:       books,
		listCache:   listCache,
		logger:      logger,
	}
}

// # Read Operations

/*
ListChapters returns a book's chapters ordered by index.

Description: Served from the per-book cache when warm; every structural
mutation invalidates the entry.

Parameters:
  - context: context.Context
  - bookSlug: string

Returns:
  - []*Chapter: Ordered roster, bodies omitted
  - error: apperr.NotFound when the book is absent
*/
func (service *Service) ListChapters(context context.Context, bookSlug string) ([]*Chapter, error) {
	owner, err := service.books.FindBySlug(context, bookSlug)
	if err != nil {
		return nil, err
	}

	if service.listCache != nil {
		if chapters, hit := service.listCache.Get(context, owner.ID); hit {
			return chapters, nil
		}
	}

	chapters, err := service.chapterRepo.ListByBook(context, owner.ID)
	if err != nil {
		return nil, err
	}

	if service.listCache != nil {
		service.listCache.Set(context, owner.ID, chapters)
	}

	return chapters, nil
}

/*
GetChapter returns one chapter of a book, body included.

Parameters:
  - context: context.Context
  - bookSlug: string
  - chapterSlug: string

Returns:
  - *Chapter: The hydrated entity
  - error: apperr.NotFound when the book or chapter is absent
*/
func (service *Service) GetChapter(context context.Context, bookSlug, chapterSlug string) (*Chapter, error) {
	owner, err := service.books.FindBySlug(context, bookSlug)
	if err != nil {
		return nil, err
	}

	chapter, err := service.chapterRepo.FindBySlug(context, owner.ID, chapterSlug)
	if err != nil {
		return nil, err
	}

	chapter.ParagraphCount = document.BlockCount(chapter.Content)
	return chapter, nil
}

/*
ResolveChapterID maps public book and chapter slugs to the chapter's id.

Description: Used by the highlight domain to anchor annotations without
pulling the full chapter body.

Parameters:
  - context: context.Context
  - bookSlug: string
  - chapterSlug: string

Returns:
  - string: The chapter's UUID
  - error: apperr.NotFound when the book or chapter is absent
*/
func (service *Service) ResolveChapterID(context context.Context, bookSlug, chapterSlug string) (string, error) {
	owner, err := service.books.FindBySlug(context, bookSlug)
	if err != nil {
		return "", err
	}

	chapter, err := service.chapterRepo.FindBySlug(context, owner.ID, chapterSlug)
	if err != nil {
		return "", err
	}

	return chapter.ID, nil
}

// # Lifecycle Operations

/*
CreateChapter appends a new chapter to the end of a book's ordering.

Description: Derives the slug from the title when absent and starts the
chapter with an empty document. The index is assigned in storage under the
book lock.

Parameters:
  - context: context.Context
  - bookSlug: string
  - chapter: *Chapter (Title required; Slug, pages optional)

Returns:
  - error: Validation or persistence errors
*/
func (service *Service) CreateChapter(context context.Context, bookSlug string, chapter *Chapter) error {
	owner, err := service.books.FindBySlug(context, bookSlug)
	if err != nil {
		return err
	}

	chapter.BookID = owner.ID
	if chapter.ID == "" {
		chapter.ID = uuid.New()
	}
	if chapter.Slug == "" {
		chapter.Slug = slug.From(chapter.Title)
	}
	if chapter.Content == nil {
		chapter.Content = document.Empty()
	}

	validator := &validate.Validator{}
	validator.Required("title", chapter.Title)
	validator.MaxLen("title", chapter.Title, 300)
	validator.Slug("slug", chapter.Slug)
	if chapter.FirstPage != nil {
		validator.Positive("first_page", *chapter.FirstPage)
	}
	if chapter.LastPage != nil {
		validator.Positive("last_page", *chapter.LastPage)
		if chapter.FirstPage != nil {
			validator.Custom("last_page", *chapter.LastPage < *chapter.FirstPage, "Must not precede first_page")
		}
	}

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.chapterRepo.Create(context, chapter); err != nil {
		return err
	}

	service.invalidateList(context, owner.ID)
	service.logger.Info("chapter_created",
		slog.String("book_id", owner.ID),
		slog.String("chapter_id", chapter.ID),
		slog.Int("index", chapter.Index),
	)

	return nil
}

// UpdateInput carries the optional fields of a chapter edit. Nil fields are
// left untouched.
type UpdateInput struct {
	Title     *string
	Slug      *string
	FirstPage *int
	LastPage  *int
	Content   map[string]any
}

/*
UpdateChapter rewrites a chapter's editable fields.

Description: The ordering index is never touched here; it belongs to the
reorder, renumber, and merge paths exclusively.

Parameters:
  - context: context.Context
  - bookSlug: string
  - chapterSlug: string
  - input: UpdateInput

Returns:
  - *Chapter: The updated entity
  - error: Validation or persistence errors
*/
func (service *Service) UpdateChapter(context context.Context, bookSlug, chapterSlug string, input UpdateInput) (*Chapter, error) {
	owner, err := service.books.FindBySlug(context, bookSlug)
	if err != nil {
		return nil, err
	}

	chapter, err := service.chapterRepo.FindBySlug(context, owner.ID, chapterSlug)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		chapter.Title = *input.Title
	}
	if input.Slug != nil {
		chapter.Slug = slug.From(*input.Slug)
	}
	if input.FirstPage != nil {
		chapter.FirstPage = input.FirstPage
	}
	if input.LastPage != nil {
		chapter.LastPage = input.LastPage
	}
	if input.Content != nil {
		chapter.Content = input.Content
	}

	validator := &validate.Validator{}
	validator.Required("title", chapter.Title)
	validator.MaxLen("title", chapter.Title, 300)
	validator.Slug("slug", chapter.Slug)
	if chapter.FirstPage != nil && chapter.LastPage != nil {
		validator.Custom("last_page", *chapter.LastPage < *chapter.FirstPage, "Must not precede first_page")
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.chapterRepo.Update(context, chapter); err != nil {
		return nil, err
	}

	service.invalidateList(context, owner.ID)
	service.logger.Info("chapter_updated",
		slog.String("book_id", owner.ID),
		slog.String("chapter_id", chapter.ID),
	)

	return chapter, nil
}

/*
DeleteChapter removes a chapter and closes the gap in the ordering.

Parameters:
  - context: context.Context
  - bookSlug: string
  - chapterSlug: string

Returns:
  - error: apperr.NotFound if absent, persistence failures
*/
func (service *Service) DeleteChapter(context context.Context, bookSlug, chapterSlug string) error {
	owner, err := service.books.FindBySlug(context, bookSlug)
	if err != nil {
		return err
	}

	chapter, err := service.chapterRepo.FindBySlug(context, owner.ID, chapterSlug)
	if err != nil {
		return err
	}

	if err := service.chapterRepo.Delete(context, owner.ID, chapter.ID); err != nil {
		return err
	}

	service.invalidateList(context, owner.ID)
	service.logger.Info("chapter_deleted",
		slog.String("book_id", owner.ID),
		slog.String("chapter_id", chapter.ID),
	)

	return nil
}

// # Structural Operations

// OrderPair is one entry of a reorder request: a chapter slug and its
// desired index. The index is a pointer so an absent or null value can be
// told apart from zero and rejected.
type OrderPair struct {
	Slug  string `json:"slug"`
	Index *int   `json:"index"`
}

/*
Reorder applies a client-supplied ordering to a book's chapters.

Description: Pairs may cover any subset of the book; chapters left out are
pushed past every explicitly assigned index by the two-phase bump and keep
their relative order. Desired indices need not be contiguous. Density is not
restored; a later renumber (or merge) compacts the sequence.

Parameters:
  - context: context.Context
  - bookSlug: string
  - pairs: []OrderPair

Returns:
  - error: apperr.Unprocessable on missing slugs or invalid indices,
    apperr.Conflict on lock contention
*/
func (service *Service) Reorder(context context.Context, bookSlug string, pairs []OrderPair) error {
	owner, err := service.books.FindBySlug(context, bookSlug)
	if err != nil {
		return err
	}

	if len(pairs) == 0 {
		return apperr.Unprocessable("order must be a non-empty array")
	}

	chapters, err := service.chapterRepo.ListByBook(context, owner.ID)
	if err != nil {
		return err
	}

	idBySlug := make(map[string]string, len(chapters))
	for _, chapter := range chapters {
		idBySlug[chapter.Slug] = chapter.ID
	}

	var (
		writes  []IndexAssignment
		missing []string
	)
	for _, pair := range pairs {
		if pair.Index == nil || *pair.Index < 1 {
			return apperr.Unprocessable(fmt.Sprintf("invalid index for chapter %q: must be a positive integer", pair.Slug))
		}

		chapterID, exists := idBySlug[pair.Slug]
		if !exists {
			missing = append(missing, pair.Slug)
			continue
		}
		writes = append(writes, IndexAssignment{ChapterID: chapterID, Index: *pair.Index})
	}
	if len(missing) > 0 {
		return apperr.Unprocessable("chapters not found: " + strings.Join(missing, ", "))
	}

	if err := service.chapterRepo.Reorder(context, owner.ID, writes); err != nil {
		return err
	}

	service.invalidateList(context, owner.ID)
	service.logger.Info("chapters_reordered",
		slog.String("book_id", owner.ID),
		slog.Int("pairs", len(writes)),
	)

	return nil
}

/*
Renumber restores the dense 1..N ordering of a book's chapters.

Parameters:
  - context: context.Context
  - bookSlug: string

Returns:
  - error: apperr.Conflict on lock contention, storage failures
*/
func (service *Service) Renumber(context context.Context, bookSlug string) error {
	owner, err := service.books.FindBySlug(context, bookSlug)
	if err != nil {
		return err
	}

	if err := service.chapterRepo.Renumber(context, owner.ID); err != nil {
		return err
	}

	service.invalidateList(context, owner.ID)
	service.logger.Info("chapters_renumbered",
		slog.String("book_id", owner.ID),
	)

	return nil
}

// # Merge

// MergeInput carries a merge request.
type MergeInput struct {
	SourceSlugs []string
	TargetSlug  string
	NewTitle    string
	NewSlug     string
	Preview     bool
}

// MergePreview is the computed outcome of a merge that was not applied.
type MergePreview struct {
	TargetSlug  string `json:"target_slug"`
	NewTitle    string `json:"new_title"`
	NewSlug     string `json:"new_slug"`
	FirstPage   *int   `json:"first_page"`
	LastPage    *int   `json:"last_page"`
	LengthPlain int    `json:"length_plain"`
}

// MergeResult reports a merge outcome: either the surviving chapter's slug
// or, in preview mode, the computed payload.
type MergeResult struct {
	TargetSlug string
	Preview    *MergePreview
}

/*
Merge combines two or more chapters into one surviving target.

Description: Resolves and validates the participants, computes the merge
plan (merged document, page range, per-source starting offsets), then either
returns the plan as a preview without touching storage, or applies it
atomically: highlights migrate to the target with their offsets corrected,
source rows are deleted, the target is rewritten, and the ordering is
renumbered. A merge is not idempotent; repeating one fails because the
source slugs no longer exist.

Parameters:
  - context: context.Context
  - bookSlug: string
  - input: MergeInput

Returns:
  - *MergeResult: The surviving slug, or the preview payload
  - error: apperr.Unprocessable on bad participants, apperr.Conflict on
    lock contention or mid-merge races
*/
func (service *Service) Merge(context context.Context, bookSlug string, input MergeInput) (*MergeResult, error) {
	owner, err := service.books.FindBySlug(context, bookSlug)
	if err != nil {
		return nil, err
	}

	// Normalize to a unique slug set, preserving request order.
	seen := make(map[string]bool, len(input.SourceSlugs))
	var sourceSlugs []string
	for _, sourceSlug := range input.SourceSlugs {
		if sourceSlug == "" || seen[sourceSlug] {
			continue
		}
		seen[sourceSlug] = true
		sourceSlugs = append(sourceSlugs, sourceSlug)
	}
	if len(sourceSlugs) < 2 {
		return nil, apperr.Unprocessable("need at least 2 chapters")
	}

	var (
		sources []*Chapter
		missing []string
	)
	for _, sourceSlug := range sourceSlugs {
		source, err := service.chapterRepo.FindBySlug(context, owner.ID, sourceSlug)
		if err != nil {
			if apperr.IsNotFound(err) {
				missing = append(missing, sourceSlug)
				continue
			}
			return nil, err
		}
		sources = append(sources, source)
	}
	if len(missing) > 0 {
		return nil, apperr.Unprocessable("chapters not found: " + strings.Join(missing, ", "))
	}

	// Deterministic target selection: explicit slug wins, else the source
	// with the lowest index, tie-broken by lowest id.
	var target *Chapter
	if input.TargetSlug != "" {
		for _, source := range sources {
			if source.Slug == input.TargetSlug {
				target = source
				break
			}
		}
		if target == nil {
			target, err = service.chapterRepo.FindBySlug(context, owner.ID, input.TargetSlug)
			if err != nil {
				if apperr.IsNotFound(err) {
					return nil, apperr.Unprocessable("target chapter not found: " + input.TargetSlug)
				}
				return nil, err
			}
		}
	} else {
		target = pickMergeTarget(sources)
	}

	mergeSources := make([]*Chapter, 0, len(sources))
	for _, source := range sources {
		if source.ID != target.ID {
			mergeSources = append(mergeSources, source)
		}
	}
	if len(mergeSources) == 0 {
		return nil, apperr.Unprocessable("nothing to merge into target")
	}

	newSlug := ""
	if input.NewSlug != "" {
		newSlug = slug.From(input.NewSlug)
	}

	plan := buildMergePlan(owner.ID, target, mergeSources, input.NewTitle, newSlug)

	if input.Preview {
		return &MergeResult{
			Preview: &MergePreview{
				TargetSlug:  target.Slug,
				NewTitle:    plan.Title,
				NewSlug:     plan.Slug,
				FirstPage:   plan.FirstPage,
				LastPage:    plan.LastPage,
				LengthPlain: plan.PlainLength,
			},
		}, nil
	}

	if err := service.chapterRepo.ApplyMerge(context, plan); err != nil {
		return nil, err
	}

	service.invalidateList(context, owner.ID)
	service.logger.Info("chapters_merged",
		slog.String("book_id", owner.ID),
		slog.String("target_id", target.ID),
		slog.Int("absorbed", len(mergeSources)),
		slog.Int("length_plain", plan.PlainLength),
	)

	return &MergeResult{TargetSlug: plan.Slug}, nil
}

// invalidateList drops the cached roster for a book after any mutation.
func (service *Service) invalidateList(context context.Context, bookID string) {
	if service.listCache != nil {
		service.listCache.Invalidate(context, bookID)
	}
}

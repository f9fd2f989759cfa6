// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package highlight

import (
	"context"
	"log/slog"

	"github.com/taibuivan/librum/internal/platform/apperr"
	"github.com/taibuivan/librum/internal/platform/validate"
	"github.com/taibuivan/librum/pkg/uuid"
)

var allowedStyles = []string{"yellow", "green", "blue", "pink"}

// ChapterDirectory resolves a chapter's id from its public book and chapter
// slugs. Satisfied by the chapter package's service.
type ChapterDirectory interface {
	ResolveChapterID(context context.Context, bookSlug, chapterSlug string) (string, error)
}

// # Service Layer

// Service orchestrates the business logic for reader annotations.
type Service struct {
	highlightRepo Repository
	chapters      ChapterDirectory
	logger        *slog.Logger
}

// NewService constructs a new highlight [Service].
func NewService(highlightRepo Repository, chapters ChapterDirectory, logger *slog.Logger) *Service {
	return &Service{
		highlightRepo: highlightRepo,
		chapters:      chapters,
		logger:        logger,
	}
}

// # Annotation Operations

/*
ListHighlights returns the caller's annotations on a chapter.

Parameters:
  - context: context.Context
  - userID: string (UUID)
  - bookSlug: string
  - chapterSlug: string

Returns:
  - []*Highlight: Oldest first
  - error: apperr.NotFound when the book or chapter is absent
*/
func (service *Service) ListHighlights(context context.Context, userID, bookSlug, chapterSlug string) ([]*Highlight, error) {
	chapterID, err := service.chapters.ResolveChapterID(context, bookSlug, chapterSlug)
	if err != nil {
		return nil, err
	}
	return service.highlightRepo.ListByChapter(context, userID, chapterID)
}

/*
CreateHighlight records a new annotation for the caller.

Description: The selector is accepted as-is; malformed selectors are
tolerated on read, not rejected on write, so older clients keep working.

Parameters:
  - context: context.Context
  - bookSlug: string
  - chapterSlug: string
  - highlight: *Highlight (UserID required; ChapterID is resolved)

Returns:
  - error: Validation or persistence errors
*/
func (service *Service) CreateHighlight(context context.Context, bookSlug, chapterSlug string, highlight *Highlight) error {
	chapterID, err := service.chapters.ResolveChapterID(context, bookSlug, chapterSlug)
	if err != nil {
		return err
	}
	highlight.ChapterID = chapterID

	if highlight.ID == "" {
		highlight.ID = uuid.New()
	}
	if highlight.Style == "" {
		highlight.Style = "yellow"
	}
	if highlight.Selector == nil {
		highlight.Selector = map[string]any{}
	}

	validator := &validate.Validator{}
	validator.UUID("chapter_id", highlight.ChapterID)
	validator.OneOf("style", highlight.Style, allowedStyles)
	validator.MaxLen("note", highlight.Note, 2000)

	// Position anchors must describe a non-empty span.
	if position, ok := highlight.Selector["position"].(map[string]any); ok {
		if positionType, _ := position["type"].(string); positionType == SelectorTypePosition {
			start := asInt(position["start"])
			end := asInt(position["end"])
			validator.Custom("selector", end <= start, "position end must exceed start")
		}
	}

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.highlightRepo.Create(context, highlight); err != nil {
		return err
	}

	service.logger.Info("highlight_created",
		slog.String("highlight_id", highlight.ID),
		slog.String("chapter_id", highlight.ChapterID),
	)

	return nil
}

/*
DeleteHighlight removes one of the caller's annotations.

Parameters:
  - context: context.Context
  - userID: string (the caller, for ownership enforcement)
  - id: string (UUID)

Returns:
  - error: apperr.NotFound if absent, apperr.Forbidden if owned by another user
*/
func (service *Service) DeleteHighlight(context context.Context, userID, id string) error {
	highlight, err := service.highlightRepo.FindByID(context, id)
	if err != nil {
		return err
	}

	if highlight.UserID != userID {
		return apperr.Forbidden("highlight belongs to another reader")
	}

	if err := service.highlightRepo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Info("highlight_deleted",
		slog.String("highlight_id", id),
	)

	return nil
}

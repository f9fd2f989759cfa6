// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taibuivan/librum/internal/platform/middleware"
	requestutil "github.com/taibuivan/librum/internal/platform/request"
	"github.com/taibuivan/librum/internal/platform/respond"
	"github.com/taibuivan/librum/internal/platform/sec"
)

// # Handler Implementation

// Handler implements the HTTP layer for the chapter engine.
type Handler struct {
	service *Service
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches chapter endpoints to the root API router.
//
// Reads are public; every mutation requires the Editor role.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Route("/books/{bookSlug}/chapters", func(chapters chi.Router) {
		chapters.Get("/", handler.ListChapters)
		chapters.Get("/{chapterSlug}", handler.GetChapter)

		chapters.Group(func(editor chi.Router) {
			editor.Use(middleware.RequireRole(sec.RoleEditor))
			editor.Post("/", handler.CreateChapter)
			editor.Patch("/{chapterSlug}", handler.UpdateChapter)
			editor.Delete("/{chapterSlug}", handler.DeleteChapter)
			editor.Post("/reorder", handler.Reorder)
			editor.Post("/renumber", handler.Renumber)
			editor.Post("/merge", handler.Merge)
		})
	})
}

// # Reads

/*
GET /api/v1/books/{bookSlug}/chapters.

Description: Returns the book's chapters ordered by index, with paragraph
counts but without bodies.

Response:
  - 200: []Chapter
  - 404: ErrNotFound: Book not found
*/
func (handler *Handler) ListChapters(writer http.ResponseWriter, request *http.Request) {
	bookSlug := requestutil.Param(request, "bookSlug")

	chapters, err := handler.service.ListChapters(request.Context(), bookSlug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapters)
}

/*
GET /api/v1/books/{bookSlug}/chapters/{chapterSlug}.

Description: Returns one chapter with its full document body.

Response:
  - 200: Chapter
  - 404: ErrNotFound: Book or chapter not found
*/
func (handler *Handler) GetChapter(writer http.ResponseWriter, request *http.Request) {
	bookSlug := requestutil.Param(request, "bookSlug")
	chapterSlug := requestutil.Param(request, "chapterSlug")

	chapter, err := handler.service.GetChapter(request.Context(), bookSlug, chapterSlug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapter)
}

// # Lifecycle

// chapterPayload is the inbound JSON shape shared by create and update.
type chapterPayload struct {
	Title     *string        `json:"title"`
	Slug      *string        `json:"slug"`
	FirstPage *int           `json:"first_page"`
	LastPage  *int           `json:"last_page"`
	Content   map[string]any `json:"content"`
}

// chapterEnvelope wraps the payload under a "chapter" key.
type chapterEnvelope struct {
	Chapter chapterPayload `json:"chapter"`
}

/*
POST /api/v1/books/{bookSlug}/chapters.

Description: Creates a chapter at the end of the book's ordering with an
empty document body.

Request:
  - body: {"chapter": {"title", "slug"?, "first_page"?, "last_page"?}}

Response:
  - 201: Chapter
  - 400: ErrInvalidJSON/Validation: Invalid payload
  - 409: ErrConflict: Slug already taken in this book
*/
func (handler *Handler) CreateChapter(writer http.ResponseWriter, request *http.Request) {
	var input chapterEnvelope
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapterDto := &Chapter{
		FirstPage: input.Chapter.FirstPage,
		LastPage:  input.Chapter.LastPage,
	}
	if input.Chapter.Title != nil {
		chapterDto.Title = *input.Chapter.Title
	}
	if input.Chapter.Slug != nil {
		chapterDto.Slug = *input.Chapter.Slug
	}

	bookSlug := requestutil.Param(request, "bookSlug")
	if err := handler.service.CreateChapter(request.Context(), bookSlug, chapterDto); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, chapterDto)
}

/*
PATCH /api/v1/books/{bookSlug}/chapters/{chapterSlug}.

Description: Rewrites a chapter's editable fields; absent fields are left
untouched. The ordering index cannot be edited here.

Request:
  - body: {"chapter": {"title"?, "slug"?, "first_page"?, "last_page"?, "content"?}}

Response:
  - 200: Chapter: Updated entity
  - 400: ErrInvalidJSON/Validation: Invalid payload
  - 404: ErrNotFound: Book or chapter not found
*/
func (handler *Handler) UpdateChapter(writer http.ResponseWriter, request *http.Request) {
	var input chapterEnvelope
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookSlug := requestutil.Param(request, "bookSlug")
	chapterSlug := requestutil.Param(request, "chapterSlug")

	chapter, err := handler.service.UpdateChapter(request.Context(), bookSlug, chapterSlug, UpdateInput{
		Title:     input.Chapter.Title,
		Slug:      input.Chapter.Slug,
		FirstPage: input.Chapter.FirstPage,
		LastPage:  input.Chapter.LastPage,
		Content:   input.Chapter.Content,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapter)
}

/*
DELETE /api/v1/books/{bookSlug}/chapters/{chapterSlug}.

Description: Removes a chapter and closes the gap in the ordering. The
chapter's highlights are removed with it.

Response:
  - 204: Removed
  - 404: ErrNotFound: Book or chapter not found
*/
func (handler *Handler) DeleteChapter(writer http.ResponseWriter, request *http.Request) {
	bookSlug := requestutil.Param(request, "bookSlug")
	chapterSlug := requestutil.Param(request, "chapterSlug")

	if err := handler.service.DeleteChapter(request.Context(), bookSlug, chapterSlug); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Structural Operations

// reorderRequest defines the inbound JSON schema for reorder.
type reorderRequest struct {
	Order []OrderPair `json:"order"`
}

/*
POST /api/v1/books/{bookSlug}/chapters/reorder.

Description: Applies an explicit ordering to a subset or all of the book's
chapters. Unmentioned chapters are pushed past every assigned index.

Request:
  - body: {"order": [{"slug", "index"}, ...]}

Response:
  - 204: Applied
  - 409: ErrConflict: Book busy, retry
  - 422: ErrUnprocessable: Missing slugs or invalid indices
*/
func (handler *Handler) Reorder(writer http.ResponseWriter, request *http.Request) {
	var input reorderRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookSlug := requestutil.Param(request, "bookSlug")
	if err := handler.service.Reorder(request.Context(), bookSlug, input.Order); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
POST /api/v1/books/{bookSlug}/chapters/renumber.

Description: Restores the dense 1..N ordering, typically after a reorder
that left gaps. Safe to repeat; an already dense book is unchanged.

Response:
  - 204: Applied
  - 404: ErrNotFound: Book not found
  - 409: ErrConflict: Book busy, retry
*/
func (handler *Handler) Renumber(writer http.ResponseWriter, request *http.Request) {
	bookSlug := requestutil.Param(request, "bookSlug")

	if err := handler.service.Renumber(request.Context(), bookSlug); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// mergeRequest defines the inbound JSON schema for merge.
type mergeRequest struct {
	SourceSlugs []string `json:"source_slugs"`
	TargetSlug  string   `json:"target_slug"`
	NewTitle    string   `json:"new_title"`
	NewSlug     string   `json:"new_slug"`
	Preview     bool     `json:"preview"`
}

// mergeResponse reports an applied merge.
type mergeResponse struct {
	OK         bool   `json:"ok"`
	TargetSlug string `json:"target_slug"`
}

// mergePreviewResponse reports a computed but unapplied merge.
type mergePreviewResponse struct {
	OK      bool          `json:"ok"`
	Preview *MergePreview `json:"preview"`
}

/*
POST /api/v1/books/{bookSlug}/chapters/merge.

Description: Merges two or more chapters into one surviving target,
migrating highlights with corrected offsets. With preview set, computes the
outcome without applying anything.

Request:
  - body: {"source_slugs": [...], "target_slug"?, "new_title"?, "new_slug"?, "preview"?}

Response:
  - 200: {"ok": true, "target_slug"} or {"ok": true, "preview": {...}}
  - 409: ErrConflict: Book busy or chapter set changed mid-merge
  - 422: ErrUnprocessable: Too few sources, missing slugs, or no sources left
*/
func (handler *Handler) Merge(writer http.ResponseWriter, request *http.Request) {
	var input mergeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookSlug := requestutil.Param(request, "bookSlug")
	result, err := handler.service.Merge(request.Context(), bookSlug, MergeInput{
		SourceSlugs: input.SourceSlugs,
		TargetSlug:  input.TargetSlug,
		NewTitle:    input.NewTitle,
		NewSlug:     input.NewSlug,
		Preview:     input.Preview,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if result.Preview != nil {
		respond.OK(writer, mergePreviewResponse{OK: true, Preview: result.Preview})
		return
	}

	respond.OK(writer, mergeResponse{OK: true, TargetSlug: result.TargetSlug})
}

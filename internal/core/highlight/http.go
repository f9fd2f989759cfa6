// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package highlight

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taibuivan/librum/internal/platform/middleware"
	requestutil "github.com/taibuivan/librum/internal/platform/request"
	"github.com/taibuivan/librum/internal/platform/respond"
)

// # Handler Implementation

// Handler implements the HTTP layer for reader annotations.
type Handler struct {
	service *Service
}

// NewHandler constructs a new highlight [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches annotation endpoints to the root API router.
//
// All annotation routes require an authenticated reader.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Group(func(reader chi.Router) {
		reader.Use(middleware.RequireAuth)
		reader.Get("/books/{bookSlug}/chapters/{chapterSlug}/highlights", handler.ListHighlights)
		reader.Post("/books/{bookSlug}/chapters/{chapterSlug}/highlights", handler.CreateHighlight)
		reader.Delete("/highlights/{highlightID}", handler.DeleteHighlight)
	})
}

/*
GET /api/v1/books/{bookSlug}/chapters/{chapterSlug}/highlights.

Description: Returns the caller's annotations on a chapter.

Response:
  - 200: []Highlight
  - 401: ErrUnauthorized: Missing or invalid token
  - 404: ErrNotFound: Book or chapter not found
*/
func (handler *Handler) ListHighlights(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookSlug := requestutil.Param(request, "bookSlug")
	chapterSlug := requestutil.Param(request, "chapterSlug")

	highlights, err := handler.service.ListHighlights(request.Context(), userID, bookSlug, chapterSlug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, highlights)
}

// createHighlightRequest defines the inbound JSON schema for new annotations.
type createHighlightRequest struct {
	Selector map[string]any `json:"selector"`
	Style    string         `json:"style"`
	Note     string         `json:"note"`
}

/*
POST /api/v1/books/{bookSlug}/chapters/{chapterSlug}/highlights.

Description: Records a new annotation for the caller on a chapter.

Request:
  - body: createHighlightRequest

Response:
  - 201: Highlight
  - 400: ErrInvalidJSON/Validation: Invalid payload
  - 404: ErrNotFound: Book or chapter not found
*/
func (handler *Handler) CreateHighlight(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createHighlightRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	highlightDto := &Highlight{
		UserID:   userID,
		Selector: input.Selector,
		Style:    input.Style,
		Note:     input.Note,
	}

	bookSlug := requestutil.Param(request, "bookSlug")
	chapterSlug := requestutil.Param(request, "chapterSlug")

	if err := handler.service.CreateHighlight(request.Context(), bookSlug, chapterSlug, highlightDto); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, highlightDto)
}

/*
DELETE /api/v1/highlights/{highlightID}.

Description: Removes one of the caller's annotations.

Response:
  - 204: Removed
  - 403: ErrForbidden: Owned by another reader
  - 404: ErrNotFound: Highlight not found
*/
func (handler *Handler) DeleteHighlight(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	highlightID := requestutil.Param(request, "highlightID")

	if err := handler.service.DeleteHighlight(request.Context(), userID, highlightID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

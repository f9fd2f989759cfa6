// Copyright (c) 2026 Librum. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package book provides the HTTP interface for the book catalogue.

It exposes endpoints for browsing books and managing catalogue entries by
authorised personnel.

# Routing Strategy

  - Public (v1): Discovery endpoints accessible to all visitors (GET /books).
  - Restricted (v1): Mutative endpoints requiring the Editor role (POST, DELETE).

The handler translates between the web/JSON layer and the internal domain [Service].
*/
package book

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taibuivan/librum/internal/platform/middleware"
	requestutil "github.com/taibuivan/librum/internal/platform/request"
	"github.com/taibuivan/librum/internal/platform/respond"
	"github.com/taibuivan/librum/internal/platform/sec"
	"github.com/taibuivan/librum/internal/platform/validate"
	"github.com/taibuivan/librum/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for catalogue management.
type Handler struct {
	service *Service
}

// NewHandler constructs a new book [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches catalogue endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	// Discovery endpoints
	api.Get("/books", handler.ListBooks)
	api.Get("/books/{bookSlug}", handler.GetBook)

	// Editor protected endpoints
	api.Group(func(editor chi.Router) {
		editor.Use(middleware.RequireRole(sec.RoleEditor))
		editor.Post("/books", handler.CreateBook)
		editor.Delete("/books/{bookSlug}", handler.DeleteBook)
	})
}

// # Catalogue Retrieval

/*
GET /api/v1/books.

Description: Returns a paginated roster of books in the catalogue.

Request:
  - limit: int
  - page: int

Response:
  - 200: []Book: Paginated list
*/
func (handler *Handler) ListBooks(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	books, total, err := handler.service.ListBooks(request.Context(), paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, books, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/books/{bookSlug}.

Description: Returns a single book's metadata.

Request:
  - bookSlug: string

Response:
  - 200: Book
  - 404: ErrNotFound: Book not found
*/
func (handler *Handler) GetBook(writer http.ResponseWriter, request *http.Request) {
	bookSlug := requestutil.Param(request, "bookSlug")

	result, err := handler.service.GetBook(request.Context(), bookSlug)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

// # Catalogue Management

// createBookRequest defines the inbound JSON schema for catalogue additions.
type createBookRequest struct {
	Title  string `json:"title"`
	Slug   string `json:"slug"`
	Author string `json:"author"`
}

/*
POST /api/v1/books.

Description: Adds a new book to the catalogue. The slug is derived from
the title when omitted.

Request:
  - body: createBookRequest

Response:
  - 201: Book: Created catalogue entry
  - 400: ErrInvalidJSON/Validation: Invalid payload
  - 403: ErrForbidden: Insufficient permissions
  - 409: ErrConflict: Slug already taken
*/
func (handler *Handler) CreateBook(writer http.ResponseWriter, request *http.Request) {
	var input createBookRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	v := &validate.Validator{}
	v.Required("title", input.Title)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookDto := &Book{
		Title:  input.Title,
		Slug:   input.Slug,
		Author: input.Author,
	}

	if err := handler.service.CreateBook(request.Context(), bookDto); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, bookDto)
}

/*
DELETE /api/v1/books/{bookSlug}.

Description: Removes a book and all of its chapters from the catalogue.

Request:
  - bookSlug: string

Response:
  - 204: Removed
  - 404: ErrNotFound: Book not found
*/
func (handler *Handler) DeleteBook(writer http.ResponseWriter, request *http.Request) {
	bookSlug := requestutil.Param(request, "bookSlug")

	if err := handler.service.DeleteBook(request.Context(), bookSlug); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

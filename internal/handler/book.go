package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/librarylend/internal/domain"
	"github.com/yourorg/librarylend/internal/service"
	"github.com/yourorg/librarylend/internal/validator"
)

// RegisterBookRequest represents the request to register a book copy
type RegisterBookRequest struct {
	ISBN   string `json:"isbn"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// BookHandler handles book catalog endpoints
type BookHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewBookHandler creates a new book handler
func NewBookHandler(catalog *service.CatalogService, logger *slog.Logger) *BookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookHandler{catalog: catalog, logger: logger}
}

// Register handles POST /api/v1/book/register
func (h *BookHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterBookRequest
	if err := readJSON(r, &req); err != nil {
		h.logger.Error("failed to decode request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	v := validator.New()
	v.Check(validator.NotBlank(req.ISBN), "isbn", "isbn is required")
	v.Check(validator.NotBlank(req.Title), "title", "title is required")
	v.Check(validator.NotBlank(req.Author), "author", "author is required")
	v.Check(validator.LengthBetween(req.ISBN, 1, 32), "isbn", "isbn must be at most 32 characters")
	if !v.Valid() {
		writeError(w, &domain.ValidationError{Fields: v.Errors})
		return
	}

	book, err := h.catalog.RegisterBook(r.Context(), req.ISBN, req.Title, req.Author)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, book)
}

// Get handles GET /api/v1/book/{bookId}
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "bookId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	book, err := h.catalog.GetBookByID(r.Context(), bookID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

// List handles GET /api/v1/book
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.ListBooks(r.Context(), parsePageRequest(r, domain.SortAsc))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ListAvailable handles GET /api/v1/book/available
func (h *BookHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.ListAvailableBooks(r.Context(), parsePageRequest(r, domain.SortAsc))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

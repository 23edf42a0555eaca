package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/librarylend/internal/domain"
	"github.com/yourorg/librarylend/internal/service"
	"github.com/yourorg/librarylend/internal/validator"
)

// RegisterBorrowerRequest represents the request to register a member
type RegisterBorrowerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BorrowerHandler handles borrower endpoints
type BorrowerHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

// NewBorrowerHandler creates a new borrower handler
func NewBorrowerHandler(catalog *service.CatalogService, logger *slog.Logger) *BorrowerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BorrowerHandler{catalog: catalog, logger: logger}
}

// Register handles POST /api/v1/borrower/register
func (h *BorrowerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterBorrowerRequest
	if err := readJSON(r, &req); err != nil {
		h.logger.Error("failed to decode request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	v := validator.New()
	v.Check(validator.NotBlank(req.Name), "name", "name is required")
	v.Check(validator.NotBlank(req.Email), "email", "email is required")
	if req.Email != "" {
		v.Check(validator.ValidEmail(req.Email), "email", "email must be a valid address")
	}
	if !v.Valid() {
		writeError(w, &domain.ValidationError{Fields: v.Errors})
		return
	}

	borrower, err := h.catalog.RegisterBorrower(r.Context(), req.Name, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, borrower)
}

// Get handles GET /api/v1/borrower/{borrowerId}
func (h *BorrowerHandler) Get(w http.ResponseWriter, r *http.Request) {
	borrowerID, err := pathID(r, "borrowerId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	borrower, err := h.catalog.GetBorrowerByID(r.Context(), borrowerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, borrower)
}

// List handles GET /api/v1/borrower
func (h *BorrowerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalog.ListBorrowers(r.Context(), parsePageRequest(r, domain.SortAsc))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/yourorg/librarylend/internal/domain"
	"github.com/yourorg/librarylend/internal/service"
)

// BorrowingHandler handles lending endpoints
type BorrowingHandler struct {
	lending *service.LendingService
	logger  *slog.Logger
}

// NewBorrowingHandler creates a new borrowing handler
func NewBorrowingHandler(lending *service.LendingService, logger *slog.Logger) *BorrowingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BorrowingHandler{lending: lending, logger: logger}
}

// Borrow handles POST /api/v1/borrowing/{bookId}/borrow?borrowerId=N
func (h *BorrowingHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	bookID, err := pathID(r, "bookId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	rawBorrower := r.URL.Query().Get("borrowerId")
	borrowerID, err := strconv.ParseInt(rawBorrower, 10, 64)
	if err != nil || borrowerID <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "borrowerId query parameter is required"})
		return
	}

	info, err := h.lending.BorrowBook(r.Context(), bookID, borrowerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, info)
}

// Return handles PUT /api/v1/borrowing/{borrowingId}/return
func (h *BorrowingHandler) Return(w http.ResponseWriter, r *http.Request) {
	borrowingID, err := pathID(r, "borrowingId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	info, err := h.lending.ReturnBook(r.Context(), borrowingID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// Info handles GET /api/v1/borrowing/info/{borrowerId}/{bookId}
func (h *BorrowingHandler) Info(w http.ResponseWriter, r *http.Request) {
	borrowerID, err := pathID(r, "borrowerId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	bookID, err := pathID(r, "bookId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	info, err := h.lending.GetBorrowingInfo(r.Context(), borrowerID, bookID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// ListByBorrower handles GET /api/v1/borrowing/borrower/{borrowerId}.
// Loans sort newest-first unless the caller asks otherwise.
func (h *BorrowingHandler) ListByBorrower(w http.ResponseWriter, r *http.Request) {
	borrowerID, err := pathID(r, "borrowerId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	page, err := h.lending.ListBorrowingsByBorrower(r.Context(), borrowerID, parsePageRequest(r, domain.SortDesc))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

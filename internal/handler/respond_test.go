package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourorg/librarylend/internal/domain"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &domain.ValidationError{Fields: map[string]string{"isbn": "required"}}, http.StatusUnprocessableEntity},
		{"invalid book", &domain.InvalidBookError{Reason: "ISBN number must have the same title and author"}, http.StatusBadRequest},
		{"invalid borrower", &domain.InvalidBorrowerError{Reason: "Email ID already exists"}, http.StatusBadRequest},
		{"not found", domain.NewNotFoundError(domain.ResourceBook, 7), http.StatusNotFound},
		{"already borrowed", domain.ErrAlreadyBorrowed, http.StatusConflict},
		{"already returned", domain.ErrAlreadyReturned, http.StatusConflict},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestWriteErrorBodies(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, domain.NewNotFoundError(domain.ResourceBorrower, 12))
	assert.JSONEq(t, `{"error":"Borrower not found with id: '12'"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	writeError(rec, domain.ErrAlreadyBorrowed)
	assert.JSONEq(t, `{"error":"library book is already borrowed by someone"}`, rec.Body.String())

	// Internals are never leaked to the client
	rec = httptest.NewRecorder()
	writeError(rec, assert.AnError)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestParsePageRequestDefaults(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/book", nil)
	page := parsePageRequest(r, domain.SortAsc)

	assert.Equal(t, domain.DefaultPageNo, page.PageNo)
	assert.Equal(t, domain.DefaultPageSize, page.PageSize)
	assert.Equal(t, domain.DefaultSortBy, page.SortBy)
	assert.Equal(t, domain.SortAsc, page.SortDir)
}

func TestParsePageRequestExplicit(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/book?pageNo=2&pageSize=25&sortBy=title&sortDir=desc", nil)
	page := parsePageRequest(r, domain.SortAsc)

	assert.Equal(t, 2, page.PageNo)
	assert.Equal(t, 25, page.PageSize)
	assert.Equal(t, "title", page.SortBy)
	assert.Equal(t, domain.SortDesc, page.SortDir)
}

func TestParsePageRequestIgnoresMalformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/book?pageNo=-1&pageSize=zero&sortDir=sideways", nil)
	page := parsePageRequest(r, domain.SortDesc)

	assert.Equal(t, domain.DefaultPageNo, page.PageNo)
	assert.Equal(t, domain.DefaultPageSize, page.PageSize)
	assert.Equal(t, domain.SortDesc, page.SortDir)
}

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/yourorg/librarylend/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorResponse is the body returned for every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func readJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeError maps domain errors onto HTTP statuses: validation failures are
// 422, malformed registrations 400, missing records 404, and state machine
// rejections 409. Anything unrecognized is a 500 with a generic body.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation      *domain.ValidationError
		invalidBook     *domain.InvalidBookError
		invalidBorrower *domain.InvalidBorrowerError
		notFound        *domain.NotFoundError
		rule            *domain.BusinessRuleError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusUnprocessableEntity, validation.Fields)
	case errors.As(err, &invalidBook):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: invalidBook.Error()})
	case errors.As(err, &invalidBorrower):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: invalidBorrower.Error()})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: notFound.Error()})
	case errors.As(err, &rule):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: rule.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// pathID parses a positive integer path segment
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return id, nil
}

// parsePageRequest reads pagination query params, falling back to the
// defaults when absent or malformed
func parsePageRequest(r *http.Request, defaultSortDir string) domain.PageRequest {
	q := r.URL.Query()

	page := domain.PageRequest{
		PageNo:   domain.DefaultPageNo,
		PageSize: domain.DefaultPageSize,
		SortBy:   domain.DefaultSortBy,
		SortDir:  defaultSortDir,
	}

	if raw := q.Get("pageNo"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			page.PageNo = n
		}
	}
	if raw := q.Get("pageSize"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.PageSize = n
		}
	}
	if raw := q.Get("sortBy"); raw != "" {
		page.SortBy = raw
	}
	if raw := q.Get("sortDir"); raw == domain.SortAsc || raw == domain.SortDesc {
		page.SortDir = raw
	}

	return page
}

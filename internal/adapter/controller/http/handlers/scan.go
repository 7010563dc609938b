package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/kr1s57/urlsentinel/internal/domain/urlnorm"
	"github.com/kr1s57/urlsentinel/internal/entity"
)

// ScanService runs the full scan pipeline for one URL.
type ScanService interface {
	Scan(ctx context.Context, rawURL string) (*entity.ScanResult, error)
}

// ScanRequest is the POST /scan body
type ScanRequest struct {
	URL string `json:"url"`
}

// Scan returns the handler for POST /scan. Validation failures come back
// as 400 with the validation kind; everything else about a scan is
// expressed inside the result itself, including provider outages.
func Scan(svc ScanService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScanRequest
		if err := DecodeJSON(r, &req); err != nil {
			ErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		if strings.TrimSpace(req.URL) == "" {
			JSONResponse(w, http.StatusBadRequest, map[string]interface{}{
				"error":      "URL is required",
				"error_kind": urlnorm.ErrEmptyInput,
				"success":    false,
			})
			return
		}

		result, err := svc.Scan(r.Context(), req.URL)
		if err != nil {
			var verr *urlnorm.ValidationError
			if errors.As(err, &verr) {
				JSONResponse(w, http.StatusBadRequest, map[string]interface{}{
					"error":      verr.Message,
					"error_kind": verr.Kind,
					"success":    false,
				})
				return
			}
			ErrorResponse(w, http.StatusInternalServerError, "Scan failed", err)
			return
		}

		JSONResponse(w, http.StatusOK, result)
	}
}

// Root returns the service banner for GET /
func Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		JSONResponse(w, http.StatusOK, map[string]interface{}{
			"service":   "URL Sentinel",
			"version":   "1.0.0",
			"timestamp": time.Now().UTC(),
			"endpoints": map[string]string{
				"scan":   "POST /scan",
				"health": "GET /health",
			},
		})
	}
}

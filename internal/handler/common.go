package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"rptas/internal/model"
	"rptas/internal/service"
	"rptas/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps the service error taxonomy to HTTP status codes in one
// place. Anything outside the taxonomy is a backing-store failure.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, response.Error(err.Error()))
}

// parseKindParam validates the :kind path segment against the closed kind set.
func parseKindParam(c *gin.Context) (model.RecordKind, bool) {
	kind, ok := model.ParseRecordKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error("Unknown record kind '"+c.Param("kind")+"'"))
		return "", false
	}
	return kind, true
}

// parseIDParam validates the :id path segment as a positive integer.
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, response.Error("Invalid record id"))
		return 0, false
	}
	return uint(id), true
}

// splitCSV splits a comma-separated query value, dropping empty parts.
func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

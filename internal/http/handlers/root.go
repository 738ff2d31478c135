package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
)

const apiVersion = "1.0.0"

type RootHandler struct {
	origins []string
	now     func() time.Time
}

func NewRootHandler(origins []string) *RootHandler {
	return &RootHandler{origins: origins, now: time.Now}
}

// GET /api/
func (h *RootHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Payment System API",
		"version": apiVersion,
		"status":  "operational",
	})
}

// GET /api/test-cors reports whether the caller's Origin is on the allow-list.
func (h *RootHandler) TestCORS(c *gin.Context) {
	origin := c.GetHeader("Origin")
	if origin == "" {
		origin = "unknown"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"message":        "Backend-Frontend CORS test",
		"request_origin": origin,
		"cors_allowed":   slices.Contains(h.origins, origin),
		"timestamp":      h.now().UTC().Format(time.RFC3339),
	})
}

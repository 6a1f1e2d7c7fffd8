package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reviewrelay/review-relay/internal/service"
)

// minCodeLength rejects garbage paths before they reach the link store
const minCodeLength = 4

// RedirectHandler serves short-link redirects and direct deep-link requests
type RedirectHandler struct {
	redirects *service.RedirectService
}

// NewRedirectHandler creates a new redirect handler instance
func NewRedirectHandler(redirects *service.RedirectService) *RedirectHandler {
	return &RedirectHandler{redirects: redirects}
}

// Redirect handles GET /r/:code
func (h *RedirectHandler) Redirect(c *gin.Context) {
	code := c.Param("code")
	if len(code) < minCodeLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid short code"})
		return
	}

	deepLink, err := h.redirects.ResolveDeepLink(c.Request.Context(), code)
	if err != nil {
		log.Printf("redirect resolution failed for %q: %v", code, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process redirect"})
		return
	}
	if deepLink == "" {
		// Missing and expired intentionally collapse to the same answer
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found or expired"})
		return
	}

	c.Redirect(http.StatusFound, deepLink)
}

// WhatsAppRedirect handles GET /api/wa-redirect?text=...
// It builds the deep link from the query text without touching the store,
// used by the non-persisted fallback links embedded in SMS bodies.
func (h *RedirectHandler) WhatsAppRedirect(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing text parameter"})
		return
	}

	c.Redirect(http.StatusFound, h.redirects.GenericDeepLink(text))
}

// whatsAppRedirectRequest is the POST variant body
type whatsAppRedirectRequest struct {
	Text     string `json:"text" binding:"required"`
	ReviewID string `json:"reviewId"`
}

// WhatsAppRedirectURL handles POST /api/wa-redirect, returning the deep link
// as JSON for clients that want to inspect it before navigating.
func (h *RedirectHandler) WhatsAppRedirectURL(c *gin.Context) {
	var req whatsAppRedirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing text parameter"})
		return
	}

	if req.ReviewID != "" {
		log.Printf("review link clicked: %s", req.ReviewID)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"redirectUrl": h.redirects.GenericDeepLink(req.Text),
	})
}

// HealthCheck handles GET /health
func (h *RedirectHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

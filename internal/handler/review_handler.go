package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/reviewrelay/review-relay/internal/service"
)

// ReviewHandler serves review submission endpoints
type ReviewHandler struct {
	reviews *service.ReviewService
}

// NewReviewHandler creates a new review handler instance
func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// submitReviewRequest is the multi-channel submission body. Rating arrives
// as a string because the upstream form posts it that way.
type submitReviewRequest struct {
	ShopName      string `json:"shopName" binding:"required,min=2"`
	ShopEmail     string `json:"shopEmail" binding:"required,email"`
	CustomerName  string `json:"customerName" binding:"required,min=2"`
	CustomerEmail string `json:"customerEmail" binding:"required,email"`
	PhoneNumber   string `json:"phoneNumber" binding:"required,min=10"`
	ProductName   string `json:"productName" binding:"required,min=2"`
	Rating        string `json:"rating" binding:"required"`
	ReviewText    string `json:"reviewText" binding:"required,min=20"`
	SendSMS       bool   `json:"sendSMS"`
	SendWhatsApp  bool   `json:"sendWhatsApp"`
}

// submitReviewResponse mirrors the aggregate dispatch outcome. ReviewID is a
// string because snowflake IDs overflow JavaScript number precision.
type submitReviewResponse struct {
	Success  bool                    `json:"success"`
	ReviewID string                  `json:"reviewId"`
	Results  service.DispatchResults `json:"results"`
	Status   string                  `json:"status"`
}

// SubmitReview handles POST /api/reviews
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	rating, err := strconv.Atoi(req.Rating)
	if err != nil || rating < 1 || rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": "rating must be a number between 1 and 5"})
		return
	}

	if !req.SendSMS && !req.SendWhatsApp {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Select at least one notification method (SMS or WhatsApp)"})
		return
	}

	h.dispatch(c, service.SubmitReviewParams{
		ShopName:      req.ShopName,
		ShopEmail:     req.ShopEmail,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		PhoneNumber:   req.PhoneNumber,
		ProductName:   req.ProductName,
		Rating:        rating,
		ReviewText:    req.ReviewText,
		SendSMS:       req.SendSMS,
		SendWhatsApp:  req.SendWhatsApp,
	})
}

// whatsAppReviewRequest is the single-channel variant body; no channel flags
type whatsAppReviewRequest struct {
	ShopName      string `json:"shopName" binding:"required,min=2"`
	ShopEmail     string `json:"shopEmail" binding:"required,email"`
	CustomerName  string `json:"customerName" binding:"required,min=2"`
	CustomerEmail string `json:"customerEmail" binding:"required,email"`
	PhoneNumber   string `json:"phoneNumber" binding:"required,min=10"`
	ProductName   string `json:"productName" binding:"required,min=2"`
	Rating        string `json:"rating" binding:"required"`
	ReviewText    string `json:"reviewText" binding:"required,min=20"`
}

// SubmitWhatsAppReview handles POST /api/reviews/whatsapp, which always
// delivers over WhatsApp only.
func (h *ReviewHandler) SubmitWhatsAppReview(c *gin.Context) {
	var req whatsAppReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}

	rating, err := strconv.Atoi(req.Rating)
	if err != nil || rating < 1 || rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": "rating must be a number between 1 and 5"})
		return
	}

	h.dispatch(c, service.SubmitReviewParams{
		ShopName:      req.ShopName,
		ShopEmail:     req.ShopEmail,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		PhoneNumber:   req.PhoneNumber,
		ProductName:   req.ProductName,
		Rating:        rating,
		ReviewText:    req.ReviewText,
		SendWhatsApp:  true,
	})
}

func (h *ReviewHandler) dispatch(c *gin.Context, params service.SubmitReviewParams) {
	result, err := h.reviews.SubmitReview(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, service.ErrNoChannelSelected) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("review submission failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database storage failed"})
		return
	}

	c.JSON(http.StatusOK, submitReviewResponse{
		Success:  true,
		ReviewID: strconv.FormatInt(result.ReviewID, 10),
		Results:  result.Results,
		Status:   result.Status,
	})
}

package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/reviewrelay/review-relay/internal/textgen"
)

// shopLocations maps form values to the human-readable labels fed into the
// generation prompt.
var shopLocations = map[string]string{
	"mumbai_mg_road":        "Mumbai - M.G. Road",
	"mumbai_bandra":         "Mumbai - Bandra West",
	"mumbai_andheri":        "Mumbai - Andheri East",
	"pune_fc_road":          "Pune - F.C. Road",
	"pune_camp":             "Pune - Camp",
	"delhi_karol_bagh":      "Delhi - Karol Bagh",
	"delhi_south_ext":       "Delhi - South Extension",
	"bangalore_brigade":     "Bangalore - Brigade Road",
	"bangalore_indiranagar": "Bangalore - Indiranagar",
	"hyderabad_banjara":     "Hyderabad - Banjara Hills",
	"chennai_t_nagar":       "Chennai - T. Nagar",
	"kolkata_park_st":       "Kolkata - Park Street",
}

// flexString accepts either a JSON string or an array of strings, joining
// the latter with ", ". The motivation field arrives both ways.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = flexString(strings.Join(list, ", "))
		return nil
	}
	return fmt.Errorf("expected string or array of strings")
}

// flexInt accepts a JSON number or a numeric string
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected number or numeric string")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil // unparseable values fall back to the caller's default
	}
	*f = flexInt(n)
	return nil
}

// generateReviewRequest carries the structured fields a review is drafted
// from. Only the identity and purchase basics are required.
type generateReviewRequest struct {
	OrgName                  string     `json:"orgName"`
	OrgType                  string     `json:"orgType"`
	AttenderName             string     `json:"attenderName"`
	ShopLocation             string     `json:"shopLocation"`
	OrgDescription           string     `json:"orgDescription"`
	CustomerName             string     `json:"customerName"`
	CustomerPhone            string     `json:"customerPhone"`
	PurchaseType             string     `json:"purchaseType"`
	PurchaseFrequency        string     `json:"purchaseFrequency"`
	PurchaseDuration         string     `json:"purchaseDuration"`
	SatisfactionLevel        flexInt    `json:"satisfactionLevel"`
	Events                   string     `json:"events"`
	KeyHighlights            string     `json:"keyHighlights"`
	ImprovementAreas         string     `json:"improvementAreas"`
	RecommendationLikelihood flexInt    `json:"recommendationLikelihood"`
	ShoppingMotivation       flexString `json:"shoppingMotivation"`
	PriceSensitivity         string     `json:"priceSensitivity"`
	BrandLoyalty             string     `json:"brandLoyalty"`
	EmotionalConnection      string     `json:"emotionalConnection"`
}

// GenerateHandler serves review text generation
type GenerateHandler struct {
	generator textgen.Generator
}

// NewGenerateHandler creates a new generation handler instance
func NewGenerateHandler(generator textgen.Generator) *GenerateHandler {
	return &GenerateHandler{generator: generator}
}

// GenerateReview handles POST /api/generate-review
func (h *GenerateHandler) GenerateReview(c *gin.Context) {
	var req generateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if req.OrgName == "" || req.OrgType == "" || req.CustomerName == "" ||
		req.PurchaseType == "" || req.PurchaseFrequency == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	location := req.ShopLocation
	if label, ok := shopLocations[req.ShopLocation]; ok {
		location = label
	}

	satisfaction := int(req.SatisfactionLevel)
	if satisfaction == 0 {
		satisfaction = 8
	}
	recommendation := int(req.RecommendationLikelihood)
	if recommendation == 0 {
		recommendation = 9
	}

	review, err := h.generator.GenerateReview(c.Request.Context(), textgen.ReviewPrompt{
		OrgName:                  req.OrgName,
		OrgType:                  req.OrgType,
		AttenderName:             req.AttenderName,
		ShopLocation:             location,
		OrgDescription:           req.OrgDescription,
		CustomerName:             req.CustomerName,
		CustomerPhone:            req.CustomerPhone,
		PurchaseType:             req.PurchaseType,
		PurchaseFrequency:        req.PurchaseFrequency,
		PurchaseDuration:         req.PurchaseDuration,
		SatisfactionLevel:        satisfaction,
		Events:                   req.Events,
		KeyHighlights:            req.KeyHighlights,
		ImprovementAreas:         req.ImprovementAreas,
		RecommendationLikelihood: recommendation,
		ShoppingMotivation:       string(req.ShoppingMotivation),
		PriceSensitivity:         req.PriceSensitivity,
		BrandLoyalty:             req.BrandLoyalty,
		EmotionalConnection:      req.EmotionalConnection,
	})
	if err != nil {
		log.Printf("review generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "review": review})
}

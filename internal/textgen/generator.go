// Package textgen defines the generative-text boundary used to synthesize
// review drafts, and its Gemini implementation.
package textgen

import (
	"context"
	"fmt"
	"strings"
)

// ReviewPrompt carries the structured fields a review is generated from.
// Optional fields are omitted from the prompt when empty.
type ReviewPrompt struct {
	// Organization
	OrgName        string
	OrgType        string
	AttenderName   string
	ShopLocation   string
	OrgDescription string

	// Customer
	CustomerName  string
	CustomerPhone string

	// Purchase
	PurchaseType      string
	PurchaseFrequency string
	PurchaseDuration  string

	// Experience
	SatisfactionLevel        int // 1-10
	Events                   string
	KeyHighlights            string
	ImprovementAreas         string
	RecommendationLikelihood int // 1-10

	// Behavioral
	ShoppingMotivation  string
	PriceSensitivity    string
	BrandLoyalty        string
	EmotionalConnection string
}

// Generator produces review text from structured input
type Generator interface {
	GenerateReview(ctx context.Context, input ReviewPrompt) (string, error)
}

// Unconfigured stands in when no API key is present; generation requests
// fail without taking the rest of the service down.
type Unconfigured struct{}

func (Unconfigured) GenerateReview(context.Context, ReviewPrompt) (string, error) {
	return "", fmt.Errorf("text generation not configured")
}

// BuildPrompt assembles the model prompt from the structured fields
func BuildPrompt(input ReviewPrompt) string {
	var sb strings.Builder

	sb.WriteString("Generate a realistic, detailed customer review for a business based on the following information:\n\n")

	sb.WriteString("BUSINESS INFORMATION:\n")
	fmt.Fprintf(&sb, "- Business Name: %s\n", input.OrgName)
	fmt.Fprintf(&sb, "- Business Type: %s\n", input.OrgType)
	writeOptional(&sb, "Attender/Salesperson", input.AttenderName)
	writeOptional(&sb, "Shop Location", input.ShopLocation)
	writeOptional(&sb, "Description", input.OrgDescription)

	sb.WriteString("\nCUSTOMER INFORMATION:\n")
	fmt.Fprintf(&sb, "- Customer Name: %s\n", input.CustomerName)
	fmt.Fprintf(&sb, "- Purchase Type: %s\n", input.PurchaseType)
	fmt.Fprintf(&sb, "- Purchase Frequency: %s\n", input.PurchaseFrequency)
	writeOptional(&sb, "Duration as Customer", input.PurchaseDuration)

	sb.WriteString("\nEXPERIENCE DETAILS:\n")
	fmt.Fprintf(&sb, "- Overall Satisfaction (1-10): %d\n", input.SatisfactionLevel)
	writeOptional(&sb, "Occasion/Event", input.Events)
	writeOptional(&sb, "Key Highlights", input.KeyHighlights)
	writeOptional(&sb, "Areas for Improvement", input.ImprovementAreas)
	fmt.Fprintf(&sb, "- Likelihood to Recommend (1-10): %d\n", input.RecommendationLikelihood)

	sb.WriteString("\nBEHAVIORAL INSIGHTS:\n")
	writeOptional(&sb, "Shopping Motivation", input.ShoppingMotivation)
	writeOptional(&sb, "Price Sensitivity", input.PriceSensitivity)
	writeOptional(&sb, "Brand Loyalty", input.BrandLoyalty)
	writeOptional(&sb, "Emotional Connection", input.EmotionalConnection)

	sb.WriteString("\nREQUIREMENTS:\n")
	fmt.Fprintf(&sb, "1. Write in first person as %s\n", input.CustomerName)
	sb.WriteString("2. Make it sound natural and authentic (not overly promotional)\n")
	sb.WriteString("3. Include specific details about the purchase experience\n")
	if input.ShopLocation != "" {
		fmt.Fprintf(&sb, "4. Mention %s by name and the location\n", input.OrgName)
	} else {
		fmt.Fprintf(&sb, "4. Mention %s by name\n", input.OrgName)
	}
	sb.WriteString("5. Keep it between 150-250 words\n")
	sb.WriteString("6. Include both positive aspects and (if applicable) minor constructive feedback for credibility\n")
	sb.WriteString("7. End with a clear recommendation statement\n")
	sb.WriteString("8. Use conversational, friendly language\n")

	sb.WriteString("\nGenerate the review now:")

	return sb.String()
}

func writeOptional(sb *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(sb, "- %s: %s\n", label, value)
	}
}

package model

import (
	"time"
)

// ShortLink represents a stored review payload addressable by a short code.
// The code is immutable once issued; only the click counter changes.
type ShortLink struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	ShortCode    string     `gorm:"uniqueIndex;type:varchar(15);not null" json:"short_code"`
	ReviewText   string     `gorm:"type:text;not null" json:"review_text"`
	CustomerName string     `gorm:"type:varchar(191);not null" json:"customer_name"`
	ShopName     *string    `gorm:"type:varchar(191)" json:"shop_name,omitempty"`
	ProductName  *string    `gorm:"type:varchar(191)" json:"product_name,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	ExpiresAt    *time.Time `gorm:"index" json:"expires_at,omitempty"`
	Clicks       uint64     `gorm:"default:0" json:"clicks"`
}

// TableName specifies the table name for ShortLink
func (ShortLink) TableName() string {
	return "short_links"
}

// IsExpired checks if the short link is past its expiry time.
// A nil ExpiresAt means the link never expires.
func (l *ShortLink) IsExpired() bool {
	if l.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*l.ExpiresAt)
}

// LinkPayload is the resolved content of a short link
type LinkPayload struct {
	ReviewText   string  `json:"review_text"`
	CustomerName string  `json:"customer_name"`
	ShopName     *string `json:"shop_name,omitempty"`
	ProductName  *string `json:"product_name,omitempty"`
}

// Payload returns the resolvable content of the link
func (l *ShortLink) Payload() *LinkPayload {
	return &LinkPayload{
		ReviewText:   l.ReviewText,
		CustomerName: l.CustomerName,
		ShopName:     l.ShopName,
		ProductName:  l.ProductName,
	}
}

package model

import (
	"time"
)

// Delivery status values for a review record
const (
	StatusPending = "PENDING"
	StatusSent    = "SENT"
	StatusFailed  = "FAILED"
)

// Review represents a submitted customer review and its delivery state.
// IDs are assigned from the snowflake generator, not auto-incremented.
type Review struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	ShopName      string    `gorm:"type:varchar(191);not null" json:"shop_name"`
	ShopEmail     string    `gorm:"type:varchar(191)" json:"shop_email"`
	CustomerName  string    `gorm:"type:varchar(191);not null" json:"customer_name"`
	CustomerEmail string    `gorm:"type:varchar(191)" json:"customer_email"`
	PhoneNumber   string    `gorm:"type:varchar(32);not null" json:"phone_number"`
	ProductName   string    `gorm:"type:varchar(191)" json:"product_name"`
	Rating        int       `gorm:"not null" json:"rating"`
	ReviewText    string    `gorm:"type:text;not null" json:"review_text"`
	SendSMS       bool      `gorm:"default:false" json:"send_sms"`
	SendWhatsApp  bool      `gorm:"default:false" json:"send_whatsapp"`
	Status        string    `gorm:"type:varchar(16);default:PENDING" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Review
func (Review) TableName() string {
	return "customer_reviews"
}

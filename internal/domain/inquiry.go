package domain

import (
	"time"

	"gorm.io/gorm"
)

// Inquiry types offered by the partnership form. The column does not
// restrict values to this list.
const (
	InquiryTypeDonor    = "donor"
	InquiryTypeEmployer = "employer"
	InquiryTypeYouth    = "youth"
	InquiryTypeOther    = "other"
)

// Column limits for Inquiry, in characters.
const (
	MaxNameLength  = 100
	MaxEmailLength = 120
	MaxTypeLength  = 50
)

// Inquiry represents a partnership/inquiry form submission
type Inquiry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Email     string    `gorm:"type:varchar(120);not null;uniqueIndex:idx_inquiries_email" json:"email"`
	Type      string    `gorm:"type:varchar(50);not null" json:"type"`
	Message   string    `gorm:"type:text;not null;default:''" json:"message"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

// TableName specifies the table name for Inquiry
func (Inquiry) TableName() string {
	return "inquiries"
}

// BeforeCreate hook
func (i *Inquiry) BeforeCreate(tx *gorm.DB) error {
	i.Timestamp = tx.NowFunc()
	return nil
}

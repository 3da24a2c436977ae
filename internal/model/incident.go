package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Well-known status ids.
const (
	StatusReported   uint = 1
	StatusInProgress uint = 2
	StatusResolved   uint = 3
)

// Incident is a report filed by a citizen.
type Incident struct {
	ID          uint            `json:"incident_id" gorm:"column:incident_id;primaryKey"`
	UserID      uint            `json:"user_id" gorm:"not null;index"`
	CategoryID  uint            `json:"category_id" gorm:"not null;index"`
	StatusID    uint            `json:"status_id" gorm:"not null;default:1;index"`
	CityID      *uint           `json:"city_id,omitempty" gorm:"index"`
	Latitude    decimal.Decimal `json:"latitude" gorm:"type:decimal(10,7);not null"`
	Longitude   decimal.Decimal `json:"longitude" gorm:"type:decimal(10,7);not null"`
	Description string          `json:"description,omitempty" gorm:"type:text"`
	PhotoURL    *string         `json:"photo_url,omitempty" gorm:"size:255"`
	AddressRef  *string         `json:"address_ref,omitempty" gorm:"size:200"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID;references:ID"`
}

// UserStats summarizes a user's reports.
type UserStats struct {
	TotalReports     int64 `json:"total_reports"`
	ResolvedReports  int64 `json:"resolved_reports"`
	FollowingReports int64 `json:"following_reports"`
}

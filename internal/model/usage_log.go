package model

import "time"

type UsageLog struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	LicenseID uint    `json:"license_id" gorm:"not null;index"`
	License   License `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	SessionStart time.Time `json:"session_start" gorm:"not null"`
	SessionEnd   time.Time `json:"session_end"`
	Duration     int64     `json:"duration"` // 秒

	CreatedAt time.Time `json:"created_at"`
}

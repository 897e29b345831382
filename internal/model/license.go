package model

import "time"

type License struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"not null;uniqueIndex"` // 每个用户至多一条许可证
	User   User `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	LicenseCode string    `json:"license_code" gorm:"unique;not null"`
	ValidFrom   time.Time `json:"valid_from" gorm:"not null"`
	ValidUntil  time.Time `json:"valid_until" gorm:"not null"`

	NextPaymentDate *time.Time `json:"next_payment_date"`

	// 累计使用秒数 / 次数，剩余信用额度（秒）
	UsageTime      int64 `json:"usage_time" gorm:"default:0"`
	UsageCount     int64 `json:"usage_count" gorm:"default:0"`
	RemainingUsage int64 `json:"remaining_usage" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired 判断许可证在给定时间点是否已过期
func (l *License) Expired(now time.Time) bool {
	return now.After(l.ValidUntil)
}

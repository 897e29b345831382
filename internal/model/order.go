package model

import "time"

const PaymentStatusCompleted = "completed"

type Order struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"not null"`
	User   User `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	// 订单可以在许可证被删除后保留，故外键置空
	LicenseID *uint    `json:"license_id"`
	License   *License `json:"-" gorm:"constraint:OnDelete:SET NULL"`

	OrderCode     string    `json:"order_code" gorm:"unique;not null"`
	Amount        float64   `json:"amount" gorm:"not null"`
	OrderDate     time.Time `json:"order_date"`
	PaymentStatus string    `json:"payment_status" gorm:"not null"`
	Details       string    `json:"details"`

	CreatedAt time.Time `json:"created_at"`
}

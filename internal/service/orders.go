package service

import (
	"license-credit-system/internal/model"

	"gorm.io/gorm"
)

// GetUserOrders 获取用户的订单历史（分页）
func GetUserOrders(db *gorm.DB, email string, page, pageSize int) ([]model.Order, int64, error) {
	var user model.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, 0, err
	}

	var total int64
	if err := db.Model(&model.Order{}).Where("user_id = ?", user.ID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 获取分页数据
	var orders []model.Order
	offset := (page - 1) * pageSize
	err := db.Where("user_id = ?", user.ID).
		Order("order_date DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// GetLicenseUsage 获取许可证最近的使用记录，按开始时间倒序
func GetLicenseUsage(db *gorm.DB, licenseID uint, limit int) ([]model.UsageLog, error) {
	var usages []model.UsageLog
	err := db.Where("license_id = ?", licenseID).
		Order("session_start desc").
		Limit(limit).
		Find(&usages).Error
	if err != nil {
		return nil, err
	}
	return usages, nil
}

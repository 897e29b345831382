package handler

import (
	"log"

	"license-credit-system/internal/ledger"
	"license-credit-system/internal/model"
	"license-credit-system/internal/service"

	"gorm.io/gorm"
)

// Handler 持有显式注入的依赖，不使用全局状态
type Handler struct {
	db     *gorm.DB
	ledger *ledger.Ledger
	sheet  *service.SheetSyncService
}

func New(db *gorm.DB, l *ledger.Ledger, sheet *service.SheetSyncService) *Handler {
	return &Handler{db: db, ledger: l, sheet: sheet}
}

// 异步把许可证最新状态同步到 Google Sheet，失败只记日志
func (h *Handler) syncLicense(licenseCode string) {
	if h.sheet == nil {
		return
	}
	var lic model.License
	if err := h.db.Where("license_code = ?", licenseCode).First(&lic).Error; err != nil {
		return
	}
	if err := h.sheet.SyncLicense(&lic); err != nil {
		log.Printf("同步许可证 %s 失败: %v", lic.LicenseCode, err)
	}
}

func (h *Handler) syncLicenseByEmail(email string) {
	if h.sheet == nil {
		return
	}
	var lic model.License
	err := h.db.Joins("JOIN users ON users.id = licenses.user_id").
		Where("users.email = ?", email).
		First(&lic).Error
	if err != nil {
		return
	}
	if err := h.sheet.SyncLicense(&lic); err != nil {
		log.Printf("同步许可证 %s 失败: %v", lic.LicenseCode, err)
	}
}

package handler

import (
	"license-credit-system/internal/model"
	"license-credit-system/internal/service"

	"github.com/gofiber/fiber/v2"
)

// HandleGetLicense 获取单个许可证详情
func (h *Handler) HandleGetLicense(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "license key is required",
		})
	}

	var license model.License
	result := h.db.Where("license_code = ?", key).First(&license)
	if result.Error != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "license not found",
		})
	}

	return c.JSON(license)
}

// HandleLicenseUsage 查询许可证最近的使用记录
func (h *Handler) HandleLicenseUsage(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "license key is required",
		})
	}

	var license model.License
	result := h.db.Where("license_code = ?", key).First(&license)
	if result.Error != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "license not found",
		})
	}

	usages, err := service.GetLicenseUsage(h.db, license.ID, 20)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to query usage logs",
		})
	}

	return c.JSON(fiber.Map{
		"usages": usages,
	})
}

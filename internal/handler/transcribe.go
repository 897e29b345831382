package handler

import (
	"errors"
	"io"
	"log"

	"license-credit-system/internal/ledger"

	"github.com/gofiber/fiber/v2"
)

// HandleTranscribe 校验许可证、扣减信用并处理上传文件。
// 原型阶段的"处理"只统计字节数，不做真实转写。
func (h *Handler) HandleTranscribe(c *fiber.Ctx) error {
	licenseKey := c.FormValue("license_key")
	if licenseKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "license_key is required",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	result, err := h.ledger.Redeem(licenseKey, fileHeader.Size)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidLicense):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid license key",
			})
		case errors.Is(err, ledger.ErrLicenseExpired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "License expired",
			})
		case errors.Is(err, ledger.ErrInsufficientCredit):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Insufficient credit",
			})
		}
		log.Printf("许可证 %s 兑换失败: %v", licenseKey, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "file processing failed",
		})
	}

	// 信用扣减完成后才读取文件内容
	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "file processing failed",
		})
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "file processing failed",
		})
	}

	go h.syncLicense(licenseKey)

	return c.JSON(fiber.Map{
		"status":           "file processed",
		"file_size":        len(content),
		"deducted_seconds": result.DeductedSeconds,
		"remaining_credit": result.RemainingCredit,
	})
}

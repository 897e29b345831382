package handler

import (
	"errors"
	"log"
	"strconv"

	"license-credit-system/internal/ledger"
	"license-credit-system/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HandleSimulateOrder 模拟支付订单：创建/延长许可证并记录订单
func (h *Handler) HandleSimulateOrder(c *fiber.Ctx) error {
	email := c.FormValue("email")
	orderCode := c.FormValue("order_code")
	amountStr := c.FormValue("amount")
	if email == "" || orderCode == "" || amountStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email, order_code and amount are required",
		})
	}

	amount, err := strconv.ParseFloat(amountStr, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid amount",
		})
	}

	if err := h.ledger.ProcessOrder(email, orderCode, amount); err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid amount",
			})
		}
		log.Printf("订单 %s 处理失败: %v", orderCode, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "order processing failed",
		})
	}

	go h.syncLicenseByEmail(email)

	return c.JSON(fiber.Map{
		"status": "order processed",
	})
}

// HandleGetOrders 查询用户订单历史
func (h *Handler) HandleGetOrders(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "email is required",
		})
	}

	// 获取分页参数
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	orders, total, err := service.GetUserOrders(h.db, email, page, pageSize)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "user not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to query orders",
		})
	}

	return c.JSON(fiber.Map{
		"orders": orders,
		"total":  total,
		"page":   page,
	})
}

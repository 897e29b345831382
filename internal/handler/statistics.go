package handler

import (
	"time"

	"license-credit-system/internal/model"

	"github.com/gofiber/fiber/v2"
)

// HandleStatistics 处理许可证与信用统计请求
func (h *Handler) HandleStatistics(c *fiber.Ctx) error {
	// 获取查询参数
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")

	// 解析日期
	var start, end time.Time
	var err error

	if startDate != "" {
		start, err = time.Parse("2006-01-02", startDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "start_date must be YYYY-MM-DD",
			})
		}
	} else {
		// 默认为30天前
		start = time.Now().AddDate(0, 0, -30)
	}

	if endDate != "" {
		end, err = time.Parse("2006-01-02", endDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "end_date must be YYYY-MM-DD",
			})
		}
		// end_date 为闭区间，包含当天全天
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	} else {
		end = time.Now()
	}

	db := h.db
	now := time.Now()

	stats := &model.CreditStatistics{
		DailyUsage: make([]model.DailyUsage, 0),
	}

	if err := db.Model(&model.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to count users",
		})
	}

	if err := db.Model(&model.License{}).Count(&stats.TotalLicenses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to count licenses",
		})
	}

	// 以有效期划分活跃/过期
	if err := db.Model(&model.License{}).Where("valid_until > ?", now).Count(&stats.ActiveLicenses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to count active licenses",
		})
	}

	if err := db.Model(&model.License{}).Where("valid_until <= ?", now).Count(&stats.ExpiredLicenses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to count expired licenses",
		})
	}

	if err := db.Model(&model.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to count orders",
		})
	}

	if err := db.Model(&model.Order{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to sum revenue",
		})
	}

	if err := db.Model(&model.UsageLog{}).Count(&stats.TotalRedemptions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to count redemptions",
		})
	}

	if err := db.Model(&model.UsageLog{}).
		Select("COALESCE(SUM(duration), 0)").
		Scan(&stats.TotalUsageTime).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to sum usage time",
		})
	}

	if err := db.Model(&model.License{}).
		Select("COALESCE(SUM(remaining_usage), 0)").
		Scan(&stats.RemainingCredit).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to sum remaining credit",
		})
	}

	// 区间内的每日兑换统计
	if err := db.Model(&model.UsageLog{}).
		Select("DATE(session_start) as date, COUNT(*) as redemptions, COALESCE(SUM(duration), 0) as seconds").
		Where("session_start BETWEEN ? AND ?", start, end).
		Group("DATE(session_start)").
		Order("date ASC").
		Scan(&stats.DailyUsage).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to query daily usage",
		})
	}

	return c.JSON(fiber.Map{
		"data": stats,
	})
}

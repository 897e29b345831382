package main

import (
	"log"

	"license-credit-system/internal/config"
	"license-credit-system/internal/database"
	"license-credit-system/internal/handler"
	"license-credit-system/internal/ledger"
	"license-credit-system/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("加载配置失败:", err)
	}

	// 初始化数据库
	db, err := database.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}

	// Google Sheets 同步，默认关闭
	sheet, err := service.NewSheetSyncService(
		cfg.SheetSyncEnabled,
		cfg.SheetCredentialPath,
		cfg.SpreadsheetID,
		cfg.SheetName,
	)
	if err != nil {
		log.Fatal("初始化Sheet同步失败:", err)
	}

	// 启动时全量导出，之后由各接口增量同步
	if sheet != nil {
		go func() {
			if err := sheet.ExportAll(db); err != nil {
				log.Printf("启动全量同步失败: %v", err)
			}
		}()
	}

	ldg := ledger.New(db, ledger.FixedCost{Seconds: cfg.RedemptionCost}, cfg.CreditSecondsPerUnit)
	h := handler.New(db, ldg, sheet)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// 中间件
	app.Use(logger.New())
	app.Use(cors.New())

	// 订单与兑换
	app.Post("/simulate_order", h.HandleSimulateOrder)
	app.Post("/transcribe", h.HandleTranscribe)

	// 查询接口
	app.Get("/licenses/:key", h.HandleGetLicense)
	app.Get("/licenses/:key/usage", h.HandleLicenseUsage)
	app.Get("/orders", h.HandleGetOrders)
	app.Get("/statistics", h.HandleStatistics)

	log.Fatal(app.Listen(cfg.ListenAddr))
}

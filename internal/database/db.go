package database

import (
	"fmt"
	"os"
	"path/filepath"

	"license-credit-system/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// InitDB 打开 SQLite 数据库并迁移表结构，返回显式的数据库句柄
func InitDB(dbPath string) (*gorm.DB, error) {
	// 创建数据目录
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建数据目录失败: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	// SQLite 只支持单个写连接
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// 自动迁移模型，可重复执行
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.License{},
		&model.UsageLog{},
		&model.Order{},
	)
}

package database

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// InitTestDB 创建内存数据库用于测试
func InitTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect test database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic("failed to get test database handle")
	}
	sqlDB.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		panic("failed to migrate test database")
	}

	return db
}

func CleanTestDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	sqlDB.Close()
}

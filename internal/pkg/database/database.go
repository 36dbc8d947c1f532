package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/opencodefirst/codefirst/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open 根据类型选择驱动并建立连接，不做迁移
func Open(dbType, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch dbType {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		// 使用 github.com/glebarez/sqlite 驱动
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   NewLogger(),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}

	// 内存数据库每个连接都是独立的库，只能使用单连接
	if isMemorySQLite(dbType, dsn) {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func isMemorySQLite(dbType, dsn string) bool {
	if dbType == "mysql" || dbType == "postgres" {
		return false
	}
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// InitDB 建立连接、迁移表结构并写入内置数据类型
func InitDB(dbType, dsn string) (*gorm.DB, error) {
	db, err := Open(dbType, dsn)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(model.SchemaModels()...); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := SeedBuiltinDataTypes(context.Background(), db); err != nil {
		return nil, fmt.Errorf("seed builtin data types: %w", err)
	}
	return db, nil
}

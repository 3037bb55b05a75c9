package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations 启动时应用未执行的结构迁移。
//
// 预订写入的并发兜底依赖排他约束（bookings_no_overlap），
// 结构不完整时不允许带病运行：dirty 状态直接拒绝启动，交人工修复。
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("加载迁移文件失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("初始化迁移实例失败: %w", err)
	}

	before, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("读取迁移版本失败: %w", err)
	}
	if dirty {
		return fmt.Errorf("迁移版本 %d 处于 dirty 状态，预订库结构不完整，需人工修复后再启动", before)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("预订库结构已是最新", zap.Uint("version", before))
			return nil
		}
		return fmt.Errorf("应用迁移失败: %w", err)
	}

	after, _, _ := m.Version()
	logger.Info("预订库结构迁移完成",
		zap.Uint("from", before),
		zap.Uint("to", after),
	)
	return nil
}

package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/logger"
)

// RunMigrations は migrationsPath 配下のSQLで rooms・reservations・payments を最新にする
// 前回の失敗で dirty のままの場合は手動での復旧を求めてエラーにする
func RunMigrations(db *sql.DB, migrationsPath string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("マイグレーションドライバー作成エラー: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("マイグレーションインスタンス作成エラー: %w", err)
	}

	if _, dirty, err := m.Version(); err == nil && dirty {
		return errors.New("マイグレーションが dirty 状態です。手動で修正してください")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("マイグレーション実行エラー: %w", err)
	}

	if version, _, err := m.Version(); err == nil {
		logger.Info("マイグレーションを適用しました", zap.Uint("version", version))
	}
	return nil
}

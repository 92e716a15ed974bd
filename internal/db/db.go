package db

import (
	"fmt"

	"nippo/internal/auth"
	"nippo/internal/report"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&report.Report{},
		&auth.User{},
	); err != nil {
		return err
	}

	// Listing always scans one user's reports newest first.
	stmts := []string{
		`create index if not exists idx_reports_user_date on reports(user_id, date desc, id desc);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}

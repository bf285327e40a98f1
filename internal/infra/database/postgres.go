package database

import (
	"log/slog"

	slogGorm "github.com/orandin/slog-gorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/gaushala-net/gaushala/internal/infra/database/models"
)

func NewPostgres(dsn string) (*gorm.DB, error) {
	gormLogger := slogGorm.New(
		slogGorm.WithLogger(slog.Default()),
		slogGorm.SetLogLevel(slogGorm.ErrorLogType, slog.LevelWarn),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger,
	})
	return db, err
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.Post{},
		&models.PostTag{},
		&models.PostAttestation{},
		&models.Workshop{},
		&models.WorkshopTag{},
		&models.WorkshopRegistration{},
		&models.OwnerIndex{},
		&models.RegistrantIndex{},
	)
}

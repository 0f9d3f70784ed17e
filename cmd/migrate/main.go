package main

import (
	"fruitpos-backend/internal/config"
	"fruitpos-backend/internal/migration"
	"fruitpos-backend/internal/model"
	"fruitpos-backend/pkg/database"

	"github.com/sirupsen/logrus"
)

// Deploy-time migration: brings the schema up to date, then reconciles
// transactions written under the legacy column names into the canonical
// schema. Run once per deploy; safe to re-run.
func main() {
	cfg := config.LoadConfig()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	db := database.ConnectDB(cfg)

	if err := db.AutoMigrate(&model.User{}, &model.Product{}, &model.Transaction{}); err != nil {
		logrus.Fatalf("schema migration failed: %v", err)
	}
	logrus.Info("schema migrated")

	health, err := migration.DetectLegacyFields(db)
	if err != nil {
		logrus.Fatalf("legacy field detection failed: %v", err)
	}
	if !health.NeedsBackfill {
		logrus.WithField("sampled", health.Sampled).Info("transaction schema is canonical, nothing to backfill")
		return
	}
	logrus.WithField("legacy_fields", health.LegacyPopulated).Info("legacy transaction fields detected, backfilling")

	report, err := migration.BackfillLegacyFields(db)
	if err != nil {
		logrus.Fatalf("backfill failed: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"total":    report.Total,
		"migrated": report.Migrated,
		"skipped":  report.Skipped,
		"failed":   report.Failed,
	}).Info("backfill finished")
	for _, msg := range report.Errors {
		logrus.Warn(msg)
	}
	if report.Failed > 0 {
		logrus.Fatalf("%d records failed to backfill", report.Failed)
	}
}

package migration

import (
	"fmt"

	"fruitpos-backend/internal/model"

	"gorm.io/gorm"
)

// Earlier revisions of the store wrote transactions under legacy column
// names (nama_buah, jumlah, total_harga). This package reconciles those
// rows into the canonical schema once, at deploy time. It is not exposed
// over HTTP.

const maxReportedErrors = 5

// SchemaHealth describes what a sampled transaction row looks like.
type SchemaHealth struct {
	Sampled         bool     `json:"sampled"`
	LegacyPopulated []string `json:"legacy_populated"`
	NeedsBackfill   bool     `json:"needs_backfill"`
}

// BackfillReport summarizes a backfill run. Errors holds at most the
// first few failures so the report stays small.
type BackfillReport struct {
	Total    int      `json:"total"`
	Migrated int      `json:"migrated"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// DetectLegacyFields inspects one sample transaction for legacy field
// usage. An empty store reports healthy.
func DetectLegacyFields(db *gorm.DB) (*SchemaHealth, error) {
	var tx model.Transaction
	err := db.Order("tanggal ASC").First(&tx).Error
	if err == gorm.ErrRecordNotFound {
		return &SchemaHealth{}, nil
	} else if err != nil {
		return nil, err
	}

	health := &SchemaHealth{Sampled: true}
	if tx.LegacyName != nil && *tx.LegacyName != "" {
		health.LegacyPopulated = append(health.LegacyPopulated, "nama_buah")
	}
	if tx.LegacyQuantity != nil && *tx.LegacyQuantity != 0 {
		health.LegacyPopulated = append(health.LegacyPopulated, "jumlah")
	}
	if tx.LegacyTotal != nil && *tx.LegacyTotal != 0 {
		health.LegacyPopulated = append(health.LegacyPopulated, "total_harga")
	}
	health.NeedsBackfill = needsBackfill(&tx)
	return health, nil
}

// BackfillLegacyFields copies legacy values into canonical fields for
// every transaction where the canonical field is still empty, leaving
// already-canonical records untouched.
func BackfillLegacyFields(db *gorm.DB) (*BackfillReport, error) {
	report := &BackfillReport{}

	var transactions []model.Transaction
	if err := db.Find(&transactions).Error; err != nil {
		return nil, err
	}

	for i := range transactions {
		tx := &transactions[i]
		report.Total++

		if !needsBackfill(tx) {
			report.Skipped++
			continue
		}

		applyBackfill(tx)
		if err := db.Save(tx).Error; err != nil {
			report.Failed++
			if len(report.Errors) < maxReportedErrors {
				report.Errors = append(report.Errors, fmt.Sprintf("transaction %s: %v", tx.ID, err))
			}
			continue
		}
		report.Migrated++
	}

	return report, nil
}

func needsBackfill(tx *model.Transaction) bool {
	if tx.ProductName == "" && tx.LegacyName != nil && *tx.LegacyName != "" {
		return true
	}
	if tx.Quantity == 0 && tx.LegacyQuantity != nil && *tx.LegacyQuantity != 0 {
		return true
	}
	if tx.TotalPrice == 0 && tx.LegacyTotal != nil && *tx.LegacyTotal != 0 {
		return true
	}
	return false
}

func applyBackfill(tx *model.Transaction) {
	if tx.ProductName == "" && tx.LegacyName != nil {
		tx.ProductName = *tx.LegacyName
	}
	if tx.Quantity == 0 && tx.LegacyQuantity != nil {
		tx.Quantity = *tx.LegacyQuantity
	}
	if tx.TotalPrice == 0 && tx.LegacyTotal != nil {
		tx.TotalPrice = *tx.LegacyTotal
	}
}

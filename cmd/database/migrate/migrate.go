package migration

import (
	"fmt"

	"FoodShare-Backend/entities"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const backfillBatchSize = 500

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.User{}); err != nil {
		return fmt.Errorf("migrating user table: %w", err)
	}
	if err := db.AutoMigrate(&entities.Donation{}); err != nil {
		return fmt.Errorf("migrating donation table: %w", err)
	}
	if err := db.AutoMigrate(&entities.DonationEvent{}); err != nil {
		return fmt.Errorf("migrating donation event table: %w", err)
	}
	if err := db.AutoMigrate(&entities.NotificationLog{}); err != nil {
		return fmt.Errorf("migrating notification log table: %w", err)
	}

	for _, model := range []any{&entities.User{}, &entities.Donation{}} {
		if err := backfillGeoVectors(db, model); err != nil {
			return err
		}
	}

	log.Info("database migration complete")
	return nil
}

// backfillGeoVectors fills geo_x/y/z for rows written before the columns
// existed. A unit vector is never all zeros, so those rows are the pending ones.
func backfillGeoVectors(db *gorm.DB, model any) error {
	type row struct {
		ID        uuid.UUID
		Latitude  float64
		Longitude float64
	}

	total := 0
	for {
		var rows []row
		if err := db.Model(model).
			Select("id", "latitude", "longitude").
			Where("geo_x = 0 AND geo_y = 0 AND geo_z = 0").
			Limit(backfillBatchSize).
			Scan(&rows).Error; err != nil {
			return fmt.Errorf("backfilling geo vectors: %w", err)
		}
		for _, r := range rows {
			if err := db.Model(model).
				Where("id = ?", r.ID).
				UpdateColumns(entities.LocationColumns(r.Latitude, r.Longitude)).Error; err != nil {
				return fmt.Errorf("backfilling geo vectors: %w", err)
			}
		}
		total += len(rows)
		if len(rows) < backfillBatchSize {
			break
		}
	}

	if total > 0 {
		log.Infow("backfilled geo vectors", "rows", total)
	}
	return nil
}

package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the tables backing this package's models.
// Used by the seed command and tests; production schemas are managed
// externally.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userModel{})
}

package database

import (
	"errors"
	"saasanalytics/models"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetSetting returns a persisted key/value setting.
// ok is false when the key does not exist.
func GetSetting(db *gorm.DB, key string) (value string, ok bool, err error) {
	if db == nil {
		return "", false, errors.New("database not initialized")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", false, errors.New("empty setting key")
	}

	var s models.AppSetting
	if err := db.First(&s, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return s.Value, true, nil
}

// SetSetting persists a key/value setting.
func SetSetting(db *gorm.DB, key, value string) error {
	if db == nil {
		return errors.New("database not initialized")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("empty setting key")
	}

	value = strings.TrimSpace(value)
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models.AppSetting{Key: key, Value: value}).Error
}

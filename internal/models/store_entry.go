package models

import "time"

// StoreEntry is a single key of the settings store. Value holds JSON text.
type StoreEntry struct {
	Key       string `gorm:"primaryKey;size:120"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (StoreEntry) TableName() string {
	return "store_entries"
}

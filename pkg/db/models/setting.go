package models

import "time"

// Setting is one named durable record in the shop's key/value configuration
// store. Each record is read and written as a whole JSON value.
type Setting struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     []byte    `gorm:"column:value;type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import "time"

// AppSetting is a simple key/value store for process configuration that
// survives restarts.
type AppSetting struct {
	Key       string    `gorm:"type:varchar(100);primarykey" json:"key"`
	Value     string    `gorm:"type:varchar(255);not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

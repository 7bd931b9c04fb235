package models

import "time"

// Setting is the singleton store profile row (id is always 1).
type Setting struct {
	ID        int       `gorm:"column:id;primaryKey"`
	MartName  string    `gorm:"column:mart_name;not null"`
	AdminName string    `gorm:"column:admin_name;not null"`
	Address   string    `gorm:"column:address;not null"`
	Contact   string    `gorm:"column:contact;not null"`
	Currency  string    `gorm:"column:currency;not null"`
	AccessPin string    `gorm:"column:access_pin;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

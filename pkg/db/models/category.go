package models

import "time"

// Category is a plain label products reference by name. Removing a category
// leaves referencing products untouched.
type Category struct {
	Name      string    `gorm:"column:name;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

package db

import "gorm.io/gorm"

// Limit bounds a result set. Non-positive n falls back to def; values
// above max are clamped.
func Limit(n, def, max int) func(*gorm.DB) *gorm.DB {
	if n <= 0 {
		n = def
	}
	if n > max {
		n = max
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(n)
	}
}

// NewestFirst orders by creation time, breaking ties on id.
func NewestFirst() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC").Order("id DESC")
	}
}

package specification

import "gorm.io/gorm"

// ActiveOnly keeps sessions whose final guess has not resolved yet.
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_completed = ?", false)
}

// RandomOrder is used when drawing fallback quiz questions.
type RandomOrder struct{}

func (s RandomOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("RANDOM()")
}

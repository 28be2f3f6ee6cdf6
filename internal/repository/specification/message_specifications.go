package specification

import (
	"gorm.io/gorm"
)

type ByRoom struct {
	Room string
}

func (s ByRoom) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("room = ?", s.Room)
}

type Undeleted struct{}

func (s Undeleted) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

type NotAuthoredBy struct {
	AuthorId string
}

func (s NotAuthoredBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("author_id <> ?", s.AuthorId)
}

type OrderByCreation struct {
	Desc bool
}

func (s OrderByCreation) Apply(db *gorm.DB) *gorm.DB {
	if s.Desc {
		return db.Order("created_at DESC, id DESC")
	}
	return db.Order("created_at ASC, id ASC")
}

type Paged struct {
	Limit  int
	Offset int
}

func (s Paged) Apply(db *gorm.DB) *gorm.DB {
	if s.Limit > 0 {
		db = db.Limit(s.Limit)
	}
	if s.Offset > 0 {
		db = db.Offset(s.Offset)
	}
	return db
}

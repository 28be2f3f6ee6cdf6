package specification

import (
	"gorm.io/gorm"
)

type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

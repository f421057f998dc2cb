package journal

import (
	"strings"

	"gorm.io/gorm"
)

type SortType string

const (
	SortTypeAscending  SortType = "asc"
	SortTypeDescending SortType = "desc"
)

func (s SortType) ToString() string {
	return strings.ToUpper(string(s))
}

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type ListOptions struct {
	Offset uint32    `json:"offset,omitempty"`
	Limit  uint32    `json:"limit,omitempty"`
	Sort   *SortType `json:"sort,omitempty"` // Optional sort type (asc/desc)
}

func applySort(db *gorm.DB, sortBy string, defaultSort SortType, sortType *SortType) *gorm.DB {
	if sortType == nil || (*sortType != SortTypeAscending && *sortType != SortTypeDescending) {
		return db.Order(sortBy + " " + defaultSort.ToString())
	}
	return db.Order(sortBy + " " + sortType.ToString())
}

func paginate(offset, limit uint32) func(db *gorm.DB) *gorm.DB {
	l := int(limit)
	if l == 0 {
		l = DefaultLimit
	} else if l > MaxLimit {
		l = MaxLimit
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(int(offset)).Limit(l)
	}
}

func applyListOptions(db *gorm.DB, sortBy string, defaultSort SortType, options *ListOptions) *gorm.DB {
	if options == nil {
		return applySort(db, sortBy, defaultSort, nil).Limit(DefaultLimit)
	}
	db = applySort(db, sortBy, defaultSort, options.Sort)
	return db.Scopes(paginate(options.Offset, options.Limit))
}

package model

import "strings"

// SortField is a column the feed can be ordered by.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByLikes     SortField = "likes"
)

// SortOrder is the feed ordering direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FilterType selects a preset view of the feed.
type FilterType string

const (
	FilterAll     FilterType = "all"
	FilterPopular FilterType = "popular"
	FilterLatest  FilterType = "latest"
)

// FetchOptions are the paging, sorting and search parameters of a feed page.
// Zero values mean "use the default".
type FetchOptions struct {
	Page       int
	PageSize   int
	SortBy     SortField
	SortOrder  SortOrder
	SearchTerm string
	Filter     FilterType
}

// FeedQuery is the resolved query handed to the persistence layer.
type FeedQuery struct {
	SortBy     SortField
	SortOrder  SortOrder
	SearchTerm string
	Offset     int
	Limit      int
}

// ParseSortField validates a sort column name. Empty means created_at.
func ParseSortField(s string) (SortField, error) {
	switch SortField(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByCreatedAt:
		return SortByCreatedAt, nil
	case SortByLikes:
		return SortByLikes, nil
	}
	return "", ErrInvalidSort
}

// ParseSortOrder validates a sort direction. Empty means desc.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortDesc:
		return SortDesc, nil
	case SortAsc:
		return SortAsc, nil
	}
	return "", ErrInvalidSort
}

// ParseFilterType validates a filter preset. Empty means all.
func ParseFilterType(s string) (FilterType, error) {
	switch FilterType(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterPopular:
		return FilterPopular, nil
	case FilterLatest:
		return FilterLatest, nil
	}
	return "", ErrInvalidFilter
}

// EffectiveSort applies the filter preset on top of the requested ordering.
func (o FetchOptions) EffectiveSort() (SortField, SortOrder) {
	switch o.Filter {
	case FilterPopular:
		return SortByLikes, SortDesc
	case FilterLatest:
		return SortByCreatedAt, SortDesc
	}
	sortBy, sortOrder := o.SortBy, o.SortOrder
	if sortBy == "" {
		sortBy = SortByCreatedAt
	}
	if sortOrder == "" {
		sortOrder = SortDesc
	}
	return sortBy, sortOrder
}

package handler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"guestbook/internal/model"
)

// queryInt parses an optional integer query parameter, returning def when absent.
func queryInt(q url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", model.ErrValidation, key)
	}
	return n, nil
}

// parseFetchOptions reads the feed query string. An absent page means page 1.
// Sort and filter values are validated by the feed service.
func parseFetchOptions(q url.Values) (model.FetchOptions, error) {
	page, err := queryInt(q, "page", 1)
	if err != nil {
		return model.FetchOptions{}, err
	}
	pageSize, err := queryInt(q, "page_size", 0)
	if err != nil {
		return model.FetchOptions{}, err
	}

	return model.FetchOptions{
		Page:       page,
		PageSize:   pageSize,
		SortBy:     model.SortField(q.Get("sort_by")),
		SortOrder:  model.SortOrder(q.Get("sort_order")),
		SearchTerm: q.Get("q"),
		Filter:     model.FilterType(q.Get("filter")),
	}, nil
}

package handler

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestbook/internal/model"
)

func TestParseFetchOptions(t *testing.T) {
	opts, err := parseFetchOptions(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, 1, opts.Page)
	assert.Equal(t, 0, opts.PageSize)

	q := url.Values{
		"page":       {"3"},
		"page_size":  {"25"},
		"sort_by":    {"likes"},
		"sort_order": {"asc"},
		"q":          {"50%_off"},
		"filter":     {"popular"},
	}
	opts, err = parseFetchOptions(q)
	require.NoError(t, err)
	assert.Equal(t, model.FetchOptions{
		Page:       3,
		PageSize:   25,
		SortBy:     model.SortByLikes,
		SortOrder:  model.SortAsc,
		SearchTerm: "50%_off",
		Filter:     model.FilterPopular,
	}, opts)
}

func TestParseFetchOptions_RejectsNonIntegers(t *testing.T) {
	_, err := parseFetchOptions(url.Values{"page": {"two"}})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = parseFetchOptions(url.Values{"page_size": {"1.5"}})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestParseFetchOptions_PassesZeroPageThrough(t *testing.T) {
	// The feed service rejects it with ErrInvalidPage
	opts, err := parseFetchOptions(url.Values{"page": {"0"}})
	require.NoError(t, err)
	assert.Equal(t, 0, opts.Page)
}

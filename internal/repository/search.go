package repository

import (
	"fmt"
	"strings"

	"guestbook/internal/model"
)

// likeEscaper neutralizes ILIKE wildcards so the search term matches literally.
// The pattern is always bound as a parameter, never spliced into SQL.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a case-insensitive substring pattern for ILIKE ... ESCAPE '\'.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}

// searchClause returns the WHERE fragment for a search term, numbering its
// placeholder from argPos. Blank terms match everything.
func searchClause(term string, argPos int) (string, []interface{}) {
	if strings.TrimSpace(term) == "" {
		return "", nil
	}
	clause := fmt.Sprintf(`WHERE (username ILIKE $%d ESCAPE '\' OR content ILIKE $%d ESCAPE '\')`, argPos, argPos)
	return clause, []interface{}{likePattern(term)}
}

var sortColumns = map[model.SortField]string{
	model.SortByCreatedAt: "created_at",
	model.SortByLikes:     "likes",
}

var sortDirections = map[model.SortOrder]string{
	model.SortAsc:  "ASC",
	model.SortDesc: "DESC",
}

// orderClause maps the sort enums onto whitelisted SQL. The id tiebreaker keeps
// pages stable when many rows share a likes count or timestamp.
func orderClause(sortBy model.SortField, order model.SortOrder) (string, error) {
	col, ok := sortColumns[sortBy]
	if !ok {
		return "", model.ErrInvalidSort
	}
	dir, ok := sortDirections[order]
	if !ok {
		return "", model.ErrInvalidSort
	}
	return fmt.Sprintf("ORDER BY %s %s, id %s", col, dir, dir), nil
}

// buildListQuery assembles the paged feed query.
func buildListQuery(q model.FeedQuery) (string, []interface{}, error) {
	order, err := orderClause(q.SortBy, q.SortOrder)
	if err != nil {
		return "", nil, err
	}

	where, args := searchClause(q.SearchTerm, 1)
	args = append(args, q.Limit, q.Offset)

	query := fmt.Sprintf(`
		SELECT %s
		FROM messages
		%s
		%s
		LIMIT $%d OFFSET $%d
	`, messageColumns, where, order, len(args)-1, len(args))

	return query, args, nil
}

package db

import (
	"slices"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"mayadmin/internal/types"
)

// psql is the shared statement builder with PostgreSQL placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// sortColumn validates a requested sort column against the entity's
// allow-list. Anything not on the list silently falls back to the default
// column; raw values are never interpolated into ORDER BY.
func sortColumn(allowed []string, requested, fallback string) string {
	if slices.Contains(allowed, requested) {
		return requested
	}
	return fallback
}

// orderKeyword maps a SortOrder to its SQL keyword.
func orderKeyword(o types.SortOrder) string {
	if o == types.SortAsc {
		return "ASC"
	}
	return "DESC"
}

// substring wraps a trimmed search term for a case-sensitive LIKE match.
// Returns "" when the term is empty or whitespace, which disables the
// search predicate entirely.
func substring(search string) string {
	s := strings.TrimSpace(search)
	if s == "" {
		return ""
	}
	return "%" + s + "%"
}

// pagedQueries builds the COUNT and page SELECT for a list query from a
// shared predicate, guaranteeing both run under the same filter. Conditions
// are AND-combined; an empty condition set omits the WHERE clause.
func pagedQueries(table, columns string, conds sq.And, sort string, order types.SortOrder, params types.ListParams) (sq.SelectBuilder, sq.SelectBuilder) {
	count := psql.Select("COUNT(*)").From(table)
	page := psql.Select(columns).From(table).
		OrderBy(sort + " " + orderKeyword(order)).
		Limit(uint64(params.PageSize)).
		Offset(uint64(params.Offset()))

	if len(conds) > 0 {
		count = count.Where(conds)
		page = page.Where(conds)
	}
	return count, page
}

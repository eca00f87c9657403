package store

import (
	"fmt"
	"strings"
)

const productColumns = `id, name, description, price, original_price, category, subcategory, brand,
	images, stock, rating_average, rating_count, features, is_featured, is_active, tags, created_at`

// likeEscaper makes user text match literally inside LIKE patterns.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// buildWhere renders the filter as a WHERE clause (without the keyword) and
// its positional arguments. An empty filter renders "TRUE".
func buildWhere(f ProductFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ActiveOnly {
		conds = append(conds, "is_active")
	}
	if f.Category != "" {
		conds = append(conds, "category = "+arg(f.Category))
	}
	if f.Subcategory != "" {
		conds = append(conds, "subcategory = "+arg(f.Subcategory))
	}
	if f.Brand != "" {
		conds = append(conds, "brand ILIKE "+arg(containsPattern(f.Brand)))
	}
	if f.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*f.MaxPrice))
	}
	if f.FeaturedOnly {
		conds = append(conds, "is_featured")
	}
	if f.Text != "" {
		p := arg(containsPattern(f.Text))
		var tagCond string
		if f.TextTags == TagContains {
			tagCond = "EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE t ILIKE " + p + ")"
		} else {
			tagCond = "EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE lower(t) = lower(" + arg(f.Text) + "))"
		}
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s OR brand ILIKE %s OR %s)", p, p, p, tagCond))
	}

	if len(conds) == 0 {
		return "TRUE", args
	}
	return strings.Join(conds, " AND "), args
}

// buildFindQuery returns the page query, the count query and the arguments
// they share. The page query takes two extra arguments, limit then offset.
func buildFindQuery(f ProductFilter, s Sort, offset, limit int) (string, string, []any, []any) {
	where, args := buildWhere(f)

	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}

	countSQL := "SELECT COUNT(*) FROM products WHERE " + where

	pageArgs := append(append([]any{}, args...), limit, offset)
	pageSQL := fmt.Sprintf("SELECT %s FROM products WHERE %s ORDER BY %s %s, seq ASC LIMIT $%d OFFSET $%d",
		productColumns, where, s.column(), dir, len(args)+1, len(args)+2)

	return pageSQL, countSQL, pageArgs, args
}

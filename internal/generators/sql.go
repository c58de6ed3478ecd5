package generators

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"website/internal/website"
)

// Querier runs a SELECT and returns column → value rows.
type Querier interface {
	Select(ctx context.Context, query string, args ...any) ([]map[string]any, error)
}

// SQLSource reads generator records from tables named "tab<DocType>".
type SQLSource struct {
	db Querier
}

func NewSQLSource(db Querier) *SQLSource {
	return &SQLSource{db: db}
}

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	orderTermPattern  = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(?:\s+(?i:(asc|desc)))?$`)
)

const nestedRouteExpr = `coalesce(parent_website_route, '') || ` +
	`case when coalesce(parent_website_route, '') = '' then '' else '/' end || page_name`

func TableName(docType string) string {
	return "tab" + docType
}

func (s *SQLSource) RouteRows(ctx context.Context, q RouteQuery) ([]RouteRow, error) {
	query, err := routeQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Select(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select %s routes: %w", q.DocType, err)
	}

	out := make([]RouteRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, RouteRow{
			Route:    cast.ToString(row["route"]),
			Name:     cast.ToString(row["name"]),
			Modified: cast.ToTime(row["modified"]),
		})
	}
	return out, nil
}

func (s *SQLSource) GetDoc(ctx context.Context, ref DocRef) (map[string]any, error) {
	query := fmt.Sprintf(`select * from %s where name = ? limit 1`, quoteIdent(table(ref.DocType, ref.Collection)))
	rows, err := s.db.Select(ctx, query, ref.Name)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", ref.DocType, err)
	}
	if len(rows) == 0 {
		return nil, website.ErrNotFound
	}
	return rows[0], nil
}

func routeQuery(q RouteQuery) (string, error) {
	routeExpr := "page_name"
	if q.NestedRoute {
		routeExpr = nestedRouteExpr
	}

	var query strings.Builder
	fmt.Fprintf(&query, "select %s as route, name, modified from %s", routeExpr, quoteIdent(table(q.DocType, q.Collection)))

	if q.ConditionField != "" {
		if !identifierPattern.MatchString(q.ConditionField) {
			return "", fmt.Errorf("invalid condition field %q for %s", q.ConditionField, q.DocType)
		}
		fmt.Fprintf(&query, " where coalesce(%s, 0) != 0", quoteIdent(q.ConditionField))
	}

	orderBy, err := orderClause(q.OrderBy)
	if err != nil {
		return "", fmt.Errorf("%s: %w", q.DocType, err)
	}
	query.WriteString(" order by " + orderBy)

	return query.String(), nil
}

func orderClause(orderBy string) (string, error) {
	if strings.TrimSpace(orderBy) == "" {
		orderBy = DefaultOrderBy
	}

	terms := strings.Split(orderBy, ",")
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		match := orderTermPattern.FindStringSubmatch(strings.TrimSpace(term))
		if match == nil {
			return "", fmt.Errorf("invalid order by %q", orderBy)
		}
		clause := quoteIdent(match[1])
		if match[2] != "" {
			clause += " " + strings.ToLower(match[2])
		}
		out = append(out, clause)
	}
	return strings.Join(out, ", "), nil
}

func table(docType, collection string) string {
	if collection != "" {
		return collection
	}
	return TableName(docType)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

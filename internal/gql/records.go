package gql

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	genqlientgraphql "github.com/Khan/genqlient/graphql"
	"github.com/spf13/cast"

	"website/internal/generators"
	"website/internal/website"
)

const defaultPageLimit = 100

var namePattern = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// RecordSource reads generator records from a CMS collection over GraphQL.
// Route assembly and condition filtering happen client-side.
type RecordSource struct {
	client    genqlientgraphql.Client
	pageLimit int
}

func NewRecordSource(client genqlientgraphql.Client) *RecordSource {
	return &RecordSource{client: client, pageLimit: defaultPageLimit}
}

type collectionPage struct {
	Docs        []JSONObject `json:"docs"`
	HasNextPage bool         `json:"hasNextPage"`
}

type collectionResponse struct {
	Collection collectionPage `json:"collection"`
}

func (s *RecordSource) RouteRows(ctx context.Context, q generators.RouteQuery) ([]generators.RouteRow, error) {
	fields := []string{"name", "page_name", "modified"}
	if q.NestedRoute {
		fields = append(fields, generators.FieldParentRoute)
	}
	if q.ConditionField != "" {
		fields = append(fields, q.ConditionField)
	}

	query, err := listQuery(collectionName(q.DocType, q.Collection), fields)
	if err != nil {
		return nil, fmt.Errorf("%s routes: %w", q.DocType, err)
	}

	var rows []generators.RouteRow
	for page := 1; ; page++ {
		var data collectionResponse
		req := &genqlientgraphql.Request{
			OpName: "GeneratorRoutes",
			Query:  query,
			Variables: map[string]any{
				"limit": s.pageLimit,
				"page":  page,
				"sort":  sortArg(q.OrderBy),
			},
		}
		if err := s.client.MakeRequest(ctx, req, &genqlientgraphql.Response{Data: &data}); err != nil {
			return nil, fmt.Errorf("query %s routes: %w", q.DocType, err)
		}

		for _, doc := range data.Collection.Docs {
			values, err := doc.Values()
			if err != nil {
				return nil, fmt.Errorf("%s routes: %w", q.DocType, err)
			}
			if q.ConditionField != "" && !cast.ToBool(values[q.ConditionField]) {
				continue
			}
			rows = append(rows, generators.RouteRow{
				Route:    route(values, q.NestedRoute),
				Name:     cast.ToString(values["name"]),
				Modified: cast.ToTime(values["modified"]),
			})
		}

		if !data.Collection.HasNextPage {
			return rows, nil
		}
	}
}

func (s *RecordSource) GetDoc(ctx context.Context, ref generators.DocRef) (map[string]any, error) {
	fields := ref.Fields
	if len(fields) == 0 {
		fields = []string{"name"}
	}

	query, err := docQuery(collectionName(ref.DocType, ref.Collection), fields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref.DocType, err)
	}

	var data collectionResponse
	req := &genqlientgraphql.Request{
		OpName:    "GeneratorDoc",
		Query:     query,
		Variables: map[string]any{"name": ref.Name},
	}
	if err := s.client.MakeRequest(ctx, req, &genqlientgraphql.Response{Data: &data}); err != nil {
		return nil, fmt.Errorf("query %s %q: %w", ref.DocType, ref.Name, err)
	}
	if len(data.Collection.Docs) == 0 {
		return nil, website.ErrNotFound
	}

	return data.Collection.Docs[0].Values()
}

func listQuery(collection string, fields []string) (string, error) {
	selection, err := selectionSet(collection, fields)
	if err != nil {
		return "", err
	}
	return "query GeneratorRoutes($limit: Int!, $page: Int!, $sort: String) {\n" +
		"  collection: " + collection + "(limit: $limit, page: $page, sort: $sort) {\n" +
		"    docs { " + selection + " }\n" +
		"    hasNextPage\n" +
		"  }\n}", nil
}

func docQuery(collection string, fields []string) (string, error) {
	selection, err := selectionSet(collection, fields)
	if err != nil {
		return "", err
	}
	return "query GeneratorDoc($name: String!) {\n" +
		"  collection: " + collection + "(where: {name: {equals: $name}}, limit: 1) {\n" +
		"    docs { " + selection + " }\n" +
		"  }\n}", nil
}

func selectionSet(collection string, fields []string) (string, error) {
	if !namePattern.MatchString(collection) {
		return "", fmt.Errorf("invalid collection name %q", collection)
	}
	for _, field := range fields {
		if !namePattern.MatchString(field) {
			return "", fmt.Errorf("invalid field name %q", field)
		}
	}
	return strings.Join(fields, " "), nil
}

// collectionName defaults to the type name with spaces replaced, "Blog Post"
// becoming "Blog_Post".
func collectionName(docType, collection string) string {
	if collection != "" {
		return collection
	}
	return strings.ReplaceAll(docType, " ", "_")
}

// sortArg turns "modified desc" into "-modified". Only the first term is used.
func sortArg(orderBy string) string {
	term := strings.TrimSpace(strings.Split(orderBy, ",")[0])
	parts := strings.Fields(term)
	if len(parts) == 0 {
		return "name"
	}
	if len(parts) > 1 && strings.EqualFold(parts[1], "desc") {
		return "-" + parts[0]
	}
	return parts[0]
}

func route(values map[string]any, nested bool) string {
	pageName := cast.ToString(values["page_name"])
	if !nested {
		return pageName
	}
	parent := cast.ToString(values[generators.FieldParentRoute])
	if parent == "" {
		return pageName
	}
	return parent + "/" + pageName
}

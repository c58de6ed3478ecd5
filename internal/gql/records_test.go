package gql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Khan/genqlient/graphql"
	"github.com/stretchr/testify/require"

	"website/internal/generators"
	"website/internal/website"
)

type fakeGraphQLClient struct {
	requests []*graphql.Request
	pages    []string
	doc      string
	err      error
}

func (c *fakeGraphQLClient) MakeRequest(_ context.Context, req *graphql.Request, resp *graphql.Response) error {
	c.requests = append(c.requests, req)
	if c.err != nil {
		return c.err
	}

	switch req.OpName {
	case "GeneratorRoutes":
		page := requestVarInt(req, "page")
		if page < 1 || page > len(c.pages) {
			return fmt.Errorf("unexpected page %d", page)
		}
		return decodeGraphQLData(resp, c.pages[page-1])
	case "GeneratorDoc":
		return decodeGraphQLData(resp, c.doc)
	default:
		return fmt.Errorf("unexpected operation %q", req.OpName)
	}
}

func decodeGraphQLData(resp *graphql.Response, payload string) error {
	return json.Unmarshal([]byte(payload), resp.Data)
}

func requestVarInt(req *graphql.Request, key string) int {
	values, ok := req.Variables.(map[string]any)
	if !ok {
		return 0
	}
	value, _ := values[key].(int)
	return value
}

func TestRouteRowsFiltersAndPaginates(t *testing.T) {
	client := &fakeGraphQLClient{pages: []string{
		`{"collection": {"hasNextPage": true, "docs": [
			{"name": "BP-0001", "page_name": "hello-world", "parent_website_route": "blog", "published": true, "modified": "2024-05-01T10:00:00Z"},
			{"name": "BP-0002", "page_name": "draft", "parent_website_route": "blog", "published": false, "modified": "2024-05-01T10:00:00Z"}
		]}}`,
		`{"collection": {"hasNextPage": false, "docs": [
			{"name": "BP-0003", "page_name": "top", "parent_website_route": null, "published": true, "modified": "2024-05-03T10:00:00Z"}
		]}}`,
	}}

	rows, err := NewRecordSource(client).RouteRows(context.Background(), generators.RouteQuery{
		DocType:        "Blog Post",
		Collection:     "Blog_posts",
		NestedRoute:    true,
		ConditionField: "published",
		OrderBy:        "modified desc",
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "blog/hello-world", rows[0].Route)
	require.Equal(t, "BP-0001", rows[0].Name)
	require.True(t, rows[0].Modified.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
	require.Equal(t, "top", rows[1].Route)

	require.Len(t, client.requests, 2)
	first := client.requests[0]
	require.Contains(t, first.Query, "collection: Blog_posts(limit: $limit, page: $page, sort: $sort)")
	require.Contains(t, first.Query, "parent_website_route published")
	require.Equal(t, "-modified", first.Variables.(map[string]any)["sort"])
}

func TestGetDoc(t *testing.T) {
	client := &fakeGraphQLClient{doc: `{"collection": {"docs": [
		{"name": "BP-0001", "title": "Hello", "published": true}
	]}}`}

	doc, err := NewRecordSource(client).GetDoc(context.Background(), generators.DocRef{
		DocType: "Blog Post",
		Name:    "BP-0001",
		Fields:  []string{"name", "title", "published"},
	})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"name": "BP-0001", "title": "Hello", "published": true}, doc)

	req := client.requests[0]
	require.Equal(t, "BP-0001", req.Variables.(map[string]any)["name"])
	require.True(t, strings.Contains(req.Query, "collection: Blog_Post(where: {name: {equals: $name}}, limit: 1)"))
}

func TestGetDocNotFound(t *testing.T) {
	client := &fakeGraphQLClient{doc: `{"collection": {"docs": []}}`}
	_, err := NewRecordSource(client).GetDoc(context.Background(), generators.DocRef{DocType: "Web Page", Name: "missing"})
	if !website.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRouteRowsPropagatesClientErrors(t *testing.T) {
	errDown := errors.New("cms unavailable")
	_, err := NewRecordSource(&fakeGraphQLClient{err: errDown}).RouteRows(context.Background(), generators.RouteQuery{DocType: "Web Page"})
	require.ErrorIs(t, err, errDown)
}

func TestRejectsInvalidNames(t *testing.T) {
	client := &fakeGraphQLClient{}
	_, err := NewRecordSource(client).RouteRows(context.Background(), generators.RouteQuery{
		DocType:        "Web Page",
		ConditionField: "published } evil {",
	})
	require.Error(t, err)
	require.Empty(t, client.requests)
}

func TestSortArg(t *testing.T) {
	cases := map[string]string{
		"":                     "name",
		"name asc":             "name",
		"modified DESC":        "-modified",
		"title, modified desc": "title",
	}
	for input, expected := range cases {
		if got := sortArg(input); got != expected {
			t.Fatalf("expected %q for %q, got %q", expected, input, got)
		}
	}
}

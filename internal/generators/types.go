package generators

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"website/internal/website"
)

const (
	FieldParentRoute = "parent_website_route"
	DefaultOrderBy   = "name asc"
)

// RouteContextProvider is a loaded record that can describe the page it
// generates.
type RouteContextProvider interface {
	RouteContext(ctx context.Context) (*website.PageContext, error)
}

// Type describes a record type that generates pages.
type Type struct {
	Name string
	// Fields lists the record's columns. A type with FieldParentRoute nests
	// its routes under the parent route.
	Fields         []string
	ConditionField string
	OrderBy        string
	// Collection overrides the table or collection the source reads from.
	Collection string
	// Source overrides the index-wide record source for this type.
	Source Source
	New    func() RouteContextProvider
}

func (t Type) HasField(name string) bool {
	for _, field := range t.Fields {
		if field == name {
			return true
		}
	}
	return false
}

func (t Type) orderBy() string {
	if t.OrderBy == "" {
		return DefaultOrderBy
	}
	return t.OrderBy
}

// Entry is one generated route.
type Entry struct {
	RouteName  string    `json:"route"`
	RecordType string    `json:"doctype"`
	RecordID   string    `json:"name"`
	ModifiedAt time.Time `json:"modified"`
}

// RouteQuery selects the route rows of one record type.
type RouteQuery struct {
	DocType        string
	Collection     string
	NestedRoute    bool
	ConditionField string
	OrderBy        string
}

type RouteRow struct {
	Route    string
	Name     string
	Modified time.Time
}

type DocRef struct {
	DocType    string
	Collection string
	Name       string
	// Fields is the type's field list, for sources that must name columns.
	Fields []string
}

// Source reads generator records. GetDoc returns website.ErrNotFound when the
// record does not exist.
type Source interface {
	RouteRows(ctx context.Context, query RouteQuery) ([]RouteRow, error)
	GetDoc(ctx context.Context, ref DocRef) (map[string]any, error)
}

// Registry holds the known generator types by name.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Type
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Type)}
}

// Register panics on an incomplete or duplicate type; registration happens
// at startup.
func (r *Registry) Register(t Type) {
	if t.Name == "" {
		panic("generators: type without name")
	}
	if t.New == nil {
		panic(fmt.Sprintf("generators: type %q has no constructor", t.Name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.types[t.Name]; dup {
		panic(fmt.Sprintf("generators: type %q registered twice", t.Name))
	}
	r.types[t.Name] = t
}

func (r *Registry) Lookup(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package generators

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"website/internal/apps"
	"website/internal/cachestore"
	"website/internal/logging"
	"website/internal/website"
)

// CacheKey holds the encoded route map in the cache store.
const CacheKey = "website_generator_routes"

// Index maps generated routes to the records behind them.
type Index struct {
	apps   apps.Registry
	types  *Registry
	source Source
	logger *zap.Logger
	cache  *cachestore.Value[map[string]Entry]
}

func NewIndex(registry apps.Registry, types *Registry, source Source, store cachestore.Store, logger *zap.Logger) *Index {
	return &Index{
		apps:   registry,
		types:  types,
		source: source,
		logger: logging.OrNop(logger),
		cache:  cachestore.NewValue[map[string]Entry](store, CacheKey),
	}
}

// Routes returns the route map, building it on the first call after an
// invalidation.
func (i *Index) Routes(ctx context.Context) (map[string]Entry, error) {
	routes, err := i.cache.Get(ctx, true, i.build)
	if err != nil {
		return nil, fmt.Errorf("list generator routes: %w", err)
	}
	return routes, nil
}

func (i *Index) Lookup(ctx context.Context, route string) (Entry, bool, error) {
	routes, err := i.Routes(ctx)
	if err != nil {
		return Entry{}, false, err
	}
	entry, ok := routes[route]
	return entry, ok, nil
}

func (i *Index) Invalidate(ctx context.Context) error {
	return i.cache.Invalidate(ctx)
}

// Load fetches the record behind entry and decodes it into its type.
func (i *Index) Load(ctx context.Context, entry Entry) (RouteContextProvider, error) {
	t, source, err := i.resolveType(entry.RecordType)
	if err != nil {
		return nil, err
	}

	doc, err := source.GetDoc(ctx, DocRef{DocType: t.Name, Collection: t.Collection, Name: entry.RecordID, Fields: t.Fields})
	if err != nil {
		return nil, fmt.Errorf("get %s %q: %w", t.Name, entry.RecordID, err)
	}

	record := t.New()
	if err := decodeRecord(doc, record); err != nil {
		return nil, fmt.Errorf("decode %s %q: %w", t.Name, entry.RecordID, err)
	}
	return record, nil
}

// RouteContext loads the record behind entry and asks it for its page context.
func (i *Index) RouteContext(ctx context.Context, entry Entry) (*website.PageContext, error) {
	record, err := i.Load(ctx, entry)
	if err != nil {
		return nil, err
	}

	pageCtx, err := record.RouteContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("route context for %s %q: %w", entry.RecordType, entry.RecordID, err)
	}
	if pageCtx == nil {
		return nil, fmt.Errorf("route context for %s %q: %w", entry.RecordType, entry.RecordID, website.ErrNotFound)
	}

	pageCtx.RouteName = entry.RouteName
	pageCtx.PageOrGenerator = website.KindGenerator
	if pageCtx.RefDocType == "" {
		pageCtx.RefDocType = entry.RecordType
	}
	if pageCtx.DocName == "" {
		pageCtx.DocName = entry.RecordID
	}
	return pageCtx, nil
}

func (i *Index) build(ctx context.Context) (map[string]Entry, error) {
	routes := make(map[string]Entry)

	for _, app := range i.apps.InstalledApps() {
		for _, name := range i.apps.Hooks(apps.HookWebsiteGenerators, app) {
			t, source, err := i.resolveType(name)
			if err != nil {
				return nil, fmt.Errorf("app %q: %w", app, err)
			}

			rows, err := source.RouteRows(ctx, RouteQuery{
				DocType:        t.Name,
				Collection:     t.Collection,
				NestedRoute:    t.HasField(FieldParentRoute),
				ConditionField: t.ConditionField,
				OrderBy:        t.orderBy(),
			})
			if err != nil {
				return nil, fmt.Errorf("read %s routes: %w", t.Name, err)
			}

			for _, row := range rows {
				if previous, dup := routes[row.Route]; dup {
					i.logger.Warn("generator route defined twice",
						zap.String("route", row.Route),
						zap.String("previous_doctype", previous.RecordType),
						zap.String("previous_name", previous.RecordID),
						zap.String("doctype", t.Name),
						zap.String("name", row.Name),
					)
				}
				routes[row.Route] = Entry{
					RouteName:  row.Route,
					RecordType: t.Name,
					RecordID:   row.Name,
					ModifiedAt: row.Modified,
				}
			}
		}
	}

	i.logger.Debug("indexed generator routes", zap.Int("count", len(routes)))
	return routes, nil
}

func (i *Index) resolveType(name string) (Type, Source, error) {
	t, ok := i.types.Lookup(name)
	if !ok {
		return Type{}, nil, fmt.Errorf("unknown website generator %q", name)
	}

	source := t.Source
	if source == nil {
		source = i.source
	}
	if source == nil {
		return Type{}, nil, fmt.Errorf("website generator %q has no record source", name)
	}
	return t, source, nil
}

func decodeRecord(doc map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       timeHook,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(doc)
}

var timeType = reflect.TypeOf(time.Time{})

func timeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType || from == timeType {
		return data, nil
	}
	if s, ok := data.(string); ok && s == "" {
		return time.Time{}, nil
	}
	return cast.ToTimeE(data)
}

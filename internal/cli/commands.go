package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"website/internal/web"
	"website/internal/web/appcore"
	"website/internal/website"
)

func newRoutesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List file pages and generated routes",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, app *App, _ []string) error {
			ctx := cmd.Context()
			descriptors, err := app.Scanner.Pages(ctx)
			if err != nil {
				return err
			}
			entries, err := app.Index.Routes(ctx)
			if err != nil {
				return err
			}

			out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, page := range descriptors {
				fmt.Fprintf(out, "%s\t%s\t%s\n", page.RouteName, website.KindPage, page.Template)
			}

			routes := make([]string, 0, len(entries))
			for route := range entries {
				routes = append(routes, route)
			}
			sort.Strings(routes)
			for _, route := range routes {
				entry := entries[route]
				fmt.Fprintf(out, "%s\t%s\t%s/%s\n", route, website.KindGenerator, entry.RecordType, entry.RecordID)
			}
			return out.Flush()
		}),
	}
}

func newResolveCommand(opts *rootOptions) *cobra.Command {
	var lang string
	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Print the page context a request path resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(cmd *cobra.Command, app *App, args []string) error {
			params, ok := appcore.ParsePath(args[0])
			if !ok {
				return fmt.Errorf("invalid path %q", args[0])
			}

			ctx := website.WithLanguage(cmd.Context(), lang)
			pageCtx, err := app.Contexts.GetContext(ctx, params.Path)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(pageCtx)
		}),
	}
	cmd.Flags().StringVar(&lang, "lang", website.DefaultLanguage, "language the context is resolved for")
	return cmd
}

func newClearCacheCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Drop cached page contexts, the page list and generator routes",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, app *App, _ []string) error {
			// A memory cache only exists inside the serving process.
			if backend := app.Config.CacheBackend; backend == "" || backend == cacheBackendMemory {
				return fmt.Errorf("the %s cache belongs to the running server: POST %s to it, or use WEBSITE_CACHE_BACKEND=%s",
					cacheBackendMemory, web.ClearCachePath, cacheBackendRedis)
			}
			if err := app.Contexts.InvalidateAll(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "website caches cleared")
			return nil
		}),
	}
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the built-in generator tables",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, app *App, _ []string) error {
			if err := app.DB.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
			return nil
		}),
	}
}

package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/ZaguanLabs/gotdoc"
	"github.com/ZaguanLabs/gotdoc/cache"
)

var cacheBindings = map[string]string{
	"cache.sqlite_path": "cache-db",
	"cache.ttl":         "cache-ttl",
}

func newCacheCmd(g *globalFlags, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the SQLite translation memory",
		Long: `Inspect, prune, export and import the SQLite chunk cache used with
--cache sqlite. Exports are JSON files that can be imported into another
database to share already translated chunks.`,
	}

	pf := cmd.PersistentFlags()
	pf.String("cache-db", "", "database file (default: cache.sqlite_path from config)")
	pf.Duration("cache-ttl", 0, "entry lifetime used by prune")

	// withCache opens the database, runs fn and closes it again.
	withCache := func(cmd *cobra.Command, fn func(c *cache.SQLiteCache) error) (err error) {
		cfg, err := loadConfig(cmd, g, cacheBindings)
		if err != nil {
			return err
		}

		c, err := cache.NewSQLiteCache(cmd.Context(), cache.SQLiteConfig{Path: cfg.Cache.SQLitePath, TTL: cfg.Cache.TTL})
		if err != nil {
			return &gotdoc.CacheError{Message: "opening sqlite cache", Cause: err}
		}
		defer multierr.AppendInvoke(&err, multierr.Close(c))

		return fn(c)
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show translation memory statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, func(c *cache.SQLiteCache) error {
				s, err := c.Stats(cmd.Context())
				if err != nil {
					return &gotdoc.CacheError{Message: "reading stats", Cause: err}
				}
				fmt.Fprintf(stdout, "Entries:  %s\n", humanize.Comma(int64(s.Entries)))
				fmt.Fprintf(stdout, "Runs:     %s\n", humanize.Comma(int64(s.Runs)))
				return nil
			})
		},
	}

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete entries older than the cache TTL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, func(c *cache.SQLiteCache) error {
				n, err := c.Prune(cmd.Context())
				if err != nil {
					return &gotdoc.CacheError{Message: "pruning entries", Cause: err}
				}
				fmt.Fprintf(stdout, "Pruned %s entries.\n", humanize.Comma(n))
				return nil
			})
		},
	}

	export := &cobra.Command{
		Use:   "export <file.json>",
		Short: "Export every entry to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, func(c *cache.SQLiteCache) error {
				n, err := cache.ExportToFile(cmd.Context(), args[0], c, map[string]string{"generator": gotdoc.UserAgent()})
				if err != nil {
					return &gotdoc.CacheError{Message: "exporting entries", Cause: err}
				}
				fmt.Fprintf(stdout, "Exported %s entries to %s.\n", humanize.Comma(int64(n)), args[0])
				return nil
			})
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import entries from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, func(c *cache.SQLiteCache) error {
				res, err := cache.ImportFromFile(cmd.Context(), args[0], c)
				if err != nil {
					return &gotdoc.CacheError{Message: "importing entries", Cause: err}
				}
				fmt.Fprintf(stdout, "Imported %s entries", humanize.Comma(int64(res.Imported)))
				if res.Failed > 0 {
					fmt.Fprintf(stdout, " (%d failed)", res.Failed)
				}
				fmt.Fprintln(stdout, ".")
				return nil
			})
		},
	}

	cmd.AddCommand(stats, prune, export, importCmd)
	return cmd
}

package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/payreq/internal/cache"
	"github.com/mrz1836/payreq/internal/output"
	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// cacheCmd is the parent command for resolution cache operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the resolution cache",
	Long:  `Inspect or clear the on-disk cache of resolved PayID and FIO handles.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List cached resolutions",
	Args:  cobra.NoArgs,
	RunE:  runCacheShow,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the resolution cache file",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	enrichParentLong(cacheCmd)
}

// cacheView is the JSON form of cache show.
type cacheView struct {
	Path    string        `json:"path"`
	TTL     string        `json:"ttl"`
	Entries []cache.Entry `json:"entries"`
}

func cacheStorage() (*cache.FileStorage, error) {
	path := cmdCtx.Config.CachePath()
	if path == "" {
		return nil, payerr.WithSuggestion(
			payerr.WithDetails(payerr.ErrNotSupported, map[string]string{"reason": "resolution cache persistence is disabled"}),
			"Set resolver.cache_file in config.yaml",
		)
	}
	return cache.NewFileStorage(path), nil
}

func runCacheShow(_ *cobra.Command, _ []string) error {
	storage, err := cacheStorage()
	if err != nil {
		return err
	}

	rc, err := storage.Load()
	if err != nil {
		return err
	}

	entries := rc.List()
	ttl := cmdCtx.Config.CacheTTL()
	view := cacheView{Path: storage.Path(), TTL: ttl.String(), Entries: entries}
	if formatter.IsJSON() {
		return formatter.Print(view)
	}

	w := formatter.Writer()
	out(w, "Cache: %s (%d entries, ttl %s)\n\n", storage.Path(), len(entries), ttl)
	table := output.NewTable("HANDLE", "KIND", "CURRENCY", "ADDRESS", "TAG", "AGE")
	for _, e := range entries {
		age := time.Since(e.ResolvedAt).Round(time.Second).String()
		if ttl > 0 && time.Since(e.ResolvedAt) > ttl {
			age += " (stale)"
		}
		table.AddRow(e.Handle, e.Kind.String(), e.Currency, e.Address, e.Tag, age)
	}
	return table.Render(w)
}

func runCacheClear(_ *cobra.Command, _ []string) error {
	storage, err := cacheStorage()
	if err != nil {
		return err
	}
	existed := storage.Exists()
	if err := storage.Delete(); err != nil {
		return err
	}

	msg := "Resolution cache is already empty"
	if existed {
		msg = "Resolution cache cleared"
	}
	return output.FormatSuccess(formatter.Writer(), msg, formatter.Format())
}

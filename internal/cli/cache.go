package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"semtiles/internal/adapter/cache"
)

var cacheListKeys bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the persistent embedding cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cached document embeddings",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached document embedding",
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheStatsCmd.Flags().BoolVar(&cacheListKeys, "keys", false, "list cached keys")
}

// openExistingCache opens the BoltDB cache, or returns nil if none exists yet.
func openExistingCache() (*cache.BoltCache, string, error) {
	cfg := GetConfig()
	path := persistentCachePath(cfg)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, path, nil
	}
	bc, err := cache.NewBoltCache(path, cfg.Embedding.Model, GetLogger())
	if err != nil {
		return nil, path, err
	}
	return bc, path, nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	bc, path, err := openExistingCache()
	if err != nil {
		return err
	}
	if bc == nil {
		fmt.Fprintf(out, "No persistent cache at %s\n", path)
		return nil
	}
	defer bc.Close()

	fmt.Fprintf(out, "Cache:   %s\n", path)
	fmt.Fprintf(out, "Entries: %d\n", bc.Len())

	if cacheListKeys {
		keys, err := bc.Keys()
		if err != nil {
			return fmt.Errorf("failed to list keys: %w", err)
		}
		for _, k := range keys {
			fmt.Fprintf(out, "  %s\n", k)
		}
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	bc, path, err := openExistingCache()
	if err != nil {
		return err
	}
	if bc == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "No persistent cache at %s\n", path)
		return nil
	}
	defer bc.Close()

	n := bc.Len()
	if err := bc.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached embeddings from %s\n", n, path)
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"semtiles/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "semtiles",
	Short: "Semantic distances between named items and documents",
	Long: `semtiles embeds named items, optionally backed by uploaded documents,
and reports how far apart they are in meaning (cosine distance, 0 to 1).
It can also summarize a document or answer a question about one.

Example usage:
  semtiles init                          # Write a default semtiles.yaml
  semtiles distances -f items.json       # Pairwise distances for items
  semtiles distances --docs              # Every document in the upload dir
  semtiles summarize paper.pdf           # Short summary of a document
  semtiles ask paper.pdf -q "why?"       # Question about a document
  semtiles mcp                           # Serve the tools over MCP stdio`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if err := godotenv.Load(filepath.Join(rootDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg.Documents.UploadDir = resolveAgainstRoot(cfg.Documents.UploadDir)
		cfg.Cache.Path = resolveAgainstRoot(cfg.Cache.Path)

		logger, err = newLogger(cfg.Logging, os.Stderr)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)

		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./semtiles.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

func GetLogger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// resolveAgainstRoot makes a relative path absolute under the root directory.
func resolveAgainstRoot(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(rootDir, path)
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"semtiles/internal/adapter/extract"
	"semtiles/internal/domain"
)

var (
	distItemsFile   string
	distFromDocs    bool
	distLevel       string
	distJSON        bool
	distPersist     bool
	distConcurrency int
	distNoProgress  bool
)

var distancesCmd = &cobra.Command{
	Use:   "distances",
	Short: "Compute pairwise semantic distances",
	Long: `Resolve an embedding for every item and print the cosine distance
(0 = same meaning, 1 = unrelated) for each pair of items.

Items come from a JSON or YAML file (a list of {id, name, description,
documentPath}) or, with --docs, from every document in the upload directory.
Document paths are relative to documents.upload_dir.

Examples:
  semtiles distances -f items.json
  semtiles distances -f items.yaml --level forest --json
  semtiles distances --docs --persist-cache`,
	RunE: runDistances,
}

func init() {
	rootCmd.AddCommand(distancesCmd)
	distancesCmd.Flags().StringVarP(&distItemsFile, "file", "f", "", "items file (JSON or YAML, '-' for JSON on stdin)")
	distancesCmd.Flags().BoolVar(&distFromDocs, "docs", false, "use every document in the upload directory as an item")
	distancesCmd.Flags().StringVar(&distLevel, "level", "", "level identifier, recorded in logs")
	distancesCmd.Flags().BoolVar(&distJSON, "json", false, "output as JSON")
	distancesCmd.Flags().BoolVar(&distPersist, "persist-cache", false, "keep document embeddings in .semtiles/cache.db")
	distancesCmd.Flags().IntVarP(&distConcurrency, "concurrency", "c", 0, "items resolved in parallel (default from config)")
	distancesCmd.Flags().BoolVar(&distNoProgress, "no-progress", false, "disable the progress bar")
}

type distancesOutput struct {
	Level     string                 `json:"level,omitempty"`
	Distances []domain.DistanceEntry `json:"distances"`
	Embedded  int                    `json:"embedded"`
	Failures  []domain.ItemFailure   `json:"failures,omitempty"`
}

func runDistances(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	logger := GetLogger()

	if (distItemsFile == "") == !distFromDocs {
		return fmt.Errorf("specify exactly one of --file or --docs")
	}

	var items []domain.Item
	var err error
	if distFromDocs {
		discoverer := extract.NewDiscoverer(cfg.Documents.Includes, cfg.Documents.Excludes)
		items, err = discoverer.Items(cfg.Documents.UploadDir)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", cfg.Documents.UploadDir, err)
		}
	} else {
		items, err = loadItems(distItemsFile, cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	if distConcurrency > 0 {
		cfg.Distance.Concurrency = distConcurrency
	}

	processor, closeCache, err := newProcessor(cfg, logger, distPersist)
	if err != nil {
		return err
	}
	defer closeCache()

	var progress func(done, total int, itemID string)
	if !distNoProgress && !distJSON && len(items) > 0 {
		progress = newProgress("Embedding")
	}

	result, err := processor.ComputeDistancesWithProgress(cmd.Context(), items, distLevel, progress)
	if err != nil {
		return fmt.Errorf("distance computation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if distJSON {
		return writeJSON(out, distancesOutput{
			Level:     distLevel,
			Distances: result.Table.Entries(),
			Embedded:  result.Embedded,
			Failures:  result.Failures,
		})
	}

	printDistances(out, items, result)
	return nil
}

// loadItems reads items from a JSON or YAML file. The format follows the
// extension; anything but .yaml/.yml is read as JSON.
func loadItems(path string, stdin io.Reader) ([]domain.Item, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}

	var items []domain.Item
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &items)
	default:
		err = json.Unmarshal(data, &items)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse items from %s: %w", path, err)
	}
	return items, nil
}

func printDistances(w io.Writer, items []domain.Item, result *domain.DistanceResult) {
	names := make(map[string]string, len(items))
	for _, item := range items {
		names[item.ID] = item.Name
	}

	entries := result.Table.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No distances computed.")
	} else {
		fmt.Fprintf(w, "Distances (%d pairs, %d of %d items embedded):\n\n", len(entries), result.Embedded, len(items))
		for _, e := range entries {
			fmt.Fprintf(w, "  %-24s %-24s %.4f\n", label(e.Pair.A, names), label(e.Pair.B, names), e.Distance)
		}
	}

	if len(result.Failures) > 0 {
		fmt.Fprintf(w, "\nWarnings:\n")
		for _, f := range result.Failures {
			fmt.Fprintf(w, "  - %s: %s\n", label(f.ItemID, names), f.Reason)
		}
	}
}

func label(id string, names map[string]string) string {
	if name := names[id]; name != "" && name != id {
		return fmt.Sprintf("%s (%s)", name, id)
	}
	return id
}

func writeJSON(w io.Writer, v interface{}) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// newProgress returns a callback that draws a progress bar with an ETA. The
// bar is created on the first call, once the total is known.
func newProgress(description string) func(done, total int, itemID string) {
	var bar *progressbar.ProgressBar
	var barMu sync.Mutex
	var startTime time.Time

	return func(done, total int, itemID string) {
		barMu.Lock()
		defer barMu.Unlock()

		if bar == nil {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)
		}

		bar.Set(done)

		if done > 0 {
			elapsed := time.Since(startTime)
			rate := float64(done) / elapsed.Seconds()
			remaining := total - done
			if rate > 0 {
				eta := time.Duration(float64(remaining)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]%s[reset] ETA: %s", description, formatDuration(eta)))
			}
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}

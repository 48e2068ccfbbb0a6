package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atikulmunna/loupe/internal/loader"
	"github.com/atikulmunna/loupe/internal/output"
	"github.com/atikulmunna/loupe/internal/workspace"
)

var (
	viewLevel         string
	viewSearch        string
	viewHighlights    []string
	viewHighlightOnly bool
)

var viewCmd = &cobra.Command{
	Use:   "view [files...]",
	Short: "Parse log files and print the filtered records",
	Long: `Parse one or more log files (or glob patterns) into structured records
and print the records passing the given filters.

Examples:
  loupe view app.log
  loupe view "/var/log/spark/**/*.log" --level ERROR
  loupe view app.log --search timeout --highlight timeout --highlight shuffle
  loupe view app.log --highlight timeout --highlight-only --output json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().StringVarP(&viewLevel, "level", "l", "", "show only records of this level (INFO, WARN, ERROR, ...)")
	viewCmd.Flags().StringVarP(&viewSearch, "search", "s", "", "case-insensitive substring filter over source and message")
	viewCmd.Flags().StringArrayVarP(&viewHighlights, "highlight", "H", nil, "highlight keyword (repeatable; order picks the color)")
	viewCmd.Flags().BoolVar(&viewHighlightOnly, "highlight-only", false, "show only records matching a highlight keyword")
}

func runView(cmd *cobra.Command, args []string) error {
	paths, err := loader.ExpandGlobs(args)
	if err != nil {
		return fmt.Errorf("bad pattern: %w", err)
	}

	ws := workspace.New()
	ctx := context.Background()

	var failures int
	for _, path := range paths {
		sess, err := ws.Open(ctx, path)
		if err != nil {
			// One bad file fails only that file.
			fmt.Fprintf(os.Stderr, "loupe: %v\n", err)
			failures++
			continue
		}

		sess.SetLevelFilter(strings.ToUpper(viewLevel))
		sess.SetSearchText(viewSearch)
		for _, word := range viewHighlights {
			sess.AddHighlight(word)
		}
		sess.SetHighlightOnly(viewHighlightOnly)

		var renderer output.Renderer
		switch strings.ToLower(outputFmt) {
		case "json":
			renderer = output.NewJSONRenderer(os.Stdout)
		default:
			renderer = output.NewTextRenderer(os.Stdout, sess.Highlights())
		}

		if len(paths) > 1 {
			fmt.Fprintf(os.Stderr, "==> %s\n", sess.Path())
		}
		for _, rec := range sess.Filtered() {
			if err := renderer.Render(rec); err != nil {
				return err
			}
		}
	}

	if failures == len(paths) {
		return fmt.Errorf("no file could be loaded")
	}
	return nil
}

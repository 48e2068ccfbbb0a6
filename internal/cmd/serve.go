package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/loupe/internal/loader"
	"github.com/atikulmunna/loupe/internal/server"
	"github.com/atikulmunna/loupe/internal/workspace"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve [files...]",
	Short: "Serve sessions over a local HTTP API",
	Long: `Open the given log files (or glob patterns) as sessions and expose them
over HTTP: filtered views, filter and highlight controls, and a WebSocket
stream that pushes a fresh view whenever a session changes. Further files
can be opened through the API.

Examples:
  loupe serve app.log
  loupe serve --addr 127.0.0.1:7070 "/var/log/spark/*.log"
  loupe serve app.log --watch`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "127.0.0.1:8520", "listen address")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "fully reload a session when its file changes on disk")
	_ = viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nloupe shutting down...")
		cancel()
	}()

	ws := workspace.New()

	if len(args) > 0 {
		paths, err := loader.ExpandGlobs(args)
		if err != nil {
			return fmt.Errorf("bad pattern: %w", err)
		}
		for _, path := range paths {
			sess, err := ws.Open(ctx, path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "loupe: %v\n", err)
				continue
			}
			fmt.Fprintf(os.Stderr, "loupe: opened %s (%d records)\n", sess.Path(), sess.Snapshot().Total)
		}
	}

	if serveWatch {
		go func() {
			if err := ws.Watch(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "loupe: watch failed: %v\n", err)
			}
		}()
	}

	addr := serveAddr
	if v := viper.GetString("addr"); v != "" {
		addr = v
	}

	fmt.Fprintf(os.Stderr, "loupe: listening on http://%s\n", addr)
	return server.New(ws, addr).Start(ctx)
}

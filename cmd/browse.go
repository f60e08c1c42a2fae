package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"db-crud/internal/tui"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	browseServe bool
	browseLog   string
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse and edit tables in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
			return errors.New("browse needs an interactive terminal")
		}

		// The screen belongs to the UI, so logs always go to a file.
		logFile := browseLog
		if logFile == "" {
			logFile = filepath.Join(os.TempDir(), "db-crud.log")
		}
		logger, err := newLogger(logFile)
		if err != nil {
			return err
		}

		s, err := connect(cmd.Context(), logger, true)
		if err != nil {
			return err
		}
		defer s.Close()

		if !browseServe {
			return tui.Run(cmd.Context(), s.acc, logger)
		}

		// Quitting the UI stops the server; a server failure stops the UI.
		g, gctx := errgroup.WithContext(cmd.Context())
		ctx, cancel := context.WithCancel(gctx)
		g.Go(func() error {
			defer cancel()
			return tui.Run(ctx, s.acc, logger)
		})
		g.Go(func() error {
			return serveHTTP(ctx, s.acc, logger)
		})
		if err := g.Wait(); err != nil {
			return fmt.Errorf("browse: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(browseCmd)

	browseCmd.Flags().BoolVar(&browseServe, "serve", false, "also serve the HTTP API while browsing")
	browseCmd.Flags().StringVar(&browseLog, "log-file", "", "log file (default is db-crud.log in the temp dir)")
}

// Package cmd implements the bookshelf command line interface.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bookshelfd/bookshelf/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "bookshelf",
	Short: "Bookshelf - a personal book library with AI summaries",
	Long: `Bookshelf keeps track of the books you have read and generates
concise summaries for them, so flashcard mode can refresh your memory.

Books can be added one at a time, imported from a text file, or managed
through the JSON API started with "bookshelf serve".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		initLogger()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initLogger installs the default structured logger. DEBUG in the
// environment enables debug-level output.
func initLogger() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(log.New(log.Config{Level: level}))
}

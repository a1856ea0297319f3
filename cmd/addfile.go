package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bookshelfd/bookshelf/internal/app"
)

var addFileCmd = &cobra.Command{
	Use:   "add-file <path>",
	Short: "Import books from a text file",
	Long: `Imports books from a plain text file, one book per line:

    Title by Author
    Title - Author

Blank lines and lines starting with # are ignored. Entries without an
author are skipped. When an AI API key is configured a summary is
generated for each imported book.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAddFile(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(addFileCmd)
}

func runAddFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	a, err := app.Setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("Reading books from %s...\n", path)

	result, err := a.Importer.Import(ctx, filepath.Base(path), content, nil)
	if err != nil {
		return fmt.Errorf("importing books: %w", err)
	}

	if result.Added == 0 && result.Skipped == 0 {
		fmt.Println("No books found in file.")
		return nil
	}
	fmt.Printf("Imported %d book(s).\n", result.Added)
	if result.Skipped > 0 {
		fmt.Printf("Skipped %d entries without an author.\n", result.Skipped)
	}
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookshelfd/bookshelf/internal/app"
)

var fillCmd = &cobra.Command{
	Use:   "fill-summaries",
	Short: "Generate summaries for books that do not have one",
	Long: `Finds every book without a summary and generates one with the AI
service. Books whose generation fails are left untouched and reported;
the run continues with the remaining books.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFillSummaries(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(fillCmd)
}

func runFillSummaries(ctx context.Context) error {
	a, err := app.Setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.Generator == nil {
		return errors.New("no AI API key configured, cannot generate summaries")
	}

	books, err := a.Books.ListMissingSummaries(ctx, nil)
	if err != nil {
		return fmt.Errorf("listing books without summaries: %w", err)
	}
	if len(books) == 0 {
		fmt.Println("All books already have summaries.")
		return nil
	}

	fmt.Printf("Found %d book(s) without a summary.\n", len(books))

	var filled, failed int
	for _, book := range books {
		fmt.Printf("Generating summary for '%s' by %s...\n", book.Title, book.Author)
		text, err := a.Generator.Generate(ctx, book.Title, book.Author)
		if err != nil {
			fmt.Printf("  Failed: %v\n", err)
			failed++
			continue
		}
		if err := a.Books.UpdateSummary(ctx, book.ID, text, nil); err != nil {
			fmt.Printf("  Failed to save: %v\n", err)
			failed++
			continue
		}
		filled++
	}

	fmt.Printf("Done: %d summaries generated, %d failed.\n", filled, failed)
	return nil
}

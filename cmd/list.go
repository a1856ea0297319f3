package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookshelfd/bookshelf/internal/app"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "View all books in your bookshelf",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runList(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(ctx context.Context) error {
	a, err := app.Setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	books, err := a.Books.List(ctx, nil)
	if err != nil {
		return fmt.Errorf("listing books: %w", err)
	}

	if len(books) == 0 {
		fmt.Println("No books in your bookshelf yet. Add some books to get started!")
		return nil
	}

	fmt.Printf("=== Your Bookshelf (%d books) ===\n", len(books))
	for i, book := range books {
		fmt.Printf("\n%d. '%s' by %s\n", i+1, book.Title, book.Author)
		if book.Summary != nil && *book.Summary != "" {
			fmt.Printf("   Added: %s\n", book.CreatedAt.Format("2006-01-02"))
		} else {
			fmt.Printf("   Added: %s (no summary)\n", book.CreatedAt.Format("2006-01-02"))
		}
	}
	return nil
}

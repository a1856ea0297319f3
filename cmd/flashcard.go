package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bookshelfd/bookshelf/internal/app"
	"github.com/bookshelfd/bookshelf/internal/store"
)

var flashcardCmd = &cobra.Command{
	Use:   "flashcard",
	Short: "Quiz yourself on the books you have read",
	Long: `Shows each book's title and author, then reveals its summary on
Enter. Type q to stop.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFlashcard(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(flashcardCmd)
}

func runFlashcard(ctx context.Context, in io.Reader, out io.Writer) error {
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
		fmt.Fprintln(out, "No books in your bookshelf yet. Add some books to get started!")
		return nil
	}

	fmt.Fprintf(out, "=== Flashcard Mode (%d books) ===\n", len(books))
	fmt.Fprintln(out, "Press Enter to see the next book, or 'q' to quit.")

	reader := bufio.NewReader(in)
	for i, book := range books {
		fmt.Fprintf(out, "\n--- Book %d/%d ---\n", i+1, len(books))
		fmt.Fprintf(out, "Title: %s\n", book.Title)
		fmt.Fprintf(out, "Author: %s\n", book.Author)

		if quit := waitForEnter(reader, out, "\nPress Enter to see summary..."); quit {
			break
		}
		printSummary(out, book)

		if i == len(books)-1 {
			break
		}
		if quit := waitForEnter(reader, out, "\nPress Enter for next book, or 'q' to quit: "); quit {
			break
		}
	}

	fmt.Fprintln(out, "\n=== End of Flashcards ===")
	return nil
}

// waitForEnter blocks until the user presses Enter. Returns true when the
// user typed q or input ended.
func waitForEnter(reader *bufio.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(line), "q")
}

func printSummary(out io.Writer, book *store.Book) {
	if book.Summary != nil && *book.Summary != "" {
		fmt.Fprintf(out, "\nSummary:\n%s\n", *book.Summary)
		return
	}
	fmt.Fprintln(out, "\n(No summary available)")
}

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bookshelfd/bookshelf/internal/app"
)

var addCmd = &cobra.Command{
	Use:   "add [title] [author]",
	Short: "Add a single book to your bookshelf",
	Long: `Adds a book and, when an AI API key is configured, generates a
summary for it. Title and author are prompted for when omitted. Adding a
book that already exists is reported and leaves the existing entry
unchanged.`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, author, err := resolveAddArgs(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		return runAdd(cmd.Context(), title, author)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}

// resolveAddArgs fills in the title and author from positional arguments,
// prompting on stdin for whichever is missing.
func resolveAddArgs(in io.Reader, args []string) (title, author string, err error) {
	reader := bufio.NewReader(in)

	if len(args) > 0 {
		title = strings.TrimSpace(args[0])
	} else {
		fmt.Println("=== Add New Book ===")
		title, err = promptLine(reader, "Enter book title: ")
		if err != nil {
			return "", "", err
		}
	}
	if title == "" {
		return "", "", errors.New("title cannot be empty")
	}

	if len(args) > 1 {
		author = strings.TrimSpace(args[1])
	} else {
		author, err = promptLine(reader, "Enter book author: ")
		if err != nil {
			return "", "", err
		}
	}
	if author == "" {
		return "", "", errors.New("author cannot be empty")
	}
	return title, author, nil
}

func promptLine(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func runAdd(ctx context.Context, title, author string) error {
	a, err := app.Setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Printf("Adding: '%s' by %s\n", title, author)

	existing, err := findBook(ctx, a, title, author)
	if err != nil {
		return err
	}
	if existing != nil {
		fmt.Println("  Book already exists in your bookshelf.")
		return nil
	}

	bookID, err := a.Books.Add(ctx, title, author, "", nil)
	if err != nil {
		return fmt.Errorf("adding book: %w", err)
	}

	if a.Generator == nil {
		fmt.Println("  Book added (no summary, AI generation not available).")
		return nil
	}

	fmt.Println("  Generating summary...")
	text, err := a.Generator.Generate(ctx, title, author)
	if err != nil {
		fmt.Printf("  Book added, but summary generation failed: %v\n", err)
		return nil
	}
	if err := a.Books.UpdateSummary(ctx, bookID, text, nil); err != nil {
		fmt.Printf("  Book added, but saving the summary failed: %v\n", err)
		return nil
	}
	fmt.Println("  Summary generated and saved.")
	return nil
}

// findBook returns the id of the book with the given title and author, or
// nil when no such book exists.
func findBook(ctx context.Context, a *app.App, title, author string) (*int64, error) {
	matches, err := a.Books.SearchByTitle(ctx, title, nil)
	if err != nil {
		return nil, fmt.Errorf("checking for existing book: %w", err)
	}
	for _, b := range matches {
		if b.Author == author {
			id := b.ID
			return &id, nil
		}
	}
	return nil, nil
}

// Package bookfile parses uploaded book list files and imports their
// entries through the validation and storage layers.
package bookfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Entry is one parsed line of a book list. Author is empty when the line
// carried no recognizable author.
type Entry struct {
	Title  string
	Author string
}

// Parse reads a book list: one book per line, blank lines and lines
// starting with '#' skipped. Recognized formats, tried in order:
//
//	Title by Author
//	Title - Author
//	Title
//
// Splitting happens on the first separator only, so titles containing
// " by " lose everything after it ("Stand by Me by Stephen King" yields
// title "Stand"). Parsed values are raw; callers validate before storing.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if title, author, found := strings.Cut(line, " by "); found {
			entries = append(entries, Entry{
				Title:  strings.TrimSpace(title),
				Author: strings.TrimSpace(author),
			})
			continue
		}
		if title, author, found := strings.Cut(line, " - "); found {
			entries = append(entries, Entry{
				Title:  strings.TrimSpace(title),
				Author: strings.TrimSpace(author),
			})
			continue
		}
		entries = append(entries, Entry{Title: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading book list: %w", err)
	}

	return entries, nil
}

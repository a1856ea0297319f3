package bookfile

import (
	"reflect"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Entry
	}{
		{
			"by separator",
			"The Hobbit by J.R.R. Tolkien\n",
			[]Entry{{Title: "The Hobbit", Author: "J.R.R. Tolkien"}},
		},
		{
			"dash separator",
			"Dune - Frank Herbert\n",
			[]Entry{{Title: "Dune", Author: "Frank Herbert"}},
		},
		{
			"no author",
			"Beowulf\n",
			[]Entry{{Title: "Beowulf"}},
		},
		{
			"skips blanks and comments",
			"# reading list\n\nDune by Frank Herbert\n   \n# done\n",
			[]Entry{{Title: "Dune", Author: "Frank Herbert"}},
		},
		{
			"by wins over dash",
			"Q - The Novel by Luther Blissett\n",
			[]Entry{{Title: "Q - The Novel", Author: "Luther Blissett"}},
		},
		{
			"splits on first by",
			"Stand by Me by Stephen King\n",
			[]Entry{{Title: "Stand", Author: "Me by Stephen King"}},
		},
		{
			"trims around separator",
			"  Dune   by   Frank Herbert  \n",
			[]Entry{{Title: "Dune", Author: "Frank Herbert"}},
		},
		{
			"empty input",
			"",
			nil,
		},
		{
			"multiple lines",
			"Dune by Frank Herbert\nBeowulf\nHyperion - Dan Simmons\n",
			[]Entry{
				{Title: "Dune", Author: "Frank Herbert"},
				{Title: "Beowulf"},
				{Title: "Hyperion", Author: "Dan Simmons"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse = %+v, want %+v", got, tt.want)
			}
		})
	}
}

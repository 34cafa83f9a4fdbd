package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: []string{}},
		{name: "single element", input: "broker:9092", expected: []string{"broker:9092"}},
		{name: "trims whitespace", input: " a , b ", expected: []string{"a", "b"}},
		{name: "drops empty elements", input: "a,,b,", expected: []string{"a", "b"}},
		{name: "drops duplicates keeping first", input: "b,a,b", expected: []string{"b", "a"}},
		{name: "case sensitive", input: "A,a", expected: []string{"A", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input, ","))
		})
	}
}

func TestSortedSet(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: []string{}},
		{name: "sorts", input: []string{"sort", "page", "filter"}, expected: []string{"filter", "page", "sort"}},
		{name: "case insensitive dedupe", input: []string{"Page", "PAGE", "page"}, expected: []string{"page"}},
		{name: "trims and drops blanks", input: []string{"  q ", "", "   "}, expected: []string{"q"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SortedSet(tt.input))
		})
	}
}

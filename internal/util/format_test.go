package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrettyBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{name: "zero", bytes: 0, want: "0 Bytes"},
		{name: "negative", bytes: -5, want: "0 Bytes"},
		{name: "bytes", bytes: 512, want: "512 Bytes"},
		{name: "one kilobyte", bytes: 1024, want: "1 KB"},
		{name: "fractional kilobytes", bytes: 1536, want: "1.5 KB"},
		{name: "one megabyte", bytes: 1048576, want: "1 MB"},
		{name: "five megabytes", bytes: 5242880, want: "5 MB"},
		{name: "rounds to two decimals", bytes: 1234567, want: "1.18 MB"},
		{name: "one gigabyte", bytes: 1073741824, want: "1 GB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PrettyBytes(tt.bytes))
		})
	}
}

func TestNidStringToArray(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: []string{}},
		{name: "whitespace only", input: "   ", want: []string{}},
		{name: "plain name", input: "nid002538", want: []string{"nid002538"}},
		{
			name:  "bracketed list",
			input: "nid[002538,002544]",
			want:  []string{"nid002538", "nid002544"},
		},
		{
			name:  "single bracketed entry",
			input: "nid[002538]",
			want:  []string{"nid002538"},
		},
		{
			name:  "empty entries dropped",
			input: "nid[002538,,002544,]",
			want:  []string{"nid002538", "nid002544"},
		},
		{
			name:  "no prefix",
			input: "[a,b]",
			want:  []string{"a", "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NidStringToArray(tt.input))
		})
	}
}

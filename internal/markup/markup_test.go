package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainStripsMarkers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text untouched",
			input: "Discards the top of the stack.",
			want:  "Discards the top of the stack.",
		},
		{
			name:  "emphasis",
			input: "leaves the stack *unchanged*.",
			want:  "leaves the stack unchanged.",
		},
		{
			name:  "strong",
			input: "Pushes **-1** when equal.",
			want:  "Pushes -1 when equal.",
		},
		{
			name:  "inline code",
			input: "raises `ERR_DIVZERO` on zero.",
			want:  "raises ERR_DIVZERO on zero.",
		},
		{
			name:  "link becomes text with url",
			input: "See [control flow](flow.html).",
			want:  "See control flow (flow.html).",
		},
		{
			name:  "mixed constructs",
			input: "Pops two and pushes the *floor* quotient, see `DIV`.",
			want:  "Pops two and pushes the floor quotient, see DIV.",
		},
		{
			name:  "snake_case stays literal",
			input: "fields doc_opcode and doc_gas are searchable",
			want:  "fields doc_opcode and doc_gas are searchable",
		},
		{
			name:  "empty renders empty",
			input: "",
			want:  "",
		},
	}
	r := NewPlain()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Render(tt.input))
		})
	}
}

func TestPlainCollapsesLineBreaks(t *testing.T) {
	r := NewPlain()
	got := r.Render("first line\nsecond line")
	assert.Equal(t, "first line second line", got)
	assert.NotContains(t, got, "\n", "cells must stay single-line")
}

func TestPlainJoinsParagraphs(t *testing.T) {
	r := NewPlain()
	got := r.Render("First sentence.\n\nSecond sentence.")
	assert.Equal(t, "First sentence. Second sentence.", got)
}

func TestTermKeepsContent(t *testing.T) {
	r := NewTerm(DefaultStyles())
	got := r.Render("Pushes the constant `n`, see [stack ops](stack.html) for *details*.")

	// Content survives regardless of the ANSI wrapping around it.
	assert.Contains(t, got, "Pushes the constant")
	assert.Contains(t, got, "n")
	assert.Contains(t, got, "stack ops")
	assert.Contains(t, got, "(stack.html)")
	assert.Contains(t, got, "details")
	assert.NotContains(t, got, "`")
	assert.NotContains(t, got, "[stack ops]")
}

func TestTermEmptyRendersEmpty(t *testing.T) {
	r := NewTerm(DefaultStyles())
	assert.Equal(t, "", r.Render(""))
}

func TestTermNoTrailingBreaks(t *testing.T) {
	r := NewTerm(DefaultStyles())
	got := r.Render("one *two* three")
	assert.False(t, strings.HasSuffix(got, "\n"))
	assert.NotContains(t, got, "\n")
}

func TestLinkWithoutDestination(t *testing.T) {
	r := NewPlain()
	// A reference-style link with no resolvable destination degrades to text.
	got := r.Render("[dangling]()")
	assert.Equal(t, "dangling", got)
}

package engine

import "testing"

func TestDecodeEntities(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"named round trip", "&amp; &lt; &gt; &quot; &#39;", `& < > " '`},
		{"apos", "it&apos;s", "it's"},
		{"decimal reference", "caf&#233;", "café"},
		{"no entities", "plain text", "plain text"},
		{"unknown entity kept", "&copy; 2024", "&copy; 2024"},
		{"hex reference kept", "&#x27;", "&#x27;"},
		{"dangling ampersand", "fish & chips", "fish & chips"},
		{"trailing unterminated", "a &amp", "a &amp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeEntities(tt.in); got != tt.want {
				t.Errorf("DecodeEntities(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a <i>b</i> c", "a b c"},
		{"<b>bold</b>", "bold"},
		{"no tags", "no tags"},
		{"  <i>x</i>  ", "x"},
		{"<3 survives", "<3 survives"},
	}
	for _, tt := range tests {
		if got := CleanHTML(tt.in); got != tt.want {
			t.Errorf("CleanHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCollapseSpace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"one\ntwo", "one two"},
		{"one\r\ntwo\rthree", "one two three"},
		{"  padded  \n  ", "padded"},
		{"already clean", "already clean"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CollapseSpace(tt.in); got != tt.want {
			t.Errorf("CollapseSpace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

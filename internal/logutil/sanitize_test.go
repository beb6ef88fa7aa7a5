package logutil

import "testing"

func TestSanitizeForLog(t *testing.T) {
	cases := []struct {
		input  string
		expect string
	}{
		{"plain text", "plain text"},
		{"line\nbreak", "line break"},
		{"carriage\rreturn", "carriage return"},
		{"tab\there", "tab here"},
		{"escape\x1b[31mred", "escape[31mred"},
		{"bell\x07", "bell"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := SanitizeForLog(tc.input); got != tc.expect {
			t.Errorf("SanitizeForLog(%q) = %q, want %q", tc.input, got, tc.expect)
		}
	}
}

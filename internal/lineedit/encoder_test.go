package lineedit

import (
	"reflect"
	"testing"
)

func feedAll(t *testing.T, e *Encoder, units ...string) (echo string, sent []string) {
	t.Helper()
	for _, u := range units {
		step := e.Feed(u)
		echo += step.Echo
		sent = append(sent, step.Send...)
	}
	return echo, sent
}

func TestFeedLineFlushOnReturn(t *testing.T) {
	e := New()

	echo, sent := feedAll(t, e, "l", "s", "\r")

	if echo != "ls\r\n" {
		t.Errorf("expected echo %q, got %q", "ls\r\n", echo)
	}
	if !reflect.DeepEqual(sent, []string{"ls\n"}) {
		t.Errorf("expected send [%q], got %v", "ls\n", sent)
	}
	if e.Buffer() != "" {
		t.Errorf("expected empty buffer after flush, got %q", e.Buffer())
	}
}

func TestFeedBackspaceErasesBufferedInput(t *testing.T) {
	e := New()

	echo, sent := feedAll(t, e, "l", "s", "\x7f", "\x7f", "\r")

	if echo != "ls\b \b\b \b\r\n" {
		t.Errorf("unexpected echo %q", echo)
	}
	// Both characters erased, so the flush sends a bare newline.
	if !reflect.DeepEqual(sent, []string{"\n"}) {
		t.Errorf("expected send [%q], got %v", "\n", sent)
	}
}

func TestFeedBackspaceOnEmptyBufferIsNoop(t *testing.T) {
	e := New()

	step := e.Feed("\x7f")
	if step.Echo != "" || len(step.Send) != 0 {
		t.Errorf("expected no-op step, got %+v", step)
	}
}

func TestFeedBackspaceCtrlH(t *testing.T) {
	e := New()
	e.Feed("a")

	step := e.Feed("\x08")
	if step.Echo != "\b \b" {
		t.Errorf("expected erase echo, got %q", step.Echo)
	}
	if e.Buffer() != "" {
		t.Errorf("expected empty buffer, got %q", e.Buffer())
	}
}

func TestFeedBlankLineSendsBareNewline(t *testing.T) {
	e := New()

	step := e.Feed("\r")
	if step.Echo != "\r\n" {
		t.Errorf("expected echo %q, got %q", "\r\n", step.Echo)
	}
	if !reflect.DeepEqual(step.Send, []string{"\n"}) {
		t.Errorf("expected send [%q], got %v", "\n", step.Send)
	}
}

func TestFeedWhitespaceOnlyLineSendsBareNewline(t *testing.T) {
	e := New()

	_, sent := feedAll(t, e, " ", " ", "\r")
	if !reflect.DeepEqual(sent, []string{"\n"}) {
		t.Errorf("expected send [%q], got %v", "\n", sent)
	}
}

func TestFeedInteriorWhitespacePreserved(t *testing.T) {
	e := New()

	_, sent := feedAll(t, e, "l", "s", " ", " ", "-", "l", "\r")
	if !reflect.DeepEqual(sent, []string{"ls  -l\n"}) {
		t.Errorf("expected untrimmed line, got %v", sent)
	}
}

func TestFeedInterrupt(t *testing.T) {
	e := New()
	e.Feed("s")
	e.Feed("l")

	step := e.Feed("\x03")
	if step.Echo != "^C\r\n" {
		t.Errorf("expected echo %q, got %q", "^C\r\n", step.Echo)
	}
	if !reflect.DeepEqual(step.Send, []string{"\x03"}) {
		t.Errorf("expected raw interrupt byte, got %v", step.Send)
	}
	if e.Buffer() != "" {
		t.Errorf("expected cleared buffer, got %q", e.Buffer())
	}
}

func TestFeedEndOfInputKeepsBuffer(t *testing.T) {
	e := New()
	e.Feed("x")

	step := e.Feed("\x04")
	if step.Echo != "" {
		t.Errorf("expected no echo, got %q", step.Echo)
	}
	if !reflect.DeepEqual(step.Send, []string{"\x04"}) {
		t.Errorf("expected raw EOF byte, got %v", step.Send)
	}
	if e.Buffer() != "x" {
		t.Errorf("expected buffer untouched, got %q", e.Buffer())
	}
}

func TestFeedSuspend(t *testing.T) {
	e := New()
	e.Feed("v")

	step := e.Feed("\x1a")
	if step.Echo != "^Z\r\n" {
		t.Errorf("expected echo %q, got %q", "^Z\r\n", step.Echo)
	}
	if !reflect.DeepEqual(step.Send, []string{"\x1a"}) {
		t.Errorf("expected raw suspend byte, got %v", step.Send)
	}
	if e.Buffer() != "" {
		t.Errorf("expected cleared buffer, got %q", e.Buffer())
	}
}

func TestFeedTabSendsBufferForCompletion(t *testing.T) {
	e := New()
	e.Feed("g")
	e.Feed("i")

	step := e.Feed("\t")
	if step.Echo != "" {
		t.Errorf("expected no echo on tab, got %q", step.Echo)
	}
	if !reflect.DeepEqual(step.Send, []string{"gi\t"}) {
		t.Errorf("expected buffer plus tab, got %v", step.Send)
	}
	if e.Buffer() != "gi" {
		t.Errorf("expected buffer kept, got %q", e.Buffer())
	}
}

func TestFeedEscapeSequenceForwardedVerbatim(t *testing.T) {
	e := New()
	e.Feed("a")

	step := e.Feed("\x1b[A") // arrow up
	if step.Echo != "" {
		t.Errorf("expected no echo, got %q", step.Echo)
	}
	if !reflect.DeepEqual(step.Send, []string{"\x1b[A"}) {
		t.Errorf("expected verbatim sequence, got %v", step.Send)
	}
	if e.Buffer() != "a" {
		t.Errorf("expected buffer untouched, got %q", e.Buffer())
	}
}

func TestFeedIgnoresUninterpretedControlCodes(t *testing.T) {
	e := New()

	for _, unit := range []string{"\x00", "\x01", "\x07", "\x0b", "\x1f"} {
		step := e.Feed(unit)
		if step.Echo != "" || len(step.Send) != 0 {
			t.Errorf("expected control %q ignored, got %+v", unit, step)
		}
	}
	if e.Buffer() != "" {
		t.Errorf("expected empty buffer, got %q", e.Buffer())
	}
}

func TestFeedEmptyUnit(t *testing.T) {
	e := New()
	step := e.Feed("")
	if step.Echo != "" || len(step.Send) != 0 {
		t.Errorf("expected no-op for empty unit, got %+v", step)
	}
}

func TestFeedUnicodePrintable(t *testing.T) {
	e := New()

	step := e.Feed("é")
	if step.Echo != "é" {
		t.Errorf("expected echo %q, got %q", "é", step.Echo)
	}
	if e.Buffer() != "é" {
		t.Errorf("expected buffer %q, got %q", "é", e.Buffer())
	}
}

func TestFormatOutput(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		expect string
	}{
		{"bare newlines become crlf", "a\nb", "a\r\nb\r\n$ "},
		{"existing crlf untouched", "a\r\nb\r\n", "a\r\nb\r\n$ "},
		{"trailing newline ensured", "done", "done\r\n$ "},
		{"empty output still gets prompt", "", "\r\n$ "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatOutput(tc.input); got != tc.expect {
				t.Errorf("FormatOutput(%q) = %q, want %q", tc.input, got, tc.expect)
			}
		})
	}
}

// Package lineedit implements the client-side keystroke interpreter for
// the terminal gateway.
//
// The encoder consumes one input unit at a time (a single character or a
// whole escape sequence) and maintains a line buffer. Printable input is
// buffered and echoed until a line-completion trigger flushes it as one
// command; a small set of control codes bypasses buffering and is sent
// immediately. The control-code table is the wire contract between the
// terminal client and the gateway, so it lives in its own package where it
// can be tested in isolation.
package lineedit

import "strings"

// Prompt is the cosmetic prompt re-rendered by the client after each
// command's output. It never comes from the remote host.
const Prompt = "$ "

// Control codes interpreted by the encoder.
const (
	codeInterrupt  = 0x03 // Ctrl+C
	codeEndOfInput = 0x04 // Ctrl+D
	codeBackspace  = 0x08 // Ctrl+H
	codeTab        = 0x09
	codeReturn     = 0x0d
	codeSuspend    = 0x1a // Ctrl+Z
	codeEscape     = 0x1b
	codeDelete     = 0x7f
)

// Step is the outcome of feeding one input unit: text to echo locally and
// zero or more payloads to deliver to the gateway, in order.
type Step struct {
	Echo string
	Send []string
}

// Encoder is the line-buffer state machine. The zero value is ready to use.
type Encoder struct {
	buf []rune
}

func New() *Encoder {
	return &Encoder{}
}

// Buffer returns the current line buffer contents.
func (e *Encoder) Buffer() string {
	return string(e.buf)
}

// Feed processes one input unit and returns the resulting step. Units
// beginning with ESC are treated as complete escape sequences. Control
// codes outside the interpreted set are ignored.
func (e *Encoder) Feed(unit string) Step {
	if unit == "" {
		return Step{}
	}
	if unit[0] == codeEscape {
		return e.escapeSequence(unit)
	}
	switch unit[0] {
	case codeReturn:
		return e.carriageReturn()
	case codeDelete, codeBackspace:
		return e.backspace()
	case codeInterrupt:
		return e.interrupt()
	case codeEndOfInput:
		return e.endOfInput()
	case codeSuspend:
		return e.suspend()
	case codeTab:
		return e.tab()
	}
	if unit[0] >= 0x20 {
		return e.printable(unit)
	}
	return Step{}
}

// carriageReturn flushes the buffer as one command. A blank buffer still
// sends a bare newline so the remote prompt advances.
func (e *Encoder) carriageReturn() Step {
	line := string(e.buf)
	e.buf = e.buf[:0]
	if strings.TrimSpace(line) == "" {
		return Step{Echo: "\r\n", Send: []string{"\n"}}
	}
	return Step{Echo: "\r\n", Send: []string{line + "\n"}}
}

// backspace removes the last buffered character, if any.
func (e *Encoder) backspace() Step {
	if len(e.buf) == 0 {
		return Step{}
	}
	e.buf = e.buf[:len(e.buf)-1]
	return Step{Echo: "\b \b"}
}

// interrupt clears the buffer and forwards the raw interrupt byte
// immediately, bypassing line buffering.
func (e *Encoder) interrupt() Step {
	e.buf = e.buf[:0]
	return Step{Echo: "^C\r\n", Send: []string{"\x03"}}
}

// endOfInput forwards the raw EOF byte without touching the buffer.
func (e *Encoder) endOfInput() Step {
	return Step{Send: []string{"\x04"}}
}

// suspend clears the buffer and forwards the raw suspend byte.
func (e *Encoder) suspend() Step {
	e.buf = e.buf[:0]
	return Step{Echo: "^Z\r\n", Send: []string{"\x1a"}}
}

// tab sends the buffer plus a tab for remote completion. The buffer is
// kept and nothing is echoed; the completion reply repaints the line.
func (e *Encoder) tab() Step {
	return Step{Send: []string{string(e.buf) + "\t"}}
}

// escapeSequence forwards the whole sequence verbatim and immediately.
// Arrow keys and the like are not interpreted locally.
func (e *Encoder) escapeSequence(unit string) Step {
	return Step{Send: []string{unit}}
}

// printable appends the unit to the buffer and echoes it.
func (e *Encoder) printable(unit string) Step {
	e.buf = append(e.buf, []rune(unit)...)
	return Step{Echo: unit}
}

// FormatOutput prepares returned command output for terminal rendering:
// bare newlines become CRLF, a trailing CRLF is ensured, and the prompt is
// appended.
func FormatOutput(output string) string {
	out := strings.ReplaceAll(output, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\n", "\r\n")
	if !strings.HasSuffix(out, "\r\n") {
		out += "\r\n"
	}
	return out + Prompt
}

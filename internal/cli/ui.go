package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// ui prints user-facing messages. Colors switch off automatically when
// output is not a terminal or NO_COLOR is set.
type ui struct {
	w    io.Writer
	ok   *color.Color
	warn *color.Color
	fail *color.Color
	dim  *color.Color
}

func newUI(w io.Writer) *ui {
	return &ui{
		w:    w,
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		fail: color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
	}
}

func (u *ui) Info(format string, args ...any) {
	fmt.Fprintf(u.w, format+"\n", args...)
}

func (u *ui) Success(format string, args ...any) {
	u.ok.Fprintf(u.w, "✓ "+format+"\n", args...)
}

func (u *ui) Warn(format string, args ...any) {
	u.warn.Fprintf(u.w, "! "+format+"\n", args...)
}

func (u *ui) Error(err error) {
	u.fail.Fprintf(u.w, "✗ %v\n", err)
}

func (u *ui) Hint(format string, args ...any) {
	u.dim.Fprintf(u.w, format+"\n", args...)
}

func (u *ui) Prompt(s string) {
	fmt.Fprint(u.w, s)
}

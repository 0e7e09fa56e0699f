// Package output renders command results for terminals, pipes and machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode selects how results are rendered.
type Mode string

// Output modes.
const (
	// ModeAuto renders text, styled when writing to a color terminal.
	ModeAuto Mode = "auto"
	// ModeText renders plain text.
	ModeText Mode = "text"
	// ModeJSON renders machine-readable JSON.
	ModeJSON Mode = "json"
)

// ParseMode converts a format name to a Mode. Unknown names are an error.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeText, ModeJSON:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want auto, text or json)", s)
	}
}

// Renderer writes command output.
type Renderer struct {
	out     io.Writer
	errOut  io.Writer
	mode    Mode
	profile termenv.Profile
	styles  Styles
}

// NewRenderer creates a renderer. Styling is enabled only in auto mode on a
// terminal whose environment supports color (NO_COLOR is honored).
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	profile := termenv.Ascii
	if mode == ModeAuto || mode == "" {
		if isTerminal(out) {
			profile = termenv.NewOutput(out).EnvColorProfile()
		}
	}
	return NewRendererWithProfile(out, errOut, mode, profile)
}

// NewRendererWithProfile creates a renderer with a fixed color profile.
func NewRendererWithProfile(out, errOut io.Writer, mode Mode, profile termenv.Profile) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	lr := lipgloss.NewRenderer(out)
	lr.SetColorProfile(profile)
	return &Renderer{
		out:     out,
		errOut:  errOut,
		mode:    mode,
		profile: profile,
		styles:  newStyles(lr),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in int
}

// EffectiveMode resolves ModeAuto to ModeText.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode == ModeAuto {
		return ModeText
	}
	return r.mode
}

// Styled reports whether output carries ANSI styling.
func (r *Renderer) Styled() bool { return r.profile != termenv.Ascii }

// Styles returns the renderer's styles.
func (r *Renderer) Styles() Styles { return r.styles }

// Writer returns the standard output writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the diagnostic writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Println writes a line to standard output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to standard output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Success writes a success line.
func (r *Renderer) Success(msg string) {
	if r.Styled() {
		r.Println(r.styles.Success.Render("✓ " + msg))
		return
	}
	r.Println(msg)
}

// Warn writes a warning line to the diagnostic writer.
func (r *Renderer) Warn(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("warning: ")+msg)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

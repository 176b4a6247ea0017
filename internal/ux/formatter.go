package ux

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by --format and defaults.format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// TextRenderer is implemented by command views that draw themselves with
// the terminal styles.
type TextRenderer interface {
	RenderText(styles *Styles) string
}

// FormatterOptions configures NewFormatter. Writer defaults to stdout.
type FormatterOptions struct {
	Writer  io.Writer
	NoColor bool
	// Compact drops JSON indentation.
	Compact bool
}

// Formatter writes command results in one output format.
type Formatter struct {
	format string
	opts   FormatterOptions
	styles *Styles
}

// NewFormatter returns a formatter for format; "" means text.
func NewFormatter(format string, opts *FormatterOptions) (*Formatter, error) {
	f := &Formatter{format: format}
	if opts != nil {
		f.opts = *opts
	}
	if f.opts.Writer == nil {
		f.opts.Writer = os.Stdout
	}

	switch format {
	case "":
		f.format = FormatText
	case FormatText, FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unknown format: %s (supported: %s)", format, strings.Join(Formats, ", "))
	}
	if f.format == FormatText {
		f.styles = NewStyles(f.opts.NoColor)
	}
	return f, nil
}

var errNotRenderable = errors.New("text output needs a string, a fmt.Stringer or a TextRenderer")

// Format writes data. Text output accepts a TextRenderer, a fmt.Stringer
// or a string.
func (f *Formatter) Format(data any) error {
	w := f.opts.Writer
	switch f.format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		if !f.opts.Compact {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(data)

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	}

	var text string
	switch v := data.(type) {
	case TextRenderer:
		text = v.RenderText(f.styles)
	case fmt.Stringer:
		text = v.String()
	case string:
		text = v
	default:
		return fmt.Errorf("%w, got %T", errNotRenderable, data)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

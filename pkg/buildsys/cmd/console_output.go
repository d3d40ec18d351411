package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/colorstring"
	"github.com/rotisserie/eris"
)

// ConsoleWriter renders the zerolog JSON stream as colored console messages
type ConsoleWriter struct {
	Out io.Writer
	// NoColor strips all color codes
	NoColor bool
	// Verbose appends all event fields to each message
	Verbose bool

	buffer strings.Builder
	lock   sync.Mutex
}

// NewConsoleWriter creates a ConsoleWriter that writes to out
func NewConsoleWriter(out io.Writer) *ConsoleWriter {
	return &ConsoleWriter{Out: out}
}

func stringField(evt map[string]interface{}, name string) string {
	value, ok := evt[name].(string)
	if !ok {
		return ""
	}
	return value
}

// writeLabeled produces "<label>: <summary><detail>\n\t<hint>" with the summary in bold if a detail follows
func (w *ConsoleWriter) writeLabeled(color, label, summary, detail, hint string) {
	w.buffer.WriteString(color + label + ": [reset]")
	if detail == "" {
		w.buffer.WriteString(summary)
	} else {
		w.buffer.WriteString("[bold]" + summary + "[reset]" + detail)
	}

	if hint != "" {
		w.buffer.WriteString("\n\t")
		w.buffer.WriteString(strings.ReplaceAll(hint, "\n", "\n\t"))
	}
}

func (w *ConsoleWriter) Write(p []byte) (n int, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	var evt map[string]interface{}
	d := json.NewDecoder(bytes.NewReader(p))
	d.UseNumber()
	err = d.Decode(&evt)
	if err != nil {
		return n, eris.Wrapf(err, "cannot decode event: %s", p)
	}

	msg := stringField(evt, "message")
	detail := stringField(evt, "detail")
	hint := stringField(evt, "hint")

	path := stringField(evt, "path")
	if path != "" {
		// simplify the path
		relPath, err := filepath.Rel(".", path)
		if err == nil {
			msg = strings.ReplaceAll(msg, path, relPath)
		}
	}

	w.buffer.Reset()
	switch evt["severity"] {
	case "step":
		w.buffer.WriteString("[blue][bold]==>[reset] " + msg)
	case "warning":
		w.writeLabeled("[yellow]", "warning", msg, detail, hint)
	case "error":
		w.writeLabeled("[red]", "error", msg, detail, hint)
	case "success":
		w.writeLabeled("[green]", "success", msg, detail, hint)
	case "info":
		w.buffer.WriteString(msg + detail)
		if hint != "" {
			w.buffer.WriteString("\n\t" + hint)
		}
	default:
		if command, _ := evt["command"].(bool); command {
			w.buffer.WriteString("[blue][bold]  ->[reset] " + msg)
			break
		}

		switch evt["level"] {
		case "fatal":
			fallthrough
		case "error":
			w.buffer.WriteString("[red]Error: ")
		case "warn":
			w.buffer.WriteString("[yellow]")
		case "debug":
			fallthrough
		case "trace":
			w.buffer.WriteString("[blue]")
		}
		w.buffer.WriteString(msg)

		errorDetails := stringField(evt, "error")
		if errorDetails != "" {
			w.buffer.WriteString("\n")
			w.buffer.WriteString(errorDetails)
		}
	}

	if w.Verbose {
		names := make([]string, 0, len(evt))
		for name := range evt {
			names = append(names, name)
		}
		sort.Strings(names)

		w.buffer.WriteString("[reset]\n")
		for _, name := range names {
			w.buffer.WriteString(fmt.Sprintf("  %s: %+v\n", name, evt[name]))
		}
	}

	w.buffer.WriteString("[reset]\n")

	colorize := colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: w.NoColor,
	}
	_, err = io.WriteString(w.Out, colorize.Color(w.buffer.String()))
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

package ui

import (
	"fmt"
	"io"
	"sort"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
)

var (
	red    = color.New(color.FgRed)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	blue   = color.New(color.FgBlue)
	cyan   = color.New(color.FgCyan)
)

func PrintBanner(w io.Writer) {
	cyan.Fprintln(w, figure.NewFigure("geodiff", "isometric1", true).String())
}

// PrintWarning displays a warning message with consistent formatting
func PrintWarning(w io.Writer, message string) {
	yellow.Fprintf(w, "Warning: %s\n", message)
}

// PrintError displays an error message with consistent formatting
func PrintError(w io.Writer, message string) {
	red.Fprintf(w, "\nError: %s\n", message)
}

// PrintSuccess displays a success message with consistent formatting
func PrintSuccess(w io.Writer, message string) {
	green.Fprintf(w, "\n%s\n", message)
}

func PrintInfo(w io.Writer, message string) {
	blue.Fprintln(w, message)
}

// PrintArtifacts lists name and path pairs sorted by name.
func PrintArtifacts(w io.Writer, artifacts map[string]string) {
	names := make([]string, 0, len(artifacts))
	width := 0
	for name := range artifacts {
		names = append(names, name)
		width = max(width, len(name))
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-*s  %s\n", width, name, artifacts[name])
	}
}

package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"              _       _     _",
	"  _ __   __ _| |_ ___| |__ | |__   __ _ _   _",
	" | '_ \\ / _` | __/ __| '_ \\| '_ \\ / _` | | | |",
	" | |_) | (_| | || (__| | | | |_) | (_| | |_| |",
	" | .__/ \\__,_|\\__\\___|_| |_|_.__/ \\__,_|\\__, |",
	" |_|                                    |___/",
}

// Teal to blue, one stop per line.
var bannerColors = []string{"#2dd4bf", "#22d3ee", "#38bdf8", "#60a5fa", "#818cf8", "#a78bfa"}

// PrintBanner writes the patchbay ASCII banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(bannerColors[i])))
	}
	if version != "" {
		fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	}
	fmt.Fprintln(w)
}

package main

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// printBanner writes the startup banner for `conduit serve`.
func printBanner(w io.Writer, addr string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"   ___                _       _ _   ", "#38bdf8"},
		{"  / __|___ _ _  __| |_  _(_) |_ ", "#22d3ee"},
		{" | (__/ _ \\ ' \\/ _` | || | |  _|", "#2dd4bf"},
		{"  \\___\\___/_||_\\__,_|\\_,_|_|\\__|", "#34d399"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, out.String("  reference API listening on "+addr).Faint())
	fmt.Fprintln(w)
}

package report

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/xyzprep/internal/xyz"
)

// Reporter writes progress diagnostics. It is an xyz.Observer so it can be
// handed straight to the parser.
type Reporter struct {
	w        io.Writer
	Frames   bool
	warnings int
}

func New(w io.Writer) *Reporter {
	return &Reporter{w: w, Frames: true}
}

func (r *Reporter) OnFrame(index int, f *xyz.Frame) {
	if !r.Frames {
		return
	}
	atoms, forces := f.Observed()
	fmt.Fprintln(r.w, Subtle.Render(fmt.Sprintf("Processed timestep: %d atoms, %d forces", atoms, forces)))
}

func (r *Reporter) File(path string) {
	fmt.Fprintln(r.w, Title.Render("Processing file: "+path))
}

func (r *Reporter) Saved(path string) {
	fmt.Fprintln(r.w, OK.Render("saved ")+path)
}

func (r *Reporter) Infof(format string, args ...any) {
	fmt.Fprintf(r.w, format+"\n", args...)
}

func (r *Reporter) Warnf(format string, args ...any) {
	r.warnings++
	fmt.Fprintln(r.w, WarnStyle.Render("Warning: ")+fmt.Sprintf(format, args...))
}

// Warnings counts Warnf calls so far.
func (r *Reporter) Warnings() int {
	return r.warnings
}

// EnergyGraph plots energy against timestep. It returns "" for fewer than
// two points.
func EnergyGraph(energies []float64, width, height int, caption string) string {
	if len(energies) < 2 {
		return ""
	}
	return asciigraph.Plot(energies,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

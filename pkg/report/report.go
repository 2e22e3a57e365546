// Package report renders analysis results as colored text, JSON, or
// Graphviz dot.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/tealscan/tealscan/pkg/detectors"
	"github.com/tealscan/tealscan/pkg/teal"
)

// PathInfo is one reported execution path, by block index and by source
// line range.
type PathInfo struct {
	Blocks []int  `json:"blocks"`
	Lines  string `json:"lines"`
}

// Finding is one detector's verdict on one program.
type Finding struct {
	Detector    string     `json:"detector"`
	Description string     `json:"description"`
	Paths       []PathInfo `json:"paths"`
}

// Result is the full analysis output for one source file.
type Result struct {
	File     string    `json:"file"`
	Version  int       `json:"version"`
	Findings []Finding `json:"findings"`
}

// Run executes the detectors against the program and collects the result.
// Detectors that find nothing are recorded with an empty path list so the
// output states what was checked, not only what failed.
func Run(file string, p *teal.Program, ds []detectors.Detector) *Result {
	r := &Result{File: file, Version: p.Version()}
	for _, d := range ds {
		f := Finding{Detector: d.Name(), Description: d.Description()}
		for _, path := range d.Check(p) {
			f.Paths = append(f.Paths, PathInfo{
				Blocks: blockIndices(path),
				Lines:  lineRanges(path),
			})
		}
		r.Findings = append(r.Findings, f)
	}
	return r
}

// Vulnerable reports whether any detector found at least one path.
func (r *Result) Vulnerable() bool {
	for _, f := range r.Findings {
		if len(f.Paths) > 0 {
			return true
		}
	}
	return false
}

func blockIndices(path detectors.Path) []int {
	out := make([]int, len(path))
	for i, b := range path {
		out[i] = b.Idx()
	}
	return out
}

func lineRanges(path detectors.Path) string {
	parts := make([]string, len(path))
	for i, b := range path {
		first, last := b.Lines()
		if first == last {
			parts[i] = fmt.Sprintf("%d", first)
		} else {
			parts[i] = fmt.Sprintf("%d-%d", first, last)
		}
	}
	return strings.Join(parts, " -> ")
}

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	badColor    = color.New(color.FgRed, color.Bold)
	okColor     = color.New(color.FgGreen)
	dimColor    = color.New(color.Faint)
)

// WriteText renders the result for terminals. Color is controlled globally
// through color.NoColor, which fatih/color already wires to NO_COLOR and
// non-tty outputs.
func WriteText(w io.Writer, r *Result) error {
	if _, err := headerColor.Fprintf(w, "%s", r.File); err != nil {
		return err
	}
	fmt.Fprintf(w, " (TEAL v%d)\n", r.Version)
	for _, f := range r.Findings {
		if len(f.Paths) == 0 {
			okColor.Fprintf(w, "  ok       ")
			fmt.Fprintln(w, f.Detector)
			continue
		}
		badColor.Fprintf(w, "  VULNERABLE ")
		fmt.Fprintf(w, "%s: %s\n", f.Detector, f.Description)
		for _, p := range f.Paths {
			dimColor.Fprintf(w, "    path (lines %s)\n", p.Lines)
		}
	}
	return nil
}

// WriteJSON renders the result as indented JSON.
func WriteJSON(w io.Writer, r *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

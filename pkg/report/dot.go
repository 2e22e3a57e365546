package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/tealscan/tealscan/pkg/teal"
)

// WriteDot renders the program's CFG as a Graphviz digraph. Each block is a
// record node listing its instructions; subroutine entries get a double
// border. Retsub blocks show no outgoing edges, matching the graph.
func WriteDot(w io.Writer, name string, p *teal.Program) error {
	if _, err := fmt.Fprintf(w, "digraph %q {\n", name); err != nil {
		return err
	}
	fmt.Fprintln(w, "  node [shape=box fontname=\"monospace\"];")

	for _, b := range p.Blocks() {
		var lines []string
		for _, in := range b.Instructions() {
			lines = append(lines, escapeDot(in.String()))
		}
		first, last := b.Lines()
		attrs := fmt.Sprintf("label=\"block %d (lines %d-%d)\\l%s\\l\"",
			b.Idx(), first, last, strings.Join(lines, "\\l"))
		if b.IsSubroutineEntry() {
			attrs += " peripheries=2"
		}
		fmt.Fprintf(w, "  b%d [%s];\n", b.Idx(), attrs)
	}

	for _, b := range p.Blocks() {
		for _, nb := range b.Next() {
			fmt.Fprintf(w, "  b%d -> b%d;\n", b.Idx(), nb.Idx())
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}

func escapeDot(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	return strings.ReplaceAll(s, "\"", "\\\"")
}

// Package detectors finds concrete vulnerable execution paths in a TEAL
// program's CFG. A detector names a class of guard blocks (blocks
// performing a required validation) and sink blocks (risk-relevant exits)
// and reports every entry-to-sink path that never passes through a guard.
package detectors

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tealscan/tealscan/pkg/dataflow"
	"github.com/tealscan/tealscan/pkg/teal"
)

// Path is an ordered block sequence from the entry block to a sink block.
// It is owned by the detector invocation that produced it.
type Path []*teal.BasicBlock

// Detector is one named check run against an immutable Program. Detectors
// only read the program, so any number may run against the same snapshot.
type Detector interface {
	Name() string
	Description() string
	Check(p *teal.Program) []Path
}

var registry []Detector

func register(d Detector) {
	registry = append(registry, d)
}

// All returns the registered detectors sorted by name.
func All() []Detector {
	out := make([]Detector, len(registry))
	copy(out, registry)
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Lookup returns the registered detector with the given name, or nil.
func Lookup(name string) Detector {
	for _, d := range registry {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

// Search enumerates every entry-to-sink path not passing through a guard
// block. The traversal is depth-first, bounds each block to one visit per
// path (so loops terminate while still appearing on distinct paths), and
// stitches subroutine calls to their call-site return points along each
// concrete traversal. Paths are deduplicated by exact block sequence.
func Search(p *teal.Program, isGuard, isSink func(*teal.BasicBlock) bool) []Path {
	entry := p.Entry()
	if entry == nil {
		return nil
	}
	s := &searcher{
		isGuard: isGuard,
		isSink:  isSink,
		onPath:  make(map[int]bool),
		seen:    make(map[string]bool),
	}
	s.walk(entry, nil, false, nil)
	return s.paths
}

type searcher struct {
	isGuard func(*teal.BasicBlock) bool
	isSink  func(*teal.BasicBlock) bool
	onPath  map[int]bool
	seen    map[string]bool
	paths   []Path
}

func (s *searcher) walk(b *teal.BasicBlock, path Path, guarded bool, callStack []*teal.BasicBlock) {
	if s.onPath[b.Idx()] {
		return
	}
	s.onPath[b.Idx()] = true
	defer delete(s.onPath, b.Idx())

	// Full slice expression: sibling recursions must not share the
	// backing array.
	path = append(path[:len(path):len(path)], b)
	guarded = guarded || s.isGuard(b)

	if !guarded && s.isSink(b) {
		s.record(path)
	}

	exit := b.Exit()
	switch exit.Kind() {
	case teal.KindCallsub:
		// Successor edges lead into the subroutine; remember where this
		// call site resumes so the matching retsub can be stitched back.
		var ret *teal.BasicBlock
		if rp := exit.ReturnPoint(); rp != nil {
			ret = rp.Block()
		}
		callStack = append(callStack[:len(callStack):len(callStack)], ret)
		for _, nb := range b.Next() {
			s.walk(nb, path, guarded, callStack)
		}

	case teal.KindRetsub:
		// The block itself has no successor edges; the destination is the
		// return point of the innermost call on this traversal.
		if n := len(callStack); n > 0 {
			if ret := callStack[n-1]; ret != nil {
				s.walk(ret, path, guarded, callStack[:n-1])
			}
		}

	default:
		for _, nb := range b.Next() {
			s.walk(nb, path, guarded, callStack)
		}
	}
}

func (s *searcher) record(path Path) {
	ids := make([]string, len(path))
	for i, b := range path {
		ids[i] = strconv.Itoa(b.Idx())
	}
	key := strings.Join(ids, ",")
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	out := make(Path, len(path))
	copy(out, path)
	s.paths = append(s.paths, out)
}

// readsTxnField matches instructions reading the given transaction field,
// for the current or any group/inner transaction.
func readsTxnField(f teal.TxnField) func(*teal.Instruction) bool {
	return func(in *teal.Instruction) bool {
		switch in.Kind() {
		case teal.KindTxn, teal.KindTxna, teal.KindGtxn, teal.KindGtxna, teal.KindGtxnas,
			teal.KindItxn, teal.KindItxna, teal.KindGitxn, teal.KindGitxna, teal.KindGitxnas:
			return in.TxnField() == f
		}
		return false
	}
}

func readsGlobalField(f teal.GlobalField) func(*teal.Instruction) bool {
	return func(in *teal.Instruction) bool {
		return in.Kind() == teal.KindGlobal && in.GlobalField() == f
	}
}

// fieldCheckGuard recognizes blocks that read a field (per reads), compare
// it later in the block, and abort when the comparison fails: either the
// block exits through a conditional branch or an assert follows the
// comparison.
func fieldCheckGuard(reads func(*teal.Instruction) bool) func(*teal.BasicBlock) bool {
	return func(b *teal.BasicBlock) bool {
		readSeen, cmpSeen := false, false
		for _, in := range b.Instructions() {
			switch {
			case reads(in):
				readSeen = true
			case readSeen && isComparison(in.Kind()):
				cmpSeen = true
			case readSeen && cmpSeen && in.Kind() == teal.KindAssert:
				return true
			}
		}
		if !readSeen || !cmpSeen {
			return false
		}
		switch b.Exit().Kind() {
		case teal.KindBZ, teal.KindBNZ:
			return true
		}
		return false
	}
}

func isComparison(k teal.Kind) bool {
	switch k {
	case teal.KindEq, teal.KindNeq, teal.KindLt, teal.KindGt, teal.KindLe, teal.KindGe:
		return true
	}
	return false
}

// successReturn classifies blocks ending in an unconditional success
// return: the exit is `return` and the pushed result is not provably zero.
// An unresolvable result stays a sink; the analysis reports rather than
// guesses.
func successReturn(b *teal.BasicBlock) bool {
	exit := b.Exit()
	if exit.Kind() != teal.KindReturn {
		return false
	}
	prev := exit.Prev()
	if prev == nil {
		return true
	}
	if recognized, v := dataflow.ResolveInt(prev); recognized && v != nil && *v == 0 {
		return false
	}
	return true
}

// fieldCheckDetector is the common shape of the missing-field-check
// detectors: guard blocks validate one field, sinks are success returns.
type fieldCheckDetector struct {
	name        string
	description string
	reads       func(*teal.Instruction) bool
}

func (d *fieldCheckDetector) Name() string        { return d.name }
func (d *fieldCheckDetector) Description() string { return d.description }

func (d *fieldCheckDetector) Check(p *teal.Program) []Path {
	return Search(p, fieldCheckGuard(d.reads), successReturn)
}

package teal

// Program is one fully analyzed TEAL unit: the instruction arena, the
// basic-block graph, the label table, and the subroutine entry markers.
// It is built once by Parse and immutable afterwards; detectors and
// analyses only read it.
type Program struct {
	version int

	// Arenas. Instructions and blocks are referenced by stable indices;
	// block successor/predecessor lists are index lists into blocks.
	ins    []*Instruction
	blocks []*BasicBlock

	labelIns    map[string]*Instruction
	labelBlocks map[string]*BasicBlock
	subEntries  []int
}

func newProgram() *Program {
	return &Program{
		version:     DefaultVersion,
		labelIns:    make(map[string]*Instruction),
		labelBlocks: make(map[string]*BasicBlock),
	}
}

// Version returns the declared language version (DefaultVersion if the
// source had no version pragma).
func (p *Program) Version() int { return p.version }

// Instructions returns the parsed instructions in source order.
func (p *Program) Instructions() []*Instruction { return p.ins }

// Blocks returns all basic blocks in program order. Unreachable blocks are
// included: they stay in the graph as disconnected nodes so they can still
// be reported.
func (p *Program) Blocks() []*BasicBlock { return p.blocks }

// Entry returns the entry block, or nil for an empty program.
func (p *Program) Entry() *BasicBlock {
	if len(p.blocks) == 0 {
		return nil
	}
	return p.blocks[0]
}

// LabelBlock returns the block a label resolves to.
func (p *Program) LabelBlock(name string) *BasicBlock { return p.labelBlocks[name] }

// SubroutineEntries returns the blocks reachable via callsub edges, in
// first-call order.
func (p *Program) SubroutineEntries() []*BasicBlock {
	out := make([]*BasicBlock, len(p.subEntries))
	for i, idx := range p.subEntries {
		out[i] = p.blocks[idx]
	}
	return out
}

// BasicBlock is a maximal straight-line instruction run with one entry and
// one control-transferring exit.
type BasicBlock struct {
	idx      int
	ins      []*Instruction
	nexts    []int // successor block indices
	prevs    []int // predecessor block indices
	subEntry bool
	prog     *Program
}

// Idx returns the block's stable ordering index.
func (b *BasicBlock) Idx() int { return b.idx }

// Instructions returns the block's instructions in order.
func (b *BasicBlock) Instructions() []*Instruction { return b.ins }

// Entry returns the block's first instruction.
func (b *BasicBlock) Entry() *Instruction { return b.ins[0] }

// Exit returns the block's control-transferring exit instruction (the last
// instruction of the block).
func (b *BasicBlock) Exit() *Instruction { return b.ins[len(b.ins)-1] }

// Next returns the successor blocks. Blocks exiting through retsub have
// none: the destination depends on the dynamic call stack, which a
// block-level CFG cannot represent (see Instruction.ReturnPoint).
func (b *BasicBlock) Next() []*BasicBlock {
	out := make([]*BasicBlock, len(b.nexts))
	for i, idx := range b.nexts {
		out[i] = b.prog.blocks[idx]
	}
	return out
}

// Prev returns the predecessor blocks.
func (b *BasicBlock) Prev() []*BasicBlock {
	out := make([]*BasicBlock, len(b.prevs))
	for i, idx := range b.prevs {
		out[i] = b.prog.blocks[idx]
	}
	return out
}

// IsSubroutineEntry reports whether the block is a subroutine entry,
// i.e. a callsub target.
func (b *BasicBlock) IsSubroutineEntry() bool { return b.subEntry }

// Lines returns the source line range [first, last] covered by the block.
func (b *BasicBlock) Lines() (int, int) {
	return b.ins[0].line, b.ins[len(b.ins)-1].line
}

// buildCFG partitions the instruction arena into basic blocks and wires
// successor/predecessor edges. This is the single finalization step that
// writes the write-once fields (owning block, callsub return point).
func buildCFG(p *Program) error {
	if len(p.ins) == 0 {
		return nil
	}

	// A new block begins at the first instruction, at every label (the
	// only possible branch targets), and after every control transfer.
	leader := make([]bool, len(p.ins))
	leader[0] = true
	for i, in := range p.ins {
		if in.kind == KindLabel && i > 0 {
			leader[i] = true
		}
		if in.TransfersControl() && i+1 < len(p.ins) {
			leader[i+1] = true
		}
	}

	for i := 0; i < len(p.ins); {
		j := i + 1
		for j < len(p.ins) && !leader[j] {
			j++
		}
		b := &BasicBlock{idx: len(p.blocks), ins: p.ins[i:j], prog: p}
		p.blocks = append(p.blocks, b)
		for _, in := range b.ins {
			if err := in.setBlock(b.idx); err != nil {
				return err
			}
			if in.kind == KindLabel {
				p.labelBlocks[in.labelName] = b
			}
		}
		i = j
	}

	for _, b := range p.blocks {
		exit := b.Exit()
		switch exit.kind {
		case KindB:
			addEdge(p, b, p.labelBlocks[exit.labels[0]])

		case KindBZ, KindBNZ:
			addFallthrough(p, b)
			addEdge(p, b, p.labelBlocks[exit.labels[0]])

		case KindSwitch, KindMatch:
			// No matching target falls through to the next instruction.
			addFallthrough(p, b)
			for _, l := range exit.labels {
				addEdge(p, b, p.labelBlocks[l])
			}

		case KindCallsub:
			// The edge goes to the subroutine entry, never to the textual
			// successor: a subroutine may be invoked from many call sites,
			// and a generic next-edge would conflate them. The textual
			// successor is recorded as this call's return point instead.
			target := p.labelBlocks[exit.labels[0]]
			addEdge(p, b, target)
			if !target.subEntry {
				target.subEntry = true
				p.subEntries = append(p.subEntries, target.idx)
			}
			if next := exit.Next(); next != nil {
				if err := exit.SetReturnPoint(next); err != nil {
					return err
				}
			}

		case KindRetsub, KindReturn, KindErr:
			// No successors.

		default:
			addFallthrough(p, b)
		}
	}

	for _, in := range p.ins {
		if in.blockIdx < 0 {
			return internalErrorf("instruction %q not assigned to a block", in.text)
		}
	}
	return nil
}

func addFallthrough(p *Program, b *BasicBlock) {
	if b.idx+1 < len(p.blocks) {
		addEdge(p, b, p.blocks[b.idx+1])
	}
}

func addEdge(p *Program, from, to *BasicBlock) {
	for _, idx := range from.nexts {
		if idx == to.idx {
			return
		}
	}
	from.nexts = append(from.nexts, to.idx)
	to.prevs = append(to.prevs, from.idx)
}

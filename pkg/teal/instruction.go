package teal

// Instruction is one parsed opcode occurrence. Instances are created by the
// parser and frozen by CFG construction; the only mutable state afterwards
// is the pair of write-once fields (owning block, call return point), and a
// second write to either is an internal-consistency fault.
type Instruction struct {
	kind Kind
	spec *opSpec // nil for KindUnknown, KindPragma, KindLabel

	idx     int    // position in the program's instruction arena, -1 if standalone
	line    int    // 1-based source line
	text    string // source text, comment stripped and trimmed
	comment string // trailing comment including the // marker, "" if none

	// Immediates. Which of these are meaningful depends on kind.
	intVal    uint64   // int/pushint/pragma value, intc/bytec slot
	intName   string   // symbolic integer literal as written, "" if numeric
	intImms   []uint64 // extract start/length, replace position, group index
	intList   []uint64 // intcblock constants
	byteList  []string // bytecblock constants, normalized
	bytesVal  string   // byte/pushbytes/addr/method literal, normalized
	variant   string   // curve, hash variant, or encoding immediate
	txnField  TxnField
	globField GlobalField
	fieldIdx  int      // array field index, -1 when taken from the stack
	labels    []string // branch targets (1 for b/bz/bnz/callsub, many for switch/match)
	labelName string   // KindLabel: the declared label

	prog        *Program
	blockIdx    int          // owning block, -1 until CFG finalization
	returnPoint *Instruction // callsub only, nil until CFG finalization
}

func newInstruction(kind Kind, spec *opSpec, text string) *Instruction {
	return &Instruction{
		kind:     kind,
		spec:     spec,
		idx:      -1,
		text:     text,
		fieldIdx: -1,
		blockIdx: -1,
	}
}

// Kind returns the opcode kind.
func (in *Instruction) Kind() Kind { return in.kind }

// Line returns the 1-based source line the instruction came from.
func (in *Instruction) Line() int { return in.line }

// Comment returns the trailing comment, including the // marker, or "".
func (in *Instruction) Comment() string { return in.comment }

// String returns the instruction's source text with the comment stripped.
// Unrecognized opcodes print back their original line verbatim.
func (in *Instruction) String() string { return in.text }

// MinVersion returns the minimum language version supporting the opcode.
func (in *Instruction) MinVersion() int {
	if in.spec == nil {
		return MinVersion
	}
	return in.spec.MinVersion
}

// Name returns the mnemonic, or "" for labels, pragmas, and unknown opcodes.
func (in *Instruction) Name() string {
	if in.spec == nil {
		return ""
	}
	return in.spec.Name
}

// IntValue returns the immediate integer of int/pushint (or the pragma
// version number).
func (in *Instruction) IntValue() uint64 { return in.intVal }

// IntName returns the symbolic integer literal as written (`pay`, `OptIn`),
// or "" if the immediate was numeric.
func (in *Instruction) IntName() string { return in.intName }

// Slot returns the constant-pool slot of an intc/bytec reference.
func (in *Instruction) Slot() uint64 { return in.intVal }

// IntConstants returns the intcblock literal list.
func (in *Instruction) IntConstants() []uint64 { return in.intList }

// ByteConstants returns the bytecblock literal list, normalized.
func (in *Instruction) ByteConstants() []string { return in.byteList }

// BytesValue returns the byte/pushbytes/addr/method literal, normalized.
func (in *Instruction) BytesValue() string { return in.bytesVal }

// Variant returns the named curve/hash/encoding immediate, or "".
func (in *Instruction) Variant() string { return in.variant }

// TxnField returns the transaction field read by txn-class opcodes.
func (in *Instruction) TxnField() TxnField { return in.txnField }

// GlobalField returns the field read by a `global` opcode.
func (in *Instruction) GlobalField() GlobalField { return in.globField }

// FieldIndex returns the array-field index, or -1 when the index is taken
// from the stack (gtxnas and friends) or the field is not an array.
func (in *Instruction) FieldIndex() int { return in.fieldIdx }

// GroupIndex returns the transaction-group index of gtxn-class opcodes.
func (in *Instruction) GroupIndex() uint64 {
	if len(in.intImms) == 0 {
		return 0
	}
	return in.intImms[0]
}

// Labels returns the branch target label names, in operand order.
func (in *Instruction) Labels() []string { return in.labels }

// LabelName returns the declared label of a KindLabel pseudo-instruction.
func (in *Instruction) LabelName() string { return in.labelName }

// IsReplace2 reports whether a replace instruction carries a position
// immediate (replace2 semantics).
func (in *Instruction) IsReplace2() bool {
	return in.kind == KindReplace && len(in.intImms) == 1
}

// IsReplace3 reports whether a replace instruction takes its position from
// the stack (replace3 semantics).
func (in *Instruction) IsReplace3() bool {
	return in.kind == KindReplace && len(in.intImms) == 0
}

// StartPosition returns the replace position immediate. It fails for
// replace3, which has no immediate.
func (in *Instruction) StartPosition() (uint64, error) {
	if in.kind != KindReplace {
		return 0, internalErrorf("start position queried on %q", in.text)
	}
	if len(in.intImms) == 0 {
		return 0, internalErrorf("replace without position immediate (replace3) has no start position")
	}
	return in.intImms[0], nil
}

// ImmediateInts returns the raw small-integer immediates (extract start and
// length, replace position).
func (in *Instruction) ImmediateInts() []uint64 { return in.intImms }

// Prev returns the straight-line predecessor in program order, independent
// of basic-block membership, or nil at the program start.
func (in *Instruction) Prev() *Instruction {
	if in.prog == nil || in.idx <= 0 {
		return nil
	}
	return in.prog.ins[in.idx-1]
}

// Next returns the straight-line successor in program order, or nil at the
// program end.
func (in *Instruction) Next() *Instruction {
	if in.prog == nil || in.idx < 0 || in.idx+1 >= len(in.prog.ins) {
		return nil
	}
	return in.prog.ins[in.idx+1]
}

// Block returns the owning basic block, or nil before CFG finalization.
func (in *Instruction) Block() *BasicBlock {
	if in.prog == nil || in.blockIdx < 0 {
		return nil
	}
	return in.prog.blocks[in.blockIdx]
}

// setBlock assigns the owning block. The field is write-once; assigning
// twice is a construction bug.
func (in *Instruction) setBlock(idx int) error {
	if in.blockIdx >= 0 {
		return internalErrorf("block of %q already assigned", in.text)
	}
	in.blockIdx = idx
	return nil
}

// ReturnPoint returns the instruction that logically follows this callsub
// at its call site, or nil (not yet linked, or callsub is the last
// instruction).
func (in *Instruction) ReturnPoint() *Instruction { return in.returnPoint }

// SetReturnPoint links a callsub to its call-site return point. The field
// is write-once; a second call is an internal-consistency fault.
func (in *Instruction) SetReturnPoint(target *Instruction) error {
	if in.kind != KindCallsub {
		return internalErrorf("return point set on non-callsub %q", in.text)
	}
	if in.returnPoint != nil {
		return internalErrorf("return point of %q already set", in.text)
	}
	in.returnPoint = target
	return nil
}

// IsBranching reports whether the opcode contributes explicit branch edges.
func (in *Instruction) IsBranching() bool {
	switch in.kind {
	case KindB, KindBZ, KindBNZ, KindCallsub, KindSwitch, KindMatch:
		return true
	}
	return false
}

// TransfersControl reports whether the opcode ends a basic block.
func (in *Instruction) TransfersControl() bool {
	switch in.kind {
	case KindB, KindBZ, KindBNZ, KindCallsub, KindRetsub, KindSwitch, KindMatch, KindReturn, KindErr:
		return true
	}
	return false
}

// Cost returns the instruction's execution cost under the program's
// declared version. It fails before CFG finalization: cost is contextual
// on the owning block's program version, so querying earlier is a bug in
// the calling sequence. Opcodes above the declared version cost 0; they
// are semantically unreachable and contribute nothing to cost accounting.
func (in *Instruction) Cost() (int, error) {
	if in.prog == nil || in.blockIdx < 0 {
		return 0, internalErrorf("cost of %q queried before block assignment", in.text)
	}
	switch in.kind {
	case KindLabel, KindPragma, KindUnknown:
		return 0, nil
	}
	if in.spec.MinVersion > in.prog.Version() {
		return 0, nil
	}
	if in.spec.Cost == nil {
		return 1, nil
	}
	return in.spec.Cost(in, in.prog.Version()), nil
}

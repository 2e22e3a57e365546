package dataflow

import (
	"strings"
	"testing"

	"github.com/tealscan/tealscan/pkg/teal"
)

// lastOfKind returns the last instruction of the given kind in the program.
func lastOfKind(t *testing.T, p *teal.Program, k teal.Kind) *teal.Instruction {
	t.Helper()
	var found *teal.Instruction
	for _, in := range p.Instructions() {
		if in.Kind() == k {
			found = in
		}
	}
	if found == nil {
		t.Fatalf("no instruction of kind %v", k)
	}
	return found
}

func resolveIntIn(t *testing.T, src string) (bool, *uint64) {
	t.Helper()
	p, err := teal.Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	return ResolveInt(lastOfKind(t, p, teal.KindIntc))
}

func TestResolveIntDirect(t *testing.T) {
	p, err := teal.Parse("int 42\npushint 7\nreturn")
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range map[int]uint64{0: 42, 1: 7} {
		rec, v := ResolveInt(p.Instructions()[i])
		if !rec || v == nil || *v != want {
			t.Errorf("instruction %d: got (%v, %v), want %d", i, rec, v, want)
		}
	}

	// Not an integer push at all.
	rec, v := ResolveInt(p.Instructions()[2])
	if rec || v != nil {
		t.Errorf("return: got (%v, %v), want (false, nil)", rec, v)
	}
}

func TestResolveIntcSameBlock(t *testing.T) {
	rec, v := resolveIntIn(t, "intcblock 1 2 3\nintc 1\npop")
	if !rec || v == nil || *v != 2 {
		t.Errorf("got (%v, %v), want 2", rec, v)
	}
}

func TestResolveIntcLatestDeclarationWins(t *testing.T) {
	// The second pool replaces the first entirely.
	rec, v := resolveIntIn(t, "intcblock 1 2 3\nintcblock 7 8\nintc 1\npop")
	if !rec || v == nil || *v != 8 {
		t.Errorf("got (%v, %v), want 8", rec, v)
	}
}

func TestResolveIntcAcrossBlocks(t *testing.T) {
	rec, v := resolveIntIn(t, `intcblock 5 6
int 1
bnz skip
pop
skip:
intc_1
pop`)
	if !rec || v == nil || *v != 6 {
		t.Errorf("got (%v, %v), want 6", rec, v)
	}
}

func TestResolveIntcMergeAgreement(t *testing.T) {
	// Both predecessors install the same pool value at the slot.
	rec, v := resolveIntIn(t, `int 1
bnz left
intcblock 5
b join
left:
intcblock 5
join:
intc 0
pop`)
	if !rec || v == nil || *v != 5 {
		t.Errorf("agreeing merge: got (%v, %v), want 5", rec, v)
	}

	// Disagreeing values at the slot stay unknown.
	rec, v = resolveIntIn(t, `int 1
bnz left
intcblock 5
b join
left:
intcblock 9
join:
intc 0
pop`)
	if !rec || v != nil {
		t.Errorf("disagreeing merge: got (%v, %v), want (true, nil)", rec, v)
	}
}

func TestResolveIntcIncompletePath(t *testing.T) {
	// One path reaches the use without any pool declaration.
	rec, v := resolveIntIn(t, `int 1
bnz skip
intcblock 3
skip:
intc 0
pop`)
	if !rec || v != nil {
		t.Errorf("got (%v, %v), want (true, nil)", rec, v)
	}
}

func TestResolveIntcNoDeclaration(t *testing.T) {
	rec, v := resolveIntIn(t, "intc 0\npop")
	if !rec || v != nil {
		t.Errorf("got (%v, %v), want (true, nil)", rec, v)
	}
}

func TestResolveIntcSlotOutOfRange(t *testing.T) {
	rec, v := resolveIntIn(t, "intcblock 1\nintc 5\npop")
	if !rec || v != nil {
		t.Errorf("got (%v, %v), want (true, nil)", rec, v)
	}
}

func TestResolveIntcThroughLoop(t *testing.T) {
	// The loop back-edge must not prevent resolution when every chain ends
	// at the same declaration.
	rec, v := resolveIntIn(t, `intcblock 4
loop:
intc_0
pop
int 1
bnz loop
int 1
return`)
	if !rec || v == nil || *v != 4 {
		t.Errorf("got (%v, %v), want 4", rec, v)
	}
}

func TestResolveBytesLiterals(t *testing.T) {
	p, err := teal.Parse(`byte 0xdeadbeef
byte "AB"
pushbytes 0x01
return`)
	if err != nil {
		t.Fatal(err)
	}
	wants := map[int]string{
		0: "0xdeadbeef",
		1: "0x4142",
		2: "0x01",
	}
	for i, want := range wants {
		rec, v := ResolveBytes(p.Instructions()[i])
		if !rec || v == nil || *v != want {
			t.Errorf("instruction %d: got (%v, %v), want %q", i, rec, v, want)
		}
	}
}

func TestResolveBytesEscapes(t *testing.T) {
	p, err := teal.Parse(`byte "a\x41\n"` + "\nreturn")
	if err != nil {
		t.Fatal(err)
	}
	rec, v := ResolveBytes(p.Instructions()[0])
	if !rec || v == nil || *v != "0x61410a" {
		t.Errorf("got (%v, %v), want 0x61410a", rec, v)
	}
}

func TestResolveBytesAddress(t *testing.T) {
	p, err := teal.Parse("addr 6ZIOGDXGSQSL4YINHLKCHYRV64FSN4LTUIQ6A4VWYK36FXFF42VI2UV7SM\nreturn")
	if err != nil {
		t.Fatal(err)
	}
	rec, v := ResolveBytes(p.Instructions()[0])
	if !rec || v == nil {
		t.Fatalf("got (%v, %v)", rec, v)
	}
	// 32-byte public key, checksum dropped.
	if !strings.HasPrefix(*v, "0x") || len(*v) != 66 {
		t.Errorf("got %q, want 0x-prefixed 32-byte hex", *v)
	}
}

func TestResolveBytecPool(t *testing.T) {
	p, err := teal.Parse("bytecblock 0x41 0x42\nbytec_1\npop")
	if err != nil {
		t.Fatal(err)
	}
	rec, v := ResolveBytes(lastOfKind(t, p, teal.KindBytec))
	if !rec || v == nil || *v != "0x42" {
		t.Errorf("got (%v, %v), want 0x42", rec, v)
	}
}

func TestResolveBytecQuotedPoolEntry(t *testing.T) {
	// Quoted pool entries normalize to hex before comparison.
	p, err := teal.Parse(`bytecblock "A" 0x42
bytec_0
pop`)
	if err != nil {
		t.Fatal(err)
	}
	rec, v := ResolveBytes(lastOfKind(t, p, teal.KindBytec))
	if !rec || v == nil || *v != "0x41" {
		t.Errorf("got (%v, %v), want 0x41", rec, v)
	}
}

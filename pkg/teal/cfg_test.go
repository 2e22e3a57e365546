package teal

import (
	"reflect"
	"sort"
	"testing"
)

const validationProgram = `
#pragma version 2
txn Receiver
addr 6ZIOGDXGSQSL4YINHLKCHYRV64FSN4LTUIQ6A4VWYK36FXFF42VI2UV7SM
==
bz wrongreceiver
txn RekeyTo
global ZeroAddress
==
bz rekeying
txn CloseRemainderTo
global ZeroAddress
==
bz closing_account
txn AssetCloseTo
global ZeroAddress
==
bz closing_asset
global GroupSize
int 1
==
bz unexpected_group_size
int 1
return
wrongreceiver:
rekeying:
closing_account:
closing_asset:
unexpected_group_size:
    err
`

const validationLoopProgram = `
#pragma version 4
txn Receiver
addr 6ZIOGDXGSQSL4YINHLKCHYRV64FSN4LTUIQ6A4VWYK36FXFF42VI2UV7SM
==
bz wrongreceiver
txn RekeyTo
global ZeroAddress
==
bz rekeying
txn CloseRemainderTo
global ZeroAddress
==
bz closing_account
txn AssetCloseTo
global ZeroAddress
==
bz closing_asset
global GroupSize
int 1
==
bz unexpected_group_size
int 0
b loop
wrongreceiver:
rekeying:
closing_account:
closing_asset:
unexpected_group_size:
    err
loop:
    dup
    int 5
    <
    bz end
    int 1
    +
    b loop
end:
    int 1
    return
`

// checkPartitions asserts the block partition over the instruction arena:
// block i covers instruction indices [partitions[i].lo, partitions[i].hi).
func checkPartitions(t *testing.T, p *Program, partitions [][2]int) {
	t.Helper()
	blocks := p.Blocks()
	if len(blocks) != len(partitions) {
		t.Fatalf("got %d blocks, want %d", len(blocks), len(partitions))
	}
	ins := p.Instructions()
	for i, part := range partitions {
		want := ins[part[0]:part[1]]
		got := blocks[i].Instructions()
		if len(got) != len(want) {
			t.Fatalf("block %d: got %d instructions, want %d", i, len(got), len(want))
		}
		for j := range got {
			if got[j] != want[j] {
				t.Errorf("block %d instruction %d: got %q, want %q", i, j, got[j], want[j])
			}
		}
	}
}

// checkLinks asserts successor and predecessor edges as (from, to) pairs.
func checkLinks(t *testing.T, p *Program, links [][2]int) {
	t.Helper()
	wantNext := make(map[int][]int)
	wantPrev := make(map[int][]int)
	for _, l := range links {
		wantNext[l[0]] = append(wantNext[l[0]], l[1])
		wantPrev[l[1]] = append(wantPrev[l[1]], l[0])
	}
	for _, b := range p.Blocks() {
		var next []int
		for _, nb := range b.Next() {
			next = append(next, nb.Idx())
		}
		var prev []int
		for _, pb := range b.Prev() {
			prev = append(prev, pb.Idx())
		}
		sort.Ints(next)
		sort.Ints(prev)
		sort.Ints(wantNext[b.Idx()])
		sort.Ints(wantPrev[b.Idx()])
		if !reflect.DeepEqual(next, wantNext[b.Idx()]) {
			t.Errorf("block %d successors: got %v, want %v", b.Idx(), next, wantNext[b.Idx()])
		}
		if !reflect.DeepEqual(prev, wantPrev[b.Idx()]) {
			t.Errorf("block %d predecessors: got %v, want %v", b.Idx(), prev, wantPrev[b.Idx()])
		}
	}
}

func TestCFGValidationProgram(t *testing.T) {
	p, err := Parse(validationProgram)
	if err != nil {
		t.Fatal(err)
	}

	checkPartitions(t, p, [][2]int{
		{0, 5}, {5, 9}, {9, 13}, {13, 17}, {17, 21},
		{21, 23}, {23, 24}, {24, 25}, {25, 26}, {26, 27}, {27, 29},
	})
	checkLinks(t, p, [][2]int{
		{0, 1}, {0, 6},
		{1, 2}, {1, 7},
		{2, 3}, {2, 8},
		{3, 4}, {3, 9},
		{4, 5}, {4, 10},
		{6, 7}, {7, 8}, {8, 9}, {9, 10},
	})

	if p.Entry() != p.Blocks()[0] {
		t.Error("entry is not the first block")
	}

	// Every instruction belongs to exactly one block.
	seen := make(map[*Instruction]int)
	for _, b := range p.Blocks() {
		for _, in := range b.Instructions() {
			seen[in]++
			if in.Block() != b {
				t.Errorf("instruction %q does not point back to its block", in)
			}
		}
	}
	for _, in := range p.Instructions() {
		if seen[in] != 1 {
			t.Errorf("instruction %q assigned to %d blocks", in, seen[in])
		}
	}
}

func TestCFGValidationLoopProgram(t *testing.T) {
	p, err := Parse(validationLoopProgram)
	if err != nil {
		t.Fatal(err)
	}

	checkPartitions(t, p, [][2]int{
		{0, 5}, {5, 9}, {9, 13}, {13, 17}, {17, 21},
		{21, 23}, {23, 24}, {24, 25}, {25, 26}, {26, 27}, {27, 29},
		{29, 34}, {34, 37}, {37, 40},
	})
	checkLinks(t, p, [][2]int{
		{0, 1}, {0, 6},
		{1, 2}, {1, 7},
		{2, 3}, {2, 8},
		{3, 4}, {3, 9},
		{4, 5}, {4, 10},
		{5, 11},
		{6, 7}, {7, 8}, {8, 9}, {9, 10},
		{11, 12}, {11, 13},
		{12, 11},
	})
}

func TestCFGSubroutines(t *testing.T) {
	p, err := Parse(`#pragma version 4
callsub sub
int 1
return
sub:
int 2
pop
retsub
`)
	if err != nil {
		t.Fatal(err)
	}

	checkPartitions(t, p, [][2]int{{0, 2}, {2, 4}, {4, 8}})
	// The callsub edge goes to the subroutine entry, not the textual
	// successor; retsub and return blocks have no successors.
	checkLinks(t, p, [][2]int{{0, 2}})

	subs := p.SubroutineEntries()
	if len(subs) != 1 || subs[0].Idx() != 2 {
		t.Fatalf("got subroutine entries %v", subs)
	}
	if !subs[0].IsSubroutineEntry() {
		t.Error("subroutine entry not marked")
	}
	if p.Blocks()[0].IsSubroutineEntry() {
		t.Error("entry block wrongly marked as subroutine entry")
	}

	callsub := p.Blocks()[0].Exit()
	if callsub.Kind() != KindCallsub {
		t.Fatalf("got exit %v", callsub.Kind())
	}
	rp := callsub.ReturnPoint()
	if rp == nil || rp != p.Blocks()[1].Entry() {
		t.Errorf("return point not linked to the call site successor")
	}

	// The return point is write-once.
	if err := callsub.SetReturnPoint(rp); err == nil {
		t.Error("second SetReturnPoint should fail")
	} else if _, ok := err.(*InternalError); !ok {
		t.Errorf("got %T, want *InternalError", err)
	}
}

func TestCFGUnreachableBlocksRetained(t *testing.T) {
	p, err := Parse(`int 1
return
dead:
int 0
return
`)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Blocks()) != 2 {
		t.Fatalf("got %d blocks, want 2", len(p.Blocks()))
	}
	dead := p.Blocks()[1]
	if len(dead.Prev()) != 0 || len(dead.Next()) != 0 {
		t.Error("unreachable block should be disconnected")
	}
	if p.LabelBlock("dead") != dead {
		t.Error("label does not resolve to the unreachable block")
	}
}

func TestCFGSwitchEdges(t *testing.T) {
	p, err := Parse(`#pragma version 8
int 1
switch a b
int 0
return
a:
err
b:
int 1
return
`)
	if err != nil {
		t.Fatal(err)
	}
	checkPartitions(t, p, [][2]int{{0, 3}, {3, 5}, {5, 7}, {7, 10}})
	// No matching case falls through; each target label gets an edge.
	checkLinks(t, p, [][2]int{{0, 1}, {0, 2}, {0, 3}})
}

func TestCFGBlockLines(t *testing.T) {
	p, err := Parse("int 1\nint 2\n+\nreturn")
	if err != nil {
		t.Fatal(err)
	}
	first, last := p.Blocks()[0].Lines()
	if first != 1 || last != 4 {
		t.Errorf("got lines %d-%d, want 1-4", first, last)
	}
}

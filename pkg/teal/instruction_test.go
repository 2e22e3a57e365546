package teal

import "testing"

func costOf(t *testing.T, p *Program, idx int) int {
	t.Helper()
	c, err := p.Instructions()[idx].Cost()
	if err != nil {
		t.Fatalf("cost of instruction %d: %v", idx, err)
	}
	return c
}

func TestInstructionCostVersioned(t *testing.T) {
	p1, err := Parse("#pragma version 1\nsha256\nkeccak256\nsha512_256")
	if err != nil {
		t.Fatal(err)
	}
	if got := costOf(t, p1, 1); got != 7 {
		t.Errorf("sha256 v1: got %d, want 7", got)
	}
	if got := costOf(t, p1, 2); got != 26 {
		t.Errorf("keccak256 v1: got %d, want 26", got)
	}
	if got := costOf(t, p1, 3); got != 9 {
		t.Errorf("sha512_256 v1: got %d, want 9", got)
	}

	p2, err := Parse("#pragma version 2\nsha256\nkeccak256\nsha512_256")
	if err != nil {
		t.Fatal(err)
	}
	if got := costOf(t, p2, 1); got != 35 {
		t.Errorf("sha256 v2: got %d, want 35", got)
	}
	if got := costOf(t, p2, 2); got != 130 {
		t.Errorf("keccak256 v2: got %d, want 130", got)
	}
	if got := costOf(t, p2, 3); got != 45 {
		t.Errorf("sha512_256 v2: got %d, want 45", got)
	}
}

func TestInstructionCostByVariant(t *testing.T) {
	p, err := Parse("#pragma version 5\necdsa_verify Secp256k1\necdsa_pk_decompress Secp256k1")
	if err != nil {
		t.Fatal(err)
	}
	if got := costOf(t, p, 1); got != 1700 {
		t.Errorf("ecdsa_verify Secp256k1: got %d, want 1700", got)
	}
	if got := costOf(t, p, 2); got != 650 {
		t.Errorf("ecdsa_pk_decompress Secp256k1: got %d, want 650", got)
	}

	p, err = Parse("#pragma version 7\necdsa_verify Secp256r1\necdsa_pk_decompress Secp256r1\nvrf_verify VrfAlgorand\njson_ref JSONUint64")
	if err != nil {
		t.Fatal(err)
	}
	if got := costOf(t, p, 1); got != 2500 {
		t.Errorf("ecdsa_verify Secp256r1: got %d, want 2500", got)
	}
	if got := costOf(t, p, 2); got != 2400 {
		t.Errorf("ecdsa_pk_decompress Secp256r1: got %d, want 2400", got)
	}
	if got := costOf(t, p, 3); got != 5700 {
		t.Errorf("vrf_verify: got %d, want 5700", got)
	}
	if got := costOf(t, p, 4); got != 25 {
		t.Errorf("json_ref: got %d, want 25", got)
	}
}

func TestInstructionCostBelowMinVersion(t *testing.T) {
	// addw needs version 2; in a version 1 program it costs nothing.
	p, err := Parse("#pragma version 1\naddw\nint 1")
	if err != nil {
		t.Fatal(err)
	}
	if got := costOf(t, p, 1); got != 0 {
		t.Errorf("addw below min version: got %d, want 0", got)
	}
	if got := costOf(t, p, 2); got != 1 {
		t.Errorf("int: got %d, want 1", got)
	}
}

func TestInstructionCostDefaults(t *testing.T) {
	p, err := Parse("#pragma version 4\nl:\nb+\nb*\ndivmodw\nexpw\nsqrt\nunknown_opcode")
	if err != nil {
		t.Fatal(err)
	}
	wants := map[int]int{
		0: 0,  // pragma
		1: 0,  // label
		2: 10, // b+
		3: 20, // b*
		4: 20, // divmodw
		5: 10, // expw
		6: 4,  // sqrt
		7: 0,  // unknown opcode
	}
	for idx, want := range wants {
		if got := costOf(t, p, idx); got != want {
			t.Errorf("instruction %d: got cost %d, want %d", idx, got, want)
		}
	}
}

func TestInstructionCostBeforeCFG(t *testing.T) {
	in, err := ParseLine("sha256")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := in.Cost(); err == nil {
		t.Error("cost before block assignment should fail")
	} else if _, ok := err.(*InternalError); !ok {
		t.Errorf("got %T, want *InternalError", err)
	}
}

func TestInstructionTransfersControl(t *testing.T) {
	transfers := []string{"b l", "bz l", "bnz l", "callsub l", "retsub", "return", "err", "switch l", "match l"}
	for _, line := range transfers {
		in, err := ParseLine(line)
		if err != nil {
			t.Fatalf("%s: %v", line, err)
		}
		if !in.TransfersControl() {
			t.Errorf("%s: should transfer control", line)
		}
	}
	for _, line := range []string{"int 1", "assert", "pop", "sha256", "l:"} {
		in, err := ParseLine(line)
		if err != nil {
			t.Fatalf("%s: %v", line, err)
		}
		if in.TransfersControl() {
			t.Errorf("%s: should not transfer control", line)
		}
	}
}

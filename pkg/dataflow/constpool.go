// Package dataflow resolves constant-pool references over the CFG with a
// reaching-definitions analysis. A pool-declaring instruction (intcblock,
// bytecblock) replaces the whole pool; a reference resolves only when every
// control-flow path reaching it installed the same literal at the slot.
//
// The analysis is deliberately path-insensitive: a branch that is provably
// never taken still counts as a reaching path, and a declaration present on
// only one side of a merge makes the merged use unknown.
package dataflow

import (
	"encoding/base32"
	"encoding/hex"
	"strings"

	"github.com/tealscan/tealscan/pkg/teal"
)

// ResolveInt reports whether in pushes an integer literal (int, pushint, or
// an intc pool reference) and, when statically determinable, its value.
// For an in-grammar pool reference the first result is always true; a nil
// value means the reference could not be resolved.
func ResolveInt(in *teal.Instruction) (bool, *uint64) {
	switch in.Kind() {
	case teal.KindInt, teal.KindPushInt:
		v := in.IntValue()
		return true, &v
	case teal.KindIntc:
		decls, complete := reachingDecls(in, teal.KindIntcblock)
		v, ok := agreeInt(decls, in.Slot())
		if !complete || !ok {
			return true, nil
		}
		return true, &v
	}
	return false, nil
}

// ResolveBytes is ResolveInt for byte-valued pushes (byte, pushbytes, addr,
// method, and bytec pool references). Resolved values are canonical 0x hex.
func ResolveBytes(in *teal.Instruction) (bool, *string) {
	switch in.Kind() {
	case teal.KindByte, teal.KindPushBytes, teal.KindMethod:
		v := canonicalBytes(in.BytesValue())
		return true, &v
	case teal.KindAddr:
		v := canonicalAddress(in.BytesValue())
		return true, v
	case teal.KindBytec:
		decls, complete := reachingDecls(in, teal.KindBytecblock)
		v, ok := agreeBytes(decls, in.Slot())
		if !complete || !ok {
			return true, nil
		}
		return true, &v
	}
	return false, nil
}

// reachingDecls collects the nearest pool declaration of the given kind on
// every control-flow path reaching use. complete is false when some chain
// terminates at the entry block without a declaration. A per-query visited
// set bounds the search across loop back-edges.
func reachingDecls(use *teal.Instruction, declKind teal.Kind) ([]*teal.Instruction, bool) {
	b := use.Block()
	if b == nil {
		// No CFG context (standalone instruction): unresolvable.
		return nil, false
	}

	// The nearest declaration earlier in the same block, if any, is the
	// unique reaching definition for this use.
	if d := declBefore(b, use, declKind); d != nil {
		return []*teal.Instruction{d}, true
	}

	visited := map[int]bool{b.Idx(): true}
	return predDecls(b, declKind, visited)
}

func predDecls(b *teal.BasicBlock, declKind teal.Kind, visited map[int]bool) ([]*teal.Instruction, bool) {
	preds := b.Prev()
	if len(preds) == 0 {
		// Chain terminated at the entry (or an unreachable block) with no
		// declaration found.
		return nil, false
	}

	var decls []*teal.Instruction
	complete := true
	for _, pb := range preds {
		if visited[pb.Idx()] {
			continue
		}
		visited[pb.Idx()] = true
		if d := lastDecl(pb, declKind); d != nil {
			decls = append(decls, d)
			continue
		}
		ds, ok := predDecls(pb, declKind, visited)
		if !ok {
			complete = false
		}
		decls = append(decls, ds...)
	}
	return decls, complete
}

func declBefore(b *teal.BasicBlock, use *teal.Instruction, declKind teal.Kind) *teal.Instruction {
	var found *teal.Instruction
	for _, in := range b.Instructions() {
		if in == use {
			break
		}
		if in.Kind() == declKind {
			found = in
		}
	}
	return found
}

func lastDecl(b *teal.BasicBlock, declKind teal.Kind) *teal.Instruction {
	ins := b.Instructions()
	for i := len(ins) - 1; i >= 0; i-- {
		if ins[i].Kind() == declKind {
			return ins[i]
		}
	}
	return nil
}

// agreeInt returns the slot value when every reaching declaration defines
// the slot and all agree on the literal.
func agreeInt(decls []*teal.Instruction, slot uint64) (uint64, bool) {
	if len(decls) == 0 {
		return 0, false
	}
	var value uint64
	for i, d := range decls {
		consts := d.IntConstants()
		if slot >= uint64(len(consts)) {
			return 0, false
		}
		if i == 0 {
			value = consts[slot]
		} else if consts[slot] != value {
			return 0, false
		}
	}
	return value, true
}

func agreeBytes(decls []*teal.Instruction, slot uint64) (string, bool) {
	if len(decls) == 0 {
		return "", false
	}
	var value string
	for i, d := range decls {
		consts := d.ByteConstants()
		if slot >= uint64(len(consts)) {
			return "", false
		}
		v := canonicalBytes(consts[slot])
		if i == 0 {
			value = v
		} else if v != value {
			return "", false
		}
	}
	return value, true
}

// canonicalBytes normalizes a parsed byte literal to 0x hex. Encoded forms
// are already hex after parsing; quoted strings are hex-encoded here with
// their escapes interpreted.
func canonicalBytes(lit string) string {
	if strings.HasPrefix(lit, "0x") {
		return lit
	}
	if strings.HasPrefix(lit, "\"") && strings.HasSuffix(lit, "\"") && len(lit) >= 2 {
		return "0x" + hex.EncodeToString(unescape(lit[1:len(lit)-1]))
	}
	return lit
}

// canonicalAddress decodes a base32 address literal to the 0x hex of its
// 32-byte public key (the trailing 4 checksum bytes dropped). A literal
// that fails to decode resolves to nil rather than a wrong value.
func canonicalAddress(addr string) *string {
	pad := strings.Repeat("=", (8-len(addr)%8)%8)
	raw, err := base32.StdEncoding.DecodeString(addr + pad)
	if err != nil || len(raw) <= 4 {
		return nil
	}
	v := "0x" + hex.EncodeToString(raw[:len(raw)-4])
	return &v
}

func unescape(s string) []byte {
	var out []byte
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			out = append(out, s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case 'r':
			out = append(out, '\r')
		case '\\', '"':
			out = append(out, s[i])
		case 'x':
			if i+2 < len(s) {
				if b, err := hex.DecodeString(s[i+1 : i+3]); err == nil {
					out = append(out, b[0])
					i += 2
					continue
				}
			}
			out = append(out, 'x')
		default:
			out = append(out, '\\', s[i])
		}
	}
	return out
}

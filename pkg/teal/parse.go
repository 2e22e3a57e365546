package teal

import (
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
)

// ParseLine parses one source line into an Instruction. It returns
// (nil, nil) for blank and comment-only lines, a *ParseError for malformed
// immediate syntax, and an inert KindUnknown placeholder for opcodes
// outside the modeled grammar.
func ParseLine(line string) (*Instruction, error) {
	code, comment := stripComment(line)
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	if strings.HasPrefix(code, "#") {
		in, err := parsePragma(code)
		if in != nil || err != nil {
			if in != nil {
				in.comment = comment
			}
			return in, err
		}
		// Unknown directive: keep it inert, like any unknown opcode.
		in = newInstruction(KindUnknown, nil, code)
		in.comment = comment
		return in, nil
	}

	tokens, err := tokenize(code)
	if err != nil {
		return nil, err
	}

	// Label declaration: a single token ending in ':'. The label name may
	// itself contain a quote; only a second token makes the line invalid.
	if strings.HasSuffix(tokens[0], ":") && !strings.HasPrefix(tokens[0], "\"") {
		if len(tokens) > 1 {
			return nil, parseErrorf(0, code, "label line contains additional token %q", tokens[1])
		}
		in := newInstruction(KindLabel, nil, code)
		in.labelName = strings.TrimSuffix(tokens[0], ":")
		in.comment = comment
		return in, nil
	}

	spec, ok := opsByName[tokens[0]]
	if !ok {
		in := newInstruction(KindUnknown, nil, code)
		in.comment = comment
		return in, nil
	}

	in := newInstruction(spec.Kind, spec, code)
	in.comment = comment
	if err := parseImmediates(in, spec, code, tokens); err != nil {
		return nil, err
	}
	return in, nil
}

// Parse converts source text into a Program with a fully built CFG.
// The optional leading `#pragma version N` sets the declared language
// version; without one DefaultVersion applies.
func Parse(src string) (*Program, error) {
	return parse(src, 0)
}

// ParseWithVersion is Parse with the declared version forced to version,
// overriding any version pragma in the source.
func ParseWithVersion(src string, version int) (*Program, error) {
	if version < MinVersion || version > MaxVersion {
		return nil, parseErrorf(0, "", "unsupported version override %d", version)
	}
	return parse(src, version)
}

func parse(src string, forceVersion int) (*Program, error) {
	p := newProgram()

	for i, line := range strings.Split(src, "\n") {
		in, err := ParseLine(line)
		if err != nil {
			if pe, ok := err.(*ParseError); ok && pe.Line == 0 {
				pe.Line = i + 1
			}
			return nil, err
		}
		if in == nil {
			continue
		}
		in.line = i + 1
		in.idx = len(p.ins)
		in.prog = p
		p.ins = append(p.ins, in)

		switch in.kind {
		case KindPragma:
			if in.idx == 0 {
				p.version = int(in.intVal)
			}
		case KindLabel:
			if _, dup := p.labelIns[in.labelName]; dup {
				return nil, parseErrorf(in.line, in.text, "duplicate label %q", in.labelName)
			}
			p.labelIns[in.labelName] = in
		}
	}

	if forceVersion > 0 {
		p.version = forceVersion
	}

	// Branch targets may reference forward; resolve only after the whole
	// stream is known.
	for _, in := range p.ins {
		for _, l := range in.labels {
			if _, ok := p.labelIns[l]; !ok {
				return nil, parseErrorf(in.line, in.text, "undefined label %q", l)
			}
		}
	}

	if err := buildCFG(p); err != nil {
		return nil, err
	}
	return p, nil
}

func parsePragma(code string) (*Instruction, error) {
	fields := strings.Fields(code)
	if fields[0] != "#pragma" || len(fields) < 2 || fields[1] != "version" {
		return nil, nil
	}
	if len(fields) != 3 {
		return nil, parseErrorf(0, code, "version pragma expects one argument")
	}
	v, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil || v < MinVersion {
		return nil, parseErrorf(0, code, "invalid version %q", fields[2])
	}
	in := newInstruction(KindPragma, nil, code)
	in.intVal = v
	return in, nil
}

// stripComment splits a line into code and trailing // comment. A quote
// opens a string literal only at a token boundary; `//` inside an open
// string is literal text, so `byte "a // b"` keeps its payload while a
// label like `x": // c` still gets its comment stripped.
func stripComment(line string) (code, comment string) {
	inQuote := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuote && c == '\\':
			i++ // skip escaped char
		case inQuote && c == '"':
			inQuote = false
		case !inQuote && c == '"' && atTokenBoundary(line, i):
			inQuote = true
		case !inQuote && c == '/' && i+1 < len(line) && line[i+1] == '/':
			return line[:i], strings.TrimSpace(line[i:])
		}
	}
	return line, ""
}

func atTokenBoundary(line string, i int) bool {
	if i == 0 {
		return true
	}
	switch line[i-1] {
	case ' ', '\t', '(':
		return true
	}
	return false
}

// tokenize splits code on whitespace, keeping quoted string literals
// (quotes included) as single tokens. An unterminated quote is a parse
// error.
func tokenize(code string) ([]string, error) {
	var tokens []string
	i := 0
	for i < len(code) {
		switch code[i] {
		case ' ', '\t':
			i++
		case '"':
			j := i + 1
			for j < len(code) {
				if code[j] == '\\' {
					j += 2
					continue
				}
				if code[j] == '"' {
					break
				}
				j++
			}
			if j >= len(code) {
				return nil, parseErrorf(0, code, "unterminated string literal")
			}
			tokens = append(tokens, code[i:j+1])
			i = j + 1
		default:
			j := i
			for j < len(code) && code[j] != ' ' && code[j] != '\t' {
				j++
			}
			tokens = append(tokens, code[i:j])
			i = j
		}
	}
	return tokens, nil
}

// parseImmediates validates operand arity and fills the instruction's
// immediates per the opcode grammar. args excludes the mnemonic.
func parseImmediates(in *Instruction, spec *opSpec, code string, tokens []string) error {
	args := tokens[1:]

	switch spec.Kind {
	case KindInt, KindPushInt:
		if len(args) != 1 {
			return arityError(code, spec.Name, 1, len(args))
		}
		if v, err := parseAnyUint(args[0]); err == nil {
			in.intVal = v
			return nil
		}
		if v, ok := namedIntConstants[args[0]]; ok {
			in.intVal = v
			in.intName = args[0]
			return nil
		}
		return parseErrorf(0, code, "unrecognized integer literal %q", args[0])

	case KindIntc:
		return parseSlot(in, spec, code, args, "intc")

	case KindBytec:
		return parseSlot(in, spec, code, args, "bytec")

	case KindIntcblock:
		for _, a := range args {
			v, err := parseAnyUint(a)
			if err != nil {
				return parseErrorf(0, code, "unrecognized integer literal %q", a)
			}
			in.intList = append(in.intList, v)
		}
		if in.intList == nil {
			in.intList = []uint64{}
		}
		return nil

	case KindBytecblock:
		in.byteList = []string{}
		for len(args) > 0 {
			lit, n, err := parseByteLiteral(code, args)
			if err != nil {
				return err
			}
			in.byteList = append(in.byteList, lit)
			args = args[n:]
		}
		return nil

	case KindByte, KindPushBytes:
		lit, n, err := parseByteLiteral(code, args)
		if err != nil {
			return err
		}
		if n != len(args) {
			return parseErrorf(0, code, "%s expects only one immediate argument", spec.Name)
		}
		in.bytesVal = lit
		return nil

	case KindMethod:
		if len(args) != 1 || !strings.HasPrefix(args[0], "\"") {
			return parseErrorf(0, code, "method expects one string immediate")
		}
		in.bytesVal = args[0]
		return nil

	case KindAddr:
		if len(args) != 1 {
			return arityError(code, spec.Name, 1, len(args))
		}
		if !isBase32Address(args[0]) {
			return parseErrorf(0, code, "invalid address literal %q", args[0])
		}
		in.bytesVal = args[0]
		return nil

	case KindTxn, KindItxn:
		return parseField(in, code, args, 0, false)

	case KindTxna, KindItxna:
		return parseField(in, code, args, 0, true)

	case KindGtxn, KindGitxn:
		return parseField(in, code, args, 1, false)

	case KindGtxna, KindGitxna:
		return parseField(in, code, args, 1, true)

	case KindGtxnas, KindGitxnas:
		if len(args) != 2 {
			return arityError(code, spec.Name, 2, len(args))
		}
		g, err := parseAnyUint(args[0])
		if err != nil {
			return parseErrorf(0, code, "invalid group index %q", args[0])
		}
		in.intImms = []uint64{g}
		fs, ok := txnFieldsByName[args[1]]
		if !ok || !fs.Array {
			return parseErrorf(0, code, "unknown array transaction field %q", args[1])
		}
		in.txnField = fs.Field
		in.fieldIdx = -1 // index comes from the stack
		return nil

	case KindGlobal:
		if len(args) != 1 {
			return arityError(code, spec.Name, 1, len(args))
		}
		fs, ok := globalFieldsByName[args[0]]
		if !ok {
			return parseErrorf(0, code, "unknown global field %q", args[0])
		}
		in.globField = fs.Field
		return nil

	case KindB, KindBZ, KindBNZ, KindCallsub:
		if len(args) != 1 {
			return arityError(code, spec.Name, 1, len(args))
		}
		in.labels = []string{args[0]}
		return nil

	case KindSwitch, KindMatch:
		in.labels = append([]string{}, args...)
		return nil

	case KindEcdsaVerify, KindEcdsaPkDecompress, KindEcdsaPkRecover:
		return parseVariant(in, code, spec.Name, args, "Secp256k1", "Secp256r1")

	case KindVrfVerify:
		return parseVariant(in, code, spec.Name, args, "VrfAlgorand")

	case KindBase64Decode:
		return parseVariant(in, code, spec.Name, args, "URLEncoding", "StdEncoding")

	case KindJSONRef:
		return parseVariant(in, code, spec.Name, args, "JSONString", "JSONUint64", "JSONObject")

	case KindExtract:
		if len(args) != 2 {
			return arityError(code, spec.Name, 2, len(args))
		}
		for _, a := range args {
			v, err := parseAnyUint(a)
			if err != nil {
				return parseErrorf(0, code, "invalid immediate %q", a)
			}
			in.intImms = append(in.intImms, v)
		}
		return nil

	case KindReplace:
		// `replace N` and `replace2 N` carry a position immediate;
		// `replace` and `replace3` take the position from the stack.
		switch spec.Name {
		case "replace2":
			if len(args) != 1 {
				return arityError(code, spec.Name, 1, len(args))
			}
		case "replace3":
			if len(args) != 0 {
				return arityError(code, spec.Name, 0, len(args))
			}
		default:
			if len(args) > 1 {
				return parseErrorf(0, code, "replace expects at most one immediate argument")
			}
		}
		for _, a := range args {
			v, err := parseAnyUint(a)
			if err != nil {
				return parseErrorf(0, code, "invalid immediate %q", a)
			}
			in.intImms = append(in.intImms, v)
		}
		return nil

	default:
		if len(args) != 0 {
			return arityError(code, spec.Name, 0, len(args))
		}
		return nil
	}
}

func parseSlot(in *Instruction, spec *opSpec, code string, args []string, base string) error {
	if spec.Name != base {
		// intc_0 .. intc_3 / bytec_0 .. bytec_3 aliases.
		if len(args) != 0 {
			return arityError(code, spec.Name, 0, len(args))
		}
		in.intVal = uint64(spec.Name[len(spec.Name)-1] - '0')
		return nil
	}
	if len(args) != 1 {
		return arityError(code, spec.Name, 1, len(args))
	}
	v, err := parseAnyUint(args[0])
	if err != nil {
		return parseErrorf(0, code, "invalid slot index %q", args[0])
	}
	in.intVal = v
	return nil
}

func parseField(in *Instruction, code string, args []string, groupArgs int, arrayIdx bool) error {
	want := groupArgs + 1
	if arrayIdx {
		want++
	}
	if len(args) != want {
		return arityError(code, in.spec.Name, want, len(args))
	}
	if groupArgs == 1 {
		g, err := parseAnyUint(args[0])
		if err != nil {
			return parseErrorf(0, code, "invalid group index %q", args[0])
		}
		in.intImms = []uint64{g}
		args = args[1:]
	}
	fs, ok := txnFieldsByName[args[0]]
	if !ok {
		return parseErrorf(0, code, "unknown transaction field %q", args[0])
	}
	if fs.Array != arrayIdx {
		if fs.Array {
			return parseErrorf(0, code, "array field %q requires an index", args[0])
		}
		return parseErrorf(0, code, "field %q is not an array field", args[0])
	}
	in.txnField = fs.Field
	if arrayIdx {
		idx, err := parseAnyUint(args[1])
		if err != nil {
			return parseErrorf(0, code, "invalid field index %q", args[1])
		}
		in.fieldIdx = int(idx)
	}
	return nil
}

func parseVariant(in *Instruction, code, name string, args []string, allowed ...string) error {
	if len(args) != 1 {
		return arityError(code, name, 1, len(args))
	}
	for _, a := range allowed {
		if args[0] == a {
			in.variant = args[0]
			return nil
		}
	}
	return parseErrorf(0, code, "%s: unknown immediate %q", name, args[0])
}

// parseByteLiteral consumes one byte literal from args and returns its
// normalized form plus the number of tokens consumed. Encoded forms
// (base32/base64, spaced or parenthesized, and hex) normalize to 0x hex;
// quoted strings stay verbatim.
func parseByteLiteral(code string, args []string) (string, int, error) {
	if len(args) == 0 {
		return "", 0, parseErrorf(0, code, "missing byte literal")
	}
	t := args[0]

	if strings.HasPrefix(t, "\"") {
		// The tokenizer guarantees termination.
		return t, 1, nil
	}

	if strings.HasPrefix(t, "0x") || strings.HasPrefix(t, "0X") {
		if _, err := hex.DecodeString(t[2:]); err != nil || len(t) == 2 {
			return "", 0, parseErrorf(0, code, "invalid hex literal %q", t)
		}
		return "0x" + strings.ToLower(t[2:]), 1, nil
	}

	for _, enc := range []string{"base64", "b64", "base32", "b32"} {
		is32 := strings.HasSuffix(enc, "32")
		if t == enc {
			if len(args) < 2 {
				return "", 0, parseErrorf(0, code, "%s: missing encoded string", enc)
			}
			raw, err := decodeEncoded(args[1], is32)
			if err != nil {
				return "", 0, parseErrorf(0, code, "%s: invalid encoded string %q", enc, args[1])
			}
			return "0x" + hex.EncodeToString(raw), 2, nil
		}
		if strings.HasPrefix(t, enc+"(") {
			if !strings.HasSuffix(t, ")") {
				return "", 0, parseErrorf(0, code, "%s: missing closing parenthesis", enc)
			}
			data := t[len(enc)+1 : len(t)-1]
			raw, err := decodeEncoded(data, is32)
			if err != nil {
				return "", 0, parseErrorf(0, code, "%s: invalid encoded string %q", enc, data)
			}
			return "0x" + hex.EncodeToString(raw), 1, nil
		}
	}

	return "", 0, parseErrorf(0, code, "unrecognized byte literal %q", t)
}

func decodeEncoded(s string, is32 bool) ([]byte, error) {
	s = strings.TrimRight(s, "=")
	if is32 {
		return base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}

// parseAnyUint accepts decimal, 0x hex, and leading-zero octal.
func parseAnyUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 0, 64)
}

func isBase32Address(s string) bool {
	if len(s) != 58 {
		return false
	}
	for _, c := range s {
		if !((c >= 'A' && c <= 'Z') || (c >= '2' && c <= '7')) {
			return false
		}
	}
	return true
}

func arityError(code, name string, want, got int) *ParseError {
	return parseErrorf(0, code, "%s expects %d immediate argument(s), got %d", name, want, got)
}

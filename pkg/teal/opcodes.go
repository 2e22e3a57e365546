// Package teal models TEAL programs: instructions, parsing, and the
// control-flow graph detectors and dataflow analyses run against.
package teal

// Language version bounds. A program declares its version with a leading
// `#pragma version N`; without one, DefaultVersion is assumed.
const (
	MinVersion     = 1
	DefaultVersion = 2
	MaxVersion     = 8
)

// Kind identifies an opcode. It is a closed set: every place where branch,
// cost, or version behavior differs switches on Kind, so adding a variant
// surfaces every call site that needs updating. Opcodes outside the set
// parse as KindUnknown placeholders that keep straight-line flow.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindPragma
	KindLabel

	// Pushes.
	KindInt
	KindPushInt
	KindByte
	KindPushBytes
	KindAddr
	KindMethod

	// Constant pools.
	KindIntcblock
	KindIntc
	KindBytecblock
	KindBytec

	// Transaction and global field reads.
	KindTxn
	KindTxna
	KindGtxn
	KindGtxna
	KindGtxnas
	KindItxn
	KindItxna
	KindGitxn
	KindGitxna
	KindGitxnas
	KindGlobal

	// Control flow.
	KindB
	KindBZ
	KindBNZ
	KindCallsub
	KindRetsub
	KindSwitch
	KindMatch
	KindReturn
	KindErr

	// Stack and arithmetic.
	KindAssert
	KindDup
	KindDup2
	KindPop
	KindSwap
	KindLen
	KindItob
	KindBtoi
	KindConcat
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindMod
	KindLt
	KindGt
	KindLe
	KindGe
	KindEq
	KindNeq
	KindAnd
	KindOr
	KindNot
	KindMulw
	KindAddw
	KindDivmodw
	KindExp
	KindExpw
	KindSqrt
	KindBsqrt

	// Crypto.
	KindSha256
	KindKeccak256
	KindSha512_256
	KindEd25519Verify
	KindEd25519VerifyBare
	KindEcdsaVerify
	KindEcdsaPkDecompress
	KindEcdsaPkRecover
	KindVrfVerify

	// Byteslice arithmetic.
	KindBAdd
	KindBSub
	KindBMul
	KindBDiv
	KindBMod
	KindBOr
	KindBAnd
	KindBXor
	KindBInvert

	// Byte manipulation.
	KindExtract
	KindReplace
	KindBase64Decode
	KindJSONRef
)

// costFn computes an instruction's execution cost for a program version.
type costFn func(in *Instruction, version int) int

// opSpec describes one mnemonic: its kind, the minimum language version
// that supports it, and its cost rule (nil means cost 1).
type opSpec struct {
	Name       string
	Kind       Kind
	MinVersion int
	Cost       costFn
}

func versioned(v1, v2plus int) costFn {
	return func(_ *Instruction, version int) int {
		if version == 1 {
			return v1
		}
		return v2plus
	}
}

func fixed(c int) costFn {
	return func(_ *Instruction, _ int) int { return c }
}

// curveCost selects cost by the named elliptic curve immediate.
func curveCost(k1, r1 int) costFn {
	return func(in *Instruction, _ int) int {
		if in.variant == "Secp256r1" {
			return r1
		}
		return k1
	}
}

// opSpecs is the catalog of modeled opcodes. Shaped after the assembler
// opcode tables: one row per mnemonic, aliases get their own rows sharing
// a Kind.
var opSpecs = []opSpec{
	{"err", KindErr, 1, fixed(0)},
	{"sha256", KindSha256, 1, versioned(7, 35)},
	{"keccak256", KindKeccak256, 1, versioned(26, 130)},
	{"sha512_256", KindSha512_256, 1, versioned(9, 45)},
	{"ed25519verify", KindEd25519Verify, 1, fixed(1900)},
	{"ecdsa_verify", KindEcdsaVerify, 5, curveCost(1700, 2500)},
	{"ecdsa_pk_decompress", KindEcdsaPkDecompress, 5, curveCost(650, 2400)},
	{"ecdsa_pk_recover", KindEcdsaPkRecover, 5, fixed(2000)},
	{"ed25519verify_bare", KindEd25519VerifyBare, 7, fixed(1900)},
	{"vrf_verify", KindVrfVerify, 7, fixed(5700)},

	{"+", KindAdd, 1, nil},
	{"-", KindSub, 1, nil},
	{"*", KindMul, 1, nil},
	{"/", KindDiv, 1, nil},
	{"%", KindMod, 1, nil},
	{"<", KindLt, 1, nil},
	{">", KindGt, 1, nil},
	{"<=", KindLe, 1, nil},
	{">=", KindGe, 1, nil},
	{"==", KindEq, 1, nil},
	{"!=", KindNeq, 1, nil},
	{"&&", KindAnd, 1, nil},
	{"||", KindOr, 1, nil},
	{"!", KindNot, 1, nil},
	{"len", KindLen, 1, nil},
	{"itob", KindItob, 1, nil},
	{"btoi", KindBtoi, 1, nil},
	{"concat", KindConcat, 2, nil},
	{"mulw", KindMulw, 1, nil},
	{"addw", KindAddw, 2, nil},
	{"divmodw", KindDivmodw, 4, fixed(20)},
	{"exp", KindExp, 4, nil},
	{"expw", KindExpw, 4, fixed(10)},
	{"sqrt", KindSqrt, 4, fixed(4)},
	{"bsqrt", KindBsqrt, 6, fixed(40)},

	{"intcblock", KindIntcblock, 1, nil},
	{"intc", KindIntc, 1, nil},
	{"intc_0", KindIntc, 1, nil},
	{"intc_1", KindIntc, 1, nil},
	{"intc_2", KindIntc, 1, nil},
	{"intc_3", KindIntc, 1, nil},
	{"bytecblock", KindBytecblock, 1, nil},
	{"bytec", KindBytec, 1, nil},
	{"bytec_0", KindBytec, 1, nil},
	{"bytec_1", KindBytec, 1, nil},
	{"bytec_2", KindBytec, 1, nil},
	{"bytec_3", KindBytec, 1, nil},
	{"int", KindInt, 1, nil},
	{"pushint", KindPushInt, 3, nil},
	{"byte", KindByte, 1, nil},
	{"pushbytes", KindPushBytes, 3, nil},
	{"addr", KindAddr, 1, nil},
	{"method", KindMethod, 2, nil},

	{"txn", KindTxn, 1, nil},
	{"txna", KindTxna, 2, nil},
	{"gtxn", KindGtxn, 1, nil},
	{"gtxna", KindGtxna, 2, nil},
	{"gtxnas", KindGtxnas, 5, nil},
	{"itxn", KindItxn, 5, nil},
	{"itxna", KindItxna, 5, nil},
	{"gitxn", KindGitxn, 6, nil},
	{"gitxna", KindGitxna, 6, nil},
	{"gitxnas", KindGitxnas, 6, nil},
	{"global", KindGlobal, 1, nil},

	{"bnz", KindBNZ, 1, nil},
	{"bz", KindBZ, 2, nil},
	{"b", KindB, 2, nil},
	{"return", KindReturn, 2, nil},
	{"assert", KindAssert, 3, nil},
	{"callsub", KindCallsub, 4, nil},
	{"retsub", KindRetsub, 4, nil},
	{"switch", KindSwitch, 8, nil},
	{"match", KindMatch, 8, nil},

	{"pop", KindPop, 1, nil},
	{"dup", KindDup, 1, nil},
	{"dup2", KindDup2, 2, nil},
	{"swap", KindSwap, 3, nil},

	{"b+", KindBAdd, 4, fixed(10)},
	{"b-", KindBSub, 4, fixed(10)},
	{"b*", KindBMul, 4, fixed(20)},
	{"b/", KindBDiv, 4, fixed(20)},
	{"b%", KindBMod, 4, fixed(20)},
	{"b|", KindBOr, 4, fixed(6)},
	{"b&", KindBAnd, 4, fixed(6)},
	{"b^", KindBXor, 4, fixed(6)},
	{"b~", KindBInvert, 4, fixed(4)},

	{"extract", KindExtract, 5, nil},
	{"replace", KindReplace, 7, nil},
	{"replace2", KindReplace, 7, nil},
	{"replace3", KindReplace, 7, nil},
	{"base64_decode", KindBase64Decode, 7, fixed(1)},
	{"json_ref", KindJSONRef, 7, fixed(25)},
}

var opsByName = func() map[string]*opSpec {
	m := make(map[string]*opSpec, len(opSpecs))
	for i := range opSpecs {
		m[opSpecs[i].Name] = &opSpecs[i]
	}
	return m
}()

// namedIntConstants maps the symbolic integer literals `int` accepts:
// transaction type names and application on-completion names.
var namedIntConstants = map[string]uint64{
	"unknown": 0,
	"pay":     1,
	"keyreg":  2,
	"acfg":    3,
	"axfer":   4,
	"afrz":    5,
	"appl":    6,

	"NoOp":              0,
	"OptIn":             1,
	"CloseOut":          2,
	"ClearState":        3,
	"UpdateApplication": 4,
	"DeleteApplication": 5,
}

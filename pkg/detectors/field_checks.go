package detectors

import "github.com/tealscan/tealscan/pkg/teal"

// The remaining field checks share the fee-check shape: each names one
// transaction or global field whose validation must dominate every
// success return.
func init() {
	register(&fieldCheckDetector{
		name:        "missing-rekeyto-check",
		description: "program can approve a transaction that rekeys the account",
		reads:       readsTxnField(teal.TxnRekeyTo),
	})
	register(&fieldCheckDetector{
		name:        "can-close-account",
		description: "program can approve a payment that closes the account",
		reads:       readsTxnField(teal.TxnCloseRemainderTo),
	})
	register(&fieldCheckDetector{
		name:        "can-close-asset",
		description: "program can approve a transfer that closes the asset holding",
		reads:       readsTxnField(teal.TxnAssetCloseTo),
	})
	register(&groupSizeDetector{})
}

// groupSizeDetector reports success paths lacking a GroupSize check, but
// only for programs that index into the transaction group at all: absolute
// gtxn offsets are only meaningful once the group size is pinned.
type groupSizeDetector struct{}

func (d *groupSizeDetector) Name() string { return "missing-group-size-check" }

func (d *groupSizeDetector) Description() string {
	return "program indexes into the transaction group without checking GroupSize"
}

func (d *groupSizeDetector) Check(p *teal.Program) []Path {
	if !readsGroup(p) {
		return nil
	}
	return Search(p, fieldCheckGuard(readsGlobalField(teal.GlobalGroupSize)), successReturn)
}

func readsGroup(p *teal.Program) bool {
	for _, in := range p.Instructions() {
		switch in.Kind() {
		case teal.KindGtxn, teal.KindGtxna, teal.KindGtxnas:
			return true
		}
	}
	return false
}

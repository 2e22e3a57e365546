package detectors

import "github.com/tealscan/tealscan/pkg/teal"

// Missing fee check: a delegated signature that never bounds Fee lets the
// holder drain the signer through transaction fees. A guard block reads
// the Fee field, compares it, and aborts on failure; any success return
// reachable without one is reported.
func init() {
	register(&fieldCheckDetector{
		name:        "missing-fee-check",
		description: "program can approve a transaction with an arbitrarily large fee",
		reads:       readsTxnField(teal.TxnFee),
	})
}

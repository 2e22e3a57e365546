package teal

// TxnField enumerates the transaction fields the analyzer recognizes.
// Ordering follows the declared sequence; comparisons between fields use
// the ordinary < over the enum values.
type TxnField int

const (
	TxnFieldNone TxnField = iota
	TxnSender
	TxnFee
	TxnFirstValid
	TxnLastValid
	TxnNote
	TxnLease
	TxnReceiver
	TxnAmount
	TxnCloseRemainderTo
	TxnTypeEnum
	TxnType
	TxnXferAsset
	TxnAssetAmount
	TxnAssetSender
	TxnAssetReceiver
	TxnAssetCloseTo
	TxnGroupIndex
	TxnTxID
	TxnApplicationID
	TxnOnCompletion
	TxnApplicationArgs
	TxnNumAppArgs
	TxnAccounts
	TxnNumAccounts
	TxnApprovalProgram
	TxnClearStateProgram
	TxnRekeyTo
	TxnAssets
	TxnNumAssets
	TxnApplications
	TxnNumApplications
	TxnLogs
	TxnNumLogs
	TxnCreatedAssetID
	TxnCreatedApplicationID
	TxnLastLog
	TxnStateProofPK
)

// txnFieldSpec carries a field's mnemonic, minimum language version, and
// whether it is an array field (indexed by an immediate or from the stack).
type txnFieldSpec struct {
	Name       string
	Field      TxnField
	MinVersion int
	Array      bool
}

var txnFieldSpecs = []txnFieldSpec{
	{"Sender", TxnSender, 1, false},
	{"Fee", TxnFee, 1, false},
	{"FirstValid", TxnFirstValid, 1, false},
	{"LastValid", TxnLastValid, 1, false},
	{"Note", TxnNote, 1, false},
	{"Lease", TxnLease, 2, false},
	{"Receiver", TxnReceiver, 1, false},
	{"Amount", TxnAmount, 1, false},
	{"CloseRemainderTo", TxnCloseRemainderTo, 1, false},
	{"TypeEnum", TxnTypeEnum, 1, false},
	{"Type", TxnType, 1, false},
	{"XferAsset", TxnXferAsset, 1, false},
	{"AssetAmount", TxnAssetAmount, 1, false},
	{"AssetSender", TxnAssetSender, 1, false},
	{"AssetReceiver", TxnAssetReceiver, 1, false},
	{"AssetCloseTo", TxnAssetCloseTo, 1, false},
	{"GroupIndex", TxnGroupIndex, 1, false},
	{"TxID", TxnTxID, 1, false},
	{"ApplicationID", TxnApplicationID, 2, false},
	{"OnCompletion", TxnOnCompletion, 2, false},
	{"ApplicationArgs", TxnApplicationArgs, 2, true},
	{"NumAppArgs", TxnNumAppArgs, 2, false},
	{"Accounts", TxnAccounts, 2, true},
	{"NumAccounts", TxnNumAccounts, 2, false},
	{"ApprovalProgram", TxnApprovalProgram, 2, false},
	{"ClearStateProgram", TxnClearStateProgram, 2, false},
	{"RekeyTo", TxnRekeyTo, 2, false},
	{"Assets", TxnAssets, 3, true},
	{"NumAssets", TxnNumAssets, 3, false},
	{"Applications", TxnApplications, 3, true},
	{"NumApplications", TxnNumApplications, 3, false},
	{"Logs", TxnLogs, 5, true},
	{"NumLogs", TxnNumLogs, 5, false},
	{"CreatedAssetID", TxnCreatedAssetID, 5, false},
	{"CreatedApplicationID", TxnCreatedApplicationID, 5, false},
	{"LastLog", TxnLastLog, 6, false},
	{"StateProofPK", TxnStateProofPK, 6, false},
}

var txnFieldsByName = func() map[string]*txnFieldSpec {
	m := make(map[string]*txnFieldSpec, len(txnFieldSpecs))
	for i := range txnFieldSpecs {
		m[txnFieldSpecs[i].Name] = &txnFieldSpecs[i]
	}
	return m
}()

// String returns the field mnemonic.
func (f TxnField) String() string {
	for i := range txnFieldSpecs {
		if txnFieldSpecs[i].Field == f {
			return txnFieldSpecs[i].Name
		}
	}
	return "none"
}

// GlobalField enumerates the `global` pseudo-fields.
type GlobalField int

const (
	GlobalFieldNone GlobalField = iota
	GlobalMinTxnFee
	GlobalMinBalance
	GlobalMaxTxnLife
	GlobalZeroAddress
	GlobalGroupSize
	GlobalLogicSigVersion
	GlobalRound
	GlobalLatestTimestamp
	GlobalCurrentApplicationID
	GlobalCreatorAddress
	GlobalCurrentApplicationAddress
	GlobalGroupID
	GlobalOpcodeBudget
	GlobalCallerApplicationID
	GlobalCallerApplicationAddress
)

type globalFieldSpec struct {
	Name       string
	Field      GlobalField
	MinVersion int
}

var globalFieldSpecs = []globalFieldSpec{
	{"MinTxnFee", GlobalMinTxnFee, 1},
	{"MinBalance", GlobalMinBalance, 1},
	{"MaxTxnLife", GlobalMaxTxnLife, 1},
	{"ZeroAddress", GlobalZeroAddress, 1},
	{"GroupSize", GlobalGroupSize, 1},
	{"LogicSigVersion", GlobalLogicSigVersion, 2},
	{"Round", GlobalRound, 2},
	{"LatestTimestamp", GlobalLatestTimestamp, 2},
	{"CurrentApplicationID", GlobalCurrentApplicationID, 2},
	{"CreatorAddress", GlobalCreatorAddress, 3},
	{"CurrentApplicationAddress", GlobalCurrentApplicationAddress, 5},
	{"GroupID", GlobalGroupID, 5},
	{"OpcodeBudget", GlobalOpcodeBudget, 6},
	{"CallerApplicationID", GlobalCallerApplicationID, 6},
	{"CallerApplicationAddress", GlobalCallerApplicationAddress, 6},
}

var globalFieldsByName = func() map[string]*globalFieldSpec {
	m := make(map[string]*globalFieldSpec, len(globalFieldSpecs))
	for i := range globalFieldSpecs {
		m[globalFieldSpecs[i].Name] = &globalFieldSpecs[i]
	}
	return m
}()

// String returns the field mnemonic.
func (f GlobalField) String() string {
	for i := range globalFieldSpecs {
		if globalFieldSpecs[i].Field == f {
			return globalFieldSpecs[i].Name
		}
	}
	return "none"
}

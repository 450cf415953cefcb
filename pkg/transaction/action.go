// Package transaction defines the ledger action set, transactions and
// delegate actions together with their canonical binary encoding. The
// encoding doubles as the signing payload, so discriminant values and field
// order are a hard compatibility contract with the remote validator.
package transaction

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/r-near/near-kit-go/pkg/crypto/keys"
	"github.com/r-near/near-kit-go/pkg/encoding/borsh"
	"github.com/r-near/near-kit-go/pkg/types"
)

// ActionType is the wire discriminant of an action variant. Values are
// assigned explicitly and never renumbered; new variants append at the end.
type ActionType uint8

const (
	CreateAccountType          ActionType = 0
	DeployContractType         ActionType = 1
	FunctionCallType           ActionType = 2
	TransferType               ActionType = 3
	StakeType                  ActionType = 4
	AddKeyType                 ActionType = 5
	DeleteKeyType              ActionType = 6
	DeleteAccountType          ActionType = 7
	DelegateType               ActionType = 8
	DeployGlobalContractType   ActionType = 9
	UseGlobalContractType      ActionType = 10
	DeterministicStateInitType ActionType = 11
)

// Action is one state transition applied by a transaction. All actions of one
// transaction apply atomically as a single unit.
type Action interface {
	// ActionType returns the wire discriminant of the variant.
	ActionType() ActionType

	EncodeBorsh(*borsh.Writer)
	DecodeBorsh(*borsh.Reader)
}

// writeActions encodes an action vector: u32 count, then per action the
// discriminant byte followed by the variant payload.
func writeActions(w *borsh.Writer, actions []Action) {
	w.WriteU32(uint32(len(actions)))
	for _, a := range actions {
		w.WriteU8(byte(a.ActionType()))
		a.EncodeBorsh(w)
	}
}

// readActions decodes an action vector written by writeActions.
func readActions(r *borsh.Reader) []Action {
	n := r.ReadU32()
	if r.Err != nil {
		return nil
	}
	if n > 1024 {
		r.Err = fmt.Errorf("action count %d is too big", n)
		return nil
	}
	actions := make([]Action, 0, n)
	for i := uint32(0); i < n; i++ {
		a := decodeAction(r)
		if r.Err != nil {
			return nil
		}
		actions = append(actions, a)
	}
	return actions
}

// decodeAction decodes a single discriminant-tagged action.
func decodeAction(r *borsh.Reader) Action {
	tag := r.ReadU8()
	if r.Err != nil {
		return nil
	}
	var a Action
	switch ActionType(tag) {
	case CreateAccountType:
		a = &CreateAccount{}
	case DeployContractType:
		a = &DeployContract{}
	case FunctionCallType:
		a = &FunctionCall{}
	case TransferType:
		a = &Transfer{}
	case StakeType:
		a = &Stake{}
	case AddKeyType:
		a = &AddKey{}
	case DeleteKeyType:
		a = &DeleteKey{}
	case DeleteAccountType:
		a = &DeleteAccount{}
	case DelegateType:
		a = &Delegate{}
	case DeployGlobalContractType:
		a = &DeployGlobalContract{}
	case UseGlobalContractType:
		a = &UseGlobalContract{}
	case DeterministicStateInitType:
		a = &DeterministicStateInit{}
	default:
		r.Err = fmt.Errorf("unknown action discriminant %d", tag)
		return nil
	}
	a.DecodeBorsh(r)
	return a
}

// CreateAccount creates the receiver account. It carries no payload.
type CreateAccount struct{}

func (a *CreateAccount) ActionType() ActionType    { return CreateAccountType }
func (a *CreateAccount) EncodeBorsh(*borsh.Writer) {}
func (a *CreateAccount) DecodeBorsh(*borsh.Reader) {}

// DeployContract deploys wasm code to the receiver account.
type DeployContract struct {
	Code []byte
}

func (a *DeployContract) ActionType() ActionType { return DeployContractType }

func (a *DeployContract) EncodeBorsh(w *borsh.Writer) {
	w.WriteVarBytes(a.Code)
}

func (a *DeployContract) DecodeBorsh(r *borsh.Reader) {
	a.Code = r.ReadVarBytes()
}

// FunctionCall invokes a method on the receiver's contract, attaching gas for
// execution and an optional deposit.
type FunctionCall struct {
	MethodName string
	Args       []byte
	Gas        types.Gas
	Deposit    types.Balance
}

func (a *FunctionCall) ActionType() ActionType { return FunctionCallType }

func (a *FunctionCall) EncodeBorsh(w *borsh.Writer) {
	w.WriteString(a.MethodName)
	w.WriteVarBytes(a.Args)
	w.WriteU64(uint64(a.Gas))
	w.WriteU128(a.Deposit.Bytes16())
}

func (a *FunctionCall) DecodeBorsh(r *borsh.Reader) {
	a.MethodName = r.ReadString()
	a.Args = r.ReadVarBytes()
	a.Gas = types.Gas(r.ReadU64())
	a.Deposit = readBalance(r)
}

// Transfer moves tokens from the signer to the receiver.
type Transfer struct {
	Deposit types.Balance
}

func (a *Transfer) ActionType() ActionType { return TransferType }

func (a *Transfer) EncodeBorsh(w *borsh.Writer) {
	w.WriteU128(a.Deposit.Bytes16())
}

func (a *Transfer) DecodeBorsh(r *borsh.Reader) {
	a.Deposit = readBalance(r)
}

// Stake locks tokens for validation with the given validator key.
type Stake struct {
	Stake     types.Balance
	PublicKey keys.PublicKey
}

func (a *Stake) ActionType() ActionType { return StakeType }

func (a *Stake) EncodeBorsh(w *borsh.Writer) {
	w.WriteU128(a.Stake.Bytes16())
	a.PublicKey.EncodeBorsh(w)
}

func (a *Stake) DecodeBorsh(r *borsh.Reader) {
	a.Stake = readBalance(r)
	a.PublicKey.DecodeBorsh(r)
}

// AddKey adds an access key to the receiver account.
type AddKey struct {
	PublicKey keys.PublicKey
	AccessKey AccessKey
}

func (a *AddKey) ActionType() ActionType { return AddKeyType }

func (a *AddKey) EncodeBorsh(w *borsh.Writer) {
	a.PublicKey.EncodeBorsh(w)
	a.AccessKey.EncodeBorsh(w)
}

func (a *AddKey) DecodeBorsh(r *borsh.Reader) {
	a.PublicKey.DecodeBorsh(r)
	a.AccessKey.DecodeBorsh(r)
}

// DeleteKey removes an access key from the receiver account.
type DeleteKey struct {
	PublicKey keys.PublicKey
}

func (a *DeleteKey) ActionType() ActionType { return DeleteKeyType }

func (a *DeleteKey) EncodeBorsh(w *borsh.Writer) {
	a.PublicKey.EncodeBorsh(w)
}

func (a *DeleteKey) DecodeBorsh(r *borsh.Reader) {
	a.PublicKey.DecodeBorsh(r)
}

// DeleteAccount deletes the receiver account, sending the remaining balance
// to the beneficiary.
type DeleteAccount struct {
	BeneficiaryID types.AccountID
}

func (a *DeleteAccount) ActionType() ActionType { return DeleteAccountType }

func (a *DeleteAccount) EncodeBorsh(w *borsh.Writer) {
	w.WriteString(a.BeneficiaryID.String())
}

func (a *DeleteAccount) DecodeBorsh(r *borsh.Reader) {
	a.BeneficiaryID = readAccountID(r)
}

// GlobalContractDeployMode selects how a deployed global contract is
// referenced later.
type GlobalContractDeployMode uint8

const (
	// GlobalContractByCodeHash makes the contract immutable and referenced
	// by its code hash.
	GlobalContractByCodeHash GlobalContractDeployMode = 0
	// GlobalContractByAccountID keeps the contract re-deployable by its
	// owner and referenced by the owning account.
	GlobalContractByAccountID GlobalContractDeployMode = 1
)

// DeployGlobalContract publishes wasm code usable by any account.
type DeployGlobalContract struct {
	Code       []byte
	DeployMode GlobalContractDeployMode
}

func (a *DeployGlobalContract) ActionType() ActionType { return DeployGlobalContractType }

func (a *DeployGlobalContract) EncodeBorsh(w *borsh.Writer) {
	w.WriteVarBytes(a.Code)
	w.WriteU8(byte(a.DeployMode))
}

func (a *DeployGlobalContract) DecodeBorsh(r *borsh.Reader) {
	a.Code = r.ReadVarBytes()
	mode := r.ReadU8()
	if r.Err == nil && mode > byte(GlobalContractByAccountID) {
		r.Err = fmt.Errorf("unknown global contract deploy mode %d", mode)
		return
	}
	a.DeployMode = GlobalContractDeployMode(mode)
}

// GlobalContractIdentifier references a previously deployed global contract
// either by code hash or by owning account. Exactly one of the fields is set,
// selected by Mode.
type GlobalContractIdentifier struct {
	Mode      GlobalContractDeployMode
	CodeHash  types.CryptoHash
	AccountID types.AccountID
}

// EncodeBorsh implements the borsh.Serializable interface.
func (g GlobalContractIdentifier) EncodeBorsh(w *borsh.Writer) {
	w.WriteU8(byte(g.Mode))
	if g.Mode == GlobalContractByCodeHash {
		w.WriteBytes(g.CodeHash.Bytes())
	} else {
		w.WriteString(g.AccountID.String())
	}
}

// DecodeBorsh implements the borsh.Serializable interface.
func (g *GlobalContractIdentifier) DecodeBorsh(r *borsh.Reader) {
	mode := r.ReadU8()
	if r.Err != nil {
		return
	}
	switch GlobalContractDeployMode(mode) {
	case GlobalContractByCodeHash:
		g.Mode = GlobalContractByCodeHash
		r.ReadBytes(g.CodeHash[:])
	case GlobalContractByAccountID:
		g.Mode = GlobalContractByAccountID
		g.AccountID = readAccountID(r)
	default:
		r.Err = fmt.Errorf("unknown global contract identifier discriminant %d", mode)
	}
}

// UseGlobalContract attaches a global contract to the receiver account.
type UseGlobalContract struct {
	ContractID GlobalContractIdentifier
}

func (a *UseGlobalContract) ActionType() ActionType { return UseGlobalContractType }

func (a *UseGlobalContract) EncodeBorsh(w *borsh.Writer) {
	a.ContractID.EncodeBorsh(w)
}

func (a *UseGlobalContract) DecodeBorsh(r *borsh.Reader) {
	a.ContractID.DecodeBorsh(r)
}

// StateInitEntry is one key/value pair of deterministic initial contract
// state.
type StateInitEntry struct {
	Key   []byte
	Value []byte
}

// DeterministicStateInit creates an account with deterministic initial state
// derived from a global contract and a data map. The map encodes with keys in
// ascending byte order so the account derivation stays canonical.
type DeterministicStateInit struct {
	Code    GlobalContractIdentifier
	Data    []StateInitEntry
	Deposit types.Balance
}

func (a *DeterministicStateInit) ActionType() ActionType { return DeterministicStateInitType }

func (a *DeterministicStateInit) EncodeBorsh(w *borsh.Writer) {
	// Version discriminant of the state init payload.
	w.WriteU8(0)
	a.Code.EncodeBorsh(w)
	entries := make([]StateInitEntry, len(a.Data))
	copy(entries, a.Data)
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].Key, entries[j].Key) < 0
	})
	w.WriteU32(uint32(len(entries)))
	for _, e := range entries {
		w.WriteVarBytes(e.Key)
		w.WriteVarBytes(e.Value)
	}
	w.WriteU128(a.Deposit.Bytes16())
}

func (a *DeterministicStateInit) DecodeBorsh(r *borsh.Reader) {
	version := r.ReadU8()
	if r.Err == nil && version != 0 {
		r.Err = fmt.Errorf("unknown state init version %d", version)
		return
	}
	a.Code.DecodeBorsh(r)
	n := r.ReadU32()
	if r.Err != nil {
		return
	}
	if n > 4096 {
		r.Err = fmt.Errorf("state init entry count %d is too big", n)
		return
	}
	if n > 0 {
		a.Data = make([]StateInitEntry, n)
		for i := range a.Data {
			a.Data[i].Key = r.ReadVarBytes()
			a.Data[i].Value = r.ReadVarBytes()
		}
	}
	a.Deposit = readBalance(r)
}

// readBalance decodes a 128-bit balance, funnelling decode errors into r.
func readBalance(r *borsh.Reader) types.Balance {
	raw := r.ReadU128()
	if r.Err != nil {
		return types.Balance{}
	}
	b, err := types.BalanceFromBytes(raw[:])
	if err != nil {
		r.Err = err
	}
	return b
}

// readAccountID decodes and validates an account identifier.
func readAccountID(r *borsh.Reader) types.AccountID {
	s := r.ReadString()
	if r.Err != nil {
		return ""
	}
	id, err := types.NewAccountID(s)
	if err != nil {
		r.Err = err
	}
	return id
}

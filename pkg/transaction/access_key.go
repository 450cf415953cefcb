package transaction

import (
	"fmt"

	"github.com/r-near/near-kit-go/pkg/encoding/borsh"
	"github.com/r-near/near-kit-go/pkg/types"
)

// PermissionType is the wire discriminant of an access key permission.
type PermissionType uint8

const (
	// FunctionCallPermissionType restricts the key to gas-only function
	// calls on one receiver.
	FunctionCallPermissionType PermissionType = 0
	// FullAccessPermissionType allows every action.
	FullAccessPermissionType PermissionType = 1
)

// FunctionCallPermission limits an access key to calling MethodNames on
// ReceiverID, optionally capped by a total gas-fee Allowance. An empty method
// list allows any method, a nil Allowance is unlimited.
type FunctionCallPermission struct {
	Allowance   *types.Balance
	ReceiverID  types.AccountID
	MethodNames []string
}

// AccessKey pairs the key's current nonce with its permission.
type AccessKey struct {
	Nonce uint64
	// FunctionCall is nil for a full-access key.
	FunctionCall *FunctionCallPermission
}

// FullAccessKey returns an access key granting every action.
func FullAccessKey() AccessKey {
	return AccessKey{}
}

// FunctionCallAccessKey returns an access key restricted to the given
// receiver and methods.
func FunctionCallAccessKey(receiver types.AccountID, methods []string, allowance *types.Balance) AccessKey {
	return AccessKey{FunctionCall: &FunctionCallPermission{
		Allowance:   allowance,
		ReceiverID:  receiver,
		MethodNames: methods,
	}}
}

// IsFullAccess reports whether the key permits every action.
func (k AccessKey) IsFullAccess() bool {
	return k.FunctionCall == nil
}

// EncodeBorsh implements the borsh.Serializable interface.
func (k AccessKey) EncodeBorsh(w *borsh.Writer) {
	w.WriteU64(k.Nonce)
	if fc := k.FunctionCall; fc != nil {
		w.WriteU8(byte(FunctionCallPermissionType))
		w.WriteOption(fc.Allowance != nil)
		if fc.Allowance != nil {
			w.WriteU128(fc.Allowance.Bytes16())
		}
		w.WriteString(fc.ReceiverID.String())
		w.WriteU32(uint32(len(fc.MethodNames)))
		for _, m := range fc.MethodNames {
			w.WriteString(m)
		}
	} else {
		w.WriteU8(byte(FullAccessPermissionType))
	}
}

// DecodeBorsh implements the borsh.Serializable interface.
func (k *AccessKey) DecodeBorsh(r *borsh.Reader) {
	k.Nonce = r.ReadU64()
	tag := r.ReadU8()
	if r.Err != nil {
		return
	}
	switch PermissionType(tag) {
	case FullAccessPermissionType:
		k.FunctionCall = nil
	case FunctionCallPermissionType:
		fc := &FunctionCallPermission{}
		if r.ReadOption() {
			b := readBalance(r)
			fc.Allowance = &b
		}
		fc.ReceiverID = readAccountID(r)
		n := r.ReadU32()
		if r.Err != nil {
			return
		}
		if n > 4096 {
			r.Err = fmt.Errorf("method name count %d is too big", n)
			return
		}
		if n > 0 {
			fc.MethodNames = make([]string, n)
			for i := range fc.MethodNames {
				fc.MethodNames[i] = r.ReadString()
			}
		}
		k.FunctionCall = fc
	default:
		r.Err = fmt.Errorf("unknown permission discriminant %d", tag)
	}
}

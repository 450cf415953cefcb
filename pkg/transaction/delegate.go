package transaction

import (
	"bytes"
	"errors"

	"github.com/r-near/near-kit-go/pkg/crypto/keys"
	"github.com/r-near/near-kit-go/pkg/encoding/borsh"
	"github.com/r-near/near-kit-go/pkg/types"
)

// delegateActionDiscriminant is the signable-message discriminant prefixed to
// a delegate action before hashing (2^30 + 366). It keeps delegate signatures
// structurally disjoint from transaction signatures made with the same key.
const delegateActionDiscriminant uint32 = 1<<30 + 366

// ErrNestedDelegate is returned when a delegate action is placed inside
// another delegate action.
var ErrNestedDelegate = errors.New("delegate actions cannot nest")

// ErrDelegateSignature is returned when a signed delegate action fails
// verification against its embedded public key.
var ErrDelegateSignature = errors.New("delegate action signature does not verify")

// DelegateAction is an action set signed by the sender but relayed and
// fee-paid by a third party. MaxBlockHeight bounds how long the relayer can
// sit on it; Nonce is the sender key's access-key nonce.
type DelegateAction struct {
	SenderID       types.AccountID
	ReceiverID     types.AccountID
	Actions        []Action
	Nonce          uint64
	MaxBlockHeight uint64
	PublicKey      keys.PublicKey
}

// NewDelegateAction builds a delegate action, rejecting nested delegates.
func NewDelegateAction(sender, receiver types.AccountID, actions []Action, nonce, maxBlockHeight uint64, pk keys.PublicKey) (*DelegateAction, error) {
	for _, a := range actions {
		if a.ActionType() == DelegateType {
			return nil, ErrNestedDelegate
		}
	}
	return &DelegateAction{
		SenderID:       sender,
		ReceiverID:     receiver,
		Actions:        actions,
		Nonce:          nonce,
		MaxBlockHeight: maxBlockHeight,
		PublicKey:      pk,
	}, nil
}

// EncodeBorsh implements the borsh.Serializable interface.
func (d *DelegateAction) EncodeBorsh(w *borsh.Writer) {
	w.WriteString(d.SenderID.String())
	w.WriteString(d.ReceiverID.String())
	writeActions(w, d.Actions)
	w.WriteU64(d.Nonce)
	w.WriteU64(d.MaxBlockHeight)
	d.PublicKey.EncodeBorsh(w)
}

// DecodeBorsh implements the borsh.Serializable interface.
func (d *DelegateAction) DecodeBorsh(r *borsh.Reader) {
	d.SenderID = readAccountID(r)
	d.ReceiverID = readAccountID(r)
	d.Actions = readActions(r)
	if r.Err == nil {
		for _, a := range d.Actions {
			if a.ActionType() == DelegateType {
				r.Err = ErrNestedDelegate
				return
			}
		}
	}
	d.Nonce = r.ReadU64()
	d.MaxBlockHeight = r.ReadU64()
	d.PublicKey.DecodeBorsh(r)
}

// Hash returns the sha256 digest of the discriminant-prefixed canonical
// encoding, the signing input for meta transactions.
func (d *DelegateAction) Hash() (types.CryptoHash, error) {
	buf := new(bytes.Buffer)
	w := borsh.NewWriter(buf)
	w.WriteU32(delegateActionDiscriminant)
	d.EncodeBorsh(w)
	if w.Err != nil {
		return types.CryptoHash{}, w.Err
	}
	return types.Sha256(buf.Bytes()), nil
}

// Sign hashes the delegate action and signs it with the sender's key.
func (d *DelegateAction) Sign(key *keys.PrivateKey) (*SignedDelegateAction, error) {
	hash, err := d.Hash()
	if err != nil {
		return nil, err
	}
	return &SignedDelegateAction{
		DelegateAction: *d,
		Signature:      key.Sign(hash.Bytes()),
	}, nil
}

// SignedDelegateAction is a delegate action plus the sender's signature over
// its prefixed hash.
type SignedDelegateAction struct {
	DelegateAction DelegateAction
	Signature      keys.Signature
}

// Verify reports whether the signature matches the delegate action under its
// embedded public key.
func (s *SignedDelegateAction) Verify() bool {
	hash, err := s.DelegateAction.Hash()
	if err != nil {
		return false
	}
	return s.DelegateAction.PublicKey.Verify(s.Signature, hash.Bytes())
}

// EncodeBorsh implements the borsh.Serializable interface.
func (s *SignedDelegateAction) EncodeBorsh(w *borsh.Writer) {
	s.DelegateAction.EncodeBorsh(w)
	s.Signature.EncodeBorsh(w)
}

// DecodeBorsh implements the borsh.Serializable interface.
func (s *SignedDelegateAction) DecodeBorsh(r *borsh.Reader) {
	s.DelegateAction.DecodeBorsh(r)
	s.Signature.DecodeBorsh(r)
}

// Delegate is the outer action a relayer embeds in its own fee-paying
// transaction to apply a sender-signed delegate action.
type Delegate struct {
	SignedDelegate SignedDelegateAction
}

// NewDelegate wraps a signed delegate action for embedding into a relayer
// transaction.
func NewDelegate(signed *SignedDelegateAction) *Delegate {
	return &Delegate{SignedDelegate: *signed}
}

func (a *Delegate) ActionType() ActionType { return DelegateType }

func (a *Delegate) EncodeBorsh(w *borsh.Writer) {
	a.SignedDelegate.EncodeBorsh(w)
}

func (a *Delegate) DecodeBorsh(r *borsh.Reader) {
	a.SignedDelegate.DecodeBorsh(r)
}

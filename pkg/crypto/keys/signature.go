package keys

import (
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/r-near/near-kit-go/pkg/encoding/borsh"
)

// Signature is a curve-tagged signature. The wire form is the tag byte
// followed by the raw signature bytes (64 for ed25519, 65 for secp256k1 in
// r||s||v layout), the text form is "<curve>:<base58>".
type Signature struct {
	Type KeyType
	Data []byte
}

// NewSignatureFromString returns a signature parsed from its
// "<curve>:<base58>" text form.
func NewSignatureFromString(s string) (Signature, error) {
	curve, data, err := splitKeyString(s)
	if err != nil {
		return Signature{}, err
	}
	if len(data) != curve.signatureSize() {
		return Signature{}, fmt.Errorf("invalid %s signature length %d", curve, len(data))
	}
	return Signature{Type: curve, Data: data}, nil
}

// Bytes returns the wire form of the signature: tag byte plus raw bytes.
func (s Signature) Bytes() []byte {
	return append([]byte{byte(s.Type)}, s.Data...)
}

// String implements the Stringer interface.
func (s Signature) String() string {
	return s.Type.String() + ":" + base58.Encode(s.Data)
}

// EncodeBorsh implements the borsh.Serializable interface.
func (s Signature) EncodeBorsh(w *borsh.Writer) {
	w.WriteU8(byte(s.Type))
	w.WriteBytes(s.Data)
}

// DecodeBorsh implements the borsh.Serializable interface.
func (s *Signature) DecodeBorsh(r *borsh.Reader) {
	tag := r.ReadU8()
	if r.Err != nil {
		return
	}
	if tag > byte(SECP256K1) {
		r.Err = fmt.Errorf("invalid signature type tag %d", tag)
		return
	}
	s.Type = KeyType(tag)
	s.Data = make([]byte, s.Type.signatureSize())
	r.ReadBytes(s.Data)
}

// MarshalJSON implements the json.Marshaler interface.
func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (s *Signature) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := NewSignatureFromString(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

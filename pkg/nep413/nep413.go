// Package nep413 implements NEP-413 off-chain message signing: an
// authentication flow that shares account keys with transaction signing but
// produces hashes that can never collide with a transaction hash.
package nep413

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/r-near/near-kit-go/pkg/crypto/keys"
	"github.com/r-near/near-kit-go/pkg/encoding/borsh"
	"github.com/r-near/near-kit-go/pkg/types"
)

// messageDiscriminant is the NEP-413 signable-message tag (2^31 + 413)
// prepended to the payload before hashing. Transaction hashes have no such
// prefix, so the two signing domains are structurally disjoint.
const messageDiscriminant uint32 = 1<<31 + 413

// NonceSize is the fixed nonce length: an 8 byte big-endian millisecond
// timestamp followed by 24 random bytes.
const NonceSize = 32

// DefaultMaxAge is the default window during which a nonce timestamp is
// accepted.
const DefaultMaxAge = 5 * time.Minute

var (
	// ErrSignatureMismatch is returned when the signature does not verify
	// against the recomputed payload hash.
	ErrSignatureMismatch = errors.New("signature does not match message")
	// ErrNonceExpired is returned when the nonce timestamp is older than the
	// accepted window.
	ErrNonceExpired = errors.New("message nonce has expired")
	// ErrNonceFromFuture is returned when the nonce timestamp is ahead of
	// the verifier's clock.
	ErrNonceFromFuture = errors.New("message nonce timestamp is in the future")
)

// Payload is the signed content of an off-chain message. Recipient is the
// party the message is addressed to (an account or an origin string), not a
// transaction receiver.
type Payload struct {
	Message     string
	Nonce       [NonceSize]byte
	Recipient   string
	CallbackURL *string
}

// EncodeBorsh implements the borsh.Serializable interface.
func (p *Payload) EncodeBorsh(w *borsh.Writer) {
	w.WriteString(p.Message)
	w.WriteBytes(p.Nonce[:])
	w.WriteString(p.Recipient)
	w.WriteOption(p.CallbackURL != nil)
	if p.CallbackURL != nil {
		w.WriteString(*p.CallbackURL)
	}
}

// DecodeBorsh implements the borsh.Serializable interface.
func (p *Payload) DecodeBorsh(r *borsh.Reader) {
	p.Message = r.ReadString()
	r.ReadBytes(p.Nonce[:])
	p.Recipient = r.ReadString()
	if r.ReadOption() {
		s := r.ReadString()
		p.CallbackURL = &s
	} else {
		p.CallbackURL = nil
	}
}

// Hash returns the sha256 digest of the discriminant-prefixed canonical
// payload encoding, the signing input.
func (p *Payload) Hash() (types.CryptoHash, error) {
	buf := new(bytes.Buffer)
	w := borsh.NewWriter(buf)
	w.WriteU32(messageDiscriminant)
	p.EncodeBorsh(w)
	if w.Err != nil {
		return types.CryptoHash{}, w.Err
	}
	return types.Sha256(buf.Bytes()), nil
}

// SignedMessage is the result of signing a payload: the signing account, the
// key used and the signature over the payload hash.
type SignedMessage struct {
	AccountID types.AccountID `json:"accountId"`
	PublicKey keys.PublicKey  `json:"publicKey"`
	Signature keys.Signature  `json:"signature"`
}

// GenerateNonce produces a fresh nonce carrying the current timestamp, so
// verifiers can reject stale messages without keeping nonce state.
func GenerateNonce() ([NonceSize]byte, error) {
	return generateNonceAt(time.Now())
}

func generateNonceAt(now time.Time) (nonce [NonceSize]byte, err error) {
	binary.BigEndian.PutUint64(nonce[:8], uint64(now.UnixMilli()))
	_, err = rand.Read(nonce[8:])
	return nonce, err
}

// NonceTimestamp extracts the embedded creation time of a nonce.
func NonceTimestamp(nonce [NonceSize]byte) time.Time {
	return time.UnixMilli(int64(binary.BigEndian.Uint64(nonce[:8])))
}

// VerifyOptions tune Verify. The zero value checks timestamps against
// DefaultMaxAge using the wall clock.
type VerifyOptions struct {
	// MaxAge overrides DefaultMaxAge when positive.
	MaxAge time.Duration
	// SkipTimestampCheck disables nonce age validation entirely. Replay
	// tracking of consumed nonces is then entirely up to the caller.
	SkipTimestampCheck bool
	// Clock supplies the verifier's time, for tests.
	Clock clockwork.Clock
}

// Verify recomputes the payload hash and checks signed against it. Unless
// disabled, nonces with a future timestamp or one older than MaxAge are
// rejected. Verify does not track consumed nonces; callers needing strict
// replay protection must do so on top of the timestamp window.
func Verify(signed *SignedMessage, p *Payload, opts VerifyOptions) error {
	hash, err := p.Hash()
	if err != nil {
		return err
	}
	if !signed.PublicKey.Verify(signed.Signature, hash.Bytes()) {
		return ErrSignatureMismatch
	}
	if opts.SkipTimestampCheck {
		return nil
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ts := NonceTimestamp(p.Nonce)
	now := clock.Now()
	if ts.After(now) {
		return ErrNonceFromFuture
	}
	if now.Sub(ts) > maxAge {
		return ErrNonceExpired
	}
	return nil
}

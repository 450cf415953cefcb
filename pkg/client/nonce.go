package client

import (
	"context"
	"sync"

	"go.uber.org/atomic"

	"github.com/r-near/near-kit-go/pkg/crypto/keys"
	"github.com/r-near/near-kit-go/pkg/types"
)

// AccessKeyNonceFunc fetches the current on-ledger nonce of an access key.
type AccessKeyNonceFunc func(ctx context.Context, accountID types.AccountID, publicKey keys.PublicKey) (uint64, error)

// NonceManager hands out strictly increasing transaction nonces per
// (account, public key) pair. The first request for a pair fetches the
// on-ledger nonce; after that every request is a single atomic increment, so
// concurrent submissions through the same key never collide. No lock is held
// across the fetch.
type NonceManager struct {
	fetch AccessKeyNonceFunc

	mtx sync.RWMutex
	// last issued nonce per "account:publickey".
	nonces map[string]*atomic.Uint64
}

// NewNonceManager returns a manager seeding itself through fetch.
func NewNonceManager(fetch AccessKeyNonceFunc) *NonceManager {
	return &NonceManager{
		fetch:  fetch,
		nonces: make(map[string]*atomic.Uint64),
	}
}

func nonceKey(accountID types.AccountID, publicKey keys.PublicKey) string {
	return accountID.String() + ":" + publicKey.String()
}

// GetNextNonce reserves the next nonce for the key. The reservation is not
// returned on failure; a submission that ultimately does not land leaves a
// gap, which the ledger accepts.
func (m *NonceManager) GetNextNonce(ctx context.Context, accountID types.AccountID, publicKey keys.PublicKey) (uint64, error) {
	key := nonceKey(accountID, publicKey)

	m.mtx.RLock()
	ctr, ok := m.nonces[key]
	m.mtx.RUnlock()
	if ok {
		return ctr.Inc(), nil
	}

	onLedger, err := m.fetch(ctx, accountID, publicKey)
	if err != nil {
		return 0, err
	}

	m.mtx.Lock()
	// Another goroutine may have fetched concurrently; its counter wins.
	ctr, ok = m.nonces[key]
	if !ok {
		ctr = atomic.NewUint64(onLedger)
		m.nonces[key] = ctr
	}
	m.mtx.Unlock()
	return ctr.Inc(), nil
}

// UpdateAndGetNext raises the counter to the observed on-ledger nonce if it
// is ahead, then reserves the next nonce. Used to reconcile after the node
// rejects a submission as stale.
func (m *NonceManager) UpdateAndGetNext(accountID types.AccountID, publicKey keys.PublicKey, onLedger uint64) uint64 {
	key := nonceKey(accountID, publicKey)

	m.mtx.Lock()
	ctr, ok := m.nonces[key]
	if !ok {
		ctr = atomic.NewUint64(0)
		m.nonces[key] = ctr
	}
	m.mtx.Unlock()

	for {
		cur := ctr.Load()
		if cur >= onLedger || ctr.CompareAndSwap(cur, onLedger) {
			break
		}
	}
	return ctr.Inc()
}

// Invalidate drops the cached counter for the key, forcing the next
// GetNextNonce to refetch the on-ledger state.
func (m *NonceManager) Invalidate(accountID types.AccountID, publicKey keys.PublicKey) {
	m.mtx.Lock()
	delete(m.nonces, nonceKey(accountID, publicKey))
	m.mtx.Unlock()
}

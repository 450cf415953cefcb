/*
Package client ties the SDK together: an RPC transport, a signer and a
nonce manager behind one high-level API. Transactions are composed through
TransactionBuilder and land atomically; every submission pins one key, so
multi-key signers drive independent nonce sequences.
*/
package client

import (
	"context"

	"go.uber.org/zap"

	"github.com/r-near/near-kit-go/pkg/crypto/keys"
	"github.com/r-near/near-kit-go/pkg/nearrpc/result"
	"github.com/r-near/near-kit-go/pkg/nep413"
	"github.com/r-near/near-kit-go/pkg/rpcclient"
	"github.com/r-near/near-kit-go/pkg/signer"
	"github.com/r-near/near-kit-go/pkg/types"
)

// Options configure the high-level client. All fields are optional.
type Options struct {
	// RPC is passed through to the underlying transport.
	RPC rpcclient.Options
	// Logger is used by the client and, unless overridden in RPC, the
	// transport. Nop when unset.
	Logger *zap.Logger
}

// Client is the high-level NEAR client bound to one signing identity.
// It is safe for concurrent use.
type Client struct {
	rpc    *rpcclient.Client
	signer signer.Signer
	nonces *NonceManager
	log    *zap.Logger
}

// New connects a signer to an RPC endpoint.
func New(endpoint string, s signer.Signer, opts Options) (*Client, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.RPC.Logger == nil {
		opts.RPC.Logger = opts.Logger
	}
	rpc, err := rpcclient.New(endpoint, opts.RPC)
	if err != nil {
		return nil, err
	}
	c := &Client{
		rpc:    rpc,
		signer: s,
		log:    opts.Logger,
	}
	c.nonces = NewNonceManager(c.accessKeyNonce)
	return c, nil
}

// accessKeyNonce seeds the nonce manager from the freshest view of the
// access key.
func (c *Client) accessKeyNonce(ctx context.Context, accountID types.AccountID, publicKey keys.PublicKey) (uint64, error) {
	view, err := c.rpc.ViewAccessKey(ctx, accountID, publicKey, rpcclient.FinalityOptimistic)
	if err != nil {
		return 0, err
	}
	return view.Nonce, nil
}

// RPC exposes the underlying transport for methods the high-level API does
// not wrap.
func (c *Client) RPC() *rpcclient.Client {
	return c.rpc
}

// Signer returns the signing identity the client was built with.
func (c *Client) Signer() signer.Signer {
	return c.signer
}

// AccountID returns the account the client signs for.
func (c *Client) AccountID() types.AccountID {
	return c.signer.GetAccountID()
}

// ViewAccount returns the finalized state of an account.
func (c *Client) ViewAccount(ctx context.Context, accountID types.AccountID) (*result.AccountView, error) {
	return c.rpc.ViewAccount(ctx, accountID, rpcclient.FinalityFinal)
}

// CallFunction performs a read-only contract call against the final block.
func (c *Client) CallFunction(ctx context.Context, contractID types.AccountID, method string, args []byte) (*result.CallResult, error) {
	return c.rpc.CallFunction(ctx, contractID, method, args, rpcclient.FinalityFinal)
}

// SignMessage produces an off-chain NEP-413 signature over message for
// recipient, with a fresh timestamped nonce. The result never commits to
// anything on the ledger.
func (c *Client) SignMessage(ctx context.Context, message, recipient string, callbackURL *string) (*nep413.Payload, *nep413.SignedMessage, error) {
	nonce, err := nep413.GenerateNonce()
	if err != nil {
		return nil, nil, err
	}
	payload := &nep413.Payload{
		Message:     message,
		Nonce:       nonce,
		Recipient:   recipient,
		CallbackURL: callbackURL,
	}
	signed, err := c.signer.SignMessage(ctx, payload)
	if err != nil {
		return nil, nil, err
	}
	return payload, signed, nil
}

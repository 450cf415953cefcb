package client

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/r-near/near-kit-go/pkg/crypto/keys"
	"github.com/r-near/near-kit-go/pkg/nearrpc"
	"github.com/r-near/near-kit-go/pkg/nearrpc/result"
	"github.com/r-near/near-kit-go/pkg/rpcclient"
	"github.com/r-near/near-kit-go/pkg/signer"
	"github.com/r-near/near-kit-go/pkg/transaction"
	"github.com/r-near/near-kit-go/pkg/types"
)

// DefaultFunctionCallGas is attached to function calls that do not specify
// a gas limit.
const DefaultFunctionCallGas = 30 * types.Tera

// maxNonceRetries bounds how many times a submission rejected for a stale
// nonce is reconciled against the ledger and resent.
const maxNonceRetries = 3

// ErrNoActions is returned when an empty transaction is sent.
var ErrNoActions = errors.New("transaction has no actions")

// TransactionBuilder accumulates actions for one receiver and submits them
// as a single atomic transaction. Methods chain; the first composition error
// sticks and surfaces from Send. A builder is for one submission and is not
// safe for concurrent use, unlike the client that created it.
type TransactionBuilder struct {
	c         *Client
	receiver  types.AccountID
	actions   []transaction.Action
	waitUntil result.TxExecutionStatus
	err       error
}

// Transaction starts composing a transaction addressed to receiver.
func (c *Client) Transaction(receiver types.AccountID) *TransactionBuilder {
	return &TransactionBuilder{c: c, receiver: receiver}
}

// WaitUntil sets the execution status Send waits for. The node default is
// EXECUTED_OPTIMISTIC.
func (b *TransactionBuilder) WaitUntil(status result.TxExecutionStatus) *TransactionBuilder {
	b.waitUntil = status
	return b
}

// AddAction appends a prebuilt action.
func (b *TransactionBuilder) AddAction(a transaction.Action) *TransactionBuilder {
	b.actions = append(b.actions, a)
	return b
}

// Transfer attaches a token transfer to the receiver.
func (b *TransactionBuilder) Transfer(amount types.Balance) *TransactionBuilder {
	return b.AddAction(&transaction.Transfer{Deposit: amount})
}

// FunctionCall attaches a contract method call. Zero gas gets
// DefaultFunctionCallGas.
func (b *TransactionBuilder) FunctionCall(method string, args []byte, gas types.Gas, deposit types.Balance) *TransactionBuilder {
	if gas == 0 {
		gas = DefaultFunctionCallGas
	}
	return b.AddAction(&transaction.FunctionCall{
		MethodName: method,
		Args:       args,
		Gas:        gas,
		Deposit:    deposit,
	})
}

// CreateAccount attaches creation of the receiver account.
func (b *TransactionBuilder) CreateAccount() *TransactionBuilder {
	return b.AddAction(&transaction.CreateAccount{})
}

// DeployContract attaches deployment of wasm code to the receiver.
func (b *TransactionBuilder) DeployContract(code []byte) *TransactionBuilder {
	return b.AddAction(&transaction.DeployContract{Code: code})
}

// Stake attaches a staking action with the given validator key.
func (b *TransactionBuilder) Stake(amount types.Balance, validatorKey keys.PublicKey) *TransactionBuilder {
	return b.AddAction(&transaction.Stake{Stake: amount, PublicKey: validatorKey})
}

// AddFullAccessKey attaches registration of a full-access key.
func (b *TransactionBuilder) AddFullAccessKey(publicKey keys.PublicKey) *TransactionBuilder {
	return b.AddAction(&transaction.AddKey{
		PublicKey: publicKey,
		AccessKey: transaction.FullAccessKey(),
	})
}

// AddFunctionCallKey attaches registration of a key restricted to calling
// the given methods on contractID. A nil allowance means unlimited.
func (b *TransactionBuilder) AddFunctionCallKey(publicKey keys.PublicKey, contractID types.AccountID, allowance *types.Balance, methods ...string) *TransactionBuilder {
	return b.AddAction(&transaction.AddKey{
		PublicKey: publicKey,
		AccessKey: transaction.FunctionCallAccessKey(contractID, methods, allowance),
	})
}

// DeleteKey attaches removal of an access key.
func (b *TransactionBuilder) DeleteKey(publicKey keys.PublicKey) *TransactionBuilder {
	return b.AddAction(&transaction.DeleteKey{PublicKey: publicKey})
}

// DeleteAccount attaches deletion of the receiver account, sending remaining
// funds to beneficiary.
func (b *TransactionBuilder) DeleteAccount(beneficiary types.AccountID) *TransactionBuilder {
	return b.AddAction(&transaction.DeleteAccount{BeneficiaryID: beneficiary})
}

// Send signs and submits the composed transaction, waiting for the
// configured execution status. A submission the node rejects for a stale
// nonce is reconciled against the on-ledger nonce and resent a bounded
// number of times. On execution failure the outcome is returned together
// with the failure as an error.
func (b *TransactionBuilder) Send(ctx context.Context) (*result.FinalExecutionOutcome, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.actions) == 0 {
		return nil, ErrNoActions
	}

	// Pin one key for the whole submission: the transaction embeds the
	// public key and must be signed by exactly that key.
	s := signer.Pin(b.c.signer)
	accountID := s.GetAccountID()
	pk := s.GetPublicKey()

	block, err := b.c.rpc.Block(ctx, rpcclient.FinalityFinal)
	if err != nil {
		return nil, err
	}
	nonce, err := b.c.nonces.GetNextNonce(ctx, accountID, pk)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		tx := &transaction.Transaction{
			SignerID:   accountID,
			PublicKey:  pk,
			Nonce:      nonce,
			ReceiverID: b.receiver,
			BlockHash:  block.Header.Hash,
			Actions:    b.actions,
		}
		hash, err := tx.Hash()
		if err != nil {
			return nil, err
		}
		sig, err := s.Sign(ctx, hash.Bytes())
		if err != nil {
			return nil, err
		}
		stx := &transaction.SignedTransaction{Transaction: *tx, Signature: sig}

		outcome, err := b.c.rpc.SendTransaction(ctx, stx, b.waitUntil)
		if err != nil {
			var staleNonce *nearrpc.InvalidNonceError
			if errors.As(err, &staleNonce) && attempt < maxNonceRetries {
				nonce = b.c.nonces.UpdateAndGetNext(accountID, pk, staleNonce.AkNonce)
				b.c.log.Debug("stale nonce, resubmitting",
					zap.String("account", accountID.String()),
					zap.Uint64("ak_nonce", staleNonce.AkNonce),
					zap.Uint64("next_nonce", nonce))
				continue
			}
			return nil, err
		}
		if ferr := outcome.Status.FailureError(); ferr != nil {
			return outcome, ferr
		}
		return outcome, nil
	}
}

// SignedDelegate signs the composed actions as a delegate action valid up
// to maxBlockHeight, to be submitted by a relayer that pays the gas. The
// reserved nonce belongs to the delegate's own sequence on the signing key.
func (b *TransactionBuilder) SignedDelegate(ctx context.Context, maxBlockHeight uint64) (*transaction.SignedDelegateAction, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.actions) == 0 {
		return nil, ErrNoActions
	}

	s := signer.Pin(b.c.signer)
	accountID := s.GetAccountID()
	pk := s.GetPublicKey()

	nonce, err := b.c.nonces.GetNextNonce(ctx, accountID, pk)
	if err != nil {
		return nil, err
	}
	da, err := transaction.NewDelegateAction(accountID, b.receiver, b.actions, nonce, maxBlockHeight, pk)
	if err != nil {
		return nil, err
	}
	hash, err := da.Hash()
	if err != nil {
		return nil, err
	}
	sig, err := s.Sign(ctx, hash.Bytes())
	if err != nil {
		return nil, err
	}
	return &transaction.SignedDelegateAction{DelegateAction: *da, Signature: sig}, nil
}

// RelayDelegate submits someone else's signed delegate action, paying the
// gas from the client's account. The transaction is addressed to the
// delegate's sender, whose actions then run under its own authority.
func (c *Client) RelayDelegate(ctx context.Context, signed *transaction.SignedDelegateAction, waitUntil result.TxExecutionStatus) (*result.FinalExecutionOutcome, error) {
	if !signed.Verify() {
		return nil, transaction.ErrDelegateSignature
	}
	return c.Transaction(signed.DelegateAction.SenderID).
		WaitUntil(waitUntil).
		AddAction(transaction.NewDelegate(signed)).
		Send(ctx)
}

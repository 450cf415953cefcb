package rpcclient

import (
	"context"
	"encoding/base64"

	"github.com/r-near/near-kit-go/pkg/crypto/keys"
	"github.com/r-near/near-kit-go/pkg/nearrpc"
	"github.com/r-near/near-kit-go/pkg/nearrpc/result"
	"github.com/r-near/near-kit-go/pkg/transaction"
	"github.com/r-near/near-kit-go/pkg/types"
)

// BlockReference selects the block a query runs against: either a named
// finality or a concrete block by height or hash. The zero value means
// final.
type BlockReference struct {
	Finality string `json:"finality,omitempty"`
	BlockID  any    `json:"block_id,omitempty"`
}

// Named finalities accepted by the node.
var (
	FinalityOptimistic = BlockReference{Finality: "optimistic"}
	FinalityFinal      = BlockReference{Finality: "final"}
)

// AtBlockHeight references a concrete block by height.
func AtBlockHeight(height uint64) BlockReference {
	return BlockReference{BlockID: height}
}

// AtBlockHash references a concrete block by hash.
func AtBlockHash(hash types.CryptoHash) BlockReference {
	return BlockReference{BlockID: hash.String()}
}

func (r BlockReference) orFinal() BlockReference {
	if r.Finality == "" && r.BlockID == nil {
		return FinalityFinal
	}
	return r
}

// queryRequest is the parameter object of the query method. The block
// reference fields are promoted alongside the request-specific ones.
type queryRequest struct {
	RequestType string `json:"request_type"`
	BlockReference
	AccountID  types.AccountID `json:"account_id,omitempty"`
	PublicKey  string          `json:"public_key,omitempty"`
	MethodName string          `json:"method_name,omitempty"`
	ArgsBase64 *string         `json:"args_base64,omitempty"`
}

// Status returns the node build, chain and sync information.
func (c *Client) Status(ctx context.Context) (*result.NodeStatus, error) {
	resp := new(result.NodeStatus)
	if err := c.Call(ctx, "status", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Block returns the block selected by the reference. The header's hash is
// what transactions use as their recency anchor.
func (c *Client) Block(ctx context.Context, ref BlockReference) (*result.BlockView, error) {
	resp := new(result.BlockView)
	if err := c.Call(ctx, "block", ref.orFinal(), resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GasPrice returns the gas price at the referenced block, or at the latest
// block for the zero reference.
func (c *Client) GasPrice(ctx context.Context, ref BlockReference) (*result.GasPrice, error) {
	params := [1]any{ref.BlockID}
	resp := new(result.GasPrice)
	if err := c.Call(ctx, "gas_price", params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ViewAccount returns the account's state. A missing account comes back as
// a nearrpc.AccountNotFoundError.
func (c *Client) ViewAccount(ctx context.Context, accountID types.AccountID, ref BlockReference) (*result.AccountView, error) {
	resp := new(result.AccountView)
	err := c.Call(ctx, "query", queryRequest{
		RequestType:    "view_account",
		BlockReference: ref.orFinal(),
		AccountID:      accountID,
	}, resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ViewAccessKey returns one access key of the account, including its current
// on-ledger nonce.
func (c *Client) ViewAccessKey(ctx context.Context, accountID types.AccountID, publicKey keys.PublicKey, ref BlockReference) (*result.AccessKeyView, error) {
	resp := new(result.AccessKeyView)
	err := c.Call(ctx, "query", queryRequest{
		RequestType:    "view_access_key",
		BlockReference: ref.orFinal(),
		AccountID:      accountID,
		PublicKey:      publicKey.String(),
	}, resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ViewAccessKeyList returns all access keys of the account.
func (c *Client) ViewAccessKeyList(ctx context.Context, accountID types.AccountID, ref BlockReference) (*result.AccessKeyList, error) {
	resp := new(result.AccessKeyList)
	err := c.Call(ctx, "query", queryRequest{
		RequestType:    "view_access_key_list",
		BlockReference: ref.orFinal(),
		AccountID:      accountID,
	}, resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// CallFunction performs a read-only contract method call. Execution
// failures arrive inside an HTTP 200 response; they are classified into the
// nearrpc taxonomy here, with the partial result (logs included) still
// returned alongside the error.
func (c *Client) CallFunction(ctx context.Context, accountID types.AccountID, method string, args []byte, ref BlockReference) (*result.CallResult, error) {
	encoded := base64.StdEncoding.EncodeToString(args)
	resp := new(result.CallResult)
	err := c.Call(ctx, "query", queryRequest{
		RequestType:    "call_function",
		BlockReference: ref.orFinal(),
		AccountID:      accountID,
		MethodName:     method,
		ArgsBase64:     &encoded,
	}, resp)
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return resp, nearrpc.ClassifyCallError(resp.Error, accountID.String(), method)
	}
	return resp, nil
}

// sendTxRequest is the parameter object of the send_tx method.
type sendTxRequest struct {
	SignedTxBase64 string                   `json:"signed_tx_base64"`
	WaitUntil      result.TxExecutionStatus `json:"wait_until,omitempty"`
}

// SendTransaction submits a signed transaction and waits until it reaches
// the given execution status. An empty waitUntil defaults to
// EXECUTED_OPTIMISTIC on the node side.
func (c *Client) SendTransaction(ctx context.Context, stx *transaction.SignedTransaction, waitUntil result.TxExecutionStatus) (*result.FinalExecutionOutcome, error) {
	encoded, err := stx.Base64()
	if err != nil {
		return nil, err
	}
	resp := new(result.FinalExecutionOutcome)
	err = c.Call(ctx, "send_tx", sendTxRequest{
		SignedTxBase64: encoded,
		WaitUntil:      waitUntil,
	}, resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// SendTransactionAsync submits a signed transaction without waiting for any
// execution, returning the transaction hash to poll via TxStatus.
func (c *Client) SendTransactionAsync(ctx context.Context, stx *transaction.SignedTransaction) (types.CryptoHash, error) {
	encoded, err := stx.Base64()
	if err != nil {
		return types.CryptoHash{}, err
	}
	var hashStr string
	if err := c.Call(ctx, "broadcast_tx_async", [1]string{encoded}, &hashStr); err != nil {
		return types.CryptoHash{}, err
	}
	return types.CryptoHashFromString(hashStr)
}

// txStatusRequest is the parameter object of the tx method.
type txStatusRequest struct {
	TxHash          string                   `json:"tx_hash"`
	SenderAccountID types.AccountID          `json:"sender_account_id"`
	WaitUntil       result.TxExecutionStatus `json:"wait_until,omitempty"`
}

// TxStatus returns the execution outcome of a previously submitted
// transaction, waiting until it reaches the given status first.
func (c *Client) TxStatus(ctx context.Context, txHash types.CryptoHash, senderID types.AccountID, waitUntil result.TxExecutionStatus) (*result.FinalExecutionOutcome, error) {
	resp := new(result.FinalExecutionOutcome)
	err := c.Call(ctx, "tx", txStatusRequest{
		TxHash:          txHash.String(),
		SenderAccountID: senderID,
		WaitUntil:       waitUntil,
	}, resp)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

package nearrpc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Cause names produced by NEAR nodes. The classification below maps each to
// a typed error; anything else falls back to the raw *Error envelope.
const (
	CauseUnknownAccount        = "UNKNOWN_ACCOUNT"
	CauseInvalidAccount        = "INVALID_ACCOUNT"
	CauseUnknownBlock          = "UNKNOWN_BLOCK"
	CauseUnknownChunk          = "UNKNOWN_CHUNK"
	CauseUnknownEpoch          = "UNKNOWN_EPOCH"
	CauseUnknownReceipt        = "UNKNOWN_RECEIPT"
	CauseNoContractCode        = "NO_CONTRACT_CODE"
	CauseTooLargeContractState = "TOO_LARGE_CONTRACT_STATE"
	CauseContractExecution     = "CONTRACT_EXECUTION_ERROR"
	CauseUnavailableShard      = "UNAVAILABLE_SHARD"
	CauseNoSyncedBlocks        = "NO_SYNCED_BLOCKS"
	CauseInvalidShardID        = "INVALID_SHARD_ID"
	CauseInvalidTransaction    = "INVALID_TRANSACTION"
	CauseTimeout               = "TIMEOUT_ERROR"
	CauseParseError            = "PARSE_ERROR"
	CauseInternalError         = "INTERNAL_ERROR"
)

// AccountNotFoundError reports a query for an account that does not exist.
type AccountNotFoundError struct {
	AccountID string `json:"requested_account_id"`
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %q does not exist", e.AccountID)
}

// InvalidAccountError reports a query with a malformed account identifier.
type InvalidAccountError struct {
	AccountID string `json:"requested_account_id"`
}

func (e *InvalidAccountError) Error() string {
	return fmt.Sprintf("account identifier %q is invalid", e.AccountID)
}

// UnknownBlockError reports a block reference the node cannot resolve.
type UnknownBlockError struct {
	Reference string `json:"block_reference,omitempty"`
}

func (e *UnknownBlockError) Error() string {
	if e.Reference != "" {
		return fmt.Sprintf("unknown block %s", e.Reference)
	}
	return "unknown block"
}

// UnknownChunkError reports a chunk hash the node cannot resolve.
type UnknownChunkError struct {
	ChunkHash string `json:"chunk_hash,omitempty"`
}

func (e *UnknownChunkError) Error() string {
	return fmt.Sprintf("unknown chunk %s", e.ChunkHash)
}

// UnknownEpochError reports an epoch reference the node cannot resolve.
type UnknownEpochError struct{}

func (e *UnknownEpochError) Error() string { return "unknown epoch" }

// UnknownReceiptError reports a receipt id the node cannot resolve.
type UnknownReceiptError struct {
	ReceiptID string `json:"receipt_id,omitempty"`
}

func (e *UnknownReceiptError) Error() string {
	return fmt.Sprintf("unknown receipt %s", e.ReceiptID)
}

// ContractNotDeployedError reports a call against an account with no
// deployed contract.
type ContractNotDeployedError struct {
	AccountID string `json:"contract_account_id"`
}

func (e *ContractNotDeployedError) Error() string {
	return fmt.Sprintf("no contract deployed on account %q", e.AccountID)
}

// ContractStateTooLargeError reports a state view exceeding the node's
// response limit.
type ContractStateTooLargeError struct {
	AccountID string `json:"contract_account_id"`
}

func (e *ContractStateTooLargeError) Error() string {
	return fmt.Sprintf("contract state of account %q is too large to view", e.AccountID)
}

// ContractExecutionError reports a failure inside contract code.
type ContractExecutionError struct {
	AccountID string
	Method    string
	Message   string
}

func (e *ContractExecutionError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("execution of %s.%s failed: %s", e.AccountID, e.Method, e.Message)
	}
	return fmt.Sprintf("contract execution on %s failed: %s", e.AccountID, e.Message)
}

// MethodNotFoundError reports a view call against a method the contract does
// not export.
type MethodNotFoundError struct {
	AccountID string
	Method    string
}

func (e *MethodNotFoundError) Error() string {
	return fmt.Sprintf("contract %s has no method %q", e.AccountID, e.Method)
}

// ShardUnavailableError reports a shard the queried node does not track.
type ShardUnavailableError struct{}

func (e *ShardUnavailableError) Error() string { return "shard unavailable on this node" }

// NodeNotSyncedError reports a node that has no fully synced blocks yet.
type NodeNotSyncedError struct{}

func (e *NodeNotSyncedError) Error() string { return "node is not synced" }

// InvalidShardIDError reports an out-of-range shard identifier.
type InvalidShardIDError struct {
	ShardID uint64 `json:"shard_id"`
}

func (e *InvalidShardIDError) Error() string {
	return fmt.Sprintf("invalid shard id %d", e.ShardID)
}

// RequestTimeoutError reports a server-side handler timeout.
type RequestTimeoutError struct{}

func (e *RequestTimeoutError) Error() string { return "request timed out on the node" }

// ParseError reports a request the node could not parse.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("node failed to parse request: %s", e.Message)
}

// InternalError reports a generic node-side failure.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("node internal error: %s", e.Message)
}

// InvalidNonceError is the specially recoverable rejection of a transaction
// whose nonce does not exceed the access key's current one. AkNonce is the
// authoritative on-ledger value to reconcile against.
type InvalidNonceError struct {
	TxNonce uint64 `json:"tx_nonce"`
	AkNonce uint64 `json:"ak_nonce"`
}

func (e *InvalidNonceError) Error() string {
	return fmt.Sprintf("transaction nonce %d rejected, access key nonce is %d", e.TxNonce, e.AkNonce)
}

// InvalidTransactionError reports a transaction the node refused to accept.
// InvalidNonce is set when the rejection carries the recoverable
// invalid-nonce detail.
type InvalidTransactionError struct {
	InvalidNonce *InvalidNonceError
	Detail       json.RawMessage
}

func (e *InvalidTransactionError) Error() string {
	if e.InvalidNonce != nil {
		return e.InvalidNonce.Error()
	}
	return "invalid transaction"
}

func (e *InvalidTransactionError) Unwrap() error {
	if e.InvalidNonce != nil {
		return e.InvalidNonce
	}
	return nil
}

// ClassifyError decomposes an RPC error envelope into the typed taxonomy.
// Unrecognized causes are returned as the envelope itself, so no failure is
// ever swallowed.
func ClassifyError(e *Error) error {
	if e == nil {
		return nil
	}
	if e.Cause == nil {
		// Legacy servers put the handler detail into data without a cause.
		if inv, ok := extractInvalidNonce(e.Data); ok {
			return &InvalidTransactionError{InvalidNonce: inv, Detail: e.Data}
		}
		return e
	}
	info := e.Cause.Info
	switch e.Cause.Name {
	case CauseUnknownAccount:
		return unmarshalInto(info, &AccountNotFoundError{})
	case CauseInvalidAccount:
		return unmarshalInto(info, &InvalidAccountError{})
	case CauseUnknownBlock:
		return unmarshalInto(info, &UnknownBlockError{})
	case CauseUnknownChunk:
		return unmarshalInto(info, &UnknownChunkError{})
	case CauseUnknownEpoch:
		return &UnknownEpochError{}
	case CauseUnknownReceipt:
		return unmarshalInto(info, &UnknownReceiptError{})
	case CauseNoContractCode:
		return unmarshalInto(info, &ContractNotDeployedError{})
	case CauseTooLargeContractState:
		return unmarshalInto(info, &ContractStateTooLargeError{})
	case CauseContractExecution:
		var detail struct {
			AccountID string `json:"contract_account_id"`
			VMError   string `json:"vm_error"`
		}
		_ = json.Unmarshal(info, &detail)
		return &ContractExecutionError{AccountID: detail.AccountID, Message: detail.VMError}
	case CauseUnavailableShard:
		return &ShardUnavailableError{}
	case CauseNoSyncedBlocks:
		return &NodeNotSyncedError{}
	case CauseInvalidShardID:
		return unmarshalInto(info, &InvalidShardIDError{})
	case CauseInvalidTransaction:
		inv, _ := extractInvalidNonce(info)
		if inv == nil {
			inv, _ = extractInvalidNonce(e.Data)
		}
		detail := info
		if len(detail) == 0 {
			detail = e.Data
		}
		return &InvalidTransactionError{InvalidNonce: inv, Detail: detail}
	case CauseTimeout:
		return &RequestTimeoutError{}
	case CauseParseError:
		var detail struct {
			ErrorMessage string `json:"error_message"`
		}
		_ = json.Unmarshal(info, &detail)
		msg := detail.ErrorMessage
		if msg == "" {
			msg = e.Message
		}
		return &ParseError{Message: msg}
	case CauseInternalError:
		var detail struct {
			ErrorMessage string `json:"error_message"`
		}
		_ = json.Unmarshal(info, &detail)
		msg := detail.ErrorMessage
		if msg == "" {
			msg = e.Message
		}
		return &InternalError{Message: msg}
	default:
		return e
	}
}

// ClassifyCallError maps the unstructured error text of a failed view call
// into the taxonomy. Unknown texts become a ContractExecutionError carrying
// the raw message.
func ClassifyCallError(errText, accountID, method string) error {
	switch {
	case strings.Contains(errText, "CodeDoesNotExist") || strings.Contains(errText, "no contract code"):
		return &ContractNotDeployedError{AccountID: accountID}
	case strings.Contains(errText, "MethodResolveError") || strings.Contains(errText, "MethodNotFound"):
		return &MethodNotFoundError{AccountID: accountID, Method: method}
	default:
		return &ContractExecutionError{AccountID: accountID, Method: method, Message: errText}
	}
}

// unmarshalInto fills target from info, ignoring unmarshal failures: a typed
// error with empty fields still beats a raw envelope.
func unmarshalInto[T error](info json.RawMessage, target T) T {
	if len(info) > 0 {
		_ = json.Unmarshal(info, target)
	}
	return target
}

// extractInvalidNonce digs the InvalidNonce detail out of the two envelope
// shapes nodes produce.
func extractInvalidNonce(raw json.RawMessage) (*InvalidNonceError, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var wrapped struct {
		TxExecutionError *struct {
			InvalidTxError *struct {
				InvalidNonce *InvalidNonceError `json:"InvalidNonce"`
			} `json:"InvalidTxError"`
		} `json:"TxExecutionError"`
		InvalidTxError *struct {
			InvalidNonce *InvalidNonceError `json:"InvalidNonce"`
		} `json:"InvalidTxError"`
		InvalidNonce *InvalidNonceError `json:"InvalidNonce"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, false
	}
	switch {
	case wrapped.TxExecutionError != nil && wrapped.TxExecutionError.InvalidTxError != nil &&
		wrapped.TxExecutionError.InvalidTxError.InvalidNonce != nil:
		return wrapped.TxExecutionError.InvalidTxError.InvalidNonce, true
	case wrapped.InvalidTxError != nil && wrapped.InvalidTxError.InvalidNonce != nil:
		return wrapped.InvalidTxError.InvalidNonce, true
	case wrapped.InvalidNonce != nil:
		return wrapped.InvalidNonce, true
	}
	return nil, false
}

// retryableCodes is the closed set of JSON-RPC error codes worth retrying.
var retryableCodes = map[int64]bool{
	-32000: true, // generic server error
	-32603: true, // internal error
}

// IsRetryable reports whether err represents a transient server condition
// that a fresh attempt may clear. Structured protocol errors are final and
// never retryable.
func IsRetryable(err error) bool {
	switch e := err.(type) {
	case *RequestTimeoutError, *InternalError:
		return true
	case *Error:
		if e.Cause != nil {
			return e.Cause.Name == CauseTimeout || e.Cause.Name == CauseInternalError
		}
		return retryableCodes[e.Code]
	default:
		return false
	}
}

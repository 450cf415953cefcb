/*
Package result contains the response views returned by NEAR JSON-RPC
methods. Fields mirror the node's JSON layout; amounts arrive as decimal
strings and hashes as base58 strings, both decoded into the SDK's types.
*/
package result

import (
	"encoding/json"
	"fmt"

	"github.com/r-near/near-kit-go/pkg/crypto/keys"
	"github.com/r-near/near-kit-go/pkg/types"
)

type (
	// AccountView is the state of an account as returned by view_account.
	AccountView struct {
		Amount        types.Balance    `json:"amount"`
		Locked        types.Balance    `json:"locked"`
		CodeHash      types.CryptoHash `json:"code_hash"`
		StorageUsage  uint64           `json:"storage_usage"`
		StoragePaidAt uint64           `json:"storage_paid_at"`
		BlockHeight   uint64           `json:"block_height"`
		BlockHash     types.CryptoHash `json:"block_hash"`
	}

	// AccessKeyView is a single access key as returned by view_access_key.
	// Permission is either the string "FullAccess" or a FunctionCall object;
	// FunctionCall is nil for full-access keys.
	AccessKeyView struct {
		Nonce        uint64                  `json:"nonce"`
		FunctionCall *FunctionCallPermission `json:"-"`
		BlockHeight  uint64                  `json:"block_height"`
		BlockHash    types.CryptoHash        `json:"block_hash"`
	}

	// FunctionCallPermission describes a restricted access key.
	FunctionCallPermission struct {
		Allowance   *types.Balance  `json:"allowance"`
		ReceiverID  types.AccountID `json:"receiver_id"`
		MethodNames []string        `json:"method_names"`
	}

	// AccessKeyInfo pairs a public key with its access key in
	// view_access_key_list results.
	AccessKeyInfo struct {
		PublicKey keys.PublicKey `json:"public_key"`
		AccessKey AccessKeyView  `json:"access_key"`
	}

	// AccessKeyList is the result of view_access_key_list.
	AccessKeyList struct {
		Keys        []AccessKeyInfo  `json:"keys"`
		BlockHeight uint64           `json:"block_height"`
		BlockHash   types.CryptoHash `json:"block_hash"`
	}

	// CallResult is the result of a call_function view query. Result holds
	// the raw return value of the contract method; Error is the execution
	// failure text, empty on success.
	CallResult struct {
		Result      []byte           `json:"result"`
		Logs        []string         `json:"logs"`
		Error       string           `json:"error"`
		BlockHeight uint64           `json:"block_height"`
		BlockHash   types.CryptoHash `json:"block_hash"`
	}

	// BlockHeader is the subset of a block header the SDK consumes.
	BlockHeader struct {
		Height                uint64           `json:"height"`
		EpochID               types.CryptoHash `json:"epoch_id"`
		Hash                  types.CryptoHash `json:"hash"`
		PrevHash              types.CryptoHash `json:"prev_hash"`
		Timestamp             uint64           `json:"timestamp"`
		GasPrice              types.Balance    `json:"gas_price"`
		TotalSupply           types.Balance    `json:"total_supply"`
		LatestProtocolVersion uint32           `json:"latest_protocol_version"`
	}

	// ChunkHeader is the per-chunk summary carried in block results.
	ChunkHeader struct {
		ChunkHash      types.CryptoHash `json:"chunk_hash"`
		PrevBlockHash  types.CryptoHash `json:"prev_block_hash"`
		HeightCreated  uint64           `json:"height_created"`
		HeightIncluded uint64           `json:"height_included"`
		ShardID        uint64           `json:"shard_id"`
		GasUsed        types.Gas        `json:"gas_used"`
		GasLimit       types.Gas        `json:"gas_limit"`
	}

	// BlockView is the result of the block method.
	BlockView struct {
		Author types.AccountID `json:"author"`
		Header BlockHeader     `json:"header"`
		Chunks []ChunkHeader   `json:"chunks"`
	}

	// GasPrice is the result of the gas_price method.
	GasPrice struct {
		GasPrice types.Balance `json:"gas_price"`
	}

	// NodeVersion describes the node build in status results.
	NodeVersion struct {
		Version string `json:"version"`
		Build   string `json:"build"`
	}

	// SyncInfo describes the node's view of the chain head.
	SyncInfo struct {
		LatestBlockHash   types.CryptoHash `json:"latest_block_hash"`
		LatestBlockHeight uint64           `json:"latest_block_height"`
		LatestBlockTime   string           `json:"latest_block_time"`
		Syncing           bool             `json:"syncing"`
	}

	// NodeStatus is the result of the status method.
	NodeStatus struct {
		Version         NodeVersion `json:"version"`
		ChainID         string      `json:"chain_id"`
		ProtocolVersion uint32      `json:"protocol_version"`
		SyncInfo        SyncInfo    `json:"sync_info"`
	}
)

// UnmarshalJSON decodes the contract return value from the node's
// array-of-byte-integers representation.
func (r *CallResult) UnmarshalJSON(data []byte) error {
	aux := struct {
		Result      []int            `json:"result"`
		Logs        []string         `json:"logs"`
		Error       string           `json:"error"`
		BlockHeight uint64           `json:"block_height"`
		BlockHash   types.CryptoHash `json:"block_hash"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Logs = aux.Logs
	r.Error = aux.Error
	r.BlockHeight = aux.BlockHeight
	r.BlockHash = aux.BlockHash
	r.Result = nil
	if aux.Result != nil {
		r.Result = make([]byte, len(aux.Result))
		for i, b := range aux.Result {
			if b < 0 || b > 255 {
				return fmt.Errorf("invalid byte value %d at index %d in call result", b, i)
			}
			r.Result[i] = byte(b)
		}
	}
	return nil
}

// UnmarshalJSON decodes the permission field, which is either the string
// "FullAccess" or an object wrapping a FunctionCall permission.
func (a *AccessKeyView) UnmarshalJSON(data []byte) error {
	aux := struct {
		Nonce       uint64           `json:"nonce"`
		Permission  json.RawMessage  `json:"permission"`
		BlockHeight uint64           `json:"block_height"`
		BlockHash   types.CryptoHash `json:"block_hash"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.Nonce = aux.Nonce
	a.BlockHeight = aux.BlockHeight
	a.BlockHash = aux.BlockHash
	a.FunctionCall = nil
	if len(aux.Permission) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(aux.Permission, &s); err == nil {
		if s != "FullAccess" {
			return fmt.Errorf("unknown access key permission %q", s)
		}
		return nil
	}
	var obj struct {
		FunctionCall *FunctionCallPermission `json:"FunctionCall"`
	}
	if err := json.Unmarshal(aux.Permission, &obj); err != nil {
		return fmt.Errorf("invalid access key permission: %w", err)
	}
	if obj.FunctionCall == nil {
		return fmt.Errorf("access key permission object lacks FunctionCall")
	}
	a.FunctionCall = obj.FunctionCall
	return nil
}

// IsFullAccess reports whether the key carries the full-access permission.
func (a *AccessKeyView) IsFullAccess() bool {
	return a.FunctionCall == nil
}

// MarshalJSON renders the permission back into the node's representation.
func (a AccessKeyView) MarshalJSON() ([]byte, error) {
	var permission any = "FullAccess"
	if a.FunctionCall != nil {
		permission = map[string]*FunctionCallPermission{"FunctionCall": a.FunctionCall}
	}
	return json.Marshal(map[string]any{
		"nonce":        a.Nonce,
		"permission":   permission,
		"block_height": a.BlockHeight,
		"block_hash":   a.BlockHash,
	})
}

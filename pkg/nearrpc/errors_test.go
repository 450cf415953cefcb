package nearrpc

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(code int64, cause string, info string) *Error {
	e := &Error{Code: code, Message: "handler error", Name: "HANDLER_ERROR"}
	if cause != "" {
		e.Cause = &ErrorCause{Name: cause}
		if info != "" {
			e.Cause.Info = json.RawMessage(info)
		}
	}
	return e
}

func TestClassifyError(t *testing.T) {
	require.NoError(t, ClassifyError(nil))

	err := ClassifyError(envelope(-32000, CauseUnknownAccount, `{"requested_account_id":"ghost.test"}`))
	var acc *AccountNotFoundError
	require.ErrorAs(t, err, &acc)
	assert.Equal(t, "ghost.test", acc.AccountID)

	err = ClassifyError(envelope(-32000, CauseNoContractCode, `{"contract_account_id":"bare.test"}`))
	var noCode *ContractNotDeployedError
	require.ErrorAs(t, err, &noCode)
	assert.Equal(t, "bare.test", noCode.AccountID)

	err = ClassifyError(envelope(-32000, CauseContractExecution, `{"contract_account_id":"c.test","vm_error":"panicked"}`))
	var exec *ContractExecutionError
	require.ErrorAs(t, err, &exec)
	assert.Equal(t, "c.test", exec.AccountID)
	assert.Equal(t, "panicked", exec.Message)

	err = ClassifyError(envelope(-32000, CauseTimeout, ""))
	var timeout *RequestTimeoutError
	require.ErrorAs(t, err, &timeout)

	err = ClassifyError(envelope(-32603, CauseInternalError, `{"error_message":"db on fire"}`))
	var internal *InternalError
	require.ErrorAs(t, err, &internal)
	assert.Equal(t, "db on fire", internal.Message)

	err = ClassifyError(envelope(-32000, CauseNoSyncedBlocks, ""))
	var notSynced *NodeNotSyncedError
	require.ErrorAs(t, err, &notSynced)

	// Unknown causes surface the envelope itself, nothing is swallowed.
	raw := envelope(-32000, "BRAND_NEW_CAUSE", "")
	err = ClassifyError(raw)
	var env *Error
	require.ErrorAs(t, err, &env)
	assert.Equal(t, raw, env)
}

func TestClassifyInvalidNonce(t *testing.T) {
	info := `{"TxExecutionError":{"InvalidTxError":{"InvalidNonce":{"tx_nonce":5,"ak_nonce":11}}}}`
	err := ClassifyError(envelope(-32000, CauseInvalidTransaction, info))

	var invalidTx *InvalidTransactionError
	require.ErrorAs(t, err, &invalidTx)
	require.NotNil(t, invalidTx.InvalidNonce)

	// The nonce detail is reachable through Unwrap for reconciliation.
	var nonce *InvalidNonceError
	require.ErrorAs(t, err, &nonce)
	assert.EqualValues(t, 5, nonce.TxNonce)
	assert.EqualValues(t, 11, nonce.AkNonce)

	// The shallower envelope shapes decode too.
	for _, shape := range []string{
		`{"InvalidTxError":{"InvalidNonce":{"tx_nonce":1,"ak_nonce":2}}}`,
		`{"InvalidNonce":{"tx_nonce":1,"ak_nonce":2}}`,
	} {
		err = ClassifyError(envelope(-32000, CauseInvalidTransaction, shape))
		require.ErrorAs(t, err, &nonce, shape)
		assert.EqualValues(t, 2, nonce.AkNonce)
	}

	// Without the nonce detail the rejection is still typed but final.
	err = ClassifyError(envelope(-32000, CauseInvalidTransaction, `{"InvalidTxError":"Expired"}`))
	require.ErrorAs(t, err, &invalidTx)
	assert.Nil(t, invalidTx.InvalidNonce)
	assert.False(t, errors.As(err, &nonce))
}

func TestClassifyCallError(t *testing.T) {
	err := ClassifyCallError("wasm execution failed with error: FunctionCallError(MethodResolveError(MethodNotFound))", "c.test", "missing")
	var notFound *MethodNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.Method)

	err = ClassifyCallError("CodeDoesNotExist: contract code for account bare.test", "bare.test", "get")
	var noCode *ContractNotDeployedError
	require.ErrorAs(t, err, &noCode)

	err = ClassifyCallError("Smart contract panicked: overflow", "c.test", "add")
	var exec *ContractExecutionError
	require.ErrorAs(t, err, &exec)
	assert.Equal(t, "Smart contract panicked: overflow", exec.Message)
}

func TestIsRetryable(t *testing.T) {
	retryable := []error{
		ClassifyError(envelope(-32000, CauseTimeout, "")),
		ClassifyError(envelope(-32603, CauseInternalError, "")),
		envelope(-32000, "", ""),
		envelope(-32603, "", ""),
	}
	for _, err := range retryable {
		assert.True(t, IsRetryable(err), err)
	}

	final := []error{
		nil,
		ClassifyError(envelope(-32000, CauseUnknownAccount, `{}`)),
		ClassifyError(envelope(-32000, CauseInvalidTransaction, `{}`)),
		ClassifyError(envelope(-32000, CauseNoSyncedBlocks, "")),
		envelope(-32700, "", ""),
		errors.New("some transport mess"),
	}
	for _, err := range final {
		assert.False(t, IsRetryable(err), err)
	}
}

func TestErrorEnvelopeIs(t *testing.T) {
	a := envelope(-32000, CauseTimeout, "")
	b := envelope(-32000, CauseTimeout, `{"x":1}`)
	c := envelope(-32000, CauseUnknownBlock, "")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
	assert.False(t, errors.Is(a, envelope(-32603, CauseTimeout, "")))
}

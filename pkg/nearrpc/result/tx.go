package result

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/r-near/near-kit-go/pkg/types"
)

// TxExecutionStatus is the wait condition accepted by send_tx and tx status
// methods: how far through the pipeline the node should track the
// transaction before responding.
type TxExecutionStatus string

// Wait conditions ordered from weakest to strongest.
const (
	TxStatusNone               TxExecutionStatus = "NONE"
	TxStatusIncluded           TxExecutionStatus = "INCLUDED"
	TxStatusExecutedOptimistic TxExecutionStatus = "EXECUTED_OPTIMISTIC"
	TxStatusIncludedFinal      TxExecutionStatus = "INCLUDED_FINAL"
	TxStatusExecuted           TxExecutionStatus = "EXECUTED"
	TxStatusFinal              TxExecutionStatus = "FINAL"
)

type (
	// ExecutionStatus is the outcome of one transaction or receipt. Exactly
	// one field is meaningful: SuccessValue carries the decoded return value
	// (present and possibly empty on success), SuccessReceiptID points at
	// the receipt the work was delegated to, Failure carries the raw error
	// object.
	ExecutionStatus struct {
		SuccessValue     []byte
		hasSuccessValue  bool
		SuccessReceiptID *types.CryptoHash
		Failure          json.RawMessage
	}

	// ExecutionOutcome describes one transaction or receipt execution.
	ExecutionOutcome struct {
		Logs        []string           `json:"logs"`
		ReceiptIDs  []types.CryptoHash `json:"receipt_ids"`
		GasBurnt    types.Gas          `json:"gas_burnt"`
		TokensBurnt types.Balance      `json:"tokens_burnt"`
		ExecutorID  types.AccountID    `json:"executor_id"`
		Status      ExecutionStatus    `json:"status"`
	}

	// ExecutionOutcomeWithID pairs an outcome with the hash of the
	// transaction or receipt that produced it.
	ExecutionOutcomeWithID struct {
		ID      types.CryptoHash `json:"id"`
		Outcome ExecutionOutcome `json:"outcome"`
	}

	// FinalExecutionOutcome is the result of submitting a transaction and of
	// tx status queries.
	FinalExecutionOutcome struct {
		Status             ExecutionStatus          `json:"status"`
		Transaction        json.RawMessage          `json:"transaction"`
		TransactionOutcome ExecutionOutcomeWithID   `json:"transaction_outcome"`
		ReceiptsOutcome    []ExecutionOutcomeWithID `json:"receipts_outcome"`
	}
)

// Succeeded reports whether the final status carries a success value.
func (s *ExecutionStatus) Succeeded() bool {
	return s.hasSuccessValue
}

// UnmarshalJSON decodes the status object, which is either the string
// "NotStarted"/"Started" or an object with exactly one of SuccessValue
// (base64), SuccessReceiptId (base58 hash) or Failure.
func (s *ExecutionStatus) UnmarshalJSON(data []byte) error {
	*s = ExecutionStatus{}
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		switch tag {
		case "NotStarted", "Started", "Unknown", "Pending":
			return nil
		}
		return fmt.Errorf("unknown execution status %q", tag)
	}
	aux := struct {
		SuccessValue     *string         `json:"SuccessValue"`
		SuccessReceiptID *string         `json:"SuccessReceiptId"`
		Failure          json.RawMessage `json:"Failure"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	switch {
	case aux.SuccessValue != nil:
		v, err := base64.StdEncoding.DecodeString(*aux.SuccessValue)
		if err != nil {
			return fmt.Errorf("invalid SuccessValue: %w", err)
		}
		s.SuccessValue = v
		s.hasSuccessValue = true
	case aux.SuccessReceiptID != nil:
		h, err := types.CryptoHashFromString(*aux.SuccessReceiptID)
		if err != nil {
			return fmt.Errorf("invalid SuccessReceiptId: %w", err)
		}
		s.SuccessReceiptID = &h
	case len(aux.Failure) != 0:
		s.Failure = aux.Failure
	}
	return nil
}

// MarshalJSON renders the status back into the node's representation.
func (s ExecutionStatus) MarshalJSON() ([]byte, error) {
	switch {
	case s.hasSuccessValue:
		return json.Marshal(map[string]string{
			"SuccessValue": base64.StdEncoding.EncodeToString(s.SuccessValue),
		})
	case s.SuccessReceiptID != nil:
		return json.Marshal(map[string]string{
			"SuccessReceiptId": s.SuccessReceiptID.String(),
		})
	case len(s.Failure) != 0:
		return json.Marshal(map[string]json.RawMessage{"Failure": s.Failure})
	default:
		return json.Marshal("NotStarted")
	}
}

// FailureError converts a failed status into an error, nil when the status
// is not a failure.
func (s *ExecutionStatus) FailureError() error {
	if len(s.Failure) == 0 {
		return nil
	}
	return fmt.Errorf("transaction execution failed: %s", string(s.Failure))
}

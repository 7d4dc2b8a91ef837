package harness

import (
	"fmt"

	"github.com/roach88/wcprobe/internal/session"
)

// ValidationResult reports whether a session is usable. On success Error is
// empty; on failure only Error is set.
type ValidationResult struct {
	Valid       bool            `json:"valid"`
	AccountID   string          `json:"account_id,omitempty"`
	Network     session.Network `json:"network,omitempty"`
	SignerCount int             `json:"signer_count,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// String renders the result the way the operator console shows it.
func (v ValidationResult) String() string {
	if !v.Valid {
		return "invalid connection: " + v.Error
	}
	return fmt.Sprintf("%s on %s (%d signer(s))", v.AccountID, v.Network, v.SignerCount)
}

// ValidateConnection checks that client has an account, that its network
// agrees with the account's, and that at least one signer is attached. Only
// synchronous read accessors are called. It never panics.
func ValidateConnection(client session.Client) (result ValidationResult) {
	defer func() {
		if p := recover(); p != nil {
			result = ValidationResult{Error: fmt.Sprintf("validation panicked: %v", p)}
		}
	}()

	if client == nil {
		return ValidationResult{Error: "no session client"}
	}
	info := client.AccountInfo()
	if info == nil {
		return ValidationResult{Error: "No account info available"}
	}
	network := client.Network()
	if network != info.Network {
		return ValidationResult{Error: fmt.Sprintf("Network mismatch: %s vs %s", network, info.Network)}
	}
	signers := client.Signers()
	if len(signers) == 0 {
		return ValidationResult{Error: "No signers available"}
	}
	return ValidationResult{
		Valid:       true,
		AccountID:   info.AccountID,
		Network:     network,
		SignerCount: len(signers),
	}
}

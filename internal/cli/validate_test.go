package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDefaultSandbox(t *testing.T) {
	opts := newTestRootOptions(t)

	stdout, _, err := execute(NewValidateCommand(opts))
	require.NoError(t, err)
	assert.Equal(t, "Connection valid: 0.0.1001 on testnet (1 signer(s))\n", stdout)
}

func TestValidateNoSigners(t *testing.T) {
	opts := newTestRootOptions(t)
	opts.ConfigPath = writeConfig(t, "sandbox:\n  signers: []\n")

	stdout, _, err := execute(NewValidateCommand(opts))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "Connection invalid: No signers available\n", stdout)
}

func TestValidateJSON(t *testing.T) {
	opts := newTestRootOptions(t)
	opts.Format = "json"
	opts.ConfigPath = writeConfig(t, "sandbox:\n  account_id: \"0.0.2002\"\n  network: previewnet\n")

	stdout, _, err := execute(NewValidateCommand(opts))
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Valid       bool   `json:"valid"`
			AccountID   string `json:"account_id"`
			Network     string `json:"network"`
			SignerCount int    `json:"signer_count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, "0.0.2002", resp.Data.AccountID)
	assert.Equal(t, "previewnet", resp.Data.Network)
	assert.Equal(t, 1, resp.Data.SignerCount)
}

func TestValidateBadConfig(t *testing.T) {
	opts := newTestRootOptions(t)
	opts.Format = "json"
	opts.ConfigPath = writeConfig(t, "log_level: loud\n")

	stdout, _, err := execute(NewValidateCommand(opts))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeConfig, resp.Error.Code)
}

func TestValidateWithProfile(t *testing.T) {
	opts := newTestRootOptions(t)
	opts.Profile = writeConfig(t, "account_id: \"0.0.2002\"\nnetwork: previewnet\nsigners:\n  - account_id: \"0.0.2002\"\n")

	stdout, _, err := execute(NewValidateCommand(opts))
	require.NoError(t, err)
	assert.Equal(t, "Connection valid: 0.0.2002 on previewnet (1 signer(s))\n", stdout)
}

func TestValidateProfileOverridesConfigSandbox(t *testing.T) {
	opts := newTestRootOptions(t)
	opts.ConfigPath = writeConfig(t, "sandbox:\n  signers: []\n")
	opts.Profile = writeConfig(t, "account_id: \"0.0.1001\"\n")

	stdout, _, err := execute(NewValidateCommand(opts))
	require.NoError(t, err)
	assert.Contains(t, stdout, "Connection valid: 0.0.1001")
}

func TestValidateMissingProfile(t *testing.T) {
	opts := newTestRootOptions(t)
	opts.Profile = "testdata/does_not_exist.yaml"

	stdout, _, err := execute(NewValidateCommand(opts))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "Error [E002]")
	assert.Contains(t, err.Error(), "failed to read profile file")
}

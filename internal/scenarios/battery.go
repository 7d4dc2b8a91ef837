// Package scenarios declares the fixed edge-case battery run against a
// wallet session.
package scenarios

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/wcprobe/internal/harness"
	"github.com/roach88/wcprobe/internal/logging"
	"github.com/roach88/wcprobe/internal/session"
)

// SuiteName names the battery in reports and run history.
const SuiteName = "edge-cases"

// Case groups of the default battery.
const (
	GroupConnection  = "connection"
	GroupTransaction = "transaction"
	GroupAccount     = "account"
	GroupMessage     = "message"
)

// Opt-in groups. Their cases run only when the group is selected by name.
const (
	GroupNode      = "node"
	GroupReconnect = "reconnect"
)

// Inputs used by the battery.
const (
	NonExistentTopicID = "0.0.999999999999"
	UnknownNodeID      = "0.0.999999999"
	KnownNodeID        = "0.0.3"
	PlaceholderTopicID = "0.0.123456"
	InvalidAccountID   = "invalid-account-id"
	SpecialMessage     = "🚀 Test 特殊文字 <script>alert(\"xss\")</script> \n\t\r"
	LongMessageBytes   = 2000
	RapidSubmissions   = 3
	BalanceChecks      = 5
)

// Battery builds the default edge-case suite. caps and client must wrap the
// same session; log receives the battery's own diagnostic lines.
func Battery(caps *session.Capabilities, client session.Client, log *logging.Logger) *harness.Suite {
	b := newBattery(caps, client, log)
	return harness.MustSuite(SuiteName, b.defaultCases()...)
}

// Extended builds the default battery followed by the opt-in groups.
func Extended(caps *session.Capabilities, client session.Client, log *logging.Logger) *harness.Suite {
	b := newBattery(caps, client, log)
	return harness.MustSuite(SuiteName, append(b.defaultCases(), b.optInCases()...)...)
}

// Select returns the default battery when groups is empty, otherwise the
// cases of the named groups, opt-in groups included.
func Select(caps *session.Capabilities, client session.Client, log *logging.Logger, groups ...string) (*harness.Suite, error) {
	if len(groups) == 0 {
		return Battery(caps, client, log), nil
	}
	return Extended(caps, client, log).Select(groups...)
}

func newBattery(caps *session.Capabilities, client session.Client, log *logging.Logger) *battery {
	b := &battery{caps: caps, client: client, log: log}
	if b.log == nil {
		b.log = logging.Discard()
	}
	return b
}

func (b *battery) defaultCases() []harness.Case {
	topic := []string{harness.ParamTopicID}
	return []harness.Case{
		{Name: "Account info available", Group: GroupConnection, Expected: harness.ExpectSuccess, Run: b.accountInfo},
		{Name: "Network detection consistency", Group: GroupConnection, Expected: harness.ExpectSuccess, Run: b.networkConsistency},
		{Name: "Signer persistence across multiple calls", Group: GroupConnection, Expected: harness.ExpectSuccess, Run: b.signerPersistence},
		{Name: "Account balance query", Group: GroupConnection, Expected: harness.ExpectSuccess, Run: b.balance},

		{Name: "Create topic", Group: GroupTransaction, Expected: harness.ExpectSuccess, Run: b.createTopic},
		{Name: "Transaction without required fields", Group: GroupTransaction, Expected: harness.ExpectError, Run: b.emptyTransaction},
		{Name: "Transaction with invalid node account IDs", Group: GroupTransaction, Expected: harness.ExpectError, Run: b.invalidNodes},

		{Name: "Invalid account ID format", Group: GroupAccount, Expected: harness.ExpectError, Run: b.invalidAccount},
		{Name: "Multiple simultaneous balance checks", Group: GroupAccount, Expected: harness.ExpectSuccess, Run: b.simultaneousBalances},

		{Name: "Submit to non-existent topic", Group: GroupMessage, Expected: harness.ExpectError, Run: b.nonExistentTopic},
		{Name: "Fetch messages from empty topic", Group: GroupMessage, Expected: harness.ExpectEither, Run: b.emptyTopicMessages},
		{Name: "Null and empty parameters", Group: GroupMessage, Expected: harness.ExpectSuccess, Run: b.nullParameters},

		{Name: "Submit empty message", Group: GroupMessage, Expected: harness.ExpectEither, Requires: topic, Run: b.emptyMessage},
		{Name: "Submit message with special characters", Group: GroupMessage, Expected: harness.ExpectSuccess, Requires: topic, Run: b.specialCharacters},
		{Name: "Submit very long message", Group: GroupMessage, Expected: harness.ExpectError, Requires: topic, Run: b.longMessage},
		{Name: "Rapid consecutive transactions", Group: GroupMessage, Expected: harness.ExpectSuccess, Requires: topic, Run: b.rapidTransactions},
	}
}

func (b *battery) optInCases() []harness.Case {
	topic := []string{harness.ParamTopicID}
	return []harness.Case{
		{Name: "Transaction with auto-configured nodes", Group: GroupNode, Expected: harness.ExpectSuccess, Requires: topic, Run: b.autoNodes},
		{Name: "Transaction with explicit valid node account", Group: GroupNode, Expected: harness.ExpectSuccess, Requires: topic, Run: b.explicitNode},

		{Name: "Reconnect keeps account", Group: GroupReconnect, Expected: harness.ExpectSuccess, Run: b.reconnect},
	}
}

type battery struct {
	caps   *session.Capabilities
	client session.Client
	log    *logging.Logger
}

func (b *battery) accountInfo(ctx context.Context, _ harness.Params) (any, error) {
	info := b.client.AccountInfo()
	if info == nil {
		return nil, errors.New("account info should be available")
	}
	return *info, nil
}

func (b *battery) networkConsistency(ctx context.Context, _ harness.Params) (any, error) {
	configured := b.client.Network()
	info := b.client.AccountInfo()
	if info == nil {
		return nil, errors.New("account info should be available")
	}
	if configured != info.Network {
		return nil, fmt.Errorf("network mismatch: %s vs %s", configured, info.Network)
	}
	return configured, nil
}

func (b *battery) signerPersistence(ctx context.Context, _ harness.Params) (any, error) {
	first := b.client.AccountInfo()
	second := b.client.AccountInfo()
	if first == nil || second == nil {
		return nil, errors.New("account info should be available")
	}
	if first.AccountID != second.AccountID {
		return nil, fmt.Errorf("account ID changed between calls: %s vs %s", first.AccountID, second.AccountID)
	}
	if len(b.client.Signers()) == 0 {
		return nil, errors.New("no signers attached to the session")
	}
	return first.AccountID, nil
}

func (b *battery) balance(ctx context.Context, _ harness.Params) (any, error) {
	bal, err := b.caps.Balance(ctx)
	if err != nil {
		return nil, err
	}
	if bal < 0 {
		return nil, fmt.Errorf("negative balance %g", bal)
	}
	return bal, nil
}

func (b *battery) createTopic(ctx context.Context, _ harness.Params) (any, error) {
	id, err := b.caps.CreateTopic(ctx, "wcprobe edge-case topic")
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, errors.New("create topic returned an empty topic ID")
	}
	return id, nil
}

func (b *battery) emptyTransaction(ctx context.Context, _ harness.Params) (any, error) {
	return b.caps.Execute(ctx, session.Transaction{})
}

func (b *battery) invalidNodes(ctx context.Context, _ harness.Params) (any, error) {
	return b.caps.Execute(ctx, session.Transaction{
		TopicID:        PlaceholderTopicID,
		Message:        []byte("test"),
		NodeAccountIDs: []string{UnknownNodeID},
	})
}

func (b *battery) invalidAccount(ctx context.Context, _ harness.Params) (any, error) {
	return b.caps.RequestAccount(ctx, InvalidAccountID)
}

func (b *battery) simultaneousBalances(ctx context.Context, _ harness.Params) (any, error) {
	v, err := harness.AllOf(BalanceChecks, func(ctx context.Context) (any, error) {
		return b.caps.Balance(ctx)
	})(ctx)
	if err != nil {
		return nil, err
	}
	res := v.(harness.FanOutResult)
	if distinct := distinctBalances(res.Values()); len(distinct) != 1 {
		b.log.Warn("Warning: Got different balances: "+strings.Join(distinct, ", "), "balances", distinct)
	}
	return res, nil
}

func (b *battery) nonExistentTopic(ctx context.Context, _ harness.Params) (any, error) {
	return b.caps.Submit(ctx, NonExistentTopicID, []byte("test"))
}

func (b *battery) emptyTopicMessages(ctx context.Context, _ harness.Params) (any, error) {
	return b.caps.Messages(ctx, NonExistentTopicID, 0, true)
}

func (b *battery) nullParameters(ctx context.Context, _ harness.Params) (any, error) {
	var problems []string
	if _, err := b.caps.Submit(ctx, "", []byte("test")); err == nil {
		problems = append(problems, "accepted absent topic ID")
	}
	if _, err := b.caps.Submit(ctx, PlaceholderTopicID, nil); err == nil {
		problems = append(problems, "accepted absent message")
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("parameter validation issues: %s", strings.Join(problems, ", "))
	}
	return true, nil
}

func (b *battery) emptyMessage(ctx context.Context, p harness.Params) (any, error) {
	return b.caps.Submit(ctx, p[harness.ParamTopicID], []byte{})
}

func (b *battery) specialCharacters(ctx context.Context, p harness.Params) (any, error) {
	receipt, err := b.caps.Submit(ctx, p[harness.ParamTopicID], []byte(SpecialMessage))
	if err != nil {
		return nil, err
	}
	if receipt.TopicSequenceNumber == 0 {
		return nil, errors.New("failed to submit message with special characters")
	}
	return receipt, nil
}

func (b *battery) longMessage(ctx context.Context, p harness.Params) (any, error) {
	return b.caps.Submit(ctx, p[harness.ParamTopicID], []byte(strings.Repeat("A", LongMessageBytes)))
}

func (b *battery) rapidTransactions(ctx context.Context, p harness.Params) (any, error) {
	topicID := p[harness.ParamTopicID]
	v, err := harness.AnyOf(RapidSubmissions, func(ctx context.Context) (any, error) {
		receipt, err := b.caps.Submit(ctx, topicID, []byte("Rapid test"))
		if err != nil {
			return nil, err
		}
		if receipt.TopicSequenceNumber == 0 {
			return nil, errors.New("receipt has no sequence number")
		}
		return receipt, nil
	})(ctx)
	if err != nil {
		return nil, err
	}
	res := v.(harness.FanOutResult)
	b.log.Info(fmt.Sprintf("%d/%d rapid transactions succeeded", res.Succeeded, RapidSubmissions))
	return res, nil
}

func (b *battery) autoNodes(ctx context.Context, p harness.Params) (any, error) {
	// No node IDs: the connector must pick the nodes itself.
	return b.executeOnTopic(ctx, session.Transaction{
		TopicID: p[harness.ParamTopicID],
		Message: []byte("Auto node test"),
	})
}

func (b *battery) explicitNode(ctx context.Context, p harness.Params) (any, error) {
	return b.executeOnTopic(ctx, session.Transaction{
		TopicID:        p[harness.ParamTopicID],
		Message:        []byte("Explicit node test"),
		NodeAccountIDs: []string{KnownNodeID},
	})
}

func (b *battery) executeOnTopic(ctx context.Context, tx session.Transaction) (any, error) {
	receipt, err := b.caps.Execute(ctx, tx)
	if err != nil {
		return nil, err
	}
	if receipt.TopicSequenceNumber == 0 {
		return nil, errors.New("receipt has no sequence number")
	}
	b.log.Info(fmt.Sprintf("Transaction executed: sequence %d", receipt.TopicSequenceNumber),
		"topic_id", receipt.TopicID, "nodes", len(tx.NodeAccountIDs))
	return receipt, nil
}

func (b *battery) reconnect(ctx context.Context, _ harness.Params) (any, error) {
	before := b.client.AccountInfo()
	if before == nil {
		return nil, errors.New("account info should be available before reconnecting")
	}
	if err := b.client.Disconnect(ctx); err != nil {
		return nil, fmt.Errorf("disconnect: %w", err)
	}
	if err := b.client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("reconnect: %w", err)
	}
	after := b.client.AccountInfo()
	if after == nil {
		return nil, errors.New("account info unavailable after reconnecting")
	}
	if after.AccountID != before.AccountID || after.Network != before.Network {
		return nil, fmt.Errorf("account changed across reconnect: %s on %s vs %s on %s",
			before.AccountID, before.Network, after.AccountID, after.Network)
	}
	if _, err := b.caps.Balance(ctx); err != nil {
		return nil, fmt.Errorf("balance after reconnect: %w", err)
	}
	return *after, nil
}

func distinctBalances(values []any) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		var s string
		if f, ok := v.(float64); ok {
			s = strconv.FormatFloat(f, 'f', -1, 64)
		} else {
			s = fmt.Sprint(v)
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// Package sandbox implements session.Client in memory so the harness can run
// end-to-end without a wallet.
//
// A Client simulates one connected account on one ledger as described by a
// Profile: a balance, a set of signers, existing topics and consensus nodes,
// the topic message size limit, and optional injected faults and latency.
package sandbox

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/wcprobe/internal/session"
)

type topic struct {
	memo     string
	messages []session.Message
}

// Client is an in-memory session.Client. It is safe for concurrent use.
type Client struct {
	profile Profile

	mu        sync.Mutex
	connected bool
	balance   float64
	topics    map[string]*topic
	nodes     map[string]bool
	nextTopic int64

	inFlight atomic.Int32
}

var _ session.Client = (*Client)(nil)

// New creates a disconnected client for profile.
func New(profile Profile) (*Client, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sandbox profile: %w", err)
	}
	c := &Client{
		profile:   profile,
		balance:   profile.Balance,
		topics:    make(map[string]*topic, len(profile.Topics)),
		nodes:     make(map[string]bool, len(profile.Nodes)),
		nextTopic: 9001,
	}
	for _, id := range profile.Topics {
		c.topics[id] = &topic{}
	}
	for _, id := range profile.Nodes {
		c.nodes[id] = true
	}
	return c, nil
}

// Profile returns the profile the client was built from.
func (c *Client) Profile() Profile {
	return c.profile
}

// Connect establishes the session. An injected connect fault fails it.
func (c *Client) Connect(ctx context.Context) error {
	if err := c.pause(ctx); err != nil {
		return err
	}
	if err := c.fault(OpConnect); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = true
	return nil
}

// Disconnect ends the session. Ledger state such as topics and balance is kept.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return nil
}

// Connected reports whether a session is established.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// AccountInfo returns the profile account, or nil while disconnected.
func (c *Client) AccountInfo() *session.AccountInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return nil
	}
	return &session.AccountInfo{AccountID: c.profile.AccountID, Network: c.profile.Network}
}

// Network returns the profile network.
func (c *Client) Network() session.Network {
	return c.profile.Network
}

// Signers returns a copy of the profile signers, or nil while disconnected.
func (c *Client) Signers() []session.Signer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return nil
	}
	return append([]session.Signer(nil), c.profile.Signers...)
}

// AccountBalance returns the simulated balance.
func (c *Client) AccountBalance(ctx context.Context) (float64, error) {
	if err := c.begin(ctx, OpBalance); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balance, nil
}

// SubmitMessageToTopic appends message to an existing topic. At most
// MaxInFlight submissions may be pending at once when it is set.
func (c *Client) SubmitMessageToTopic(ctx context.Context, topicID string, message []byte) (session.Receipt, error) {
	if n := c.inFlight.Add(1); c.profile.MaxInFlight > 0 && int(n) > c.profile.MaxInFlight {
		c.inFlight.Add(-1)
		return session.Receipt{}, session.NewError(session.CodeBusy, "%d submissions already in flight", c.profile.MaxInFlight)
	}
	defer c.inFlight.Add(-1)

	if err := c.begin(ctx, OpSubmit); err != nil {
		return session.Receipt{}, err
	}
	return c.submit(topicID, message)
}

// ExecuteTransaction submits tx.Message to tx.TopicID. Every listed node must
// be one of the profile nodes; an empty list lets the sandbox pick its own.
func (c *Client) ExecuteTransaction(ctx context.Context, tx session.Transaction) (session.Receipt, error) {
	if err := c.begin(ctx, OpExecute); err != nil {
		return session.Receipt{}, err
	}
	if tx.TopicID == "" {
		return session.Receipt{}, session.NewError(session.CodeMissingTopicID, "transaction is missing topicId")
	}
	for _, node := range tx.NodeAccountIDs {
		if !ValidEntityID(node) || !c.nodes[node] {
			return session.Receipt{}, &session.Error{
				Code:    session.CodeInvalidNodeAccount,
				Message: fmt.Sprintf("node account %s is not part of the %s network", node, c.profile.Network),
				Details: map[string]string{"node_account_id": node},
			}
		}
	}
	return c.submit(tx.TopicID, tx.Message)
}

// CreateTopic charges the topic fee and allocates a new topic ID.
func (c *Client) CreateTopic(ctx context.Context, memo string) (string, error) {
	if err := c.begin(ctx, OpCreateTopic); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.balance < c.profile.TopicFee {
		return "", session.NewError(session.CodeInsufficientPayerBalance,
			"balance %g below topic fee %g", c.balance, c.profile.TopicFee)
	}
	c.balance -= c.profile.TopicFee

	var id string
	for {
		id = fmt.Sprintf("0.0.%d", c.nextTopic)
		c.nextTopic++
		if _, taken := c.topics[id]; !taken {
			break
		}
	}
	c.topics[id] = &topic{memo: memo}
	return id, nil
}

// RequestAccount resolves id against the profile account and its signers.
func (c *Client) RequestAccount(ctx context.Context, id string) (session.AccountInfo, error) {
	if err := c.begin(ctx, OpRequestAccount); err != nil {
		return session.AccountInfo{}, err
	}
	if !ValidEntityID(id) {
		return session.AccountInfo{}, session.NewError(session.CodeInvalidAccountID, "account ID %q is not shard.realm.num", id)
	}
	if id == c.profile.AccountID {
		return session.AccountInfo{AccountID: id, Network: c.profile.Network}, nil
	}
	for _, s := range c.profile.Signers {
		if s.AccountID == id {
			return session.AccountInfo{AccountID: id, Network: c.profile.Network}, nil
		}
	}
	return session.AccountInfo{}, session.NewError(session.CodeInvalidAccountID, "account %s does not exist", id)
}

// Messages lists topic messages from sequence number start. Failures,
// including a missing session, are reported in the response Error.
func (c *Client) Messages(ctx context.Context, topicID string, start int64, descending bool) session.MessagesResponse {
	if err := c.pause(ctx); err != nil {
		return session.MessagesResponse{Error: err.Error()}
	}
	if !c.Connected() {
		return session.MessagesResponse{Error: session.NewError(session.CodeDisconnected, "no active session").Error()}
	}
	if code, ok := c.profile.Faults[OpMessages]; ok {
		return session.MessagesResponse{Error: fmt.Sprintf("injected fault: %s", code)}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.topics[topicID]
	if !ok {
		return session.MessagesResponse{Error: "topic not found"}
	}
	msgs := make([]session.Message, 0, len(t.messages))
	for _, m := range t.messages {
		if int64(m.SequenceNumber) >= start {
			msgs = append(msgs, m)
		}
	}
	if descending {
		sort.Slice(msgs, func(i, j int) bool { return msgs[i].SequenceNumber > msgs[j].SequenceNumber })
	}
	return session.MessagesResponse{Messages: msgs}
}

func (c *Client) submit(topicID string, message []byte) (session.Receipt, error) {
	if !ValidEntityID(topicID) {
		return session.Receipt{}, session.NewError(session.CodeInvalidTopicID, "topic ID %q is not shard.realm.num", topicID)
	}
	if message == nil {
		return session.Receipt{}, session.NewError(session.CodeInvalidTopicMessage, "message is required")
	}
	// Size is accounted on the NFC form the ledger stores.
	if size := len(norm.NFC.Bytes(message)); size > c.profile.MaxMessageBytes {
		return session.Receipt{}, session.NewError(session.CodeMessageSizeTooLarge,
			"message size %d exceeds limit %d", size, c.profile.MaxMessageBytes)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.topics[topicID]
	if !ok {
		return session.Receipt{}, &session.Error{
			Code:    session.CodeInvalidTopicID,
			Message: fmt.Sprintf("topic %s does not exist", topicID),
			Details: map[string]string{"topic_id": topicID},
		}
	}
	seq := uint64(len(t.messages) + 1)
	t.messages = append(t.messages, session.Message{
		SequenceNumber: seq,
		Contents:       append([]byte(nil), message...),
	})
	return session.Receipt{TopicID: topicID, TopicSequenceNumber: seq}, nil
}

// begin applies latency, the connection check and any injected fault for op.
func (c *Client) begin(ctx context.Context, op string) error {
	if err := c.pause(ctx); err != nil {
		return err
	}
	if !c.Connected() {
		return session.NewError(session.CodeDisconnected, "no active session")
	}
	return c.fault(op)
}

func (c *Client) fault(op string) error {
	if code, ok := c.profile.Faults[op]; ok {
		return session.NewError(code, "injected fault for %s", op)
	}
	return nil
}

func (c *Client) pause(ctx context.Context) error {
	if c.profile.Latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.profile.Latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

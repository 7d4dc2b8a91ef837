// Package session defines the capability surface of the wallet/ledger
// connector that wcprobe exercises.
//
// The connector itself (wallet pairing, signing, consensus) lives outside this
// module. Hosts construct one Client at their entry point and inject it into
// the harness, the connection validator and the scenario battery. Nothing in
// wcprobe reaches for a global connector instance.
//
// # Tagged results
//
// Client reports "not found" conditions in more than one shape: Messages
// returns a response carrying an Error field while the other capabilities
// return Go errors. Capabilities wraps a Client and normalizes every async
// capability into a (value, error) pair so the harness classifies a single
// result shape.
package session

import "context"

// Network identifies the ledger a session is attached to.
type Network string

const (
	NetworkMainnet    Network = "mainnet"
	NetworkTestnet    Network = "testnet"
	NetworkPreviewnet Network = "previewnet"
)

// String returns the network name.
func (n Network) String() string { return string(n) }

// AccountInfo is a snapshot of the connected account.
type AccountInfo struct {
	AccountID string  `json:"account_id" yaml:"account_id"`
	Network   Network `json:"network" yaml:"network"`
}

// Signer is a key attached to the session that can sign transactions.
type Signer struct {
	AccountID string `json:"account_id" yaml:"account_id"`
	PublicKey string `json:"public_key,omitempty" yaml:"public_key,omitempty"`
}

// Receipt is returned for every accepted topic message.
type Receipt struct {
	TopicID             string `json:"topic_id"`
	TopicSequenceNumber uint64 `json:"topic_sequence_number"`
}

// Transaction is a topic message submit transaction built by the caller.
//
// An empty NodeAccountIDs list asks the connector to select nodes itself.
type Transaction struct {
	TopicID        string   `json:"topic_id,omitempty"`
	Message        []byte   `json:"message,omitempty"`
	NodeAccountIDs []string `json:"node_account_ids,omitempty"`
}

// Message is a single topic message as reported by the mirror node.
type Message struct {
	SequenceNumber uint64 `json:"sequence_number"`
	Contents       []byte `json:"contents"`
}

// MessagesResponse is the raw mirror-node answer. Exactly one of Messages or
// Error is meaningful: a non-empty Error means the lookup failed.
type MessagesResponse struct {
	Messages []Message `json:"messages,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Client is the capability surface of a session-based wallet connector.
//
// Implementations are shared and long-lived. AccountBalance and
// SubmitMessageToTopic must be safe for concurrent use.
type Client interface {
	// Connect establishes a session.
	Connect(ctx context.Context) error

	// Disconnect tears the session down.
	Disconnect(ctx context.Context) error

	// AccountInfo returns a snapshot of the connected account, or nil when no
	// session is established. It does not perform network I/O.
	AccountInfo() *AccountInfo

	// AccountBalance queries the connected account's balance in hbar.
	AccountBalance(ctx context.Context) (float64, error)

	// Network returns the ledger the connector is configured for.
	Network() Network

	// Signers returns the signers attached to the session.
	Signers() []Signer

	// SubmitMessageToTopic submits message to topicID. A nil message means no
	// message was supplied; an empty non-nil slice is an empty message.
	SubmitMessageToTopic(ctx context.Context, topicID string, message []byte) (Receipt, error)

	// ExecuteTransaction signs and executes tx.
	ExecuteTransaction(ctx context.Context, tx Transaction) (Receipt, error)

	// CreateTopic creates a new topic and returns its ID.
	CreateTopic(ctx context.Context, memo string) (string, error)

	// RequestAccount looks up account id.
	RequestAccount(ctx context.Context, id string) (AccountInfo, error)

	// Messages fetches topic messages starting at sequence number start. It
	// never returns an error; failures are reported in MessagesResponse.Error.
	Messages(ctx context.Context, topicID string, start int64, descending bool) MessagesResponse
}

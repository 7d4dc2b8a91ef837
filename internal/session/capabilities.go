package session

import "context"

// Capabilities adapts a Client so every async capability returns a
// (value, error) pair.
//
// The zero value is not usable; construct with NewCapabilities.
type Capabilities struct {
	client Client
}

// NewCapabilities wraps client.
func NewCapabilities(client Client) *Capabilities {
	return &Capabilities{client: client}
}

// Client returns the wrapped client for synchronous accessors.
func (c *Capabilities) Client() Client {
	return c.client
}

// Balance returns the account balance.
func (c *Capabilities) Balance(ctx context.Context) (float64, error) {
	return c.client.AccountBalance(ctx)
}

// Submit submits a topic message.
func (c *Capabilities) Submit(ctx context.Context, topicID string, message []byte) (Receipt, error) {
	return c.client.SubmitMessageToTopic(ctx, topicID, message)
}

// Execute executes a transaction.
func (c *Capabilities) Execute(ctx context.Context, tx Transaction) (Receipt, error) {
	return c.client.ExecuteTransaction(ctx, tx)
}

// CreateTopic creates a topic.
func (c *Capabilities) CreateTopic(ctx context.Context, memo string) (string, error) {
	return c.client.CreateTopic(ctx, memo)
}

// RequestAccount looks up an account.
func (c *Capabilities) RequestAccount(ctx context.Context, id string) (AccountInfo, error) {
	return c.client.RequestAccount(ctx, id)
}

// Messages fetches topic messages. A response carrying an Error is turned
// into a TOPIC_NOT_FOUND *Error; a successful lookup always yields a non-nil
// slice, which may be empty.
func (c *Capabilities) Messages(ctx context.Context, topicID string, start int64, descending bool) ([]Message, error) {
	resp := c.client.Messages(ctx, topicID, start, descending)
	if resp.Error != "" {
		return nil, &Error{
			Code:    CodeTopicNotFound,
			Message: resp.Error,
			Details: map[string]string{"topic_id": topicID},
		}
	}
	if resp.Messages == nil {
		return []Message{}, nil
	}
	return resp.Messages, nil
}

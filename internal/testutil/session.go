package testutil

import (
	"context"
	"errors"

	"github.com/roach88/wcprobe/internal/session"
)

// StubSession is a session.Client whose behaviour is supplied per method.
// A nil function field falls back to a benign default: connected account
// 0.0.1001 on testnet with one signer, zero balance, and successful submits.
type StubSession struct {
	ConnectFn        func(ctx context.Context) error
	DisconnectFn     func(ctx context.Context) error
	AccountInfoFn    func() *session.AccountInfo
	AccountBalanceFn func(ctx context.Context) (float64, error)
	NetworkFn        func() session.Network
	SignersFn        func() []session.Signer
	SubmitFn         func(ctx context.Context, topicID string, message []byte) (session.Receipt, error)
	ExecuteFn        func(ctx context.Context, tx session.Transaction) (session.Receipt, error)
	CreateTopicFn    func(ctx context.Context, memo string) (string, error)
	RequestAccountFn func(ctx context.Context, id string) (session.AccountInfo, error)
	MessagesFn       func(ctx context.Context, topicID string, start int64, descending bool) session.MessagesResponse
}

var _ session.Client = (*StubSession)(nil)

// ErrStubUnimplemented is returned by StubSession methods that have no default.
var ErrStubUnimplemented = errors.New("stub: not implemented")

func (s *StubSession) Connect(ctx context.Context) error {
	if s.ConnectFn != nil {
		return s.ConnectFn(ctx)
	}
	return nil
}

func (s *StubSession) Disconnect(ctx context.Context) error {
	if s.DisconnectFn != nil {
		return s.DisconnectFn(ctx)
	}
	return nil
}

func (s *StubSession) AccountInfo() *session.AccountInfo {
	if s.AccountInfoFn != nil {
		return s.AccountInfoFn()
	}
	return &session.AccountInfo{AccountID: "0.0.1001", Network: session.NetworkTestnet}
}

func (s *StubSession) AccountBalance(ctx context.Context) (float64, error) {
	if s.AccountBalanceFn != nil {
		return s.AccountBalanceFn(ctx)
	}
	return 0, nil
}

func (s *StubSession) Network() session.Network {
	if s.NetworkFn != nil {
		return s.NetworkFn()
	}
	return session.NetworkTestnet
}

func (s *StubSession) Signers() []session.Signer {
	if s.SignersFn != nil {
		return s.SignersFn()
	}
	return []session.Signer{{AccountID: "0.0.1001"}}
}

func (s *StubSession) SubmitMessageToTopic(ctx context.Context, topicID string, message []byte) (session.Receipt, error) {
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, topicID, message)
	}
	return session.Receipt{TopicID: topicID, TopicSequenceNumber: 1}, nil
}

func (s *StubSession) ExecuteTransaction(ctx context.Context, tx session.Transaction) (session.Receipt, error) {
	if s.ExecuteFn != nil {
		return s.ExecuteFn(ctx, tx)
	}
	return session.Receipt{}, ErrStubUnimplemented
}

func (s *StubSession) CreateTopic(ctx context.Context, memo string) (string, error) {
	if s.CreateTopicFn != nil {
		return s.CreateTopicFn(ctx, memo)
	}
	return "", ErrStubUnimplemented
}

func (s *StubSession) RequestAccount(ctx context.Context, id string) (session.AccountInfo, error) {
	if s.RequestAccountFn != nil {
		return s.RequestAccountFn(ctx, id)
	}
	return session.AccountInfo{}, ErrStubUnimplemented
}

func (s *StubSession) Messages(ctx context.Context, topicID string, start int64, descending bool) session.MessagesResponse {
	if s.MessagesFn != nil {
		return s.MessagesFn(ctx, topicID, start, descending)
	}
	return session.MessagesResponse{}
}

package sandbox

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/wcprobe/internal/session"
)

// DefaultMaxMessageBytes is the single-chunk topic message limit.
const DefaultMaxMessageBytes = 1024

// Operation names accepted as Faults keys.
const (
	OpConnect        = "connect"
	OpBalance        = "balance"
	OpSubmit         = "submit"
	OpExecute        = "execute"
	OpCreateTopic    = "create_topic"
	OpRequestAccount = "request_account"
	OpMessages       = "messages"
)

var knownOps = map[string]bool{
	OpConnect: true, OpBalance: true, OpSubmit: true, OpExecute: true,
	OpCreateTopic: true, OpRequestAccount: true, OpMessages: true,
}

var entityIDPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// ValidEntityID reports whether id has the shard.realm.num form.
func ValidEntityID(id string) bool {
	return entityIDPattern.MatchString(id)
}

// Profile describes the simulated account and ledger.
type Profile struct {
	AccountID       string                       `yaml:"account_id" json:"account_id"`
	Network         session.Network              `yaml:"network" json:"network"`
	Balance         float64                      `yaml:"balance" json:"balance"`
	Signers         []session.Signer             `yaml:"signers" json:"signers"`
	Topics          []string                     `yaml:"topics" json:"topics"`
	Nodes           []string                     `yaml:"nodes" json:"nodes"`
	MaxMessageBytes int                          `yaml:"max_message_bytes" json:"max_message_bytes"`
	TopicFee        float64                      `yaml:"topic_fee" json:"topic_fee"`
	MaxInFlight     int                          `yaml:"max_in_flight" json:"max_in_flight"`
	Latency         time.Duration                `yaml:"latency" json:"latency"`
	Faults          map[string]session.ErrorCode `yaml:"faults,omitempty" json:"faults,omitempty"`
}

// DefaultProfile returns a healthy testnet account under which every
// battery case behaves as declared.
func DefaultProfile() Profile {
	return Profile{
		AccountID:       "0.0.1001",
		Network:         session.NetworkTestnet,
		Balance:         100,
		Signers:         []session.Signer{{AccountID: "0.0.1001", PublicKey: "302a300506032b6570032100sandbox"}},
		Topics:          []string{"0.0.5001"},
		Nodes:           []string{"0.0.3", "0.0.4", "0.0.5"},
		MaxMessageBytes: DefaultMaxMessageBytes,
		TopicFee:        1,
	}
}

// Validate checks the profile for values the sandbox cannot simulate.
func (p Profile) Validate() error {
	var errs []error
	if !ValidEntityID(p.AccountID) {
		errs = append(errs, fmt.Errorf("account_id %q is not shard.realm.num", p.AccountID))
	}
	switch p.Network {
	case session.NetworkMainnet, session.NetworkTestnet, session.NetworkPreviewnet:
	default:
		errs = append(errs, fmt.Errorf("network %q is not mainnet, testnet or previewnet", p.Network))
	}
	if p.Balance < 0 {
		errs = append(errs, fmt.Errorf("balance must not be negative"))
	}
	if p.TopicFee < 0 {
		errs = append(errs, fmt.Errorf("topic_fee must not be negative"))
	}
	if p.MaxMessageBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_message_bytes must be positive"))
	}
	if p.MaxInFlight < 0 {
		errs = append(errs, fmt.Errorf("max_in_flight must not be negative"))
	}
	if p.Latency < 0 {
		errs = append(errs, fmt.Errorf("latency must not be negative"))
	}
	for _, s := range p.Signers {
		if !ValidEntityID(s.AccountID) {
			errs = append(errs, fmt.Errorf("signer %q is not shard.realm.num", s.AccountID))
		}
	}
	for _, id := range p.Topics {
		if !ValidEntityID(id) {
			errs = append(errs, fmt.Errorf("topic %q is not shard.realm.num", id))
		}
	}
	for _, id := range p.Nodes {
		if !ValidEntityID(id) {
			errs = append(errs, fmt.Errorf("node %q is not shard.realm.num", id))
		}
	}
	ops := make([]string, 0, len(p.Faults))
	for op := range p.Faults {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	for _, op := range ops {
		if !knownOps[op] {
			errs = append(errs, fmt.Errorf("faults: unknown operation %q", op))
		}
	}
	return errors.Join(errs...)
}

// LoadProfile reads a YAML profile from path. Fields absent from the file
// keep their DefaultProfile values.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile file: %w", err)
	}
	p, err := ParseProfile(data)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParseProfile decodes a YAML profile. Unknown fields are rejected.
func ParseProfile(data []byte) (Profile, error) {
	p := DefaultProfile()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Profile{}, fmt.Errorf("failed to parse profile YAML: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("invalid profile: %w", err)
	}
	return p, nil
}

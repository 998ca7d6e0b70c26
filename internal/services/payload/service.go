package payload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"seahorse/internal/domain"
	"seahorse/internal/protocol/packet"
)

// DefaultConcurrency bounds parallel slot fetches in FetchFriendsData.
const DefaultConcurrency = 4

// timestampLayout matches JavaScript's Date.prototype.toISOString.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrEmptyMessage is returned by PostMessage for blank text.
var ErrEmptyMessage = errors.New("message is empty")

// Service implements domain.PayloadService.
type Service struct {
	keys domain.KeyManager
	reg  domain.Registry
	log  logrus.FieldLogger

	concurrency int
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option { return func(s *Service) { s.log = log } }

// WithConcurrency bounds parallel fetches. Values below one mean one.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n < 1 {
			n = 1
		}
		s.concurrency = n
	}
}

// WithClock overrides time.Now for message timestamps.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// New returns a Service that encrypts with keys and stores in reg.
func New(keys domain.KeyManager, reg domain.Registry, opts ...Option) *Service {
	s := &Service{
		keys:        keys,
		reg:         reg,
		log:         logrus.StandardLogger(),
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithFields(logrus.Fields{"component": "payload", "account": keys.Self()})
	return s
}

// Encrypt seals data for peer. It returns nil when no key is shared with
// peer or data cannot be serialised.
func (s *Service) Encrypt(data any, peer domain.AccountID) *domain.EncryptedPacket {
	key, ok := s.keys.SymmetricKey(peer)
	if !ok {
		s.log.WithField("peer", peer).Debug("no key for peer, not encrypting")
		return nil
	}
	p, err := packet.SealJSON(key, data)
	if err != nil {
		s.log.WithError(err).WithField("peer", peer).Warn("encrypt failed")
		return nil
	}
	return &p
}

// Decrypt opens p with the key shared with peer. It returns nil on any
// failure.
func (s *Service) Decrypt(p *domain.EncryptedPacket, peer domain.AccountID) json.RawMessage {
	if p == nil {
		return nil
	}
	key, ok := s.keys.SymmetricKey(peer)
	if !ok {
		s.log.WithField("peer", peer).Debug("no key for peer, not decrypting")
		return nil
	}
	pt, err := packet.Open(key, *p)
	if err != nil {
		s.log.WithError(err).WithField("peer", peer).Warn("decrypt failed")
		return nil
	}
	if !json.Valid(pt) {
		s.log.WithField("peer", peer).Warn("decrypted payload is not JSON")
		return nil
	}
	return json.RawMessage(pt)
}

// DecryptString parses a stored packet and decrypts it.
func (s *Service) DecryptString(raw string, peer domain.AccountID) json.RawMessage {
	p, err := packet.Parse(raw)
	if err != nil {
		s.log.WithError(err).WithField("peer", peer).Warn("stored packet is malformed")
		return nil
	}
	return s.Decrypt(&p, peer)
}

// sentinel is the value round-tripped by VerifyChannel.
type sentinel struct {
	Test      string `json:"test"`
	Nonce     string `json:"nonce"`
	Timestamp int64  `json:"timestamp"`
}

// VerifyChannel encrypts and decrypts a fresh sentinel with the key shared
// with peer and checks it comes back intact.
func (s *Service) VerifyChannel(peer domain.AccountID) error {
	if !s.keys.HasKeyFor(peer) {
		return domain.ErrNoSecureChannel
	}
	want := sentinel{Test: "verification", Nonce: uuid.NewString(), Timestamp: s.now().UnixMilli()}

	p := s.Encrypt(want, peer)
	if p == nil {
		return fmt.Errorf("channel with %s: encryption failed", peer)
	}
	raw := s.Decrypt(p, peer)
	if raw == nil {
		return fmt.Errorf("channel with %s: decryption failed", peer)
	}
	var got sentinel
	if err := json.Unmarshal(raw, &got); err != nil || got != want {
		return fmt.Errorf("channel with %s: round trip mismatch", peer)
	}
	return nil
}

// EncryptAndStore seals data for peer and overwrites the caller's slot.
func (s *Service) EncryptAndStore(ctx context.Context, data any, peer domain.AccountID) error {
	if !s.keys.HasKeyFor(peer) {
		return fmt.Errorf("%w: %s", domain.ErrNoSecureChannel, peer)
	}
	p := s.Encrypt(data, peer)
	if p == nil {
		return fmt.Errorf("encrypt payload for %s failed", peer)
	}
	raw, err := packet.Marshal(*p)
	if err != nil {
		return err
	}
	if err := s.reg.PutEncryptedSlot(ctx, s.keys.Self(), raw); err != nil {
		return fmt.Errorf("store encrypted slot: %w", err)
	}
	s.log.WithField("peer", peer).Info("stored encrypted data")
	return nil
}

// DecryptFetched reads peer's slot and decrypts it. A missing or unreadable
// slot yields nil without error; registry failures are returned.
func (s *Service) DecryptFetched(ctx context.Context, peer domain.AccountID) (json.RawMessage, error) {
	return s.decryptSlot(ctx, peer, peer)
}

func (s *Service) decryptSlot(ctx context.Context, owner, peer domain.AccountID) (json.RawMessage, error) {
	raw, ok, err := s.reg.GetEncryptedSlot(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("fetch slot of %s: %w", owner, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	return s.DecryptString(raw, peer), nil
}

// FetchFriendsData fetches and decrypts each peer's slot. Peers whose data
// cannot be fetched or read are logged and left out.
func (s *Service) FetchFriendsData(ctx context.Context, peers []domain.AccountID) map[domain.AccountID]json.RawMessage {
	var (
		mu  sync.Mutex
		out = make(map[domain.AccountID]json.RawMessage, len(peers))
		g   errgroup.Group
	)
	g.SetLimit(s.concurrency)

	for _, peer := range peers {
		g.Go(func() error {
			data, err := s.DecryptFetched(ctx, peer)
			if err != nil {
				s.log.WithError(err).WithField("peer", peer).Warn("fetch friend data failed")
				return nil
			}
			if data == nil {
				s.log.WithField("peer", peer).Debug("no readable data from friend")
				return nil
			}
			mu.Lock()
			out[peer] = data
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// PostMessage appends a chat message to the conversation with peer and
// stores the result in the caller's slot. The conversation is taken from
// peer's latest data, or from the caller's own slot when peer has shared
// nothing readable yet.
func (s *Service) PostMessage(ctx context.Context, peer domain.AccountID, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	if !s.keys.HasKeyFor(peer) {
		return fmt.Errorf("%w: %s", domain.ErrNoSecureChannel, peer)
	}

	existing, err := s.DecryptFetched(ctx, peer)
	if err != nil {
		return err
	}
	if existing == nil {
		if existing, err = s.decryptSlot(ctx, s.keys.Self(), peer); err != nil {
			return err
		}
	}

	doc := map[string]json.RawMessage{}
	if existing != nil {
		if err := json.Unmarshal(existing, &doc); err != nil {
			s.log.WithField("peer", peer).Warn("shared data is not an object, starting a new conversation")
			doc = map[string]json.RawMessage{}
		}
	}
	var msgs []domain.ChatMessage
	if raw, ok := doc["messages"]; ok {
		if err := json.Unmarshal(raw, &msgs); err != nil {
			s.log.WithError(err).WithField("peer", peer).Warn("discarding unreadable message history")
			msgs = nil
		}
	}
	msgs = append(msgs, domain.ChatMessage{Text: text, Timestamp: s.now().UTC().Format(timestampLayout)})

	encoded, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	doc["messages"] = encoded
	return s.EncryptAndStore(ctx, doc, peer)
}

// Compile-time assertion that Service implements domain.PayloadService.
var _ domain.PayloadService = (*Service)(nil)

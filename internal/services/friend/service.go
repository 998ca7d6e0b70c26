package friend

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"seahorse/internal/crypto"
	"seahorse/internal/domain"
	"seahorse/internal/protocol/handshake"
)

// ErrEmptyPeer is returned when an operation names no counterparty.
var ErrEmptyPeer = errors.New("peer account is required")

// Service implements domain.FriendService.
type Service struct {
	keys     domain.KeyManager
	reg      domain.Registry
	verifier domain.ChannelVerifier
	log      logrus.FieldLogger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option { return func(s *Service) { s.log = log } }

// New returns a Service for the account keys belongs to. verifier gates
// AcceptRequest: the accept is only published once it succeeds.
func New(keys domain.KeyManager, reg domain.Registry, verifier domain.ChannelVerifier, opts ...Option) *Service {
	s := &Service{keys: keys, reg: reg, verifier: verifier, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithFields(logrus.Fields{"component": "friend", "account": keys.Self()})
	return s
}

// SendRequest publishes a pending request to peer carrying a fresh
// pairwise key, which is stored locally first.
func (s *Service) SendRequest(ctx context.Context, peer domain.AccountID) (domain.FriendRequest, error) {
	self := s.keys.Self()
	switch {
	case peer == "":
		return domain.FriendRequest{}, ErrEmptyPeer
	case peer == self:
		return domain.FriendRequest{}, domain.ErrSelfRequest
	}

	outgoing, incoming, err := s.both(ctx, self, peer)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	if isStatus(outgoing, domain.StatusAccepted) || isStatus(incoming, domain.StatusAccepted) {
		return domain.FriendRequest{}, fmt.Errorf("%w: %s", domain.ErrAlreadyFriends, peer)
	}
	if isStatus(incoming, domain.StatusPending) {
		return domain.FriendRequest{}, fmt.Errorf("%w: %s", domain.ErrCrossedRequest, peer)
	}

	pub, err := s.keys.ExportPublicKey()
	if err != nil {
		return domain.FriendRequest{}, err
	}
	k, err := s.keys.GenerateSymmetricKey()
	if err != nil {
		return domain.FriendRequest{}, err
	}

	undo, err := s.replaceKey(peer, k)
	if err != nil {
		return domain.FriendRequest{}, err
	}

	req := domain.FriendRequest{
		From:         self,
		To:           peer,
		PublicKey:    pub,
		EncryptedKey: s.keys.EncodeTransportKey(k),
		Status:       domain.StatusPending,
	}
	if err := s.reg.PutFriendRequest(ctx, handshake.RequestID(self, peer), req); err != nil {
		undo()
		return domain.FriendRequest{}, fmt.Errorf("publish friend request: %w", err)
	}
	s.log.WithField("peer", peer).Info("friend request sent")
	return req, nil
}

// AcceptRequest adopts the key offered by from, verifies it locally and
// marks the request accepted. When verification fails the previous local
// key is restored and the registry is left untouched.
func (s *Service) AcceptRequest(ctx context.Context, from domain.AccountID) (domain.FriendRequest, error) {
	if from == "" {
		return domain.FriendRequest{}, ErrEmptyPeer
	}
	self := s.keys.Self()
	id := handshake.RequestID(from, self)

	req, ok, err := s.reg.GetFriendRequest(ctx, id)
	if err != nil {
		return domain.FriendRequest{}, fmt.Errorf("fetch request %s: %w", id, err)
	}
	if !ok {
		return domain.FriendRequest{}, fmt.Errorf("%w: %s", domain.ErrRequestNotFound, id)
	}
	next, err := handshake.Transition(req.Status, handshake.EventAccept)
	if err != nil {
		return domain.FriendRequest{}, fmt.Errorf("request %s: %w", id, err)
	}

	k, err := s.keys.DecodeTransportKey(req.EncryptedKey)
	if err != nil {
		return domain.FriendRequest{}, fmt.Errorf("request %s key: %w", id, err)
	}
	initiator, err := s.keys.ImportPublicKey(req.PublicKey)
	if err != nil {
		return domain.FriendRequest{}, fmt.Errorf("request %s public key: %w", id, err)
	}
	echo, err := s.keys.WrapKey(k, initiator)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	pub, err := s.keys.ExportPublicKey()
	if err != nil {
		return domain.FriendRequest{}, err
	}

	undo, err := s.replaceKey(from, k)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	if err := s.verifier.VerifyChannel(from); err != nil {
		undo()
		s.log.WithError(err).WithField("peer", from).Warn("key verification failed, request left pending")
		return domain.FriendRequest{}, fmt.Errorf("%w: %v", domain.ErrKeyExchangeVerificationFailed, err)
	}

	req.RecipientKey = pub
	req.RecipientEncryptedKey = echo
	req.Status = next
	if err := s.reg.PutFriendRequest(ctx, id, req); err != nil {
		undo()
		return domain.FriendRequest{}, fmt.Errorf("publish accept: %w", err)
	}
	s.log.WithField("peer", from).Info("friend request accepted")

	s.rejectCrossed(ctx, self, from)
	return req, nil
}

// rejectCrossed marks our own pending request to peer rejected, so a pair
// that requested each other concurrently settles on the accepted key.
func (s *Service) rejectCrossed(ctx context.Context, self, peer domain.AccountID) {
	id := handshake.RequestID(self, peer)
	req, ok, err := s.reg.GetFriendRequest(ctx, id)
	if err != nil || !ok || req.Status != domain.StatusPending {
		return
	}
	if err := handshake.Apply(&req, handshake.EventReject); err != nil {
		return
	}
	if err := s.reg.PutFriendRequest(ctx, id, req); err != nil {
		s.log.WithError(err).WithField("peer", peer).Warn("could not retire crossed request")
	}
}

// replaceKey stores k as the key shared with peer and returns a function
// that puts back whatever was there before.
func (s *Service) replaceKey(peer domain.AccountID, k domain.SymmetricKey) (undo func(), err error) {
	prev, hadPrev := s.keys.SymmetricKey(peer)
	if err := s.keys.StoreBidirectionalKey(peer, k); err != nil {
		return nil, err
	}
	return func() {
		var err error
		if hadPrev {
			err = s.keys.StoreBidirectionalKey(peer, prev)
		} else {
			err = s.keys.RemoveBidirectionalKey(peer)
		}
		if err != nil {
			s.log.WithError(err).WithField("peer", peer).Error("could not restore previous key")
		}
	}, nil
}

// RejectRequest declines a pending request from from.
func (s *Service) RejectRequest(ctx context.Context, from domain.AccountID) error {
	id := handshake.RequestID(from, s.keys.Self())
	req, ok, err := s.reg.GetFriendRequest(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch request %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrRequestNotFound, id)
	}
	if err := handshake.Apply(&req, handshake.EventReject); err != nil {
		return err
	}
	if err := s.reg.PutFriendRequest(ctx, id, req); err != nil {
		return fmt.Errorf("publish reject: %w", err)
	}
	s.log.WithField("peer", from).Info("friend request rejected")
	return nil
}

// ConfirmFriendship checks the key peer echoed when accepting our request.
// With no local key the echoed one is adopted.
func (s *Service) ConfirmFriendship(ctx context.Context, peer domain.AccountID) error {
	id := handshake.RequestID(s.keys.Self(), peer)
	req, ok, err := s.reg.GetFriendRequest(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch request %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrRequestNotFound, id)
	}
	if req.Status != domain.StatusAccepted {
		return fmt.Errorf("%w: request %s is %s", domain.ErrInvalidState, id, req.Status)
	}
	if req.RecipientEncryptedKey == "" {
		return fmt.Errorf("%w: request %s carries no echoed key", domain.ErrInvalidState, id)
	}

	echoed, err := s.keys.UnwrapKey(req.RecipientEncryptedKey)
	if err != nil {
		return fmt.Errorf("request %s echo: %w", id, err)
	}
	local, ok := s.keys.SymmetricKey(peer)
	if !ok {
		if err := s.keys.StoreBidirectionalKey(peer, echoed); err != nil {
			return err
		}
		s.log.WithField("peer", peer).Info("adopted echoed key")
		return nil
	}
	if !crypto.SameKey(local, echoed) {
		return fmt.Errorf("%w: %s", domain.ErrKeyMismatch, peer)
	}
	s.log.WithField("peer", peer).Info("friendship confirmed")
	return nil
}

// RemoveFriend marks the accepted request between us and peer removed.
func (s *Service) RemoveFriend(ctx context.Context, peer domain.AccountID) error {
	self := s.keys.Self()
	removed := false
	for _, id := range []domain.RequestID{handshake.RequestID(self, peer), handshake.RequestID(peer, self)} {
		req, ok, err := s.reg.GetFriendRequest(ctx, id)
		if err != nil {
			return fmt.Errorf("fetch request %s: %w", id, err)
		}
		if !ok || req.Status != domain.StatusAccepted {
			continue
		}
		if err := handshake.Apply(&req, handshake.EventRemove); err != nil {
			return err
		}
		if err := s.reg.PutFriendRequest(ctx, id, req); err != nil {
			return fmt.Errorf("publish remove: %w", err)
		}
		removed = true
	}
	if !removed {
		return fmt.Errorf("%w: %s", domain.ErrFriendshipNotFound, peer)
	}
	s.log.WithField("peer", peer).Info("friend removed")
	return nil
}

// PendingRequests lists pending requests addressed to account.
func (s *Service) PendingRequests(ctx context.Context, account domain.AccountID) ([]domain.FriendRequest, error) {
	return s.reg.ListFriendRequests(ctx, domain.RequestFilter{To: account, Status: domain.StatusPending})
}

// OutgoingRequests lists pending requests sent by account.
func (s *Service) OutgoingRequests(ctx context.Context, account domain.AccountID) ([]domain.FriendRequest, error) {
	return s.reg.ListFriendRequests(ctx, domain.RequestFilter{From: account, Status: domain.StatusPending})
}

// Friends lists the counterparties of account's accepted requests, sorted.
func (s *Service) Friends(ctx context.Context, account domain.AccountID) ([]domain.AccountID, error) {
	reqs, err := s.reg.ListFriendRequests(ctx, domain.RequestFilter{Involving: account, Status: domain.StatusAccepted})
	if err != nil {
		return nil, err
	}
	out := make([]domain.AccountID, 0, len(reqs))
	for _, r := range reqs {
		if peer, ok := handshake.Counterparty(r, account); ok {
			out = append(out, peer)
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// ClearAll deletes everything the registry holds about us, then every local
// symmetric key. Local keys survive if the remote part fails.
func (s *Service) ClearAll(ctx context.Context) error {
	self := s.keys.Self()
	if err := s.clearRemote(ctx, self); err != nil {
		return fmt.Errorf("clear registry data: %w", err)
	}
	if err := s.keys.ForgetAll(); err != nil {
		return fmt.Errorf("clear local keys: %w", err)
	}
	s.log.Info("cleared all friend data")
	return nil
}

func (s *Service) clearRemote(ctx context.Context, self domain.AccountID) error {
	if c, ok := s.reg.(domain.AccountClearer); ok {
		return c.ClearAccount(ctx, self)
	}

	reqs, err := s.reg.ListFriendRequests(ctx, domain.RequestFilter{Involving: self})
	if err != nil {
		return err
	}
	var errs []error
	for _, r := range reqs {
		id := handshake.RequestID(r.From, r.To)
		if err := s.reg.DeleteFriendRequest(ctx, id); err != nil {
			s.log.WithError(err).WithField("request", id).Warn("could not delete request")
			errs = append(errs, fmt.Errorf("delete %s: %w", id, err))
		}
	}
	if err := s.reg.DeleteEncryptedSlot(ctx, self); err != nil {
		errs = append(errs, fmt.Errorf("delete slot: %w", err))
	}
	return errors.Join(errs...)
}

func (s *Service) both(ctx context.Context, self, peer domain.AccountID) (outgoing, incoming *domain.FriendRequest, err error) {
	get := func(id domain.RequestID) (*domain.FriendRequest, error) {
		r, ok, err := s.reg.GetFriendRequest(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch request %s: %w", id, err)
		}
		if !ok {
			return nil, nil
		}
		return &r, nil
	}
	if outgoing, err = get(handshake.RequestID(self, peer)); err != nil {
		return nil, nil, err
	}
	if incoming, err = get(handshake.RequestID(peer, self)); err != nil {
		return nil, nil, err
	}
	return outgoing, incoming, nil
}

func isStatus(r *domain.FriendRequest, st domain.RequestStatus) bool {
	return r != nil && r.Status == st
}

// Compile-time assertion that Service implements domain.FriendService.
var _ domain.FriendService = (*Service)(nil)

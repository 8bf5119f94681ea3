package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/starford/quire/internal/navigation"
)

// AllowListVerifier authorizes a fixed set of user ids.
type AllowListVerifier struct {
	users map[string]struct{}
}

// NewAllowListVerifier builds a verifier from ids. Blank ids are ignored.
func NewAllowListVerifier(ids []string) *AllowListVerifier {
	users := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			users[id] = struct{}{}
		}
	}
	return &AllowListVerifier{users: users}
}

// Verify implements IdentityVerifier.
func (v *AllowListVerifier) Verify(ctx context.Context, userID string) (navigation.Verification, error) {
	if err := ctx.Err(); err != nil {
		return navigation.VerificationUnknown, err
	}
	if _, ok := v.users[userID]; ok {
		return navigation.VerificationAuthorized, nil
	}
	return navigation.VerificationUnauthorized, nil
}

var _ IdentityVerifier = (*AllowListVerifier)(nil)

// Store persists the session state.
type Store interface {
	LoadSession(ctx context.Context) (navigation.SessionState, error)
	SaveSession(ctx context.Context, s navigation.SessionState) error
}

// View is the full session picture handed to clients.
type View struct {
	Session      navigation.SessionState `json:"session"`
	Verification navigation.Verification `json:"verification"`
	Screen       navigation.EntryScreen  `json:"screen"`
	Sync         SyncStatus              `json:"sync"`
}

// Service threads the session state through the reducer, persists it and
// keeps the entry gate pointed at the latest verification key.
type Service struct {
	store  Store
	entry  *EntryGate
	sync   *SyncGate
	logger *slog.Logger

	mu    sync.Mutex
	state navigation.SessionState
}

// NewService loads the stored session and starts verifying it.
func NewService(ctx context.Context, store Store, entry *EntryGate, syncGate *SyncGate, logger *slog.Logger) (*Service, error) {
	state, err := store.LoadSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("session: load: %w", err)
	}
	s := &Service{store: store, entry: entry, sync: syncGate, logger: logger, state: state}
	entry.Apply(state.Key())
	return s, nil
}

// Dispatch applies action, saves the new state and re-verifies if the key changed.
func (s *Service) Dispatch(ctx context.Context, action navigation.SessionAction) (navigation.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := navigation.ReduceSession(s.state, action)
	if err := s.store.SaveSession(ctx, next); err != nil {
		return s.state, fmt.Errorf("session: save: %w", err)
	}
	s.state = next
	s.entry.Apply(next.Key())
	s.logger.Info("session: updated",
		slog.String("user_id", next.StoredUserID), slog.Int("revision", next.Revision))
	return next, nil
}

// SignIn records a sign-in attempt. A blank user id counts as a failure.
func (s *Service) SignIn(ctx context.Context, userID string) (navigation.SessionState, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return s.Dispatch(ctx, navigation.SignInFailed{})
	}
	return s.Dispatch(ctx, navigation.SignInSucceeded{UserID: userID})
}

// SignOut forgets the stored identity.
func (s *Service) SignOut(ctx context.Context) (navigation.SessionState, error) {
	return s.Dispatch(ctx, navigation.SignOut{})
}

// State returns the current session state.
func (s *Service) State() navigation.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View reports the session, its verification and the sync status.
func (s *Service) View() View {
	state := s.State()
	key, v := s.entry.Verification()
	if key != state.Key() {
		v = navigation.VerificationUnknown
	}
	return View{
		Session:      state,
		Verification: v,
		Screen:       navigation.DecideEntryScreen(state.StoredUserID, v),
		Sync:         s.sync.Status(),
	}
}

// Wait blocks until the current verification has finished.
func (s *Service) Wait(ctx context.Context) error {
	return s.entry.Wait(ctx)
}

// CheckSync refreshes the account status.
func (s *Service) CheckSync(ctx context.Context) SyncStatus {
	return s.sync.Refresh(ctx)
}

// Close stops the verification in flight.
func (s *Service) Close() {
	s.entry.Close()
}

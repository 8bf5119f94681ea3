// Package session runs the asynchronous identity and account checks that
// feed the navigation reducers. Every request is tagged with a token and
// only the latest request may update state.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/quire/internal/navigation"
)

// IdentityVerifier checks whether a stored user identity is still valid.
type IdentityVerifier interface {
	Verify(ctx context.Context, userID string) (navigation.Verification, error)
}

// AccountStatusProvider reports the availability of the sync account.
type AccountStatusProvider interface {
	CurrentStatus(ctx context.Context) (navigation.AccountStatus, error)
}

// DefaultVerifyTimeout bounds a single verification request.
const DefaultVerifyTimeout = 10 * time.Second

// EntryGate verifies the stored identity in the background. Applying a new
// key cancels the request in flight; results of cancelled or superseded
// requests are dropped.
type EntryGate struct {
	verifier IdentityVerifier
	timeout  time.Duration
	logger   *slog.Logger

	mu           sync.Mutex
	applied      bool
	key          navigation.VerificationKey
	token        uint64
	verification navigation.Verification
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewEntryGate creates a gate. A non-positive timeout uses DefaultVerifyTimeout.
func NewEntryGate(verifier IdentityVerifier, timeout time.Duration, logger *slog.Logger) *EntryGate {
	if timeout <= 0 {
		timeout = DefaultVerifyTimeout
	}
	done := make(chan struct{})
	close(done)
	return &EntryGate{
		verifier:     verifier,
		timeout:      timeout,
		logger:       logger,
		verification: navigation.VerificationUnknown,
		done:         done,
	}
}

// Apply starts verification for key unless key is already the current one.
func (g *EntryGate) Apply(key navigation.VerificationKey) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.applied && g.key == key {
		return
	}
	g.applied = true
	g.key = key
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.token++
	g.verification = navigation.VerificationUnknown
	done := make(chan struct{})
	g.done = done

	if key.UserID == "" {
		close(done)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	g.cancel = cancel
	go g.run(ctx, cancel, g.token, key.UserID, done)
}

func (g *EntryGate) run(ctx context.Context, cancel context.CancelFunc, token uint64, userID string, done chan struct{}) {
	defer close(done)
	defer cancel()

	v, err := g.verifier.Verify(ctx, userID)
	if err != nil {
		g.logger.Warn("session: verification failed",
			slog.String("user_id", userID), slog.String("error", err.Error()))
		v = navigation.VerificationUnauthorized
	}
	if v != navigation.VerificationAuthorized {
		v = navigation.VerificationUnauthorized
	}
	g.complete(token, v)
}

// complete stores v if token still names the latest request.
func (g *EntryGate) complete(token uint64, v navigation.Verification) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if token != g.token {
		g.logger.Debug("session: stale verification dropped", slog.Uint64("token", token))
		return false
	}
	g.verification = v
	g.cancel = nil
	return true
}

// Verification returns the key being verified and its current result.
func (g *EntryGate) Verification() (navigation.VerificationKey, navigation.Verification) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.key, g.verification
}

// Screen reports the entry screen for the current key.
func (g *EntryGate) Screen() navigation.EntryScreen {
	key, v := g.Verification()
	return navigation.DecideEntryScreen(key.UserID, v)
}

// Wait blocks until the latest request has finished or ctx is done.
func (g *EntryGate) Wait(ctx context.Context) error {
	for {
		g.mu.Lock()
		done := g.done
		g.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}

		g.mu.Lock()
		latest := g.done == done
		g.mu.Unlock()
		if latest {
			return nil
		}
	}
}

// Close cancels the request in flight.
func (g *EntryGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
}

// SyncStatus is what the home screen shows about syncing.
type SyncStatus struct {
	State       navigation.SyncState   `json:"state"`
	Destination navigation.Destination `json:"destination"`
	Row         navigation.StatusRow   `json:"status_row"`
	Checking    bool                   `json:"checking"`
}

// SyncGate tracks the account status. Each Refresh bumps a counter and only
// the result carrying the current counter is applied.
type SyncGate struct {
	provider AccountStatusProvider
	timeout  time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	counter  uint64
	checking bool
	state    navigation.SyncState
}

// NewSyncGate creates a gate that reports local-only until the first check.
func NewSyncGate(provider AccountStatusProvider, timeout time.Duration, logger *slog.Logger) *SyncGate {
	if timeout <= 0 {
		timeout = DefaultVerifyTimeout
	}
	return &SyncGate{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
		state:    navigation.SyncLocalOnlyBanner,
	}
}

// Refresh queries the provider and applies the result if no newer refresh
// started in the meantime. It returns the status after the check.
func (g *SyncGate) Refresh(ctx context.Context) SyncStatus {
	g.mu.Lock()
	g.counter++
	tag := g.counter
	g.checking = true
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	status, err := g.provider.CurrentStatus(ctx)
	if err != nil {
		g.logger.Warn("session: account status failed", slog.String("error", err.Error()))
		status = navigation.AccountCanNotDetermine
	}
	g.apply(tag, status)
	return g.Status()
}

func (g *SyncGate) apply(tag uint64, status navigation.AccountStatus) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if tag != g.counter {
		g.logger.Debug("session: stale account status dropped", slog.Uint64("tag", tag))
		return false
	}
	g.state = navigation.DecideSyncState(status)
	g.checking = false
	return true
}

// Status returns the current sync status.
func (g *SyncGate) Status() SyncStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return SyncStatus{
		State:       g.state,
		Destination: navigation.DecideDestination(g.state),
		Row:         navigation.DecideStatusRow(g.state, g.checking),
		Checking:    g.checking,
	}
}

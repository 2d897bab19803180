package federation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/lukelittle/claroz/internal/core"
)

var ErrNotLinked = errors.New("no federation account linked")

// Service owns the account-to-remote link lifecycle: link, unlink and
// token refresh.
type Service struct {
	Logger   *slog.Logger
	Profiles core.ProfileRepository
	Dialer   core.FederationDialer

	mu           sync.Mutex
	refreshLocks map[uuid.UUID]*sync.Mutex
}

func (s *Service) Init(_ context.Context) error {
	s.Logger = s.Logger.With("component", "federation.Service")
	s.refreshLocks = make(map[uuid.UUID]*sync.Mutex)
	return nil
}

// Link stores the remote account binding on the profile.
func (s *Service) Link(ctx context.Context, profileID uuid.UUID, link core.FederationLink) error {
	if link.Server == "" {
		return fmt.Errorf("federation link needs a server URL")
	}

	if err := s.Profiles.Link(ctx, profileID, link); err != nil {
		return err
	}

	s.Logger.Info("federation account linked", "profile", profileID, "server", link.Server)
	return nil
}

// Unlink clears all five federation fields. Unlinking an already-unlinked
// profile succeeds.
func (s *Service) Unlink(ctx context.Context, profileID uuid.UUID) error {
	return s.Profiles.Unlink(ctx, profileID)
}

// Refresh rotates the profile's access/refresh pair and persists it.
// Serialized per profile; concurrent refreshes for different profiles do
// not block each other. Failure is propagated so the caller can prompt
// re-linking — the old pair must not be assumed valid afterwards.
func (s *Service) Refresh(ctx context.Context, profileID uuid.UUID) error {
	lock := s.refreshLock(profileID)
	lock.Lock()
	defer lock.Unlock()

	profile, err := s.Profiles.GetByID(ctx, profileID)
	if err != nil {
		return err
	}

	if profile.FederationServer == nil || profile.FederationRefreshToken == nil {
		return fmt.Errorf("%w: profile %s", ErrNotLinked, profileID)
	}

	// The refresh exchange authenticates with the refresh token in the
	// body, not the bearer credential.
	client := s.Dialer.Dial(*profile.FederationServer, "")

	pair, err := client.RefreshSession(ctx, *profile.FederationRefreshToken)
	if err != nil {
		return fmt.Errorf("refresh token for profile %s: %w", profileID, err)
	}

	return s.Profiles.UpdateTokens(ctx, profileID, *pair)
}

// ClientFor returns a client bound to the profile's federation link, or
// nil when the profile has no usable link.
func (s *Service) ClientFor(profile *core.ProfileModel) core.FederationClient {
	if !profile.FederationLinked() {
		return nil
	}
	return s.Dialer.Dial(*profile.FederationServer, *profile.FederationAccessToken)
}

func (s *Service) refreshLock(profileID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.refreshLocks[profileID]
	if !ok {
		lock = &sync.Mutex{}
		s.refreshLocks[profileID] = lock
	}
	return lock
}

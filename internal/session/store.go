// Package session owns authentication state and its durable persistence.
//
// Phases: Uninitialized, then Anonymous or Authenticated. Logout always
// lands in Anonymous. A profile is held iff the phase is Authenticated.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/idilsaglam/grocer/internal/api"
	"github.com/idilsaglam/grocer/internal/model"
	"github.com/idilsaglam/grocer/internal/store/profilestore"
)

type Phase int

const (
	Uninitialized Phase = iota
	Anonymous
	Authenticated
)

func (p Phase) String() string {
	switch p {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return "uninitialized"
	}
}

// API is the slice of the gateway the store needs.
type API interface {
	Register(ctx context.Context, name, email, password string) error
	SignIn(ctx context.Context, email, password string) (model.User, error)
	Logout(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// Profiles is satisfied by *profilestore.Store.
type Profiles interface {
	Load() (model.User, error)
	Save(model.User) error
	Clear() error
}

// Result reports the outcome of a caller-driven auth flow.
type Result struct {
	Success bool
	User    model.User
	Error   string
}

type Store struct {
	api      API
	profiles Profiles
	clock    clockwork.Clock
	log      *slog.Logger

	mu    sync.Mutex
	phase Phase
	user  model.User
}

func NewStore(gw API, profiles Profiles, clock clockwork.Clock) *Store {
	return &Store{
		api:      gw,
		profiles: profiles,
		clock:    clock,
		log:      slog.Default(),
		phase:    Uninitialized,
	}
}

// Initialize hydrates a previously persisted profile. It never fails the
// process: a missing record means Anonymous, a corrupt one is cleared and
// also means Anonymous. No network is involved.
func (s *Store) Initialize() {
	u, err := s.profiles.Load()
	switch {
	case err == nil:
		s.set(Authenticated, u)
	case errors.Is(err, profilestore.ErrNotFound):
		s.set(Anonymous, model.User{})
	default:
		s.log.Warn("stored profile unreadable, clearing", "error", err)
		if cerr := s.profiles.Clear(); cerr != nil {
			s.log.Warn("clearing stale profile failed", "error", cerr)
		}
		s.set(Anonymous, model.User{})
	}
}

func (s *Store) Login(ctx context.Context, email, password string) Result {
	if err := validateCredentials(email, password); err != nil {
		return Result{Error: err.Error()}
	}
	u, err := s.api.SignIn(ctx, email, password)
	if err != nil {
		s.log.Debug("sign-in failed", "error", err)
		return Result{Error: resultError(err, "login failed")}
	}
	return s.establish(u)
}

const manualSignInMessage = "registration completed but login failed, please sign in manually"

// Known failure messages from the service's database layer, rewritten into
// actionable guidance.
var registerRewrites = []struct{ match, friendly string }{
	{"couldnt add to database", "email already exists or database error, please try a different email"},
	{"duplicate key", "this email is already registered, please use a different email or try logging in"},
	{"E11000", "this email is already registered, please use a different email or try logging in"},
	{"validation failed", "please check your input: all fields are required and the email must be valid"},
}

// Register is a compound workflow: the service issues no session on
// registration, so a successful register is followed by a sign-in with the
// same credentials.
func (s *Store) Register(ctx context.Context, name, email, password string) Result {
	if err := validateRegistration(name, email, password); err != nil {
		return Result{Error: err.Error()}
	}
	if err := s.api.Register(ctx, name, email, password); err != nil {
		return s.registerFailed(ctx, email, password, err)
	}
	u, err := s.api.SignIn(ctx, email, password)
	if err != nil {
		s.log.Warn("post-registration sign-in failed", "error", err)
		return Result{Error: manualSignInMessage}
	}
	return s.establish(u)
}

// genericBadRequest is the message the gateway synthesizes for a 400 with no
// service message of its own. Only that bare 400 is ambiguous.
const genericBadRequest = "HTTP error! status: 400"

func (s *Store) registerFailed(ctx context.Context, email, password string, err error) Result {
	msg := resultError(err, "registration failed")
	for _, r := range registerRewrites {
		if strings.Contains(msg, r.match) {
			return Result{Error: r.friendly}
		}
	}
	// A bare 400 has historically meant "registered anyway"; a successful
	// recovery sign-in settles it. A 400 carrying a specific service
	// message is surfaced verbatim instead.
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) && httpErr.Status == http.StatusBadRequest && msg == genericBadRequest {
		s.log.Debug("ambiguous 400 on register, attempting recovery sign-in")
		if u, serr := s.api.SignIn(ctx, email, password); serr == nil {
			return s.establish(u)
		}
		return Result{Error: manualSignInMessage}
	}
	return Result{Error: msg}
}

// Logout clears the local session no matter what the service says: the local
// record gates the UI, the remote cleanup is best-effort.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.log.Warn("remote logout failed", "error", err)
	}
	if err := s.profiles.Clear(); err != nil {
		s.log.Warn("clearing profile failed", "error", err)
	}
	s.set(Anonymous, model.User{})
}

// RequestPasswordReset and ResetPassword are stateless pass-throughs; they
// never touch the session.
func (s *Store) RequestPasswordReset(ctx context.Context, email string) Result {
	if !looksLikeEmail(email) {
		return Result{Error: "please enter a valid email address"}
	}
	if err := s.api.RequestPasswordReset(ctx, email); err != nil {
		return Result{Error: resultError(err, "password reset request failed")}
	}
	return Result{Success: true}
}

func (s *Store) ResetPassword(ctx context.Context, token, newPassword string) Result {
	if token == "" {
		return Result{Error: "missing reset token"}
	}
	if err := validatePassword(newPassword); err != nil {
		return Result{Error: err.Error()}
	}
	if err := s.api.ResetPassword(ctx, token, newPassword); err != nil {
		return Result{Error: resultError(err, "password reset failed")}
	}
	return Result{Success: true}
}

func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// User returns the profile and whether the store is authenticated.
func (s *Store) User() (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.phase == Authenticated
}

func (s *Store) establish(u model.User) Result {
	u.AuthenticatedAt = s.clock.Now()
	if err := s.profiles.Save(u); err != nil {
		// Still a valid session for this process; it just won't survive
		// a restart.
		s.log.Warn("persisting profile failed", "error", err)
	}
	s.set(Authenticated, u)
	return Result{Success: true, User: u}
}

func (s *Store) set(p Phase, u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = p
	s.user = u
}

func resultError(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}

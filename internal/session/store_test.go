package session

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/grocer/internal/api"
	"github.com/idilsaglam/grocer/internal/model"
	"github.com/idilsaglam/grocer/internal/store/profilestore"
)

type fakeGateway struct {
	registerErr error
	signInUser  model.User
	signInErr   error
	logoutErr   error
	resetReqErr error
	resetErr    error

	registerCalls int
	signInCalls   int
	logoutCalls   int
}

func (f *fakeGateway) Register(context.Context, string, string, string) error {
	f.registerCalls++
	return f.registerErr
}

func (f *fakeGateway) SignIn(context.Context, string, string) (model.User, error) {
	f.signInCalls++
	return f.signInUser, f.signInErr
}

func (f *fakeGateway) Logout(context.Context) error {
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeGateway) RequestPasswordReset(context.Context, string) error { return f.resetReqErr }

func (f *fakeGateway) ResetPassword(context.Context, string, string) error { return f.resetErr }

var ada = model.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}

func newTestStore(t *testing.T, gw *fakeGateway) (*Store, *profilestore.Store, string) {
	t.Helper()
	dir := t.TempDir()
	profiles := profilestore.New(dir)
	return NewStore(gw, profiles, clockwork.NewFakeClock()), profiles, dir
}

func TestInitializeHydratesValidProfile(t *testing.T) {
	gw := &fakeGateway{}
	s, profiles, _ := newTestStore(t, gw)
	require.NoError(t, profiles.Save(ada))

	s.Initialize()

	assert.Equal(t, Authenticated, s.Phase())
	user, ok := s.User()
	assert.True(t, ok)
	assert.Equal(t, ada, user)
	// hydration never touches the network
	assert.Zero(t, gw.signInCalls)
	assert.Zero(t, gw.registerCalls)
}

func TestInitializeWithoutProfile(t *testing.T) {
	s, _, _ := newTestStore(t, &fakeGateway{})
	s.Initialize()

	assert.Equal(t, Anonymous, s.Phase())
	_, ok := s.User()
	assert.False(t, ok)
}

func TestInitializeClearsCorruptedProfile(t *testing.T) {
	s, _, dir := newTestStore(t, &fakeGateway{})
	path := filepath.Join(dir, "profile.json")
	require.NoError(t, os.WriteFile(path, []byte("{corrupt"), 0o600))

	s.Initialize()

	assert.Equal(t, Anonymous, s.Phase())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLoginSuccessPersistsProfile(t *testing.T) {
	gw := &fakeGateway{signInUser: ada}
	s, profiles, _ := newTestStore(t, gw)
	s.Initialize()

	res := s.Login(context.Background(), "ada@example.com", "hunter22")

	require.True(t, res.Success)
	assert.Equal(t, Authenticated, s.Phase())
	assert.False(t, res.User.AuthenticatedAt.IsZero())

	persisted, err := profiles.Load()
	require.NoError(t, err)
	assert.Equal(t, ada.Email, persisted.Email)
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	gw := &fakeGateway{signInErr: &api.HTTPError{Status: http.StatusUnauthorized, Message: "invalid credentials"}}
	s, profiles, _ := newTestStore(t, gw)
	s.Initialize()

	res := s.Login(context.Background(), "ada@example.com", "wrong")

	assert.False(t, res.Success)
	assert.Equal(t, "invalid credentials", res.Error)
	assert.Equal(t, Anonymous, s.Phase())
	_, err := profiles.Load()
	assert.ErrorIs(t, err, profilestore.ErrNotFound)
}

func TestLoginValidatesBeforeAnyCall(t *testing.T) {
	gw := &fakeGateway{}
	s, _, _ := newTestStore(t, gw)
	s.Initialize()

	res := s.Login(context.Background(), "not-an-email", "hunter22")
	assert.False(t, res.Success)
	assert.Zero(t, gw.signInCalls)

	res = s.Login(context.Background(), "ada@example.com", "")
	assert.False(t, res.Success)
	assert.Zero(t, gw.signInCalls)
}

func TestRegisterSignsInAfterwards(t *testing.T) {
	gw := &fakeGateway{signInUser: ada}
	s, _, _ := newTestStore(t, gw)
	s.Initialize()

	res := s.Register(context.Background(), "Ada", "ada@example.com", "hunter22")

	require.True(t, res.Success)
	assert.Equal(t, 1, gw.registerCalls)
	assert.Equal(t, 1, gw.signInCalls)
	assert.Equal(t, Authenticated, s.Phase())
}

func TestRegisterRewritesKnownFailures(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		wantPart string
	}{
		{"mongo write failure", "couldnt add to database", "already exists"},
		{"duplicate key", "E11000 duplicate key error collection", "already registered"},
		{"validation", "user validation failed: email required", "check your input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{registerErr: &api.HTTPError{Status: http.StatusBadRequest, Message: tt.message}}
			s, _, _ := newTestStore(t, gw)
			s.Initialize()

			res := s.Register(context.Background(), "Ada", "ada@example.com", "hunter22")

			assert.False(t, res.Success)
			assert.Contains(t, res.Error, tt.wantPart)
			// a recognized failure is final, no recovery sign-in
			assert.Zero(t, gw.signInCalls)
			assert.Equal(t, Anonymous, s.Phase())
		})
	}
}

func TestRegisterAmbiguous400TriesRecoverySignIn(t *testing.T) {
	gw := &fakeGateway{
		registerErr: &api.HTTPError{Status: http.StatusBadRequest, Message: "HTTP error! status: 400"},
		signInUser:  ada,
	}
	s, _, _ := newTestStore(t, gw)
	s.Initialize()

	res := s.Register(context.Background(), "Ada", "ada@example.com", "hunter22")

	require.True(t, res.Success)
	assert.Equal(t, 1, gw.signInCalls)
	assert.Equal(t, Authenticated, s.Phase())
}

func TestRegisterAmbiguous400RecoveryFails(t *testing.T) {
	gw := &fakeGateway{
		registerErr: &api.HTTPError{Status: http.StatusBadRequest, Message: "HTTP error! status: 400"},
		signInErr:   &api.HTTPError{Status: http.StatusUnauthorized, Message: "invalid credentials"},
	}
	s, _, _ := newTestStore(t, gw)
	s.Initialize()

	res := s.Register(context.Background(), "Ada", "ada@example.com", "hunter22")

	assert.False(t, res.Success)
	assert.Equal(t, manualSignInMessage, res.Error)
	assert.Equal(t, Anonymous, s.Phase())
}

func TestRegisterSpecific400IsSurfacedVerbatim(t *testing.T) {
	gw := &fakeGateway{
		registerErr: &api.HTTPError{Status: http.StatusBadRequest, Message: "password too weak"},
	}
	s, _, _ := newTestStore(t, gw)
	s.Initialize()

	res := s.Register(context.Background(), "Ada", "ada@example.com", "hunter22")

	assert.False(t, res.Success)
	assert.Equal(t, "password too weak", res.Error)
	// only the bare 400 is ambiguous; a specific message is final
	assert.Zero(t, gw.signInCalls)
	assert.Equal(t, Anonymous, s.Phase())
}

func TestRegisterSucceedsButSignInFails(t *testing.T) {
	gw := &fakeGateway{signInErr: &api.NetworkError{Cause: errors.New("refused")}}
	s, _, _ := newTestStore(t, gw)
	s.Initialize()

	res := s.Register(context.Background(), "Ada", "ada@example.com", "hunter22")

	assert.False(t, res.Success)
	assert.Equal(t, manualSignInMessage, res.Error)
}

func TestRegisterValidatesInput(t *testing.T) {
	gw := &fakeGateway{}
	s, _, _ := newTestStore(t, gw)
	s.Initialize()

	for name, in := range map[string]struct{ name, email, password string }{
		"short name":     {"A", "ada@example.com", "hunter22"},
		"bad email":      {"Ada", "nope", "hunter22"},
		"short password": {"Ada", "ada@example.com", "12345"},
		"missing fields": {"", "", ""},
	} {
		t.Run(name, func(t *testing.T) {
			res := s.Register(context.Background(), in.name, in.email, in.password)
			assert.False(t, res.Success)
			assert.Zero(t, gw.registerCalls)
		})
	}
}

func TestLogoutAlwaysClears(t *testing.T) {
	gw := &fakeGateway{signInUser: ada, logoutErr: &api.NetworkError{Cause: errors.New("refused")}}
	s, profiles, _ := newTestStore(t, gw)
	s.Initialize()
	require.True(t, s.Login(context.Background(), "ada@example.com", "hunter22").Success)

	s.Logout(context.Background())

	assert.Equal(t, 1, gw.logoutCalls)
	assert.Equal(t, Anonymous, s.Phase())
	_, ok := s.User()
	assert.False(t, ok)
	_, err := profiles.Load()
	assert.ErrorIs(t, err, profilestore.ErrNotFound)
}

func TestPasswordResetFlowsNeverTouchSession(t *testing.T) {
	gw := &fakeGateway{signInUser: ada}
	s, _, _ := newTestStore(t, gw)
	s.Initialize()
	require.True(t, s.Login(context.Background(), "ada@example.com", "hunter22").Success)

	assert.True(t, s.RequestPasswordReset(context.Background(), "ada@example.com").Success)
	assert.True(t, s.ResetPassword(context.Background(), "tok", "newpassword").Success)
	assert.Equal(t, Authenticated, s.Phase())

	gw.resetReqErr = &api.HTTPError{Status: 500, Message: "mailer down"}
	res := s.RequestPasswordReset(context.Background(), "ada@example.com")
	assert.False(t, res.Success)
	assert.Equal(t, "mailer down", res.Error)
	assert.Equal(t, Authenticated, s.Phase())
}

func TestResetPasswordValidates(t *testing.T) {
	gw := &fakeGateway{}
	s, _, _ := newTestStore(t, gw)

	assert.False(t, s.ResetPassword(context.Background(), "", "newpassword").Success)
	assert.False(t, s.ResetPassword(context.Background(), "tok", "short").Success)
}

package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logjamd/logjamd/pkg/document"
	"github.com/logjamd/logjamd/pkg/uid"
)

func credentials(login, password string) *document.Document {
	d := document.New()
	d.Set("login", document.NewString(login))
	d.Set("password", document.NewString(password))
	return d
}

func TestLocalProviderAuthenticateSuccess(t *testing.T) {
	p := NewLocalProvider()
	userID := uid.New()
	require.NoError(t, p.SetCredential("admin", userID, "1!aA2@Bb"))

	reg := NewRegistry()
	reg.Register(p)

	u, err := reg.Authenticate("local", "bcrypt", credentials("admin", "1!aA2@Bb"))
	require.NoError(t, err)
	require.Equal(t, userID, u.ID)
	require.Equal(t, "admin", u.Login)
}

func TestLocalProviderAuthenticateBadPassword(t *testing.T) {
	p := NewLocalProvider()
	require.NoError(t, p.SetCredential("admin", uid.New(), "1!aA2@Bb"))
	reg := NewRegistry()
	reg.Register(p)

	_, err := reg.Authenticate("local", "bcrypt", credentials("admin", "wrong"))
	require.ErrorIs(t, err, ErrBadCredential)
}

func TestLocalProviderAuthenticateUnknownLogin(t *testing.T) {
	p := NewLocalProvider()
	reg := NewRegistry()
	reg.Register(p)

	_, err := reg.Authenticate("local", "bcrypt", credentials("ghost", "whatever"))
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestRegistryUnknownProviderAndMethod(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Authenticate("nowhere", "bcrypt", credentials("a", "b"))
	require.ErrorIs(t, err, ErrUnknownProvider)

	p := NewLocalProvider()
	reg.Register(p)
	_, err = reg.Authenticate("local", "plaintext", credentials("a", "b"))
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestProviderIDIsDeterministic(t *testing.T) {
	require.Equal(t, ProviderID("local"), ProviderID("local"))
	require.NotEqual(t, ProviderID("local"), ProviderID("ldap"))
}

func TestChangeCredentialRequiresMatchingUser(t *testing.T) {
	p := NewLocalProvider()
	userID := uid.New()
	require.NoError(t, p.SetCredential("admin", userID, "old-pass"))

	method, ok := p.Method("bcrypt")
	require.True(t, ok)

	require.NoError(t, method.ChangeCredential(userID, credentials("admin", "new-pass")))

	reg := NewRegistry()
	reg.Register(p)
	u, err := reg.Authenticate("local", "bcrypt", credentials("admin", "new-pass"))
	require.NoError(t, err)
	require.Equal(t, userID, u.ID)

	err = method.ChangeCredential(uid.New(), credentials("admin", "hijack"))
	require.Error(t, err)
}

func TestAnonymousIdentitiesAreDistinctAndStable(t *testing.T) {
	require.NotEqual(t, AnonymousJSON.ID, AnonymousHTTP.ID)
	require.Equal(t, AnonymousJSON.ID, AnonymousJSON.ID)
	require.False(t, AnonymousJSON.IsNil())
	require.True(t, Nil.IsNil())
}

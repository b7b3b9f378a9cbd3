package auth

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/logjamd/logjamd/pkg/document"
	"github.com/logjamd/logjamd/pkg/uid"
)

const localProviderName = "local"

type credentialRecord struct {
	userID uid.ID
	hash   []byte
}

// LocalProvider is the built-in `local` provider: a
// bcrypt-style password-hash method storing (login -> (user_id, hash)).
// It never persists the plaintext secret, only the bcrypt digest.
type LocalProvider struct {
	mu    sync.RWMutex
	creds map[string]credentialRecord
}

// NewLocalProvider returns an empty local provider; callers seed it
// with SetCredential before accepting authentication traffic.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{creds: make(map[string]credentialRecord)}
}

// Name returns "local".
func (p *LocalProvider) Name() string { return localProviderName }

// ID returns the provider's deterministic identifier.
func (p *LocalProvider) ID() uid.ID { return ProviderID(localProviderName) }

// Method returns the provider's bcrypt method for name "bcrypt"; no
// other method names are recognized.
func (p *LocalProvider) Method(name string) (Method, bool) {
	if name != "bcrypt" {
		return nil, false
	}
	return bcryptMethod{p: p}, true
}

// SetCredential hashes password with bcrypt and binds login to userID,
// replacing any prior binding for that login.
func (p *LocalProvider) SetCredential(login string, userID uid.ID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: local: hash credential for %q: %w", login, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.creds[login] = credentialRecord{userID: userID, hash: hash}
	return nil
}

type bcryptMethod struct{ p *LocalProvider }

// Authenticate verifies {login, password} against the provider's stored
// hash, returning the bound User on success.
func (m bcryptMethod) Authenticate(data *document.Document) (User, error) {
	login := data.Get("login").AsString()
	password := data.Get("password").AsString()

	m.p.mu.RLock()
	record, ok := m.p.creds[login]
	m.p.mu.RUnlock()
	if !ok {
		return Nil, fmt.Errorf("auth: local: login %q: %w", login, ErrUserNotFound)
	}

	if err := bcrypt.CompareHashAndPassword(record.hash, []byte(password)); err != nil {
		return Nil, fmt.Errorf("auth: local: login %q: %w", login, ErrBadCredential)
	}
	return User{ID: record.userID, Login: login}, nil
}

// ChangeCredential re-hashes {password} for the user bound to login
// {login}, provided it still resolves to userID.
func (m bcryptMethod) ChangeCredential(userID uid.ID, data *document.Document) error {
	login := data.Get("login").AsString()
	password := data.Get("password").AsString()

	m.p.mu.Lock()
	defer m.p.mu.Unlock()
	if existing, ok := m.p.creds[login]; ok && existing.userID != userID {
		return fmt.Errorf("auth: local: change_credential: login %q is bound to a different user", login)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: local: change_credential: %w", err)
	}
	m.p.creds[login] = credentialRecord{userID: userID, hash: hash}
	return nil
}

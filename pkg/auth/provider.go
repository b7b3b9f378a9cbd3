package auth

import (
	"fmt"

	"github.com/logjamd/logjamd/pkg/document"
	"github.com/logjamd/logjamd/pkg/uid"
)

// Method authenticates a credentials document into a User, or changes
// an existing user's stored credential.
type Method interface {
	Authenticate(data *document.Document) (User, error)
	ChangeCredential(userID uid.ID, data *document.Document) error
}

// Provider groups one or more named Methods under a short provider
// name.
type Provider interface {
	Name() string
	ID() uid.ID
	Method(name string) (Method, bool)
}

// providerNamespace is the fixed namespace every provider's id is
// derived from: deterministic-id(nil, "auth_provider").
var providerNamespace = uid.FromNamespaceAndName(uid.Nil, []byte("auth_provider"))

// ProviderID deterministically derives a provider's id from its short
// name, so two registries independently registering a provider named
// "local" agree on its identifier without coordination.
func ProviderID(name string) uid.ID {
	return uid.FromNamespaceAndName(providerNamespace, []byte(name))
}

// Registry is the global provider map. The zero value is
// not usable; construct with NewRegistry.
type Registry struct {
	byID   map[uid.ID]Provider
	byName map[string]Provider
}

// NewRegistry returns an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[uid.ID]Provider), byName: make(map[string]Provider)}
}

// Register adds p to the registry, keyed by its deterministic id and
// its short name.
func (r *Registry) Register(p Provider) {
	r.byID[p.ID()] = p
	r.byName[p.Name()] = p
}

// Provider looks up a registered provider by short name.
func (r *Registry) Provider(name string) (Provider, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Authenticate resolves {provider, method, data} against the registry:
// looks up the named provider, then the named method, then invokes it.
func (r *Registry) Authenticate(providerName, methodName string, data *document.Document) (User, error) {
	p, ok := r.Provider(providerName)
	if !ok {
		return Nil, fmt.Errorf("auth: provider %q: %w", providerName, ErrUnknownProvider)
	}
	m, ok := p.Method(methodName)
	if !ok {
		return Nil, fmt.Errorf("auth: provider %q method %q: %w", providerName, methodName, ErrUnknownMethod)
	}
	return m.Authenticate(data)
}

package auth

import "github.com/logjamd/logjamd/pkg/uid"

// User is an authenticated identity: a 128-bit id and the login string
// it was resolved from.
type User struct {
	ID    uid.ID
	Login string
}

// Nil is the well-known unauthenticated user: the nil identifier with
// an empty login.
var Nil = User{}

// IsNil reports whether u denotes "unauthenticated".
func (u User) IsNil() bool { return u.ID.IsNil() }

var anonymousNamespace = uid.FromNamespaceAndName(uid.Nil, []byte("anonymous_user"))

// AnonymousJSON is the fixed anonymous identity for the native wire
// protocol. The pipeline does not bind it: a native session carries
// Nil until its Authentication stage succeeds, and the HTTP adapter
// binds the anonymous identity passed to pipeline.New.
var AnonymousJSON = User{ID: uid.FromNamespaceAndName(anonymousNamespace, []byte("json")), Login: "anonymous-json"}

// AnonymousHTTP is the fixed identity the HTTP adapter binds
// unauthenticated requests (URIs without the `~/` prefix) to.
var AnonymousHTTP = User{ID: uid.FromNamespaceAndName(anonymousNamespace, []byte("http")), Login: "anonymous-http"}

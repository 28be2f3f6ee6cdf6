package chat

// IdentityKind discriminates how a connection authenticated.
type IdentityKind int

const (
	// IdentityGuest is an unauthenticated connection keyed by its
	// transport connection id.
	IdentityGuest IdentityKind = iota
	// IdentityAuthenticated is a connection bound to a stored user account.
	IdentityAuthenticated
)

// Identity is who a session belongs to: an authenticated user id, or a guest
// keyed by connection id. Using an explicit variant keeps the guest fallback
// out of the user-id field.
type Identity struct {
	kind         IdentityKind
	userId       string
	connectionId string
}

func AuthenticatedIdentity(userId string) Identity {
	return Identity{kind: IdentityAuthenticated, userId: userId}
}

func GuestIdentity(connectionId string) Identity {
	return Identity{kind: IdentityGuest, connectionId: connectionId}
}

func (i Identity) Kind() IdentityKind {
	return i.kind
}

func (i Identity) IsGuest() bool {
	return i.kind == IdentityGuest
}

// Key is the stable user key for registry lookups, receipts and event
// payloads: the user id for authenticated identities, the connection id for
// guests.
func (i Identity) Key() string {
	if i.kind == IdentityAuthenticated {
		return i.userId
	}
	return i.connectionId
}

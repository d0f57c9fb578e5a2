package auth

// Guard is a stateless admin predicate over an injected allow-list. It keeps
// no memory of prior attempts; any throttling or warning display belongs to
// the calling layer.
type Guard struct {
	admins []string
}

func NewGuard(adminEmails []string) *Guard {
	admins := make([]string, len(adminEmails))
	copy(admins, adminEmails)
	return &Guard{admins: admins}
}

// Authorize reports whether the email is on the admin allow-list. The
// comparison is case-sensitive.
func (g *Guard) Authorize(principalEmail string) bool {
	for _, admin := range g.admins {
		if admin == principalEmail {
			return true
		}
	}
	return false
}

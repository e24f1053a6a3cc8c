package server

import (
	"net/http"
	"strings"

	"talentd/internal/config"
)

// Role mirrors the role strings accepted in the auth token table.
type Role string

const (
	RoleCandidate     Role = "CANDIDATE"
	RoleRecruiter     Role = "RECRUITER"
	RoleHiringManager Role = "HIRING_MANAGER"
)

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	UserID    int64
	Email     string
	Role      Role
	CompanyID int64
}

// Authenticator resolves bearer tokens to identities. Token issuance and
// verification beyond a lookup are out of scope; this is the narrow seam the
// HTTP layer consumes.
type Authenticator interface {
	Identify(token string) (Identity, bool)
}

// NewAuthenticator builds a static token-table authenticator from config.
func NewAuthenticator(cfg *config.Config) Authenticator {
	identities := make(map[string]Identity, len(cfg.Auth.Tokens))
	for _, entry := range cfg.Auth.Tokens {
		identities[entry.Token] = Identity{
			UserID:    entry.UserID,
			Email:     entry.Email,
			Role:      Role(entry.Role),
			CompanyID: entry.CompanyID,
		}
	}
	return staticAuthenticator{identities: identities}
}

type staticAuthenticator struct {
	identities map[string]Identity
}

func (a staticAuthenticator) Identify(token string) (Identity, bool) {
	identity, ok := a.identities[token]
	return identity, ok
}

// authenticated wraps a handler, requiring a valid bearer token carrying one
// of the given roles. The resolved identity is passed to the handler.
func (s *Server) authenticated(roles []Role, next func(http.ResponseWriter, *http.Request, Identity)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		identity, ok := s.auth.Identify(strings.TrimPrefix(auth, "Bearer "))
		if !ok {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		allowed := false
		for _, role := range roles {
			if identity.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			s.writeError(w, http.StatusForbidden, "access denied")
			return
		}
		next(w, r, identity)
	}
}

package auth

import (
	"sort"
	"strings"

	"github.com/rezonia/etims-client/internal/model"
)

// CredentialStore holds the credentials of every configured environment.
// It is filled once at start-up and only read afterwards.
type CredentialStore struct {
	byEnv map[string]Credentials
}

// NewCredentialStore indexes creds by their Environment tag
func NewCredentialStore(creds ...Credentials) *CredentialStore {
	s := &CredentialStore{byEnv: make(map[string]Credentials, len(creds))}
	for _, c := range creds {
		s.byEnv[strings.ToLower(strings.TrimSpace(c.Environment))] = c
	}
	return s
}

// Lookup returns the validated credentials for env
func (s *CredentialStore) Lookup(env string) (Credentials, error) {
	c, ok := s.byEnv[strings.ToLower(strings.TrimSpace(env))]
	if !ok {
		msg := "no credentials configured for environment"
		if known := s.Environments(); len(known) > 0 {
			msg += " (configured: " + strings.Join(known, ", ") + ")"
		}
		return Credentials{}, model.NewConfigurationError(model.ConfigKindSettings, "auth."+env, msg)
	}
	if err := c.Validate(); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

// Environments lists the configured environment tags
func (s *CredentialStore) Environments() []string {
	out := make([]string, 0, len(s.byEnv))
	for env := range s.byEnv {
		out = append(out, env)
	}
	sort.Strings(out)
	return out
}

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Credential is one API key usable against the external AI text service.
// Secret never leaves the service/dispatcher layers; callers see Masked().
type Credential struct {
	ID        uuid.UUID
	Name      string
	Secret    string
	Position  int
	CreatedAt time.Time
}

// Masked returns a display-safe form of the secret: the last four runes
// prefixed with bullet characters. Secrets shorter than four runes are
// fully masked.
func (c Credential) Masked() string {
	r := []rune(c.Secret)
	if len(r) <= 4 {
		return strings.Repeat("•", len(r))
	}
	return "••••" + string(r[len(r)-4:])
}

// MaskedCredential is the caller-visible projection of a Credential.
type MaskedCredential struct {
	ID     uuid.UUID
	Name   string
	Masked string
}

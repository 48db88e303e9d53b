package keypool

import (
	"strings"

	"github.com/hieunguyen/vocabdeck/internal/domain"
)

// minSecretLen rejects obviously truncated pastes; real Anthropic keys are
// far longer.
const minSecretLen = 16

// AddCredentialInput carries a new API key. Name is optional; a default
// is generated from the pool size.
type AddCredentialInput struct {
	Name   string
	Secret string
}

// Validate checks the secret material. The input is mutated: name and
// secret are trimmed.
func (in *AddCredentialInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Secret = strings.TrimSpace(in.Secret)

	if in.Secret == "" {
		return domain.NewValidationError("secret", "must not be empty")
	}
	if len(in.Secret) < minSecretLen {
		return domain.NewValidationError("secret", "too short to be an API key")
	}
	if strings.ContainsAny(in.Secret, " \t\n") {
		return domain.NewValidationError("secret", "must not contain whitespace")
	}
	return nil
}

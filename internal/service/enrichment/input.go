package enrichment

import (
	"strings"

	"github.com/hieunguyen/vocabdeck/internal/domain"
)

// AutoMeaningInput is the payload for the pooled auto-meaning operation.
type AutoMeaningInput struct {
	RequestID      string
	Word           string
	SourceSentence string
	From           string
	To             string
}

// Validate trims and checks required fields.
func (in *AutoMeaningInput) Validate() error {
	in.RequestID = strings.TrimSpace(in.RequestID)
	in.Word = strings.TrimSpace(in.Word)
	in.SourceSentence = strings.TrimSpace(in.SourceSentence)

	var errs []domain.FieldError
	if in.RequestID == "" {
		errs = append(errs, domain.FieldError{Field: "requestId", Message: "must not be empty"})
	}
	if in.Word == "" {
		errs = append(errs, domain.FieldError{Field: "word", Message: "must not be empty"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ExampleInput is the payload for the example-sentence suggestion.
type ExampleInput struct {
	Word           string
	Meaning        *string
	Pos            *string
	SourceSentence *string
}

func (in *ExampleInput) Validate() error {
	in.Word = strings.TrimSpace(in.Word)
	if in.Word == "" {
		return domain.NewValidationError("word", "must not be empty")
	}
	return nil
}

// IPAInput is the payload for the IPA suggestion.
type IPAInput struct {
	Word    string
	Dialect string
}

func (in *IPAInput) Validate() error {
	in.Word = strings.TrimSpace(in.Word)
	in.Dialect = strings.ToUpper(strings.TrimSpace(in.Dialect))

	if in.Word == "" {
		return domain.NewValidationError("word", "must not be empty")
	}
	switch in.Dialect {
	case "", "US", "UK":
		return nil
	}
	return domain.NewValidationError("dialect", "must be US or UK")
}

// TranslateInput is the payload for plain translation.
type TranslateInput struct {
	Text   string
	From   string
	To     string
	Region string
}

func (in *TranslateInput) Validate() error {
	in.Text = strings.TrimSpace(in.Text)
	if in.Text == "" {
		return domain.NewValidationError("text", "must not be empty")
	}
	return nil
}

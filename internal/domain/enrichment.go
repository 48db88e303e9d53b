package domain

// EnrichmentOp identifies a logical AI operation.
type EnrichmentOp string

const (
	// OpAutoMeaning is the pooled operation: it may fall back across every
	// configured credential.
	OpAutoMeaning EnrichmentOp = "auto_meaning"

	// Single-key operations use the active credential only.
	OpExampleSentence EnrichmentOp = "example_sentence"
	OpIPA             EnrichmentOp = "ipa"
	OpTranslation     EnrichmentOp = "translation"
)

// MeaningCandidate is one suggested meaning for a word, ranked by the
// model's confidence.
type MeaningCandidate struct {
	Vi   string   `json:"vi"`
	Pos  *string  `json:"pos,omitempty"`
	Back []string `json:"back,omitempty"`
}

// EnrichmentResult is the outcome of a successful auto-meaning dispatch.
//
// Invariant: when Candidates is non-empty, MeaningSuggested equals
// Candidates[0].Vi. Callers rely on this.
type EnrichmentResult struct {
	RequestID         string             `json:"requestId"`
	Word              string             `json:"word"`
	MeaningSuggested  string             `json:"meaningSuggested"`
	ContextSentenceVi string             `json:"contextSentenceVi,omitempty"`
	Candidates        []MeaningCandidate `json:"candidates"`
}

package provider

// MeaningResult is the structured suggestion returned by the AI text
// service for an auto-meaning request.
type MeaningResult struct {
	Word              string
	ContextSentenceVi string
	Candidates        []CandidateResult
}

// CandidateResult is a single ranked meaning candidate: the Vietnamese
// meaning, an optional part of speech, and optional back-translations.
type CandidateResult struct {
	Vi   string
	Pos  *string
	Back []string
}

package provider

// MeaningRequest asks for ranked Vietnamese meanings of a word seen in a
// source sentence.
type MeaningRequest struct {
	Word           string
	SourceSentence string
	From           string
	To             string
}

// ExampleRequest asks for one natural example sentence using the word.
type ExampleRequest struct {
	Word           string
	Meaning        *string
	Pos            *string
	SourceSentence *string
}

// IPARequest asks for the IPA transcription of a word.
type IPARequest struct {
	Word    string
	Dialect string // "US" or "UK"; empty means US
}

// TranslateRequest asks for a plain translation of free text.
type TranslateRequest struct {
	Text   string
	From   string
	To     string
	Region string
}

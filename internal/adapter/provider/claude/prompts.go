package claude

import (
	"fmt"
	"strings"

	"github.com/hieunguyen/vocabdeck/internal/provider"
)

// meaningPrompt asks for ranked meaning candidates as strict JSON.
func meaningPrompt(req provider.MeaningRequest) string {
	from, to := req.From, req.To
	if from == "" {
		from = "en"
	}
	if to == "" {
		to = "vi"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are a %s-%s dictionary editor helping a language learner.

The learner highlighted the word "%s"`, langName(from), langName(to), req.Word)
	if req.SourceSentence != "" {
		fmt.Fprintf(&b, ` in this sentence:
%q`, req.SourceSentence)
	}
	fmt.Fprintf(&b, `

Output ONLY a valid JSON object matching this exact schema:
{
  "context_sentence_vi": "<the sentence translated to %s, or empty if no sentence given>",
  "candidates": [
    {
      "vi": "<%s meaning, most likely for this context first>",
      "pos": "<noun|verb|adjective|adverb|phrase or empty>",
      "back": ["<%s back-translation 1>", "<%s back-translation 2>"]
    }
  ]
}

Rules:
- Order candidates by likelihood for this context, most likely first
- Give 2-4 candidates when the word is ambiguous, 1 when it is not
- Output ONLY the JSON, no markdown, no explanations`,
		langName(to), langName(to), langName(from), langName(from))
	return b.String()
}

// examplePrompt asks for a single natural example sentence.
func examplePrompt(req provider.ExampleRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Write one natural English example sentence using the word "%s"`, req.Word)
	if req.Pos != nil && *req.Pos != "" {
		fmt.Fprintf(&b, " as a %s", strings.ToLower(*req.Pos))
	}
	if req.Meaning != nil && *req.Meaning != "" {
		fmt.Fprintf(&b, " in the sense of %q", *req.Meaning)
	}
	if req.SourceSentence != nil && *req.SourceSentence != "" {
		fmt.Fprintf(&b, ", similar in register to: %q", *req.SourceSentence)
	}
	b.WriteString(".\nSuitable for a B1 learner. Output ONLY the sentence, nothing else.")
	return b.String()
}

// ipaPrompt asks for the bare IPA transcription.
func ipaPrompt(req provider.IPARequest) string {
	dialect := "American"
	if strings.EqualFold(req.Dialect, "UK") {
		dialect = "British"
	}
	return fmt.Sprintf(`Give the %s English IPA transcription of the word "%s".
Output ONLY the transcription wrapped in slashes, e.g. /wɜːrd/, nothing else.`, dialect, req.Word)
}

// translatePrompt asks for a plain translation of free text.
func translatePrompt(req provider.TranslateRequest) string {
	from, to := req.From, req.To
	if from == "" {
		from = "en"
	}
	if to == "" {
		to = "vi"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following %s text to %s", langName(from), langName(to))
	if req.Region != "" {
		fmt.Fprintf(&b, " (%s regional usage)", req.Region)
	}
	fmt.Fprintf(&b, ". Output ONLY the translation, nothing else.\n\n%s", req.Text)
	return b.String()
}

// langName expands the short language codes the UI sends.
func langName(code string) string {
	switch strings.ToLower(code) {
	case "en":
		return "English"
	case "vi":
		return "Vietnamese"
	default:
		return code
	}
}

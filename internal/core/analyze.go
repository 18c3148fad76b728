package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"mindtek-chatbot/internal/llm"
	"mindtek-chatbot/pkg"
)

// ExtractorOptions configures the analysis completion call.  Extraction
// runs at a lower temperature than chat so the JSON shape stays stable.
type ExtractorOptions struct {
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// Extractor turns a full transcript into a CustomerRecord via a second
// completion call and writes the record back onto the conversation row.
// Unlike the chat engine it has no degraded mode: analysis is an
// operator tool, so store failures are surfaced.
type Extractor struct {
	Store    Store
	LLM      llm.Client
	Notifier Notifier
	Opts     ExtractorOptions
}

// NewExtractor constructs an Extractor, filling in defaults for any zero
// option values.  The notifier may be nil.
func NewExtractor(store Store, client llm.Client, notifier Notifier, opts ExtractorOptions) *Extractor {
	if opts.Model == "" {
		opts.Model = "gpt-3.5-turbo"
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 1000
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.3
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Extractor{Store: store, LLM: client, Notifier: notifier, Opts: opts}
}

// Analyze extracts customer details from the stored transcript and
// overwrites the conversation's analysis columns with the result.
// Re-running analysis replaces the previous record; it is not additive.
func (x *Extractor) Analyze(ctx context.Context, conversationID string) (pkg.CustomerRecord, error) {
	var zero pkg.CustomerRecord
	if strings.TrimSpace(conversationID) == "" {
		return zero, fmt.Errorf("%w: session ID is required", ErrInvalidInput)
	}
	if x.Store == nil {
		return zero, fmt.Errorf("%w: no store configured", ErrStoreUnavailable)
	}

	conv, err := x.Store.Get(ctx, conversationID)
	if err != nil {
		return zero, err
	}
	if len(conv.Messages) == 0 {
		return zero, fmt.Errorf("%w: no messages in conversation", ErrNotFound)
	}

	cctx, cancel := context.WithTimeout(ctx, x.Opts.Timeout)
	defer cancel()
	reply, err := x.LLM.Complete(cctx, []llm.Message{
		{Role: string(pkg.RoleSystem), Content: ExtractionPrompt},
		{Role: string(pkg.RoleUser), Content: FlattenTranscript(conv.Messages)},
	}, llm.Options{
		Model:       x.Opts.Model,
		MaxTokens:   x.Opts.MaxTokens,
		Temperature: x.Opts.Temperature,
	})
	if err != nil {
		return zero, err
	}

	rec, err := ParseAnalysis(reply)
	if err != nil {
		return zero, err
	}

	if err := x.Store.UpdateAnalysis(ctx, conversationID, rec); err != nil {
		return zero, fmt.Errorf("failed to save analysis results: %w", err)
	}
	if x.Notifier != nil {
		if err := x.Notifier.Notify(ctx, conversationID); err != nil {
			log.Printf("analysis %s: notify failed: %v", conversationID, err)
		}
	}
	return rec, nil
}

// FlattenTranscript renders a transcript as the text block the
// extraction prompt expects: one "User:"/"Assistant:" line per turn,
// joined by blank lines.
func FlattenTranscript(turns []pkg.Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		speaker := "Assistant"
		if t.Role == pkg.RoleUser {
			speaker = "User"
		}
		lines = append(lines, speaker+": "+t.Content)
	}
	return strings.Join(lines, "\n\n")
}

var (
	jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	anyFenceRe  = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// extractStrategies is the ordered list of ways a JSON object may be
// embedded in a model reply.  Each returns a candidate string to parse;
// the first candidate that parses wins.
var extractStrategies = []func(string) (string, bool){
	func(s string) (string, bool) { // fenced ```json block
		if m := jsonFenceRe.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
		return "", false
	},
	func(s string) (string, bool) { // any fenced block
		if m := anyFenceRe.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
		return "", false
	},
	func(s string) (string, bool) { // the whole reply
		return strings.TrimSpace(s), true
	},
}

// ParseAnalysis parses a model reply into a CustomerRecord, trying each
// extraction strategy in order.  Fields absent from the JSON default to
// empty strings, false for the consultation flag and "spam" for lead
// quality.  "ok" is passed through if the model produced it; nothing
// here invents it.
func ParseAnalysis(reply string) (pkg.CustomerRecord, error) {
	for _, strategy := range extractStrategies {
		candidate, ok := strategy(reply)
		if !ok {
			continue
		}
		var rec pkg.CustomerRecord
		if err := json.Unmarshal([]byte(candidate), &rec); err != nil {
			continue
		}
		if rec.LeadQuality == "" {
			rec.LeadQuality = pkg.LeadSpam
		}
		return rec, nil
	}
	return pkg.CustomerRecord{}, &MalformedAnalysisError{Raw: reply}
}

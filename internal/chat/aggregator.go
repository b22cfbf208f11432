package chat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/types"
)

const (
	// Pass 1 examines at most this many candidate notes.
	admissionWindow = 20

	minConceptScore    = 0.4
	minSimilarityScore = 0.3

	// Citation display cap, independent of context size.
	sourceLimit = 5
)

// titleExclusion drops an event whose title contains Substring when the
// note's similarity is below MaxSimilarity, before the threshold check.
type titleExclusion struct {
	Substring     string
	MaxSimilarity float64
}

// TODO(product): confirm whether the "Meet1" exclusion is intended behavior;
// it predates the event-level admission rework.
var titleExclusions = []titleExclusion{
	{Substring: "Meet1", MaxSimilarity: 0.2},
}

// EventBundle is the deduplicated per-event content assembled for one chat
// request. Transcripts keep append order; summaries are a set.
type EventBundle struct {
	EventID    uuid.UUID
	EventTitle string
	EventDate  *time.Time

	Transcripts []string
	summaries   []string
	summarySet  map[string]struct{}
}

func (b *EventBundle) addTranscript(t string) {
	if t != "" {
		b.Transcripts = append(b.Transcripts, t)
	}
}

func (b *EventBundle) addSummary(s string) {
	if s == "" {
		return
	}
	if _, dup := b.summarySet[s]; dup {
		return
	}
	b.summarySet[s] = struct{}{}
	b.summaries = append(b.summaries, s)
}

// Summaries returns the deduplicated summary set in first-seen order.
func (b *EventBundle) Summaries() []string { return b.summaries }

func (b *EventBundle) CombinedTranscript() string { return strings.Join(b.Transcripts, " ") }

func (b *EventBundle) CombinedSummary() string { return strings.Join(b.summaries, " ") }

// Aggregation is the outcome of one relevance pass. An empty Bundles slice
// means "no relevant context", which is a valid outcome distinct from a
// failed search: the caller switches to the context-free prompt template.
type Aggregation struct {
	Bundles     []*EventBundle
	Sources     []types.SourceRef
	ContextText string
}

func (a *Aggregation) HasContext() bool { return len(a.Bundles) > 0 }

// Aggregator decides relevance at event granularity: one chunk clearing the
// threshold admits its whole event, and every chunk of an admitted event
// contributes content.
type Aggregator struct {
	log *logger.Logger
}

func NewAggregator(log *logger.Logger) *Aggregator {
	return &Aggregator{log: log.With("service", "RelevanceAggregator")}
}

func (a *Aggregator) Aggregate(ctx context.Context, query string, notes []types.Note) *Aggregation {
	_, span := otel.Tracer("chat").Start(ctx, "RelevanceAggregator.Aggregate")
	defer span.End()
	span.SetAttributes(attribute.Int("candidate_notes", len(notes)))

	// Pass 1: event admission over the top of the candidate list.
	admitted := make(map[uuid.UUID]struct{})
	window := notes
	if len(window) > admissionWindow {
		window = window[:admissionWindow]
	}
	for _, note := range window {
		conceptScore := 0.0
		if note.ConceptScore != nil {
			conceptScore = *note.ConceptScore
		}
		similarityScore := 0.0
		if note.SimilarityScore != nil {
			similarityScore = *note.SimilarityScore
		}

		if excludedByTitle(note.EventTitle, similarityScore) {
			a.log.Debug("event excluded by title rule",
				"event_title", note.EventTitle, "similarity", similarityScore)
			continue
		}

		if conceptScore >= minConceptScore || similarityScore >= minSimilarityScore {
			admitted[note.EventID] = struct{}{}
		}
	}

	// Pass 2: collect content from every note of an admitted event, not
	// just the notes that cleared the threshold.
	bundlesByEvent := make(map[uuid.UUID]*EventBundle)
	var bundles []*EventBundle
	for _, note := range notes {
		if _, ok := admitted[note.EventID]; !ok {
			continue
		}
		bundle, ok := bundlesByEvent[note.EventID]
		if !ok {
			bundle = &EventBundle{
				EventID:    note.EventID,
				EventTitle: note.EventTitle,
				EventDate:  note.EventDate,
				summarySet: make(map[string]struct{}),
			}
			bundlesByEvent[note.EventID] = bundle
			bundles = append(bundles, bundle)
		}
		bundle.addTranscript(note.Transcript)
		bundle.addSummary(note.Summary)
	}

	var contextParts []string
	sources := make([]types.SourceRef, 0, len(bundles))
	for _, bundle := range bundles {
		contextParts = append(contextParts,
			"Event: "+bundle.EventTitle+
				"\nTranscript: "+bundle.CombinedTranscript()+
				"\nSummary: "+bundle.CombinedSummary()+
				"\n---")
		sources = append(sources, types.SourceRef{
			EventID:    bundle.EventID,
			EventTitle: bundle.EventTitle,
			EventDate:  bundle.EventDate,
		})
	}
	if len(sources) > sourceLimit {
		sources = sources[:sourceLimit]
	}

	span.SetAttributes(attribute.Int("admitted_events", len(bundles)))
	a.log.Info("relevance aggregation complete",
		"candidates", len(notes), "admitted_events", len(bundles))

	return &Aggregation{
		Bundles:     bundles,
		Sources:     sources,
		ContextText: strings.Join(contextParts, "\n"),
	}
}

func excludedByTitle(title string, similarity float64) bool {
	for _, rule := range titleExclusions {
		if strings.Contains(title, rule.Substring) && similarity < rule.MaxSimilarity {
			return true
		}
	}
	return false
}

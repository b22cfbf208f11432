package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/notey-backend/internal/search"
	"github.com/yungbote/notey-backend/internal/services"
	"github.com/yungbote/notey-backend/internal/types"
)

// stubAI serves both the answer model and the embedder.
type stubAI struct {
	answer  string
	prompts []string
	vectors map[string][]float32
	dim     int
}

func (s *stubAI) GenerateText(_ context.Context, prompt string, _ services.GenerateOptions) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.answer, nil
}

func (s *stubAI) Embed(_ context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i, text := range inputs {
		if vec, ok := s.vectors[text]; ok {
			out[i] = vec
		} else {
			out[i] = make([]float32, s.dim)
		}
	}
	return out, nil
}

type fakeEventRepo struct{ events map[uuid.UUID]*types.Event }

func (f *fakeEventRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.Event, error) {
	if e, ok := f.events[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEventRepo) GetByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]*types.Event, error) {
	var out []*types.Event
	for _, id := range ids {
		if e, ok := f.events[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID, _ int) ([]*types.Event, error) {
	var out []*types.Event
	for _, e := range f.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) GetPhotosByEventIDs(_ context.Context, _ *gorm.DB, _ []uuid.UUID) ([]*types.EventPhoto, error) {
	return nil, nil
}

type fakeChunkRepo struct{ chunks []*types.AudioChunk }

func (f *fakeChunkRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.AudioChunk, error) {
	for _, c := range f.chunks {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeChunkRepo) GetByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]*types.AudioChunk, error) {
	var out []*types.AudioChunk
	for _, c := range f.chunks {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeChunkRepo) GetByEventIDs(_ context.Context, _ *gorm.DB, eventIDs []uuid.UUID) ([]*types.AudioChunk, error) {
	var out []*types.AudioChunk
	for _, c := range f.chunks {
		for _, id := range eventIDs {
			if c.EventID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeChunkRepo) ListByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID, _ int) ([]*types.AudioChunk, error) {
	var out []*types.AudioChunk
	for _, c := range f.chunks {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChunkRepo) UpdateTranscription(_ context.Context, _ *gorm.DB, _ uuid.UUID, _ string, _ string) error {
	return nil
}

type fakeConceptRepo struct{ concepts []*types.Concept }

func (f *fakeConceptRepo) UpsertByName(_ context.Context, _ *gorm.DB, userID uuid.UUID, name string) (*types.Concept, error) {
	for _, c := range f.concepts {
		if c.UserID == userID && c.Name == name {
			return c, nil
		}
	}
	c := &types.Concept{ID: uuid.New(), UserID: userID, Name: name}
	f.concepts = append(f.concepts, c)
	return c, nil
}

func (f *fakeConceptRepo) FindByNameLike(_ context.Context, _ *gorm.DB, userID uuid.UUID, name string) (*types.Concept, error) {
	for _, c := range f.concepts {
		if c.UserID == userID && strings.Contains(strings.ToLower(c.Name), strings.ToLower(name)) {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeConceptRepo) ListByUser(_ context.Context, _ *gorm.DB, userID uuid.UUID) ([]*types.Concept, error) {
	var out []*types.Concept
	for _, c := range f.concepts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeConceptRepo) GetByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]*types.Concept, error) {
	var out []*types.Concept
	for _, c := range f.concepts {
		for _, id := range ids {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (f *fakeConceptRepo) Delete(_ context.Context, _ *gorm.DB, _ uuid.UUID, _ uuid.UUID) error {
	return nil
}

type fakeChunkConceptRepo struct {
	links  []*types.ChunkConcept
	counts map[uuid.UUID]int64
}

func (f *fakeChunkConceptRepo) Upsert(_ context.Context, _ *gorm.DB, link *types.ChunkConcept) error {
	f.links = append(f.links, link)
	return nil
}

func (f *fakeChunkConceptRepo) GetByConceptID(_ context.Context, _ *gorm.DB, userID uuid.UUID, conceptID uuid.UUID) ([]*types.ChunkConcept, error) {
	var out []*types.ChunkConcept
	for _, l := range f.links {
		if l.UserID == userID && l.ConceptID == conceptID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeChunkConceptRepo) GetByChunkIDs(_ context.Context, _ *gorm.DB, userID uuid.UUID, chunkIDs []uuid.UUID) ([]*types.ChunkConcept, error) {
	var out []*types.ChunkConcept
	for _, l := range f.links {
		if l.UserID != userID {
			continue
		}
		for _, id := range chunkIDs {
			if l.ChunkID == id {
				out = append(out, l)
			}
		}
	}
	return out, nil
}

func (f *fakeChunkConceptRepo) CountByConceptID(_ context.Context, _ *gorm.DB, _ uuid.UUID, conceptID uuid.UUID) (int64, error) {
	return f.counts[conceptID], nil
}

func (f *fakeChunkConceptRepo) DeleteByChunkID(_ context.Context, _ *gorm.DB, _ uuid.UUID, _ uuid.UUID) error {
	return nil
}

type fakeChatMessageRepo struct{ created []*types.ChatMessage }

func (f *fakeChatMessageRepo) Create(_ context.Context, _ *gorm.DB, msg *types.ChatMessage) error {
	f.created = append(f.created, msg)
	return nil
}

func (f *fakeChatMessageRepo) ListByUser(_ context.Context, _ *gorm.DB, _ uuid.UUID, _ int) ([]*types.ChatMessage, error) {
	return f.created, nil
}

type chatFixture struct {
	userID   uuid.UUID
	ai       *stubAI
	events   *fakeEventRepo
	chunks   *fakeChunkRepo
	concepts *fakeConceptRepo
	links    *fakeChunkConceptRepo
	messages *fakeChatMessageRepo
	svc      Service
}

func newChatFixture(t *testing.T, ai *stubAI) *chatFixture {
	t.Helper()
	log := testLogger(t)
	f := &chatFixture{
		userID:   uuid.New(),
		ai:       ai,
		events:   &fakeEventRepo{events: map[uuid.UUID]*types.Event{}},
		chunks:   &fakeChunkRepo{},
		concepts: &fakeConceptRepo{},
		links:    &fakeChunkConceptRepo{counts: map[uuid.UUID]int64{}},
		messages: &fakeChatMessageRepo{},
	}
	index := search.NewEmbeddingIndex(log, ai, ai.dim, "test-model", nil)
	f.svc = NewService(
		log,
		f.events,
		f.chunks,
		f.concepts,
		f.links,
		f.messages,
		search.NewService(log, index),
		NewAggregator(log),
		ai,
	)
	return f
}

func TestAskAnswersFromConceptNotes(t *testing.T) {
	ai := &stubAI{
		answer: "You rolled back the deploy during release sync.",
		dim:    2,
		vectors: map[string][]float32{
			"what happened with deployments": {1, 0},
			"deployments":                    {1, 0},
		},
	}
	f := newChatFixture(t, ai)

	eventID := uuid.New()
	startedAt := time.Date(2026, 8, 12, 10, 0, 0, 0, time.UTC)
	f.events.events[eventID] = &types.Event{ID: eventID, UserID: f.userID, Title: "release sync", StartedAt: startedAt}

	chunkID := uuid.New()
	f.chunks.chunks = []*types.AudioChunk{{
		ID: chunkID, EventID: eventID, UserID: f.userID,
		Transcript: "we rolled back the deploy", Summary: "deploy rollback",
	}}

	conceptID := uuid.New()
	f.concepts.concepts = []*types.Concept{{ID: conceptID, UserID: f.userID, Name: "deployments"}}
	f.links.links = []*types.ChunkConcept{{
		ChunkID: chunkID, ConceptID: conceptID, UserID: f.userID, Score: 4.2,
	}}

	result, err := f.svc.Ask(context.Background(), f.userID, "what happened with deployments")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if result.Answer != ai.answer {
		t.Fatalf("wrong answer: %q", result.Answer)
	}
	if len(result.Sources) != 1 || result.Sources[0].EventID != eventID {
		t.Fatalf("wrong sources: %+v", result.Sources)
	}
	if result.Sources[0].EventTitle != "release sync" {
		t.Fatalf("source missing event title: %+v", result.Sources[0])
	}
	if len(result.RelatedConcepts) != 1 || result.RelatedConcepts[0] != "deployments" {
		t.Fatalf("wrong related concepts: %+v", result.RelatedConcepts)
	}
	if len(ai.prompts) != 1 || !strings.Contains(ai.prompts[0], "we rolled back the deploy") {
		t.Fatalf("prompt missing note content: %v", ai.prompts)
	}
	if len(f.messages.created) != 1 {
		t.Fatalf("chat message not persisted")
	}
	if f.messages.created[0].Query != "what happened with deployments" {
		t.Fatalf("persisted wrong query: %q", f.messages.created[0].Query)
	}
}

func TestAskRejectsWeaklyMentionedConcepts(t *testing.T) {
	ai := &stubAI{
		answer: "Nothing in your notes covers that.",
		dim:    2,
		vectors: map[string][]float32{
			"tell me about kubernetes": {1, 0},
			"kubernetes":               {1, 0},
		},
	}
	f := newChatFixture(t, ai)

	eventID := uuid.New()
	f.events.events[eventID] = &types.Event{ID: eventID, UserID: f.userID, Title: "weak mention", StartedAt: time.Now()}

	chunkID := uuid.New()
	f.chunks.chunks = []*types.AudioChunk{{
		ID: chunkID, EventID: eventID, UserID: f.userID,
		Transcript: "kubernetes came up in passing",
	}}

	// The concept name matches the query perfectly, but the one mention is
	// far below the admission threshold. The query-to-name similarity must
	// not stand in for per-note evidence.
	conceptID := uuid.New()
	f.concepts.concepts = []*types.Concept{{ID: conceptID, UserID: f.userID, Name: "kubernetes"}}
	f.links.links = []*types.ChunkConcept{{
		ChunkID: chunkID, ConceptID: conceptID, UserID: f.userID, Score: 0.2,
	}}

	result, err := f.svc.Ask(context.Background(), f.userID, "tell me about kubernetes")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if len(result.Sources) != 0 {
		t.Fatalf("event admitted despite concept score 0.2 < 0.4: sources=%+v", result.Sources)
	}
	if len(ai.prompts) != 1 || !strings.Contains(ai.prompts[0], "No relevant notes were found") {
		t.Fatalf("weak mention should lead to the context-free prompt, got: %v", ai.prompts)
	}
	// The concept still matched, so it is reported as related.
	if len(result.RelatedConcepts) != 1 || result.RelatedConcepts[0] != "kubernetes" {
		t.Fatalf("wrong related concepts: %+v", result.RelatedConcepts)
	}
}

func TestAskFallsBackToTranscriptSearch(t *testing.T) {
	ai := &stubAI{
		answer: "The budget review covered hiring.",
		dim:    2,
		vectors: map[string][]float32{
			"budget":                  {1, 0},
			"quarterly budget review": {1, 0},
			"lunch plans":             {-1, 0},
		},
	}
	f := newChatFixture(t, ai)

	eventID := uuid.New()
	f.events.events[eventID] = &types.Event{ID: eventID, UserID: f.userID, Title: "finance call", StartedAt: time.Now()}
	noiseEvent := uuid.New()
	f.events.events[noiseEvent] = &types.Event{ID: noiseEvent, UserID: f.userID, Title: "misc", StartedAt: time.Now()}

	f.chunks.chunks = []*types.AudioChunk{
		{ID: uuid.New(), EventID: eventID, UserID: f.userID, Transcript: "quarterly budget review"},
		{ID: uuid.New(), EventID: noiseEvent, UserID: f.userID, Transcript: "lunch plans"},
	}

	result, err := f.svc.Ask(context.Background(), f.userID, "budget")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if len(result.Sources) != 1 || result.Sources[0].EventID != eventID {
		t.Fatalf("fallback search picked wrong sources: %+v", result.Sources)
	}
	if len(result.RelatedConcepts) != 0 {
		t.Fatalf("fallback path should have no related concepts: %+v", result.RelatedConcepts)
	}
	if !strings.Contains(ai.prompts[0], "quarterly budget review") {
		t.Fatalf("prompt missing fallback content: %v", ai.prompts)
	}
}

func TestAskWithoutContextUsesFallbackPrompt(t *testing.T) {
	ai := &stubAI{answer: "Nothing in your notes matches that.", dim: 2, vectors: map[string][]float32{}}
	f := newChatFixture(t, ai)

	result, err := f.svc.Ask(context.Background(), f.userID, "anything about dragons?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if len(result.Sources) != 0 {
		t.Fatalf("no-context answer should cite nothing: %+v", result.Sources)
	}
	if len(ai.prompts) != 1 || !strings.Contains(ai.prompts[0], "No relevant notes were found") {
		t.Fatalf("expected the context-free prompt, got: %v", ai.prompts)
	}
	if len(f.messages.created) != 1 {
		t.Fatalf("no-context exchange should still be persisted")
	}
}

func TestSearchConceptsBlendsPopularity(t *testing.T) {
	ai := &stubAI{
		dim: 2,
		vectors: map[string][]float32{
			"planning": {1, 0},
			// cos 0.6 -> similarity 0.8
			"alpha": {0.6, 0.8},
			// cos 0.9 -> similarity 0.95
			"beta": {0.9, 0.43588989},
		},
	}
	f := newChatFixture(t, ai)

	alphaID, betaID := uuid.New(), uuid.New()
	f.concepts.concepts = []*types.Concept{
		{ID: alphaID, UserID: f.userID, Name: "alpha"},
		{ID: betaID, UserID: f.userID, Name: "beta"},
	}
	// alpha is mentioned constantly, beta never.
	f.links.counts[alphaID] = 10
	f.links.counts[betaID] = 0

	results, err := f.svc.SearchConcepts(context.Background(), f.userID, "planning", 2)
	if err != nil {
		t.Fatalf("SearchConcepts: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	// 0.7*0.8 + 0.3*1.0 = 0.86 beats 0.7*0.95 + 0.3*0 = 0.665.
	if results[0].Name != "alpha" {
		t.Fatalf("popularity should outrank raw similarity: %+v", results)
	}
	if results[0].MentionCount != 10 {
		t.Fatalf("mention count not carried: %+v", results[0])
	}
	if results[1].SimilarityScore <= results[0].SimilarityScore {
		t.Fatalf("beta should keep the higher raw similarity: %+v", results)
	}
}

func TestGetNotesByConceptJoinsEvents(t *testing.T) {
	ai := &stubAI{dim: 2, vectors: map[string][]float32{}}
	f := newChatFixture(t, ai)

	eventID := uuid.New()
	startedAt := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	f.events.events[eventID] = &types.Event{ID: eventID, UserID: f.userID, Title: "design review", StartedAt: startedAt}

	chunkID := uuid.New()
	f.chunks.chunks = []*types.AudioChunk{{
		ID: chunkID, EventID: eventID, UserID: f.userID,
		Transcript: "schema discussion", Summary: "schema", StartTime: 30, Length: 60,
	}}
	conceptID := uuid.New()
	f.concepts.concepts = []*types.Concept{{ID: conceptID, UserID: f.userID, Name: "database schema"}}
	f.links.links = []*types.ChunkConcept{{ChunkID: chunkID, ConceptID: conceptID, UserID: f.userID, Score: 3.5}}

	notes, err := f.svc.GetNotesByConcept(context.Background(), f.userID, "schema")
	if err != nil {
		t.Fatalf("GetNotesByConcept: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(notes))
	}
	n := notes[0]
	if n.EventTitle != "design review" {
		t.Fatalf("event title not joined: %+v", n)
	}
	if n.EventDate == nil || !n.EventDate.Equal(startedAt) {
		t.Fatalf("event date not joined: %+v", n)
	}
	if n.ConceptScore == nil || *n.ConceptScore != 3.5 {
		t.Fatalf("concept score not carried: %+v", n)
	}
	if n.StartTime != 30 || n.Duration != 60 {
		t.Fatalf("chunk timing not carried: %+v", n)
	}
}

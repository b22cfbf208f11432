package graph

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/notey-backend/internal/types"
)

func TestBuildMentionsEdgeAveragesLinkScores(t *testing.T) {
	eventID := uuid.New()
	conceptID := uuid.New()
	chunkA, chunkB, chunkC := uuid.New(), uuid.New(), uuid.New()

	g := Build(Input{
		Events:   []*types.Event{{ID: eventID, Title: "standup"}},
		Concepts: []*types.Concept{{ID: conceptID, Name: "deploys"}},
		Links: []*types.ChunkConcept{
			{ChunkID: chunkA, ConceptID: conceptID, Score: 1},
			{ChunkID: chunkB, ConceptID: conceptID, Score: 3},
			{ChunkID: chunkC, ConceptID: conceptID, Score: 5},
		},
		ChunkEvents: map[uuid.UUID]uuid.UUID{
			chunkA: eventID, chunkB: eventID, chunkC: eventID,
		},
	})

	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 rolled-up edge, got %d: %+v", len(g.Edges), g.Edges)
	}
	edge := g.Edges[0]
	if edge.Type != EdgeTypeMentions {
		t.Fatalf("wrong edge type: %q", edge.Type)
	}
	if edge.Score != 3.0 {
		t.Fatalf("edge score = %v, want mean 3.0", edge.Score)
	}
	if edge.Source != "event_"+eventID.String() || edge.Target != "concept_"+conceptID.String() {
		t.Fatalf("wrong endpoints: %+v", edge)
	}
}

func TestBuildNodeIDsAndLabels(t *testing.T) {
	eventID := uuid.New()
	conceptID := uuid.New()
	g := Build(Input{
		Events:   []*types.Event{{ID: eventID}}, // no title
		Concepts: []*types.Concept{{ID: conceptID, Name: "roadmap"}},
	})

	if len(g.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(g.Nodes))
	}
	if g.Nodes[0].ID != "event_"+eventID.String() || g.Nodes[0].Type != NodeTypeEvent {
		t.Fatalf("bad event node: %+v", g.Nodes[0])
	}
	if g.Nodes[0].Label != "Untitled" {
		t.Fatalf("missing title should label as Untitled, got %q", g.Nodes[0].Label)
	}
	if g.Nodes[1].ID != "concept_"+conceptID.String() || g.Nodes[1].Label != "roadmap" {
		t.Fatalf("bad concept node: %+v", g.Nodes[1])
	}
}

func TestBuildRelatedEdgesRequireBothEndpoints(t *testing.T) {
	a, b, missing := uuid.New(), uuid.New(), uuid.New()
	g := Build(Input{
		Concepts: []*types.Concept{{ID: a, Name: "a"}, {ID: b, Name: "b"}},
		Relations: []*types.ConceptRelation{
			{SrcID: a, DstID: b, Score: 2.5},
			{SrcID: a, DstID: missing, Score: 4.0},
			{SrcID: missing, DstID: b, Score: 4.0},
		},
	})

	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 related edge, got %d: %+v", len(g.Edges), g.Edges)
	}
	edge := g.Edges[0]
	if edge.Type != EdgeTypeRelated || edge.Score != 2.5 {
		t.Fatalf("bad related edge: %+v", edge)
	}
	if !strings.HasPrefix(edge.Source, "concept_") || !strings.HasPrefix(edge.Target, "concept_") {
		t.Fatalf("related edge endpoints must both be concepts: %+v", edge)
	}
}

func TestBuildSkipsDanglingLinks(t *testing.T) {
	eventID := uuid.New()
	conceptID := uuid.New()
	orphanChunk := uuid.New()
	linkedChunk := uuid.New()

	g := Build(Input{
		Events:   []*types.Event{{ID: eventID, Title: "sync"}},
		Concepts: []*types.Concept{{ID: conceptID, Name: "x"}},
		Links: []*types.ChunkConcept{
			{ChunkID: linkedChunk, ConceptID: conceptID, Score: 2},
			// No chunk-to-event mapping: cannot be rolled up.
			{ChunkID: orphanChunk, ConceptID: conceptID, Score: 5},
			// Concept absent from the node set.
			{ChunkID: linkedChunk, ConceptID: uuid.New(), Score: 5},
		},
		ChunkEvents: map[uuid.UUID]uuid.UUID{linkedChunk: eventID},
	})

	if len(g.Edges) != 1 {
		t.Fatalf("expected 1 edge, got %d: %+v", len(g.Edges), g.Edges)
	}
	if g.Edges[0].Score != 2 {
		t.Fatalf("dangling links leaked into the rollup: %+v", g.Edges[0])
	}
}

func TestBuildEmptyInput(t *testing.T) {
	g := Build(Input{})
	if g.Nodes == nil || g.Edges == nil {
		t.Fatalf("empty graph should have non-nil slices")
	}
	if len(g.Nodes) != 0 || len(g.Edges) != 0 {
		t.Fatalf("empty input should build empty graph: %+v", g)
	}
}

func TestBuildNoChunkNodes(t *testing.T) {
	eventID := uuid.New()
	conceptID := uuid.New()
	chunkID := uuid.New()
	g := Build(Input{
		Events:      []*types.Event{{ID: eventID, Title: "t"}},
		Concepts:    []*types.Concept{{ID: conceptID, Name: "c"}},
		Links:       []*types.ChunkConcept{{ChunkID: chunkID, ConceptID: conceptID, Score: 1}},
		ChunkEvents: map[uuid.UUID]uuid.UUID{chunkID: eventID},
	})
	for _, n := range g.Nodes {
		if n.Type != NodeTypeEvent && n.Type != NodeTypeConcept {
			t.Fatalf("unexpected node type %q", n.Type)
		}
		if strings.Contains(n.ID, chunkID.String()) {
			t.Fatalf("chunk leaked into node set: %+v", n)
		}
	}
}

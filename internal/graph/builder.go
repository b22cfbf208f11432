package graph

import (
	"github.com/google/uuid"

	"github.com/yungbote/notey-backend/internal/types"
)

const (
	NodeTypeEvent   = "event"
	NodeTypeConcept = "concept"

	EdgeTypeMentions = "MENTIONS"
	EdgeTypeRelated  = "RELATED"
)

// Node is one graph vertex. IDs are prefixed by kind so event and concept
// namespaces cannot collide.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`
	Score  float64 `json:"score"`
}

type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Input is everything the builder needs, already scoped to one user. Chunks
// are not graphed directly: their concept links are rolled up to the owning
// event.
type Input struct {
	Events    []*types.Event
	Concepts  []*types.Concept
	Links     []*types.ChunkConcept
	Relations []*types.ConceptRelation

	// ChunkEvents maps a chunk to its owning event for link rollup.
	ChunkEvents map[uuid.UUID]uuid.UUID
}

func eventNodeID(id uuid.UUID) string   { return "event_" + id.String() }
func conceptNodeID(id uuid.UUID) string { return "concept_" + id.String() }

// Build assembles the concept graph. Nodes and edges keep input order. A
// MENTIONS edge aggregates all chunk-level links between one event and one
// concept into a single edge scored by their arithmetic mean; a RELATED edge
// is emitted only when both endpoint concepts made it into the node set.
func Build(in Input) *Graph {
	g := &Graph{Nodes: []Node{}, Edges: []Edge{}}

	eventNodes := make(map[uuid.UUID]struct{}, len(in.Events))
	for _, e := range in.Events {
		label := e.Title
		if label == "" {
			label = "Untitled"
		}
		g.Nodes = append(g.Nodes, Node{ID: eventNodeID(e.ID), Label: label, Type: NodeTypeEvent})
		eventNodes[e.ID] = struct{}{}
	}

	conceptNodes := make(map[uuid.UUID]struct{}, len(in.Concepts))
	for _, c := range in.Concepts {
		g.Nodes = append(g.Nodes, Node{ID: conceptNodeID(c.ID), Label: c.Name, Type: NodeTypeConcept})
		conceptNodes[c.ID] = struct{}{}
	}

	// Roll chunk links up to (event, concept) pairs, keeping first-seen order.
	type pair struct{ event, concept uuid.UUID }
	sums := make(map[pair]float64)
	counts := make(map[pair]int)
	var order []pair
	for _, link := range in.Links {
		eventID, ok := in.ChunkEvents[link.ChunkID]
		if !ok {
			continue
		}
		if _, ok := eventNodes[eventID]; !ok {
			continue
		}
		if _, ok := conceptNodes[link.ConceptID]; !ok {
			continue
		}
		p := pair{event: eventID, concept: link.ConceptID}
		if counts[p] == 0 {
			order = append(order, p)
		}
		sums[p] += link.Score
		counts[p]++
	}
	for _, p := range order {
		g.Edges = append(g.Edges, Edge{
			Source: eventNodeID(p.event),
			Target: conceptNodeID(p.concept),
			Type:   EdgeTypeMentions,
			Score:  sums[p] / float64(counts[p]),
		})
	}

	for _, rel := range in.Relations {
		if _, ok := conceptNodes[rel.SrcID]; !ok {
			continue
		}
		if _, ok := conceptNodes[rel.DstID]; !ok {
			continue
		}
		g.Edges = append(g.Edges, Edge{
			Source: conceptNodeID(rel.SrcID),
			Target: conceptNodeID(rel.DstID),
			Type:   EdgeTypeRelated,
			Score:  rel.Score,
		})
	}
	return g
}

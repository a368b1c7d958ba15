package model

// EntityDefinition is one entity row from the graph, annotated with its
// degree (count of distinct relating edges). Ephemeral, never stored.
type EntityDefinition struct {
	Name    string
	Summary string
	Degree  int
}

// RelationshipFact is one directed, currently-valid edge between two
// entities. Temporal fields are pre-rendered strings; empty means absent.
type RelationshipFact struct {
	SourceName   string
	RelationName string
	TargetName   string
	Fact         string
	ValidAt      string
	InvalidAt    string
}

// GraphNode / GraphLink are the react-force-graph view of a user's graph.
type GraphNode struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Val     int    `json:"val"` // connection count, controls node size
	Summary string `json:"summary"`
}

type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
	Fact   string `json:"fact,omitempty"`
}

type GraphView struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

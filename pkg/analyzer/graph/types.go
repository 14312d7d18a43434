package graph

// Node is a file in the module dependency graph.
type Node struct {
	ID   string `json:"id" toon:"id"`
	Name string `json:"name" toon:"name"`
}

// Edge is an import dependency between two files.
type Edge struct {
	From string `json:"from" toon:"from"`
	To   string `json:"to" toon:"to"`
}

// DependencyGraph is the rendered module graph.
type DependencyGraph struct {
	Nodes []Node `json:"nodes" toon:"nodes"`
	Edges []Edge `json:"edges" toon:"edges"`
}

// Metrics holds centrality and structure metrics for the graph.
type Metrics struct {
	NodeMetrics []NodeMetric `json:"node_metrics" toon:"node_metrics"`
	Summary     Summary      `json:"summary" toon:"summary"`
}

// NodeMetric holds computed metrics for a single file.
type NodeMetric struct {
	NodeID                string  `json:"node_id" toon:"node_id"`
	Name                  string  `json:"name" toon:"name"`
	PageRank              float64 `json:"pagerank" toon:"pagerank"`
	BetweennessCentrality float64 `json:"betweenness_centrality" toon:"betweenness_centrality"`
	ClosenessCentrality   float64 `json:"closeness_centrality" toon:"closeness_centrality"`
	HarmonicCentrality    float64 `json:"harmonic_centrality" toon:"harmonic_centrality"`
	InDegree              int     `json:"in_degree" toon:"in_degree"`
	OutDegree             int     `json:"out_degree" toon:"out_degree"`
	CommunityID           int     `json:"community_id,omitempty" toon:"community_id,omitempty"`
}

// Summary provides aggregate graph statistics.
type Summary struct {
	TotalNodes                  int      `json:"total_nodes" toon:"total_nodes"`
	TotalEdges                  int      `json:"total_edges" toon:"total_edges"`
	AvgDegree                   float64  `json:"avg_degree" toon:"avg_degree"`
	Density                     float64  `json:"density" toon:"density"`
	Components                  int      `json:"components" toon:"components"`
	LargestComponent            int      `json:"largest_component" toon:"largest_component"`
	StronglyConnectedComponents int      `json:"strongly_connected_components" toon:"strongly_connected_components"`
	CycleCount                  int      `json:"cycle_count" toon:"cycle_count"`
	CycleNodes                  []string `json:"cycle_nodes,omitempty" toon:"cycle_nodes,omitempty"`
	IsCyclic                    bool     `json:"is_cyclic" toon:"is_cyclic"`
	Modularity                  float64  `json:"modularity,omitempty" toon:"modularity,omitempty"`
	CommunityCount              int      `json:"community_count,omitempty" toon:"community_count,omitempty"`
}

// MermaidDirection specifies the diagram direction.
type MermaidDirection string

const (
	DirectionTD MermaidDirection = "TD"
	DirectionLR MermaidDirection = "LR"
)

// MermaidOptions configures Mermaid diagram generation.
type MermaidOptions struct {
	MaxNodes  int              `json:"max_nodes" toon:"max_nodes"`
	MaxEdges  int              `json:"max_edges" toon:"max_edges"`
	Direction MermaidDirection `json:"direction" toon:"direction"`
}

// DefaultMermaidOptions returns sensible defaults.
func DefaultMermaidOptions() MermaidOptions {
	return MermaidOptions{
		MaxNodes:  50,
		MaxEdges:  150,
		Direction: DirectionTD,
	}
}

// ToMermaid renders the graph as a Mermaid diagram with defaults.
func (g *DependencyGraph) ToMermaid() string {
	return g.ToMermaidWithOptions(DefaultMermaidOptions())
}

// ToMermaidWithOptions renders the graph as a Mermaid diagram.
func (g *DependencyGraph) ToMermaidWithOptions(opts MermaidOptions) string {
	direction := opts.Direction
	if direction == "" {
		direction = DirectionTD
	}
	result := "graph " + string(direction) + "\n"

	nodes := g.Nodes
	edges := g.Edges

	if opts.MaxNodes > 0 && len(nodes) > opts.MaxNodes {
		nodes = nodes[:opts.MaxNodes]
		nodeSet := make(map[string]bool)
		for _, n := range nodes {
			nodeSet[n.ID] = true
		}
		var filtered []Edge
		for _, e := range edges {
			if nodeSet[e.From] && nodeSet[e.To] {
				filtered = append(filtered, e)
			}
		}
		edges = filtered
	}
	if opts.MaxEdges > 0 && len(edges) > opts.MaxEdges {
		edges = edges[:opts.MaxEdges]
	}

	for _, node := range nodes {
		label := EscapeMermaidLabel(node.Name)
		if label == "" {
			label = EscapeMermaidLabel(node.ID)
		}
		result += "    " + SanitizeMermaidID(node.ID) + "[\"" + label + "\"]\n"
	}
	for _, edge := range edges {
		result += "    " + SanitizeMermaidID(edge.From) + " -.->|imports| " + SanitizeMermaidID(edge.To) + "\n"
	}

	return result
}

// SanitizeMermaidID makes an ID safe for Mermaid diagrams.
func SanitizeMermaidID(id string) string {
	if id == "" {
		return "empty"
	}
	var result []byte
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}
	// IDs must not start with a digit.
	if len(result) > 0 && result[0] >= '0' && result[0] <= '9' {
		result = append([]byte{'n'}, result...)
	}
	return string(result)
}

// EscapeMermaidLabel escapes special characters in labels for Mermaid.
func EscapeMermaidLabel(s string) string {
	var result []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '&':
			result = append(result, []byte("&amp;")...)
		case '"':
			result = append(result, []byte("&quot;")...)
		case '<':
			result = append(result, []byte("&lt;")...)
		case '>':
			result = append(result, []byte("&gt;")...)
		case '|':
			result = append(result, []byte("&#124;")...)
		case '[':
			result = append(result, []byte("&#91;")...)
		case ']':
			result = append(result, []byte("&#93;")...)
		case '\n':
			result = append(result, []byte("<br/>")...)
		default:
			result = append(result, c)
		}
	}
	return string(result)
}

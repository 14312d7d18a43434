package graph

import (
	"strings"
	"testing"

	"github.com/arborlint/arbor/pkg/analyzer/deadcode"
)

// diamond: main -> a, main -> b, a -> shared, b -> shared
func diamondGraph() *DependencyGraph {
	return FromModuleGraph(&deadcode.DependencyGraph{
		Files: []string{"main.ts", "a.ts", "b.ts", "shared.ts"},
		Edges: map[string][]string{
			"main.ts": {"a.ts", "b.ts"},
			"a.ts":    {"shared.ts"},
			"b.ts":    {"shared.ts"},
		},
	})
}

func TestFromModuleGraph(t *testing.T) {
	g := diamondGraph()

	if len(g.Nodes) != 4 {
		t.Fatalf("nodes = %v", g.Nodes)
	}
	if g.Nodes[0].ID != "main.ts" || g.Nodes[0].Name != "main.ts" {
		t.Errorf("node[0] = %+v", g.Nodes[0])
	}
	if len(g.Edges) != 4 {
		t.Fatalf("edges = %v", g.Edges)
	}
	if g.Edges[0].From != "main.ts" || g.Edges[0].To != "a.ts" {
		t.Errorf("edge[0] = %+v", g.Edges[0])
	}
}

func TestCalculateMetricsDiamond(t *testing.T) {
	m := CalculateMetrics(diamondGraph())

	if m.Summary.TotalNodes != 4 || m.Summary.TotalEdges != 4 {
		t.Fatalf("summary = %+v", m.Summary)
	}
	// 8 endpoint incidences over 4 nodes.
	if m.Summary.AvgDegree != 2 {
		t.Errorf("AvgDegree = %v, want 2", m.Summary.AvgDegree)
	}
	// 4 edges of 12 possible.
	if diff := m.Summary.Density - 4.0/12.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Density = %v", m.Summary.Density)
	}
	if m.Summary.Components != 1 || m.Summary.LargestComponent != 4 {
		t.Errorf("components = %+v", m.Summary)
	}
	if m.Summary.IsCyclic || m.Summary.CycleCount != 0 {
		t.Errorf("diamond is acyclic, got %+v", m.Summary)
	}

	byID := make(map[string]NodeMetric)
	for _, nm := range m.NodeMetrics {
		byID[nm.NodeID] = nm
	}
	if nm := byID["main.ts"]; nm.InDegree != 0 || nm.OutDegree != 2 {
		t.Errorf("main.ts degrees = %+v", nm)
	}
	if nm := byID["shared.ts"]; nm.InDegree != 2 || nm.OutDegree != 0 {
		t.Errorf("shared.ts degrees = %+v", nm)
	}
	if byID["shared.ts"].PageRank <= byID["a.ts"].PageRank {
		t.Errorf("shared.ts pagerank %v should exceed a.ts %v",
			byID["shared.ts"].PageRank, byID["a.ts"].PageRank)
	}
}

func TestCalculateMetricsCycle(t *testing.T) {
	g := FromModuleGraph(&deadcode.DependencyGraph{
		Files: []string{"a.ts", "b.ts", "c.ts"},
		Edges: map[string][]string{
			"a.ts": {"b.ts"},
			"b.ts": {"a.ts"},
		},
	})

	m := CalculateMetrics(g)
	if !m.Summary.IsCyclic || m.Summary.CycleCount != 1 {
		t.Fatalf("summary = %+v", m.Summary)
	}
	if len(m.Summary.CycleNodes) != 2 || m.Summary.CycleNodes[0] != "a.ts" || m.Summary.CycleNodes[1] != "b.ts" {
		t.Errorf("CycleNodes = %v", m.Summary.CycleNodes)
	}
	if m.Summary.Components != 2 {
		t.Errorf("Components = %d, want 2", m.Summary.Components)
	}
}

func TestCalculateMetricsEmpty(t *testing.T) {
	m := CalculateMetrics(&DependencyGraph{})
	if m.Summary.TotalNodes != 0 || len(m.NodeMetrics) != 0 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestCalculateMetricsSelfLoop(t *testing.T) {
	g := FromModuleGraph(&deadcode.DependencyGraph{
		Files: []string{"a.ts"},
		Edges: map[string][]string{"a.ts": {"a.ts"}},
	})

	// Self-loops are dropped from the gonum graph but still counted as
	// raw edges.
	m := CalculateMetrics(g)
	if m.Summary.TotalEdges != 1 {
		t.Errorf("TotalEdges = %d", m.Summary.TotalEdges)
	}
	if m.Summary.IsCyclic {
		t.Error("self-loop should not report an import cycle")
	}
}

func TestToMermaid(t *testing.T) {
	got := diamondGraph().ToMermaid()

	if !strings.HasPrefix(got, "graph TD\n") {
		t.Errorf("diagram should open with graph TD:\n%s", got)
	}
	for _, want := range []string{
		`["main.ts"]`,
		"-.->|imports|",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("diagram missing %q:\n%s", want, got)
		}
	}
}

func TestToMermaidWithOptionsLimits(t *testing.T) {
	g := diamondGraph()
	got := g.ToMermaidWithOptions(MermaidOptions{MaxNodes: 2, Direction: DirectionLR})

	if !strings.HasPrefix(got, "graph LR\n") {
		t.Errorf("direction not honored:\n%s", got)
	}
	if strings.Contains(got, "shared.ts") {
		t.Errorf("node limit not honored:\n%s", got)
	}
	// main -> a survives; the edges into dropped nodes do not.
	if !strings.Contains(got, "-.->|imports|") {
		t.Errorf("expected the surviving edge:\n%s", got)
	}
	if strings.Count(got, "-.->") != 1 {
		t.Errorf("expected exactly one edge:\n%s", got)
	}
}

func TestSanitizeMermaidID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"src/a.ts", "src_a_ts"},
		{"1st.ts", "n1st_ts"},
		{"", "empty"},
	}
	for _, tt := range tests {
		if got := SanitizeMermaidID(tt.in); got != tt.want {
			t.Errorf("SanitizeMermaidID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

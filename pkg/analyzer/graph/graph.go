// Package graph computes centrality and structure metrics over the
// module dependency graph produced by dead-code analysis.
package graph

import (
	"path/filepath"
	"sort"
	"sync"

	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/arborlint/arbor/pkg/analyzer/deadcode"
)

// FromModuleGraph converts the file-level import graph into the
// rendered form used for metrics and diagram output.
func FromModuleGraph(mod *deadcode.DependencyGraph) *DependencyGraph {
	g := &DependencyGraph{
		Nodes: make([]Node, 0, len(mod.Files)),
		Edges: make([]Edge, 0),
	}
	for _, f := range mod.Files {
		g.Nodes = append(g.Nodes, Node{ID: f, Name: filepath.Base(f)})
	}
	for _, from := range mod.Files {
		for _, to := range mod.Edges[from] {
			g.Edges = append(g.Edges, Edge{From: from, To: to})
		}
	}
	return g
}

// gonumGraph holds the gonum representation and ID mappings.
type gonumGraph struct {
	directed   *simple.DirectedGraph
	undirected *simple.UndirectedGraph
	nodeIDToID map[string]int64
	idToNodeID map[int64]string
}

func toGonumGraph(graph *DependencyGraph) *gonumGraph {
	g := &gonumGraph{
		directed:   simple.NewDirectedGraph(),
		undirected: simple.NewUndirectedGraph(),
		nodeIDToID: make(map[string]int64),
		idToNodeID: make(map[int64]string),
	}

	for i, node := range graph.Nodes {
		id := int64(i)
		g.nodeIDToID[node.ID] = id
		g.idToNodeID[id] = node.ID
		g.directed.AddNode(simple.Node(id))
		g.undirected.AddNode(simple.Node(id))
	}

	// gonum simple graphs reject self-loops.
	for _, edge := range graph.Edges {
		fromID, fromOK := g.nodeIDToID[edge.From]
		toID, toOK := g.nodeIDToID[edge.To]
		if fromOK && toOK && fromID != toID {
			g.directed.SetEdge(simple.Edge{F: simple.Node(fromID), T: simple.Node(toID)})
			if !g.undirected.HasEdgeBetween(fromID, toID) {
				g.undirected.SetEdge(simple.Edge{F: simple.Node(fromID), T: simple.Node(toID)})
			}
		}
	}

	return g
}

// CalculateMetrics computes centrality and structure metrics.
func CalculateMetrics(graph *DependencyGraph) *Metrics {
	metrics := &Metrics{
		NodeMetrics: make([]NodeMetric, 0),
		Summary: Summary{
			TotalNodes: len(graph.Nodes),
			TotalEdges: len(graph.Edges),
		},
	}

	if len(graph.Nodes) == 0 {
		return metrics
	}

	gGraph := toGonumGraph(graph)

	inDegree := make(map[string]int)
	outDegree := make(map[string]int)
	for _, node := range graph.Nodes {
		inDegree[node.ID] = 0
		outDegree[node.ID] = 0
	}
	for _, edge := range graph.Edges {
		inDegree[edge.To]++
		outDegree[edge.From]++
	}

	// PageRank, betweenness, and all-pairs shortest paths are
	// independent, so run them concurrently.
	var pageRankMap, betweennessMap, closenessMap, harmonicMap map[int64]float64
	var allShortest path.AllShortest
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		pageRankMap = network.PageRank(gGraph.directed, 0.85, 1e-6)
	}()
	go func() {
		defer wg.Done()
		betweennessMap = network.Betweenness(gGraph.directed)
	}()
	go func() {
		defer wg.Done()
		allShortest = path.DijkstraAllPaths(gGraph.directed)
	}()
	wg.Wait()

	wg.Add(2)
	go func() {
		defer wg.Done()
		closenessMap = network.Closeness(gGraph.directed, allShortest)
	}()
	go func() {
		defer wg.Done()
		harmonicMap = network.Harmonic(gGraph.directed, allShortest)
	}()
	wg.Wait()

	communities, modularity := communityDetection(gGraph)

	for _, node := range graph.Nodes {
		id := gGraph.nodeIDToID[node.ID]
		metrics.NodeMetrics = append(metrics.NodeMetrics, NodeMetric{
			NodeID:                node.ID,
			Name:                  node.Name,
			PageRank:              pageRankMap[id],
			BetweennessCentrality: betweennessMap[id],
			ClosenessCentrality:   closenessMap[id],
			HarmonicCentrality:    harmonicMap[id],
			InDegree:              inDegree[node.ID],
			OutDegree:             outDegree[node.ID],
			CommunityID:           communities[node.ID],
		})
	}

	totalDegree := 0
	for _, node := range graph.Nodes {
		totalDegree += inDegree[node.ID] + outDegree[node.ID]
	}
	metrics.Summary.AvgDegree = float64(totalDegree) / float64(len(graph.Nodes))

	// Density = E / (V * (V-1)) for a directed graph.
	if len(graph.Nodes) > 1 {
		maxEdges := len(graph.Nodes) * (len(graph.Nodes) - 1)
		metrics.Summary.Density = float64(len(graph.Edges)) / float64(maxEdges)
	}

	components := topo.ConnectedComponents(gGraph.undirected)
	metrics.Summary.Components = len(components)
	for _, comp := range components {
		if len(comp) > metrics.Summary.LargestComponent {
			metrics.Summary.LargestComponent = len(comp)
		}
	}

	// SCCs with more than one node are actual import cycles.
	cycleNodeSet := make(map[string]bool)
	cycles := 0
	for _, scc := range topo.TarjanSCC(gGraph.directed) {
		if len(scc) <= 1 {
			continue
		}
		cycles++
		for _, node := range scc {
			cycleNodeSet[gGraph.idToNodeID[node.ID()]] = true
		}
	}
	metrics.Summary.StronglyConnectedComponents = cycles
	metrics.Summary.CycleCount = cycles
	metrics.Summary.IsCyclic = cycles > 0
	for nodeID := range cycleNodeSet {
		metrics.Summary.CycleNodes = append(metrics.Summary.CycleNodes, nodeID)
	}
	sort.Strings(metrics.Summary.CycleNodes)

	communitySet := make(map[int]bool)
	for _, c := range communities {
		communitySet[c] = true
	}
	metrics.Summary.CommunityCount = len(communitySet)
	metrics.Summary.Modularity = modularity

	return metrics
}

// communityDetection runs gonum's Louvain modularization.
func communityDetection(gGraph *gonumGraph) (map[string]int, float64) {
	communities := make(map[string]int)
	if len(gGraph.idToNodeID) == 0 {
		return communities, 0
	}

	reduced := community.Modularize(gGraph.undirected, 1.0, nil)
	for idx, comm := range reduced.Communities() {
		for _, node := range comm {
			communities[gGraph.idToNodeID[node.ID()]] = idx
		}
	}
	modularity := community.Q(gGraph.undirected, reduced.Communities(), 1.0)
	return communities, modularity
}

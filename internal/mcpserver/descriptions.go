package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// and how to interpret results.

func describeDeadcode() string {
	return `Finds unreachable files, unreferenced classes and functions, and unused local variables.

USE WHEN:
- Cleaning up a codebase before a refactor
- Finding orphaned modules after feature removal
- Auditing a library's public surface for dead internals

INTERPRETING RESULTS:
- deadFile: no entry point reaches this file through imports
- deadClass / deadFunction: declared at top level, referenced nowhere in any reachable file
- unusedVariable: local or parameter never read in its scope
- Library projects exempt public symbols (files under the source root outside internal dirs)
- Lines annotated with an ignore directive are suppressed

METRICS RETURNED:
- Issues: file, line, kind, name, owning class where applicable
- Summary: totals per kind, reachable vs dead file counts
- Graph: resolved file-level import edges and entry points

Note: dynamic imports and reflection-style access can cause false positives.`
}

func describeDuplicates() string {
	return `Detects near-duplicate functions by comparing normalized token sequences.

USE WHEN:
- Hunting copy-paste candidates for extraction into shared helpers
- Reviewing a codebase for structural redundancy
- Checking whether similar-looking handlers are actually clones

INTERPRETING RESULTS:
- Similarity 1.0: bodies identical after normalizing identifiers, numbers, and strings
- Similarity >= threshold (default 0.8): near duplicates worth consolidating
- Only functions with matching parameter signatures are ever paired
- Lines is the smaller body's non-empty line count

METRICS RETURNED:
- Issues: both locations, both symbols, similarity, line count
- Summary: pair count, duplicated lines, P50/P95 similarity`
}

func describeProject() string {
	return `Runs dead-code and duplicate analysis together, parsing every file exactly once.

USE WHEN:
- A full health pass over a project is needed
- Both analyses are wanted and parse cost matters

INTERPRETING RESULTS:
- deadcode and duplicates sections match the standalone tools
- parses reports how many files were parsed (one per file, shared by both analyzers)
- Files that fail to parse are skipped per analyzer, never fatal`
}

func describeGraph() string {
	return `Builds the file-level import graph and computes centrality metrics.

USE WHEN:
- Understanding which files the rest of the codebase depends on
- Finding import cycles
- Prioritizing modules for documentation or testing by centrality

INTERPRETING RESULTS:
- High PageRank: many files depend on this file transitively
- High betweenness: file sits on many dependency paths (coupling bottleneck)
- cycle_nodes: files participating in import cycles
- communities: clusters of files that import each other densely

METRICS RETURNED:
- Node metrics: PageRank, betweenness, closeness, harmonic, degrees, community
- Summary: density, components, SCC/cycle counts, modularity
- Set mermaid=true for a renderable diagram instead`
}

package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/codebook/internal/ir"
)

// ApprovalCycle reports predicates that approve one another, directly or
// through a chain of predicate arguments.
//
// Cycles are legal: a predicate may nest instances of itself. They only
// mean the members cannot all be added with their approvals in place, so
// Build adds them first and sets their approvals afterwards.
type ApprovalCycle struct {
	Path    []string `json:"path"`    // Cycle path: ["a", "b", "a"]
	Message string   `json:"message"` // Human-readable description
}

// approvalGraph maps element name → predicates its arguments approve, in
// argument order.
type approvalGraph struct {
	nodes []string // declaration order
	pos   map[string]int
	edges map[string][]string
}

func buildApprovalGraph(spec *ir.VocabSpec) approvalGraph {
	g := approvalGraph{pos: make(map[string]int), edges: make(map[string][]string)}
	for i, s := range spec.Elements() {
		g.nodes = append(g.nodes, s.Name)
		g.pos[s.Name] = i
		g.edges[s.Name] = []string{}
		for _, a := range s.Args {
			if a.Type != "PREDICATE" {
				continue
			}
			g.edges[s.Name] = append(g.edges[s.Name], a.Approved...)
		}
	}
	return g
}

// AnalyzeApprovals returns the approval cycles of spec, in declaration
// order of their first member. A vocabulary without cycles returns an
// empty list.
func AnalyzeApprovals(spec *ir.VocabSpec) []ApprovalCycle {
	g := buildApprovalGraph(spec)
	cycles := []ApprovalCycle{}
	for _, scc := range g.components() {
		if g.cyclic(scc) {
			cycles = append(cycles, g.cycle(scc))
		}
	}
	slices.SortFunc(cycles, func(a, b ApprovalCycle) int { return g.pos[a.Path[0]] - g.pos[b.Path[0]] })
	return cycles
}

// components finds strongly connected components with Tarjan's algorithm.
//
// Components come out dependencies first: every predicate a component
// approves sits in an earlier component. Members keep declaration order,
// and nodes and edges are visited in declaration order.
func (g approvalGraph) components() [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if _, known := g.edges[w]; !known {
				continue // unknown predicate, reported by Validate
			}
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.SortFunc(scc, func(a, b string) int { return g.pos[a] - g.pos[b] })
			sccs = append(sccs, scc)
		}
	}

	for _, node := range g.nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

// cyclic reports whether scc is a cycle: more than one member, or one
// member approving itself.
func (g approvalGraph) cyclic(scc []string) bool {
	if len(scc) > 1 {
		return true
	}
	for _, w := range g.edges[scc[0]] {
		if w == scc[0] {
			return true
		}
	}
	return false
}

// cycle builds an ApprovalCycle by walking edges inside scc from its
// earliest declared member until it returns there.
func (g approvalGraph) cycle(scc []string) ApprovalCycle {
	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}
	start := scc[0]

	path := []string{start}
	visited := map[string]bool{start: true}
	for current := start; ; {
		var next string
		for _, w := range g.edges[current] {
			if w == start || (members[w] && !visited[w]) {
				next = w
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		visited[next] = true
		current = next
	}

	if len(path) == 2 && path[0] == path[1] {
		return ApprovalCycle{Path: path, Message: fmt.Sprintf("predicate %s approves itself", start)}
	}
	return ApprovalCycle{Path: path, Message: fmt.Sprintf("approval cycle: %s", strings.Join(path, " → "))}
}

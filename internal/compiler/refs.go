package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/trajcon/internal/ir"
)

// refGraph maps a constraint name to the names it refs.
type refGraph map[string][]string

// AnalyzeRefs checks the ref graph across all specs.
//
// Unlike most findings, ref cycles are errors: evaluating a cyclic ref would
// never terminate. The algorithm:
//  1. Build name → refs edges from every node in each tree
//  2. Report refs to names that do not exist (E126)
//  3. Use Tarjan's algorithm to find strongly connected components and
//     report each SCC with size > 1, or a self-loop, as a cycle (E127)
//
// Output is sorted so repeated runs report identical findings.
func AnalyzeRefs(specs []ir.ConstraintSpec) []ValidationError {
	var errs []ValidationError

	graph := buildRefGraph(specs)

	for _, name := range sortedNodes(graph) {
		for _, target := range graph[name] {
			if _, ok := graph[target]; !ok {
				errs = append(errs, ValidationError{
					Field:    name,
					Message:  fmt.Sprintf("ref %q does not name a constraint", target),
					Code:     ErrUnresolvedRef,
					Severity: SeverityError,
				})
			}
		}
	}

	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			path := reconstructCyclePath(scc, graph)
			errs = append(errs, ValidationError{
				Field:    path[0],
				Message:  fmt.Sprintf("ref cycle detected: %s", strings.Join(path, " → ")),
				Code:     ErrRefCycle,
				Severity: SeverityError,
			})
		}
	}

	return errs
}

func buildRefGraph(specs []ir.ConstraintSpec) refGraph {
	graph := make(refGraph, len(specs))
	for _, spec := range specs {
		// Ensure node exists in graph even without edges.
		graph[spec.Name] = append([]string{}, spec.Root.Refs()...)
	}
	return graph
}

func sortedNodes(graph refGraph) []string {
	nodes := make([]string, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

func hasSelfLoop(node string, graph refGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Each SCC is returned with its members sorted; SCCs are ordered by their
// first member.
func tarjanSCC(graph refGraph) [][]string {
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

		for _, w := range graph[v] {
			if _, known := graph[w]; !known {
				continue // unresolved ref, reported separately
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
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, node := range sortedNodes(graph) {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	sort.Slice(sccs, func(i, j int) bool { return sccs[i][0] < sccs[j][0] })
	return sccs
}

// reconstructCyclePath walks edges inside the SCC from its first member
// until it returns to the start.
func reconstructCyclePath(scc []string, graph refGraph) []string {
	if len(scc) == 1 {
		return []string{scc[0], scc[0]}
	}

	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
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
		current = next
	}

	return path
}

// RefClosure returns the named spec followed by every spec reachable from it
// through refs, each once, in discovery order. Unresolved refs are skipped.
// Hashing the closure gives a version that changes only when something the
// named constraint depends on changes.
func RefClosure(specs []ir.ConstraintSpec, name string) []ir.ConstraintSpec {
	byName := make(map[string]ir.ConstraintSpec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}

	var out []ir.ConstraintSpec
	seen := make(map[string]bool)
	queue := []string{name}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		spec, ok := byName[n]
		if !ok || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, spec)
		queue = append(queue, spec.Root.Refs()...)
	}
	return out
}

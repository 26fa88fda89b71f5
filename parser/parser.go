package parser

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Relation is the kind of dependency a reference creates.
type Relation string

const (
	RelationInput              Relation = "input"
	RelationWaitNode           Relation = "waitNode"
	RelationWaitBatch          Relation = "waitBatch"
	RelationWaitAny            Relation = "waitAny"
	RelationAlgorithmExecution Relation = "algorithmExecution"
)

// Reserved input roots. Nodes may not use these names.
const (
	FlowInput  = "flowInput"
	DataSource = "dataSource"
)

const (
	refPrefix   = "@"
	batchPrefix = "#"
	anyPrefix   = "*"
)

// Reference is one node reference found in an input.
type Reference struct {
	NodeName string
	Path     string
	Type     Relation
}

// Parser extracts node references from inputs and checks flow input paths.
type Parser interface {
	ExtractNodesFromInput(input any) []Reference
	CheckFlowInput(flowInput map[string]any, input any) error
}

// Default returns the standard expression parser.
func Default() Parser { return exprParser{} }

type exprParser struct{}

// ExtractNodesFromInput returns every node reference in input, depth first.
// Flow input and data source references are not node references.
func (exprParser) ExtractNodesFromInput(input any) []Reference {
	var refs []Reference
	walkStrings(input, func(s string) {
		ref, ok := parseRef(s)
		if !ok || isReservedRoot(ref.NodeName) {
			return
		}
		refs = append(refs, ref)
	})
	return refs
}

// CheckFlowInput verifies that every @flowInput path in input resolves
// against flowInput.
func (exprParser) CheckFlowInput(flowInput map[string]any, input any) error {
	var firstErr error
	walkStrings(input, func(s string) {
		if firstErr != nil {
			return
		}
		ref, ok := parseRef(s)
		if !ok || ref.NodeName != FlowInput {
			return
		}
		if flowInput == nil {
			firstErr = fmt.Errorf("unable to find flowInput.%s", ref.Path)
			return
		}
		if ref.Path == "" {
			return
		}
		if _, found := Lookup(flowInput, ref.Path); !found {
			firstErr = fmt.Errorf("unable to find flowInput.%s", ref.Path)
		}
	})
	return firstErr
}

// parseRef parses a single expression string.
func parseRef(s string) (Reference, bool) {
	rel := RelationWaitNode
	switch {
	case strings.HasPrefix(s, batchPrefix+refPrefix):
		rel = RelationWaitBatch
		s = s[len(batchPrefix):]
	case strings.HasPrefix(s, anyPrefix+refPrefix):
		rel = RelationWaitAny
		s = s[len(anyPrefix):]
	}
	if !strings.HasPrefix(s, refPrefix) {
		return Reference{}, false
	}
	s = strings.TrimSpace(s[len(refPrefix):])
	if s == "" {
		return Reference{}, false
	}
	name, path, _ := strings.Cut(s, ".")
	if name == "" {
		return Reference{}, false
	}
	return Reference{NodeName: name, Path: path, Type: rel}, true
}

func isReservedRoot(name string) bool {
	return name == FlowInput || name == DataSource
}

// walkStrings calls fn for every string in v. Map keys are visited in sorted
// order so results are deterministic.
func walkStrings(v any, fn func(string)) {
	switch t := v.(type) {
	case string:
		fn(t)
	case []any:
		for _, e := range t {
			walkStrings(e, fn)
		}
	case []string:
		for _, e := range t {
			fn(e)
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkStrings(t[k], fn)
		}
	}
}

// Lookup resolves a dotted path in a JSON-like value. Numeric segments index
// into arrays.
func Lookup(v any, path string) (any, bool) {
	cur := v
	for _, seg := range strings.Split(path, ".") {
		switch t := cur.(type) {
		case map[string]any:
			next, ok := t[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(t) {
				return nil, false
			}
			cur = t[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

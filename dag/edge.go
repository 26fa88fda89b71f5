package dag

import (
	"encoding/json"
	"slices"
)

// EdgeValue is the payload of an edge: the relation types plus any extra
// properties supplied with an explicit edge. Props are stored next to types
// in the serialized form.
type EdgeValue struct {
	Types []EdgeType
	Props map[string]any
}

// Has reports whether the edge carries t.
func (e EdgeValue) Has(t EdgeType) bool { return slices.Contains(e.Types, t) }

func (e EdgeValue) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Props)+1)
	for k, v := range e.Props {
		out[k] = v
	}
	types := e.Types
	if types == nil {
		types = []EdgeType{}
	}
	out["types"] = types
	return json.Marshal(out)
}

func (e *EdgeValue) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = EdgeValue{}
	for k, v := range raw {
		if k == "types" {
			if err := json.Unmarshal(v, &e.Types); err != nil {
				return err
			}
			continue
		}
		var prop any
		if err := json.Unmarshal(v, &prop); err != nil {
			return err
		}
		if e.Props == nil {
			e.Props = make(map[string]any)
		}
		e.Props[k] = prop
	}
	return nil
}

// waitMode is how a child reacts to one of its parents completing, decided
// by the types on the edge between them.
type waitMode int

const (
	// modeNone never makes the child ready.
	modeNone waitMode = iota
	// modeExecution is an algorithm execution edge; it has no scheduling
	// effect.
	modeExecution
	// modeAnyMixed combines WaitAny with WaitNode or WaitBatch; the child
	// waits for all parents and then receives per index groups.
	modeAnyMixed
	// modeAnyIndex is WaitAny on a batch element; the child waits for the
	// same index on every WaitAny parent.
	modeAnyIndex
	// modeNode is WaitNode or WaitBatch without WaitAny.
	modeNode
)

func classify(e EdgeValue, index int) waitMode {
	waitAny := e.Has(EdgeWaitAny)
	waitNode := e.Has(EdgeWaitNode) || e.Has(EdgeWaitBatch)
	switch {
	case e.Has(EdgeAlgorithmExecution):
		return modeExecution
	case waitAny && waitNode:
		return modeAnyMixed
	case waitAny && index > 0:
		return modeAnyIndex
	case waitNode:
		return modeNode
	default:
		return modeNone
	}
}

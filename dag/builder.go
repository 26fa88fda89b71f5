package dag

import (
	"slices"

	apperrors "github.com/kbukum/jobgraph/errors"
	"github.com/kbukum/jobgraph/logger"
	"github.com/kbukum/jobgraph/parser"
	"github.com/kbukum/jobgraph/validation"
)

var reservedNames = []string{parser.FlowInput, parser.DataSource}

// New builds the graph for p. The descriptor is validated field by field
// first, then nodes, references and explicit edges are added and the
// structural rules checked. On success every node has its level.
func New(p *Pipeline, opts ...Option) (*NodesMap, error) {
	if p == nil {
		return nil, apperrors.InvalidInput("pipeline", "is required")
	}
	if err := validation.Validate(p); err != nil {
		return nil, err
	}

	m := newNodesMap(opts...)
	if err := m.build(p); err != nil {
		m.log.Warn("pipeline rejected", logger.Fields(
			logger.FieldPipeline, p.Name,
			logger.FieldError, err.Error(),
		))
		return nil, err
	}
	m.log.Debug("pipeline graph built", logger.Fields(
		logger.FieldPipeline, p.Name,
		"nodes", m.g.NodeCount(),
		"edges", m.g.EdgeCount(),
	))
	return m, nil
}

func (m *NodesMap) build(p *Pipeline) error {
	for i := range p.Nodes {
		if err := m.addNode(p, &p.Nodes[i]); err != nil {
			return err
		}
	}
	m.addExplicitEdges(p.Edges)
	if err := m.checkOutputNodes(p); err != nil {
		return err
	}
	if err := m.checkEntryNodes(p); err != nil {
		return err
	}
	if !p.IsStream() && !m.g.IsAcyclic() {
		return apperrors.InvalidPipeline(ReasonCycleOnBatch,
			"cyclic nodes are not allowed on %s pipeline", kindName(p))
	}
	m.assignLevels()
	return nil
}

func (m *NodesMap) addNode(p *Pipeline, spec *NodeSpec) error {
	if spec.StateType == StateTypeStateful && p.IsBatch() {
		return apperrors.InvalidPipeline(ReasonStatefulOnBatch,
			"%s node %q is not allowed on %s pipeline", StateTypeStateful, spec.NodeName, kindName(p))
	}
	kind := spec.Kind
	if kind == "" {
		kind = NodeKindAlgorithm
	}
	if kind == NodeKindAlgorithm && spec.AlgorithmName == "" {
		return apperrors.InvalidPipeline(ReasonMissingAlgorithm, "please provide algorithm name")
	}
	if kind == NodeKindPipeline && (spec.Spec == nil || spec.Spec.Name == "") {
		return apperrors.InvalidPipeline(ReasonMissingPipeline, "please provide pipeline name")
	}
	if m.GetNode(spec.NodeName) != nil {
		return apperrors.InvalidPipeline(ReasonDuplicateNode, "found duplicate node %q", spec.NodeName)
	}
	if slices.Contains(reservedNames, spec.NodeName) {
		return apperrors.InvalidPipeline(ReasonReservedName,
			"pipeline %q has invalid reserved name %q", p.Name, spec.NodeName)
	}

	stateType := spec.StateType
	if p.IsStream() {
		switch {
		case kind == NodeKindAlgorithm && stateType == "":
			stateType = StateTypeStateless
		case kind == NodeKindGateway:
			stateType = StateTypeStateful
		}
	}

	for _, in := range spec.Input {
		if m.opts.checkFlowInput {
			if err := m.opts.parser.CheckFlowInput(p.FlowInput, in); err != nil {
				return apperrors.InvalidPipeline(ReasonFlowInput, "%s", err.Error()).WithCause(err)
			}
		}
		for _, ref := range m.opts.parser.ExtractNodesFromInput(in) {
			if err := m.addReference(p, spec.NodeName, ref); err != nil {
				return err
			}
		}
	}

	pipelineName := ""
	if spec.Spec != nil {
		pipelineName = spec.Spec.Name
	}
	m.g.SetNode(spec.NodeName, &Node{
		NodeName:         spec.NodeName,
		OrigName:         spec.OrigName,
		Kind:             kind,
		AlgorithmName:    spec.AlgorithmName,
		PipelineName:     pipelineName,
		TaskID:           m.opts.newTaskID(),
		Status:           StatusCreating,
		Input:            spec.Input,
		ExtraData:        spec.ExtraData,
		Metrics:          spec.Metrics,
		Retry:            spec.Retry,
		TTL:              spec.TTL,
		StateType:        stateType,
		IncludeInResults: spec.IncludeInResults,
		Level:            -1,
		Batch:            []*Batch{},
	})
	return nil
}

// addReference adds or extends the edge for one reference found in target's
// input. References matching only an origName are accepted but create no
// edge.
func (m *NodesMap) addReference(p *Pipeline, target string, ref parser.Reference) error {
	source := ref.NodeName
	known := slices.ContainsFunc(p.Nodes, func(n NodeSpec) bool {
		return n.NodeName == source || n.OrigName == source
	})
	if !known {
		if m.opts.validateNodesRelations {
			return apperrors.InvalidPipeline(ReasonMissingNode,
				"node %q is depend on node %q which is not exists", target, source)
		}
		return nil
	}
	i := slices.IndexFunc(p.Nodes, func(n NodeSpec) bool { return n.NodeName == source })
	if i < 0 {
		return nil
	}
	if p.IsStream() && p.Nodes[i].Kind != NodeKindDataSource {
		return apperrors.InvalidPipeline(ReasonStreamReference,
			"the \"@\" sign is not allowed in %q pipeline, please use the \"streaming.flows\" property instead", kindName(p))
	}
	edge, ok := m.g.Edge(source, target)
	if !ok {
		m.g.SetEdge(source, target, EdgeValue{Types: []EdgeType{EdgeType(ref.Type), EdgeInput}})
		return nil
	}
	edge.Types = append(edge.Types, EdgeType(ref.Type))
	m.g.SetEdge(source, target, edge)
	return nil
}

// addExplicitEdges adds declared edges between existing nodes that are not
// already connected. Edges created from input references win.
func (m *NodesMap) addExplicitEdges(edges []EdgeSpec) {
	for _, e := range edges {
		if m.g.HasEdge(e.Source, e.Target) || m.GetNode(e.Source) == nil || m.GetNode(e.Target) == nil {
			m.log.Debug("explicit edge skipped", logger.Fields("source", e.Source, "target", e.Target))
			continue
		}
		types := append([]EdgeType{EdgeWaitNode}, e.Types...)
		m.g.SetEdge(e.Source, e.Target, EdgeValue{Types: types, Props: e.Props})
	}
}

func (m *NodesMap) checkOutputNodes(p *Pipeline) error {
	var outputs []*Node
	for _, n := range m.AllNodes() {
		if n.Kind == NodeKindOutput {
			outputs = append(outputs, n)
		}
	}
	if len(outputs) == 0 {
		return nil
	}
	if p.IsStream() {
		return apperrors.InvalidPipeline(ReasonOutputOnStream,
			"Node of type output can not be used in a streaming pipeline")
	}
	for _, n := range outputs {
		if len(m.Children(n.NodeName)) > 0 {
			return apperrors.InvalidPipeline(ReasonOutputHasChildren,
				"node %q should not depend on an output node", n.NodeName)
		}
	}
	for _, n := range outputs {
		if len(m.Parents(n.NodeName)) == 0 {
			return apperrors.InvalidPipeline(ReasonOutputNoParents,
				"output node %q should have input nodes", n.NodeName)
		}
	}
	return nil
}

func (m *NodesMap) checkEntryNodes(p *Pipeline) error {
	if !p.IsStream() || !m.opts.validateStateType {
		return nil
	}
	for _, name := range m.Sources() {
		if n := m.GetNode(name); n != nil && n.StateType == StateTypeStateless {
			return apperrors.InvalidPipeline(ReasonStatelessEntry,
				"entry node %q cannot be %s on %s pipeline", name, StateTypeStateless, kindName(p))
		}
	}
	return nil
}

func kindName(p *Pipeline) PipelineKind {
	if p.Kind == "" {
		return PipelineKindBatch
	}
	return p.Kind
}

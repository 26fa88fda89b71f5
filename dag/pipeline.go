package dag

// Pipeline is the descriptor a job graph is built from. It can be decoded
// from JSON or YAML.
type Pipeline struct {
	// Name is the pipeline identifier.
	Name string `json:"name" yaml:"name" validate:"required"`
	// Kind is "batch" (the default) or "stream".
	Kind PipelineKind `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=batch stream"`
	// Nodes are added to the graph in declaration order.
	Nodes []NodeSpec `json:"nodes" yaml:"nodes" validate:"dive"`
	// Edges adds explicit WaitNode relations on top of input references.
	Edges []EdgeSpec `json:"edges,omitempty" yaml:"edges,omitempty" validate:"dive"`
	// FlowInput is the job's initial data, referenced as @flowInput.<path>.
	FlowInput map[string]any `json:"flowInput,omitempty" yaml:"flowInput,omitempty"`
}

// IsStream reports whether the pipeline runs in streaming mode.
func (p *Pipeline) IsStream() bool { return p.Kind == PipelineKindStream }

// IsBatch reports whether the pipeline runs in batch mode. An empty kind is
// batch.
func (p *Pipeline) IsBatch() bool { return p.Kind == "" || p.Kind == PipelineKindBatch }

// NodeSpec declares one node.
type NodeSpec struct {
	NodeName string `json:"nodeName" yaml:"nodeName" validate:"required"`
	// OrigName is the name the node had before the pipeline was flattened.
	// References may use either name.
	OrigName      string    `json:"origName,omitempty" yaml:"origName,omitempty"`
	Kind          NodeKind  `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=algorithm pipeline output dataSource gateway debug"`
	AlgorithmName string    `json:"algorithmName,omitempty" yaml:"algorithmName,omitempty"`
	Spec          *SubSpec  `json:"spec,omitempty" yaml:"spec,omitempty"`
	Input         []any     `json:"input,omitempty" yaml:"input,omitempty"`
	StateType     StateType `json:"stateType,omitempty" yaml:"stateType,omitempty" validate:"omitempty,oneof=stateless stateful"`

	ExtraData        map[string]any `json:"extraData,omitempty" yaml:"extraData,omitempty"`
	Metrics          map[string]any `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Retry            map[string]any `json:"retry,omitempty" yaml:"retry,omitempty"`
	TTL              int            `json:"ttl,omitempty" yaml:"ttl,omitempty" validate:"min=0"`
	IncludeInResults bool           `json:"includeInResults,omitempty" yaml:"includeInResults,omitempty"`
}

// SubSpec names the pipeline a pipeline-kind node runs.
type SubSpec struct {
	Name string `json:"name" yaml:"name"`
}

// EdgeSpec is an explicit edge. Types are appended after WaitNode.
type EdgeSpec struct {
	Source string         `json:"source" yaml:"source" validate:"required"`
	Target string         `json:"target" yaml:"target" validate:"required"`
	Types  []EdgeType     `json:"types,omitempty" yaml:"types,omitempty"`
	Props  map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
}

package dag

// Node is a vertex of the job graph.
type Node struct {
	NodeName      string         `json:"nodeName"`
	OrigName      string         `json:"origName,omitempty"`
	Kind          NodeKind       `json:"kind,omitempty"`
	AlgorithmName string         `json:"algorithmName,omitempty"`
	PipelineName  string         `json:"pipelineName,omitempty"`
	TaskID        string         `json:"taskId,omitempty"`
	Status        Status         `json:"status"`
	Input         []any          `json:"input"`
	Result        any            `json:"result,omitempty"`
	Error         string         `json:"error,omitempty"`
	Warnings      []string       `json:"warnings,omitempty"`
	ExtraData     map[string]any `json:"extraData,omitempty"`
	Metrics       map[string]any `json:"metrics,omitempty"`
	Retry         map[string]any `json:"retry,omitempty"`
	TTL           int            `json:"ttl,omitempty"`
	StateType     StateType      `json:"stateType,omitempty"`

	IncludeInResults bool `json:"includeInResults,omitempty"`

	// Level is the longest distance from an entry node, or -1 when the
	// node cannot be reached from any entry node.
	Level int      `json:"level"`
	Batch []*Batch `json:"batch"`

	// AlgorithmExecution marks synthetic nodes created for executions an
	// algorithm spawns at run time.
	AlgorithmExecution bool `json:"algorithmExecution,omitempty"`
}

// IsBatched reports whether the node is represented by batch elements.
func (n *Node) IsBatched() bool { return len(n.Batch) > 0 }

// Task returns a snapshot of the node as a task.
func (n *Node) Task() Task {
	return Task{
		TaskID:   n.TaskID,
		NodeName: n.NodeName,
		Status:   n.Status,
		Result:   n.Result,
		Error:    n.Error,
	}
}

// Batch is one element of a node's batch, or one execution of a synthetic
// execution node.
type Batch struct {
	TaskID        string   `json:"taskId"`
	NodeName      string   `json:"nodeName"`
	BatchIndex    int      `json:"batchIndex"`
	Status        Status   `json:"status"`
	Result        any      `json:"result,omitempty"`
	Error         string   `json:"error,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	ShouldRun     bool     `json:"shouldRun,omitempty"`
	AlgorithmName string   `json:"algorithmName,omitempty"`
	Input         []any    `json:"input,omitempty"`
	ExecID        string   `json:"execId,omitempty"`
	Level         int      `json:"level,omitempty"`
}

// NewBatch creates a batch element in the creating state. Batch indexes
// start at 1.
func NewBatch(nodeName string, batchIndex int, taskID string) *Batch {
	return &Batch{
		TaskID:     taskID,
		NodeName:   nodeName,
		BatchIndex: batchIndex,
		Status:     StatusCreating,
	}
}

// Task returns a snapshot of the batch element as a task.
func (b *Batch) Task() Task {
	return Task{
		TaskID:     b.TaskID,
		NodeName:   b.NodeName,
		BatchIndex: b.BatchIndex,
		Status:     b.Status,
		Result:     b.Result,
		Error:      b.Error,
	}
}

// Task is the view of a node or batch element the runtime reports on.
// BatchIndex is 0 for whole-node tasks.
type Task struct {
	TaskID     string `json:"taskId"`
	NodeName   string `json:"nodeName"`
	BatchIndex int    `json:"batchIndex,omitempty"`
	Status     Status `json:"status"`
	Result     any    `json:"result,omitempty"`
	Error      string `json:"error,omitempty"`
}

// NodeResult is one entry of the pipeline's final results.
type NodeResult struct {
	NodeName      string `json:"nodeName"`
	AlgorithmName string `json:"algorithmName,omitempty"`
	TaskID        string `json:"taskId,omitempty"`
	BatchIndex    int    `json:"batchIndex,omitempty"`
	Status        Status `json:"status"`
	Result        any    `json:"result,omitempty"`
	Error         string `json:"error,omitempty"`
}

func nodeResultOf(n *Node) NodeResult {
	return NodeResult{
		NodeName:      n.NodeName,
		AlgorithmName: n.AlgorithmName,
		TaskID:        n.TaskID,
		Status:        n.Status,
		Result:        n.Result,
		Error:         n.Error,
	}
}

func batchResultOf(n *Node, b *Batch) NodeResult {
	return NodeResult{
		NodeName:      n.NodeName,
		AlgorithmName: n.AlgorithmName,
		TaskID:        b.TaskID,
		BatchIndex:    b.BatchIndex,
		Status:        b.Status,
		Result:        b.Result,
		Error:         b.Error,
	}
}

// ParentOutput is one parent result handed to a ready child. Index is 0
// when the entry covers the whole parent node.
type ParentOutput struct {
	Type   EdgeType `json:"type"`
	Node   string   `json:"node"`
	Result any      `json:"result"`
	Index  int      `json:"index,omitempty"`
}

// ReadyNode tells the orchestrator that NodeName can run with the given
// parent outputs. Index is the batch index the run belongs to, or 0.
type ReadyNode struct {
	NodeName     string         `json:"nodeName"`
	ParentOutput []ParentOutput `json:"parentOutput"`
	Index        int            `json:"index,omitempty"`
}

// ParentResult is a parent's result at a given batch index.
type ParentResult struct {
	Node   string `json:"node"`
	Result any    `json:"result"`
}

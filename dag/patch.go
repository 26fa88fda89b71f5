package dag

// TaskState is a partial update for a task. Nil fields are left unchanged.
// Warning is appended to the task's warnings.
type TaskState struct {
	Status  *Status `json:"status,omitempty"`
	Result  any     `json:"result,omitempty"`
	Error   *string `json:"error,omitempty"`
	Warning *string `json:"warning,omitempty"`
}

func (s TaskState) applyNode(n *Node) {
	if s.Warning != nil {
		n.Warnings = append(n.Warnings, *s.Warning)
	}
	if s.Status != nil {
		n.Status = *s.Status
	}
	if s.Result != nil {
		n.Result = s.Result
	}
	if s.Error != nil {
		n.Error = *s.Error
	}
}

func (s TaskState) applyBatch(b *Batch) {
	if s.Warning != nil {
		b.Warnings = append(b.Warnings, *s.Warning)
	}
	if s.Status != nil {
		b.Status = *s.Status
	}
	if s.Result != nil {
		b.Result = s.Result
	}
	if s.Error != nil {
		b.Error = *s.Error
	}
}

// NodePatch is a partial update for a node. Nil fields are left unchanged;
// ExtraData is merged key by key.
type NodePatch struct {
	TaskID           *string
	Status           *Status
	Result           any
	Error            *string
	AlgorithmName    *string
	Input            []any
	ExtraData        map[string]any
	StateType        *StateType
	IncludeInResults *bool
}

func (p NodePatch) apply(n *Node) {
	if p.TaskID != nil {
		n.TaskID = *p.TaskID
	}
	if p.Status != nil {
		n.Status = *p.Status
	}
	if p.Result != nil {
		n.Result = p.Result
	}
	if p.Error != nil {
		n.Error = *p.Error
	}
	if p.AlgorithmName != nil {
		n.AlgorithmName = *p.AlgorithmName
	}
	if p.Input != nil {
		n.Input = p.Input
	}
	if len(p.ExtraData) > 0 {
		if n.ExtraData == nil {
			n.ExtraData = make(map[string]any, len(p.ExtraData))
		}
		for k, v := range p.ExtraData {
			n.ExtraData[k] = v
		}
	}
	if p.StateType != nil {
		n.StateType = *p.StateType
	}
	if p.IncludeInResults != nil {
		n.IncludeInResults = *p.IncludeInResults
	}
}

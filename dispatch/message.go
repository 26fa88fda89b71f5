package dispatch

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/jobgraph/dag"
)

// ContentType is the content-type header value of encoded messages.
const ContentType = "application/json"

// Message is the wire form of one ready node.
type Message struct {
	EventID      string             `json:"eventId"`
	JobID        string             `json:"jobId"`
	NodeName     string             `json:"nodeName"`
	Index        int                `json:"index,omitempty"`
	ParentOutput []dag.ParentOutput `json:"parentOutput"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// NewMessage wraps a ready node with a fresh event id.
func NewMessage(jobID string, n dag.ReadyNode) Message {
	parents := n.ParentOutput
	if parents == nil {
		parents = []dag.ParentOutput{}
	}
	return Message{
		EventID:      uuid.NewString(),
		JobID:        jobID,
		NodeName:     n.NodeName,
		Index:        n.Index,
		ParentOutput: parents,
		CreatedAt:    time.Now().UTC(),
	}
}

// Key partitions messages by job and node so one node's runs stay ordered.
func (m Message) Key() string {
	key := m.JobID + ":" + m.NodeName
	if m.Index > 0 {
		key += ":" + strconv.Itoa(m.Index)
	}
	return key
}

// ReadyNode converts the message back to the engine type.
func (m Message) ReadyNode() dag.ReadyNode {
	return dag.ReadyNode{NodeName: m.NodeName, ParentOutput: m.ParentOutput, Index: m.Index}
}

// DecodeMessage parses a message produced by a KafkaSink.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	err := json.Unmarshal(data, &m)
	return m, err
}

package dag

import (
	"github.com/google/uuid"

	"github.com/kbukum/jobgraph/logger"
	"github.com/kbukum/jobgraph/parser"
)

type options struct {
	parser                 parser.Parser
	checkFlowInput         bool
	validateNodesRelations bool
	validateStateType      bool
	log                    *logger.Logger
	newTaskID              func() string
}

func defaultOptions() options {
	return options{
		parser:                 parser.Default(),
		validateNodesRelations: true,
		validateStateType:      true,
		log:                    logger.Nop(),
		newTaskID:              uuid.NewString,
	}
}

// Option configures how a NodesMap is built.
type Option func(*options)

// WithParser replaces the input expression parser.
func WithParser(p parser.Parser) Option {
	return func(o *options) { o.parser = p }
}

// WithFlowInputCheck enables checking @flowInput references against the
// pipeline's flow input. Off by default.
func WithFlowInputCheck(enabled bool) Option {
	return func(o *options) { o.checkFlowInput = enabled }
}

// WithNodesRelationsValidation controls rejection of references to unknown
// nodes. On by default.
func WithNodesRelationsValidation(enabled bool) Option {
	return func(o *options) { o.validateNodesRelations = enabled }
}

// WithStateTypeValidation controls rejection of stateless entry nodes in
// streaming pipelines. On by default.
func WithStateTypeValidation(enabled bool) Option {
	return func(o *options) { o.validateStateType = enabled }
}

// WithLogger sets the logger used by the map.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log.WithComponent("dag")
		}
	}
}

// WithTaskIDGenerator replaces the generator for node task ids.
func WithTaskIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newTaskID = fn
		}
	}
}

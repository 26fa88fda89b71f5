// Package parser reads the node input expressions of a pipeline definition.
//
// An input is an arbitrary JSON-like value. Strings inside it may reference
// other nodes or the pipeline's flow input:
//
//	"@green"              whole output of node green, wait for the node
//	"@green.data.items"   a path inside green's output
//	"#@green"             green's output, wait for its whole batch
//	"*@green"             green's output, per matching batch index
//	"@flowInput.files"    a value from the pipeline flow input
//
// Arrays and objects are walked recursively, so one input can reference many
// producers.
package parser

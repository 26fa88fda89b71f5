// Package errors provides the structured error type shared by the graph engine
// and its adapters. Every failure carries a machine-readable code, a
// human-readable message and, optionally, a reason that narrows the code to a
// specific rule so callers can match it with errors.Is.
package errors

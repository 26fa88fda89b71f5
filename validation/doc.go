// Package validation provides input validation for pipeline descriptors and
// service configuration.
//
// Struct tag validation uses go-playground/validator and reports field paths
// with their json names:
//
//	type NodeSpec struct {
//	    NodeName string `json:"nodeName" validate:"required"`
//	}
//	err := validation.Validate(spec)
//
// Programmatic validation collects errors before reporting them together:
//
//	v := validation.New()
//	v.Required("addr", cfg.Addr)
//	v.OneOf("type", cfg.Type, "redis", "database", "memory")
//	err := v.Validate()
package validation

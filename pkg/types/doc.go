// Package types holds the shared data model for rulesmith: rules,
// targets, delivery modes, the per-unit sync context and the
// filesystem interface all components operate through.
package types

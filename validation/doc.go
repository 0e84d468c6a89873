// Package validation wraps go-playground/validator with mapstructure-aware
// field names and readable messages. It is the single validation entry point
// for configuration structs.
package validation

// Package validation checks configuration structs and command arguments.
//
// Struct tag validation (go-playground/validator) is used for configuration
// loaded from files, environment and flags; field names in messages follow
// the mapstructure keys a user actually types:
//
//	type Config struct {
//	    Host string `mapstructure:"host" validate:"required"`
//	}
//	err := validation.Validate(cfg) // "host: is required"
//
// Programmatic validation collects errors for command arguments:
//
//	err := validation.New().
//	    Range("node", node, 1, 4).
//	    Required("image-path", path).
//	    Validate()
//
// Both return *errors.AppError with code INVALID_INPUT and the failing
// fields in Details["fields"].
package validation

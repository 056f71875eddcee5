package assembler

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the assembler processor component with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "assembler",
		Factory:     NewComponent,
		Schema:      assemblerSchema,
		Type:        "processor",
		Protocol:    "nats",
		Domain:      "vehicle",
		Description: "Vehicle record assembler for catalog detail pages",
		Version:     "0.1.0",
	})
}

package spawn

import (
	"errors"
	"fmt"
)

var (
	// ErrUnregisteredGenerator is returned for identifiers unknown to the registry.
	ErrUnregisteredGenerator = errors.New("spawn point generator not registered")

	// ErrInstantiation is returned when a generator type cannot be built for a world.
	ErrInstantiation = errors.New("spawn point generator cannot be instantiated")

	// ErrGenerationExhausted is returned when a generator gave up searching for a candidate.
	ErrGenerationExhausted = errors.New("spawn point generation exhausted")

	// ErrInvalidConfiguration is returned when generator data is rejected. Nothing is applied.
	ErrInvalidConfiguration = errors.New("invalid spawn point generator configuration")

	// ErrUnknownWorld is returned by Service for worlds that are not configured.
	ErrUnknownWorld = errors.New("unknown world")
)

// GenerationExhaustedError reports how many candidates a generator tried before giving up.
type GenerationExhaustedError struct {
	Generator string
	Attempts  int
}

func (e *GenerationExhaustedError) Error() string {
	return fmt.Sprintf("%s generator found no valid spawn point after %d attempts", e.Generator, e.Attempts)
}

func (e *GenerationExhaustedError) Unwrap() error { return ErrGenerationExhausted }

// ConfigError describes the first rejected key of a configuration update.
type ConfigError struct {
	Key    string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return "invalid generator configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid generator configuration: %s=%v: %s", e.Key, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

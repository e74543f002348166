package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the board configuration. Struct rules come from the validate tags;
// uniqueness of render targets and the timezone are checked by hand.
func (b Board) Validate() error {
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("invalid board configuration: %w", err)
	}

	seen := make(map[string]bool, len(b.Groupings))
	for _, g := range b.Groupings {
		if seen[g.TargetID] {
			return fmt.Errorf("invalid board configuration: duplicate element_id %q", g.TargetID)
		}
		seen[g.TargetID] = true
	}

	if b.Timezone != "" {
		if _, err := time.LoadLocation(b.Timezone); err != nil {
			return fmt.Errorf("invalid board configuration: timezone %q: %w", b.Timezone, err)
		}
	}
	return nil
}

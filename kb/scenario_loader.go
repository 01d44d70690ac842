// kb/scenario_loader.go
package kb

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/dinosim/core"
	"github.com/signalsfoundry/dinosim/model"
)

// Scenario is a small summary of what was loaded from YAML.
type Scenario struct {
	Bodies     []string
	Spacecraft []string
	// Configured counts spacecraft that came with comm params.
	Configured int
}

// internal YAML shapes – keep them unexported so we're free to evolve them.
type scenarioYAML struct {
	Bodies     []bodyYAML       `yaml:"bodies"`
	Spacecraft []spacecraftYAML `yaml:"spacecraft"`
}

type bodyYAML struct {
	Name   string  `yaml:"name"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
}

type spacecraftYAML struct {
	Name          string           `yaml:"name"`
	Body          string           `yaml:"body"`
	Altitude      float64          `yaml:"altitude"`
	AngleGlobal   float64          `yaml:"angle_global"`
	PointingAngle float64          `yaml:"pointing_angle"`
	Comm          *core.CommParams `yaml:"comm"`
}

// LoadScenario reads a YAML scenario from r and populates kb with its
// bodies and spacecraft. Spacecraft with a comm block are configured;
// the rest stay kinematic-only.
//
// Loading stops at the first invalid entity; entities added before it stay
// in the KB.
func LoadScenario(kb *KnowledgeBase, r io.Reader) (*Scenario, error) {
	if kb == nil {
		return nil, fmt.Errorf("LoadScenario: kb is nil")
	}

	var payload scenarioYAML
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("LoadScenario: decode failed: %w", err)
	}

	result := &Scenario{
		Bodies:     make([]string, 0, len(payload.Bodies)),
		Spacecraft: make([]string, 0, len(payload.Spacecraft)),
	}

	// 1) Bodies
	for _, b := range payload.Bodies {
		if err := kb.AddBody(model.NewBody(b.Name, b.X, b.Y, b.Radius)); err != nil {
			return nil, fmt.Errorf("LoadScenario: body %q: %w", b.Name, err)
		}
		result.Bodies = append(result.Bodies, b.Name)
	}

	// 2) Spacecraft, then their radios
	for _, s := range payload.Spacecraft {
		body := kb.GetBody(s.Body)
		if body == nil {
			return nil, fmt.Errorf("LoadScenario: spacecraft %q: %w: %q", s.Name, ErrBodyNotFound, s.Body)
		}
		sc, err := core.NewSpacecraft(s.Name, body, s.Altitude, s.AngleGlobal, s.PointingAngle)
		if err != nil {
			return nil, fmt.Errorf("LoadScenario: %w", err)
		}
		if err := kb.AddSpacecraft(sc); err != nil {
			return nil, fmt.Errorf("LoadScenario: spacecraft %q: %w", s.Name, err)
		}
		result.Spacecraft = append(result.Spacecraft, s.Name)

		if s.Comm != nil {
			if err := kb.ConfigureSpacecraft(s.Name, *s.Comm); err != nil {
				return nil, fmt.Errorf("LoadScenario: %w", err)
			}
			result.Configured++
		}
	}

	return result, nil
}

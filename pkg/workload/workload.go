// Package workload defines the YAML-driven WorkloadProfile
// (SPEC_FULL.md §5), modeled on the teacher's apiVersion/kind/metadata/spec
// scenario shape. A profile tunes the read/write/delete operation mix,
// fault probability, and run bounds without recompiling the simulator. Its
// query weights are validated but not read by pkg/driver.
package workload

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the root WorkloadProfile document.
type Profile struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       Spec     `yaml:"spec"`
}

// Metadata names the profile.
type Metadata struct {
	Name string `yaml:"name"`
}

// Spec holds every tunable the driver consults.
type Spec struct {
	QueryWeights     QueryWeights     `yaml:"queryWeights"`
	OperationMix     OperationMix     `yaml:"operationMix"`
	FaultProbability FaultProbability `yaml:"faultProbability"`
	Ticks            Range            `yaml:"ticks"`
	MaxTables        Range            `yaml:"maxTables"`
	PageSize         int              `yaml:"pageSize"`
}

// QueryWeights mirrors spec.md §4.3's 301-bucket split, expressed as
// relative weights instead of hardcoded constants.
type QueryWeights struct {
	Create int `yaml:"create"`
	Select int `yaml:"select"`
	Insert int `yaml:"insert"`
	Delete int `yaml:"delete"`
}

// OperationMix resolves spec.md §9 Open Question 5: the percentages a
// driver tick uses to choose between a read, a write, or a delete once it
// has decided not to run a management action.
type OperationMix struct {
	ReadPercent   int `yaml:"readPercent"`
	WritePercent  int `yaml:"writePercent"`
	DeletePercent int `yaml:"deletePercent"`
}

// FaultProbability holds the façade's injection rates.
type FaultProbability struct {
	IOWait float64 `yaml:"ioWait"`
}

// Range is a min/max pair for an integer parameter. Nothing samples from
// it: cmd/simulator uses Max as the run's value, and Min is only validated.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Default reproduces spec.md's exact constants, used whenever no
// --profile is given.
func Default() *Profile {
	return &Profile{
		APIVersion: "dbsim/v1",
		Kind:       "WorkloadProfile",
		Metadata:   Metadata{Name: "default"},
		Spec: Spec{
			QueryWeights:     QueryWeights{Create: 1, Select: 100, Insert: 100, Delete: 100},
			OperationMix:     OperationMix{ReadPercent: 33, WritePercent: 33, DeletePercent: 34},
			FaultProbability: FaultProbability{IOWait: 0.0001},
			Ticks:            Range{Min: 0, Max: 4096},
			MaxTables:        Range{Min: 0, Max: 128},
			PageSize:         4096,
		},
	}
}

// Load reads and validates a WorkloadProfile from path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("workload: read %s: %w", path, err)
	}

	profile := Default()
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("workload: parse %s: %w", path, err)
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("workload: %s: %w", path, err)
	}
	return profile, nil
}

// Validate checks the profile is internally consistent.
func (p *Profile) Validate() error {
	if p.Kind != "" && p.Kind != "WorkloadProfile" {
		return fmt.Errorf("unexpected kind %q, want WorkloadProfile", p.Kind)
	}

	w := p.Spec.QueryWeights
	if w.Create < 0 || w.Select < 0 || w.Insert < 0 || w.Delete < 0 {
		return fmt.Errorf("queryWeights must be non-negative")
	}
	if w.Create+w.Select+w.Insert+w.Delete <= 0 {
		return fmt.Errorf("queryWeights must sum to a positive total")
	}

	mix := p.Spec.OperationMix
	if mix.ReadPercent < 0 || mix.WritePercent < 0 || mix.DeletePercent < 0 {
		return fmt.Errorf("operationMix percentages must be non-negative")
	}
	if mix.ReadPercent+mix.WritePercent+mix.DeletePercent <= 0 {
		return fmt.Errorf("operationMix must sum to a positive total")
	}

	if p.Spec.FaultProbability.IOWait < 0 || p.Spec.FaultProbability.IOWait > 1 {
		return fmt.Errorf("faultProbability.ioWait must be within [0, 1]")
	}

	if err := p.Spec.Ticks.validate("ticks"); err != nil {
		return err
	}
	if err := p.Spec.MaxTables.validate("maxTables"); err != nil {
		return err
	}
	if p.Spec.PageSize <= 0 {
		return fmt.Errorf("pageSize must be positive")
	}
	return nil
}

func (r Range) validate(field string) error {
	if r.Min < 0 {
		return fmt.Errorf("%s.min must be non-negative", field)
	}
	if r.Max < r.Min {
		return fmt.Errorf("%s.max must be >= %s.min", field, field)
	}
	return nil
}

// TotalQueryWeight sums the four query buckets, the denominator for a
// weighted pick (spec.md §4.3).
func (w QueryWeights) TotalQueryWeight() int {
	return w.Create + w.Select + w.Insert + w.Delete
}

// TotalMix sums the three operation-mix percentages.
func (m OperationMix) TotalMix() int {
	return m.ReadPercent + m.WritePercent + m.DeletePercent
}

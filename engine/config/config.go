// Package config provides pipeline and stage configuration for the
// assistant engine.
package config

import (
	"fmt"
	"sort"
)

// StageEnd is the routing target that terminates a pipeline run.
const StageEnd = "end"

// RoutingRule defines a conditional transition between stages.
// The rule matches when the stage output carries Value under Condition.
type RoutingRule struct {
	Condition string `json:"condition"` // Key in stage output to check
	Value     any    `json:"value"`     // Expected value
	Target    string `json:"target"`    // Next stage to route to
}

// StageConfig is the declarative configuration for one pipeline stage.
type StageConfig struct {
	// Identity
	Name       string `json:"name"`        // Unique stage name
	StageOrder int    `json:"stage_order"` // Nominal execution order

	// LLM Configuration
	HasLLM      bool     `json:"has_llm"`     // Whether the stage calls the generation provider
	ModelRole   string   `json:"model_role"`  // Role for the provider factory
	Temperature *float64 `json:"temperature"` // Temperature override
	MaxTokens   *int     `json:"max_tokens"`  // Max tokens for the reply

	// Output Configuration
	OutputKey string `json:"output_key"` // Key for the stage output in run reports

	// Routing Configuration
	RoutingRules []RoutingRule `json:"routing_rules"` // Conditional routing rules
	DefaultNext  string        `json:"default_next"`  // Default next stage
}

// Validate validates the stage configuration.
func (c *StageConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("StageConfig.Name is required")
	}
	if c.OutputKey == "" {
		c.OutputKey = c.Name
	}
	if c.HasLLM && c.ModelRole == "" {
		return fmt.Errorf("stage '%s' has_llm=true but no model_role", c.Name)
	}
	if c.DefaultNext == "" {
		c.DefaultNext = StageEnd
	}
	return nil
}

// PipelineConfig defines the stage topology for one assistant pipeline.
type PipelineConfig struct {
	Name   string         `json:"name"`   // Pipeline name for logging/metrics
	Entry  string         `json:"entry"`  // Entry stage name
	Stages []*StageConfig `json:"stages"` // Stage configs, ordered by StageOrder

	// Bounds
	MaxLLMCalls  int `json:"max_llm_calls"`  // Max provider calls per run
	MaxStageHops int `json:"max_stage_hops"` // Guard against routing cycles
}

// NewPipelineConfig creates a pipeline config with defaults.
func NewPipelineConfig(name string) *PipelineConfig {
	return &PipelineConfig{
		Name:         name,
		Stages:       make([]*StageConfig, 0),
		MaxLLMCalls:  10,
		MaxStageHops: 12,
	}
}

// AddStage adds a stage to the pipeline.
func (p *PipelineConfig) AddStage(stage *StageConfig) error {
	if err := stage.Validate(); err != nil {
		return err
	}
	p.Stages = append(p.Stages, stage)
	return nil
}

// Stage returns the config for a stage name, or nil when absent.
func (p *PipelineConfig) Stage(name string) *StageConfig {
	for _, stage := range p.Stages {
		if stage.Name == name {
			return stage
		}
	}
	return nil
}

// StageNames returns the configured stage names in StageOrder.
func (p *PipelineConfig) StageNames() []string {
	names := make([]string, 0, len(p.Stages))
	for _, stage := range p.Stages {
		names = append(names, stage.Name)
	}
	return names
}

// Validate validates the pipeline configuration: unique stage names, a
// reachable entry point, and routing targets that resolve to configured
// stages or the end sentinel.
func (p *PipelineConfig) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("PipelineConfig.Name is required")
	}
	if len(p.Stages) == 0 {
		return fmt.Errorf("pipeline '%s' has no stages", p.Name)
	}

	sort.SliceStable(p.Stages, func(i, j int) bool {
		return p.Stages[i].StageOrder < p.Stages[j].StageOrder
	})

	names := make(map[string]bool, len(p.Stages))
	for _, stage := range p.Stages {
		if err := stage.Validate(); err != nil {
			return err
		}
		if names[stage.Name] {
			return fmt.Errorf("duplicate stage name: %s", stage.Name)
		}
		names[stage.Name] = true
	}

	if p.Entry == "" {
		p.Entry = p.Stages[0].Name
	}
	if !names[p.Entry] {
		return fmt.Errorf("entry stage '%s' is not configured", p.Entry)
	}

	for _, stage := range p.Stages {
		for _, rule := range stage.RoutingRules {
			if rule.Target != StageEnd && !names[rule.Target] {
				return fmt.Errorf("stage '%s' routes to unknown stage '%s'", stage.Name, rule.Target)
			}
		}
		if stage.DefaultNext != StageEnd && !names[stage.DefaultNext] {
			return fmt.Errorf("stage '%s' defaults to unknown stage '%s'", stage.Name, stage.DefaultNext)
		}
	}

	if p.MaxLLMCalls <= 0 {
		return fmt.Errorf("pipeline '%s' max_llm_calls must be positive", p.Name)
	}
	if p.MaxStageHops <= 0 {
		return fmt.Errorf("pipeline '%s' max_stage_hops must be positive", p.Name)
	}
	return nil
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// StageConfig Tests
// =============================================================================

func TestStageConfigValidate(t *testing.T) {
	t.Run("valid minimal config", func(t *testing.T) {
		stage := &StageConfig{Name: "test-stage"}
		err := stage.Validate()
		require.NoError(t, err)
		assert.Equal(t, "test-stage", stage.OutputKey) // defaults to name
		assert.Equal(t, StageEnd, stage.DefaultNext)
	})

	t.Run("missing name", func(t *testing.T) {
		stage := &StageConfig{}
		err := stage.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Name is required")
	})

	t.Run("has_llm but no model_role", func(t *testing.T) {
		stage := &StageConfig{Name: "llm-stage", HasLLM: true}
		err := stage.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has_llm=true but no model_role")
	})

	t.Run("preserves existing output_key", func(t *testing.T) {
		stage := &StageConfig{Name: "test-stage", OutputKey: "custom"}
		require.NoError(t, stage.Validate())
		assert.Equal(t, "custom", stage.OutputKey)
	})
}

// =============================================================================
// PipelineConfig Tests
// =============================================================================

func TestPipelineConfigValidate(t *testing.T) {
	t.Run("empty pipeline", func(t *testing.T) {
		p := NewPipelineConfig("empty")
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no stages")
	})

	t.Run("duplicate stage names", func(t *testing.T) {
		p := NewPipelineConfig("dup")
		require.NoError(t, p.AddStage(&StageConfig{Name: "a"}))
		require.NoError(t, p.AddStage(&StageConfig{Name: "a"}))
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate stage name")
	})

	t.Run("unknown routing target", func(t *testing.T) {
		p := NewPipelineConfig("bad-route")
		require.NoError(t, p.AddStage(&StageConfig{
			Name:         "a",
			RoutingRules: []RoutingRule{{Condition: "k", Value: "v", Target: "missing"}},
		}))
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown stage 'missing'")
	})

	t.Run("unknown default next", func(t *testing.T) {
		p := NewPipelineConfig("bad-default")
		require.NoError(t, p.AddStage(&StageConfig{Name: "a", DefaultNext: "missing"}))
		err := p.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "defaults to unknown stage")
	})

	t.Run("entry defaults to first stage", func(t *testing.T) {
		p := NewPipelineConfig("defaults")
		require.NoError(t, p.AddStage(&StageConfig{Name: "b", StageOrder: 2}))
		require.NoError(t, p.AddStage(&StageConfig{Name: "a", StageOrder: 1, DefaultNext: "b"}))
		require.NoError(t, p.Validate())
		assert.Equal(t, "a", p.Entry, "stages sort by stage_order before entry resolution")
	})
}

// =============================================================================
// EmailPipeline Tests
// =============================================================================

func TestEmailPipeline(t *testing.T) {
	p := EmailPipeline()
	require.NoError(t, p.Validate())

	t.Run("topology", func(t *testing.T) {
		assert.Equal(t, StageContextAnalysis, p.Entry)
		assert.Equal(t, []string{
			StageContextAnalysis,
			StageRouteRequest,
			StageComposeEmail,
			StageAnalyzeEmail,
			StageSummarizeEmail,
			StageGenerateResponse,
		}, p.StageNames())
	})

	t.Run("router branches to each task stage", func(t *testing.T) {
		router := p.Stage(StageRouteRequest)
		require.NotNil(t, router)
		require.Len(t, router.RoutingRules, 3)
		targets := make([]string, 0, 3)
		for _, rule := range router.RoutingRules {
			assert.Equal(t, TaskOutputKey, rule.Condition)
			targets = append(targets, rule.Target)
		}
		assert.ElementsMatch(t, targets, []string{StageComposeEmail, StageAnalyzeEmail, StageSummarizeEmail})
		assert.Equal(t, StageGenerateResponse, router.DefaultNext)
	})

	t.Run("task branches converge on the terminal stage", func(t *testing.T) {
		for _, name := range []string{StageComposeEmail, StageAnalyzeEmail, StageSummarizeEmail} {
			assert.Equal(t, StageGenerateResponse, p.Stage(name).DefaultNext)
		}
		assert.Equal(t, StageEnd, p.Stage(StageGenerateResponse).DefaultNext)
	})

	t.Run("every stage calls the provider", func(t *testing.T) {
		for _, stage := range p.Stages {
			assert.True(t, stage.HasLLM, stage.Name)
			assert.NotEmpty(t, stage.ModelRole, stage.Name)
		}
	})
}

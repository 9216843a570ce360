package config

// Canonical stage names for the email assistant pipeline.
const (
	StageContextAnalysis  = "context_analysis"
	StageRouteRequest     = "route_request"
	StageComposeEmail     = "compose_email"
	StageAnalyzeEmail     = "analyze_email"
	StageSummarizeEmail   = "summarize_email"
	StageGenerateResponse = "generate_response"
)

// TaskOutputKey is the router output field that routing rules match on.
const TaskOutputKey = "task"

// EmailPipeline returns the fixed assistant topology:
//
//	context_analysis → route_request → one task branch → generate_response
//
// The router's classification selects exactly one of the three task
// branches; anything else falls through the default straight to the
// response generator, which is always the terminal stage.
func EmailPipeline() *PipelineConfig {
	p := NewPipelineConfig("email-assistant")
	p.Entry = StageContextAnalysis

	stages := []*StageConfig{
		{
			Name:        StageContextAnalysis,
			StageOrder:  1,
			HasLLM:      true,
			ModelRole:   "analysis",
			DefaultNext: StageRouteRequest,
		},
		{
			Name:       StageRouteRequest,
			StageOrder: 2,
			HasLLM:     true,
			ModelRole:  "router",
			OutputKey:  "route",
			RoutingRules: []RoutingRule{
				{Condition: TaskOutputKey, Value: StageComposeEmail, Target: StageComposeEmail},
				{Condition: TaskOutputKey, Value: StageAnalyzeEmail, Target: StageAnalyzeEmail},
				{Condition: TaskOutputKey, Value: StageSummarizeEmail, Target: StageSummarizeEmail},
			},
			DefaultNext: StageGenerateResponse,
		},
		{
			Name:        StageComposeEmail,
			StageOrder:  3,
			HasLLM:      true,
			ModelRole:   "composer",
			DefaultNext: StageGenerateResponse,
		},
		{
			Name:        StageAnalyzeEmail,
			StageOrder:  4,
			HasLLM:      true,
			ModelRole:   "analyzer",
			DefaultNext: StageGenerateResponse,
		},
		{
			Name:        StageSummarizeEmail,
			StageOrder:  5,
			HasLLM:      true,
			ModelRole:   "summarizer",
			DefaultNext: StageGenerateResponse,
		},
		{
			Name:        StageGenerateResponse,
			StageOrder:  6,
			HasLLM:      true,
			ModelRole:   "responder",
			DefaultNext: StageEnd,
		},
	}

	for _, stage := range stages {
		if err := p.AddStage(stage); err != nil {
			// The fixed topology is validated by tests; a failure here is
			// a programming error.
			panic(err)
		}
	}
	return p
}

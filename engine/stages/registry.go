package stages

import (
	"fmt"

	"github.com/jeeves-cluster-organization/mailmind/engine/config"
)

// Registry builds the stage set for the email assistant pipeline from its
// configuration. Every configured stage must have a known constructor.
func Registry(cfg *config.PipelineConfig, provider Provider, logger Logger) (map[string]Stage, error) {
	registry := make(map[string]Stage, len(cfg.Stages))
	for _, sc := range cfg.Stages {
		var stage Stage
		switch sc.Name {
		case config.StageContextAnalysis:
			stage = NewContextAnalyzer(sc, provider, logger)
		case config.StageRouteRequest:
			stage = NewRouter(sc, provider, logger)
		case config.StageComposeEmail:
			stage = NewComposer(sc, provider, logger)
		case config.StageAnalyzeEmail:
			stage = NewAnalyzer(sc, provider, logger)
		case config.StageSummarizeEmail:
			stage = NewSummarizer(sc, provider, logger)
		case config.StageGenerateResponse:
			stage = NewResponseGenerator(sc, provider, logger)
		default:
			return nil, fmt.Errorf("no stage implementation for '%s'", sc.Name)
		}
		registry[sc.Name] = stage
	}
	return registry, nil
}

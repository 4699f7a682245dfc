package tools

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/hiremind/backend/gemini"
	"github.com/hiremind/backend/metrics"
)

// GeneratorSource hands out Gemini generators; an empty key selects the server default
type GeneratorSource interface {
	For(ctx context.Context, apiKey string) (gemini.Generator, error)
}

// ClusterSkillsTool groups skills into search keyword clusters
type ClusterSkillsTool struct {
	generators GeneratorSource
	logger     *zap.Logger
	metrics    *metrics.Manager
}

// NewClusterSkillsTool creates a new skill clustering tool
func NewClusterSkillsTool(generators GeneratorSource, logger *zap.Logger, m *metrics.Manager) *ClusterSkillsTool {
	return &ClusterSkillsTool{generators: generators, logger: logger, metrics: m}
}

func (t *ClusterSkillsTool) Name() string {
	return "cluster_skills"
}

func (t *ClusterSkillsTool) Description() string {
	return `Group technical skills into 3-5 keyword clusters suited to job search queries.
Each cluster holds at most 5 skills taken from the input list.`
}

func (t *ClusterSkillsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"skills": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Skills to cluster",
			},
		},
		"required": []string{"skills"},
	}
}

func (t *ClusterSkillsTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Skills []string `json:"skills"`
	}
	if err := decodeInput(input, &in); err != nil {
		return NewErrorResult(err.Error())
	}
	if len(in.Skills) == 0 {
		return NewErrorResult("skills is required")
	}

	gen, err := t.generators.For(ctx, "")
	if err != nil {
		return NewErrorResult(err.Error())
	}

	clusters, err := gemini.NewSkillClusterer(gen, t.logger, t.metrics).Cluster(ctx, in.Skills)
	if err != nil {
		return NewErrorResult(err.Error())
	}
	return NewSuccessResult(map[string]interface{}{"clusters": clusters})
}

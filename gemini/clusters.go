package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hiremind/backend/logger"
	"github.com/hiremind/backend/metrics"
	"github.com/hiremind/backend/models"
)

const clusterPrompt = `You are an expert in the tech job market. Given the following programming/technical skills, group them into 3-5 keyword clusters that would be optimal for LinkedIn job search queries.

Skills: %[1]s

Requirements:
1. Each cluster should represent a likely job role or skill combination employers look for
2. Maximum 5 skills per cluster
3. Skills can appear in multiple clusters if they're commonly used together
4. Only use skills from the list above
5. Return ONLY a valid JSON array of arrays, no other text

Example format: [["JavaScript","React.js","Node.js"], ["Python","Django","SQL"], ["Java","Spring","MySQL"]]

Skills to cluster: %[1]s`

// SkillClusterer groups resume skills into search keyword clusters using a Generator
type SkillClusterer struct {
	gen     Generator
	logger  *zap.Logger
	metrics *metrics.Manager
}

// NewSkillClusterer creates a clusterer on top of gen
func NewSkillClusterer(gen Generator, logger *zap.Logger, m *metrics.Manager) *SkillClusterer {
	return &SkillClusterer{gen: gen, logger: logger.Named("clusterer"), metrics: m}
}

// Cluster returns the ordered skill clusters for skills. Empty input returns an
// empty result without calling the model. A response that cannot be parsed is
// an error; a parsed response with no usable cluster falls back to the first
// five skills.
func (c *SkillClusterer) Cluster(ctx context.Context, skills []string) ([]models.SkillCluster, error) {
	if len(skills) == 0 {
		return []models.SkillCluster{}, nil
	}

	prompt := fmt.Sprintf(clusterPrompt, strings.Join(skills, ", "))

	text, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		c.metrics.ObserveClustering(err)
		return nil, fmt.Errorf("failed to generate skill clusters: %w", err)
	}

	clusters, err := parseClusters(text, skills)
	c.metrics.ObserveClustering(err)
	if err != nil {
		c.logger.Warn("unparseable clustering response",
			zap.Error(err), zap.String("response", logger.TruncateForLog(text, 500)))
		return nil, err
	}

	c.logger.Debug("generated skill clusters",
		zap.Int("skills", len(skills)), zap.Int("clusters", len(clusters)))

	return clusters, nil
}

// parseClusters decodes and validates a clustering response against the user's skills
func parseClusters(text string, skills []string) ([]models.SkillCluster, error) {
	raw, err := extractJSONArray(text)
	if err != nil {
		raw = strings.TrimSpace(text)
	}

	var decoded []any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("invalid JSON response from Gemini: %w", err)
	}

	return validateClusters(decoded, skills), nil
}

// validateClusters keeps only array members, filters their tags to ones that
// overlap a user skill (case-insensitive substring either way), caps each at
// MaxClusterTags and drops empties. Never returns an empty result for
// non-empty skills.
func validateClusters(decoded []any, skills []string) []models.SkillCluster {
	lowered := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			lowered = append(lowered, strings.ToLower(s))
		}
	}

	valid := make([]models.SkillCluster, 0, len(decoded))
	for _, member := range decoded {
		tags, ok := member.([]any)
		if !ok {
			continue
		}

		cluster := make(models.SkillCluster, 0, len(tags))
		for _, tag := range tags {
			s, ok := tag.(string)
			if !ok || strings.TrimSpace(s) == "" {
				continue
			}
			if matchesAnySkill(strings.ToLower(s), lowered) {
				cluster = append(cluster, s)
			}
		}

		if len(cluster) > 0 {
			valid = append(valid, cluster.Truncate())
		}
	}

	if len(valid) == 0 {
		n := min(models.MaxClusterTags, len(skills))
		fallback := make(models.SkillCluster, n)
		copy(fallback, skills[:n])
		valid = append(valid, fallback)
	}

	return valid
}

func matchesAnySkill(tag string, lowered []string) bool {
	for _, skill := range lowered {
		if strings.Contains(skill, tag) || strings.Contains(tag, skill) {
			return true
		}
	}
	return false
}

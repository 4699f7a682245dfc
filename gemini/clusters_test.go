package gemini

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hiremind/backend/models"
)

func TestClusterEmptySkillsSkipsModel(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{response: `[["Go"]]`}
	clusters, err := NewSkillClusterer(gen, zap.NewNop(), nil).Cluster(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clusters) != 0 {
		t.Fatalf("expected no clusters, got %v", clusters)
	}
	if gen.calls() != 0 {
		t.Fatalf("expected zero model calls, got %d", gen.calls())
	}
}

func TestClusterParsesAndValidates(t *testing.T) {
	t.Parallel()

	skills := []string{"Go", "Docker", "Kubernetes", "PostgreSQL", "React", "TypeScript"}

	tests := []struct {
		name     string
		response string
		want     []models.SkillCluster
		wantErr  bool
	}{
		{
			name:     "plain array",
			response: `[["Go","Docker"],["React","TypeScript"]]`,
			want:     []models.SkillCluster{{"Go", "Docker"}, {"React", "TypeScript"}},
		},
		{
			name:     "wrapped in prose and fences",
			response: "Here you go:\n```json\n[[\"Go\", \"Kubernetes\"]]\n```",
			want:     []models.SkillCluster{{"Go", "Kubernetes"}},
		},
		{
			name:     "unknown tags filtered and non-arrays skipped",
			response: `[["Go","Rust","Haskell"], "Docker", ["COBOL"], ["Perl", 42]]`,
			want:     []models.SkillCluster{{"Go"}},
		},
		{
			name:     "substring match either way",
			response: `[["Kubernetes (k8s)","Postgre"]]`,
			want:     []models.SkillCluster{{"Kubernetes (k8s)", "Postgre"}},
		},
		{
			name:     "capped at five tags",
			response: `[["Go","Docker","Kubernetes","PostgreSQL","React","TypeScript"]]`,
			want:     []models.SkillCluster{{"Go", "Docker", "Kubernetes", "PostgreSQL", "React"}},
		},
		{
			name:     "nothing survives falls back to first five skills",
			response: `[["COBOL"],["Fortran"]]`,
			want:     []models.SkillCluster{{"Go", "Docker", "Kubernetes", "PostgreSQL", "React"}},
		},
		{
			name:     "not json",
			response: "I cannot help with that.",
			wantErr:  true,
		},
		{
			name:     "object instead of array",
			response: `{"clusters": 1}`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := &fakeGenerator{response: tt.response}
			got, err := NewSkillClusterer(gen, zap.NewNop(), nil).Cluster(context.Background(), skills)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			if !strings.Contains(gen.prompts[0], "Go, Docker, Kubernetes") {
				t.Fatalf("prompt does not list skills: %s", gen.prompts[0])
			}
		})
	}
}

func TestClusterGeneratorError(t *testing.T) {
	t.Parallel()

	boom := errors.New("quota exceeded")
	gen := &fakeGenerator{err: boom}
	_, err := NewSkillClusterer(gen, zap.NewNop(), nil).Cluster(context.Background(), []string{"Go"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped generator error, got %v", err)
	}
}

func TestFallbackWithFewSkills(t *testing.T) {
	t.Parallel()

	got := validateClusters([]any{}, []string{"Go", "SQL"})
	want := []models.SkillCluster{{"Go", "SQL"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

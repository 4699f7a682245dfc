package agent

import (
	"reflect"
	"testing"

	"github.com/hiremind/backend/models"
)

func TestExpandContexts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hasCity bool
		city    string
		country string
		want    []models.SearchContext
	}{
		{
			name:    "with city",
			hasCity: true, city: "Pune", country: "India",
			want: []models.SearchContext{
				{Type: models.ContextLocal, Location: "Pune"},
				{Type: models.ContextNational, Location: "India"},
				{Type: models.ContextRemote},
			},
		},
		{
			name:    "without city",
			country: "India",
			want: []models.SearchContext{
				{Type: models.ContextNational, Location: "India"},
				{Type: models.ContextRemote},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExpandContexts(tt.hasCity, tt.city, tt.country); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ExpandContexts() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	items := []int{0, 1, 2, 3, 4}
	tests := []struct {
		limit, offset int
		want          []int
	}{
		{limit: 2, offset: 0, want: []int{0, 1}},
		{limit: 2, offset: 4, want: []int{4}},
		{limit: 10, offset: 1, want: []int{1, 2, 3, 4}},
		{limit: 2, offset: 5, want: []int{}},
		{limit: 2, offset: -3, want: []int{0, 1}},
		{limit: 0, offset: 0, want: []int{}},
	}

	for _, tt := range tests {
		got := Paginate(items, tt.limit, tt.offset)
		if len(got) != len(tt.want) {
			t.Fatalf("Paginate(limit=%d, offset=%d) = %v, want %v", tt.limit, tt.offset, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("Paginate(limit=%d, offset=%d) = %v, want %v", tt.limit, tt.offset, got, tt.want)
			}
		}
	}
}

func TestAvgPerCluster(t *testing.T) {
	t.Parallel()

	tests := []struct{ total, clusters, want int }{
		{0, 3, 0},
		{3, 2, 2},
		{5, 2, 3},
		{4, 3, 1},
		{5, 3, 2},
		{7, 0, 0},
	}
	for _, tt := range tests {
		if got := avgPerCluster(tt.total, tt.clusters); got != tt.want {
			t.Errorf("avgPerCluster(%d, %d) = %d, want %d", tt.total, tt.clusters, got, tt.want)
		}
	}
}

func TestPageBounds(t *testing.T) {
	t.Parallel()

	agent := newTestAgent(newFakeSource(), nil)
	tests := []struct{ limit, offset, wantLimit, wantOffset int }{
		{0, 0, 50, 0},
		{-5, -1, 50, 0},
		{10, 20, 10, 20},
	}
	for _, tt := range tests {
		limit, offset := agent.PageBounds(tt.limit, tt.offset)
		if limit != tt.wantLimit || offset != tt.wantOffset {
			t.Errorf("PageBounds(%d, %d) = (%d, %d), want (%d, %d)",
				tt.limit, tt.offset, limit, offset, tt.wantLimit, tt.wantOffset)
		}
	}
}

func TestNonBlank(t *testing.T) {
	t.Parallel()

	got := NonBlank([]string{" Go ", "", "   ", "SQL"})
	if !reflect.DeepEqual(got, []string{"Go", "SQL"}) {
		t.Fatalf("NonBlank() = %v", got)
	}
	if got := NonBlank([]string{" ", ""}); len(got) != 0 {
		t.Fatalf("NonBlank(blank) = %v, want empty", got)
	}
}

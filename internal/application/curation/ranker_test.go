package curation

import (
	"testing"

	"focustube-ml/internal/domain/entity"
)

func titles(videos []entity.Video) []string {
	out := make([]string, len(videos))
	for i, v := range videos {
		out[i] = v.Title
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLexicalScorer(t *testing.T) {
	s := NewLexicalScorer(nil)

	tests := []struct {
		name  string
		video entity.Video
		want  float64
	}{
		{"no markers", entity.Video{Title: "Cooking Pasta"}, 0},
		{"tutorial and react", entity.Video{Title: "React Tutorial for Beginners"}, 12},
		{"course and react", entity.Video{Title: "Advanced React Course"}, 12},
		{"description counts", entity.Video{Title: "Hooks", Description: "learn them"}, 5},
		{"channel ignored", entity.Video{Title: "Vlog", ChannelTitle: "Tutorial Channel"}, 0},
		{"each marker once", entity.Video{Title: "tutorial tutorial tutorial"}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Score(tt.video); got != tt.want {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLexicalScorerCustomMarkers(t *testing.T) {
	s := NewLexicalScorer([]Marker{{Term: " Golang ", Weight: 3}, {Term: "", Weight: 100}})
	if got := s.Score(entity.Video{Title: "golang generics"}); got != 3 {
		t.Errorf("Score() = %v, want 3", got)
	}
}

func TestRankerStableDescending(t *testing.T) {
	videos := []entity.Video{
		{ID: "1", Title: "Cooking Pasta"},
		{ID: "2", Title: "React Tutorial for Beginners"},
		{ID: "3", Title: "Gaming Stream"},
		{ID: "4", Title: "Advanced React Course"},
		{ID: "5", Title: "Learn Go"},
	}

	got := titles(NewRanker(nil).Rank(videos))
	want := []string{
		"React Tutorial for Beginners",
		"Advanced React Course",
		"Learn Go",
		"Cooking Pasta",
		"Gaming Stream",
	}
	if !equalStrings(got, want) {
		t.Errorf("Rank() = %q, want %q", got, want)
	}
	if videos[0].ID != "1" {
		t.Error("Rank() mutated its input")
	}
}

func TestRankerIdempotent(t *testing.T) {
	r := NewRanker(nil)
	videos := []entity.Video{
		{Title: "b"}, {Title: "learn a"}, {Title: "c course"}, {Title: "d"}, {Title: "react e"},
	}
	once := r.Rank(videos)
	twice := r.Rank(once)
	if !equalStrings(titles(once), titles(twice)) {
		t.Errorf("Rank(Rank(x)) = %q, want %q", titles(twice), titles(once))
	}
}

func TestRankerEmpty(t *testing.T) {
	if got := NewRanker(nil).Rank(nil); len(got) != 0 {
		t.Errorf("Rank(nil) = %v", got)
	}
}

package services

import (
	"context"
	"errors"
	"testing"

	"photo-rating-backend/internal/models"
)

func ptr[T any](v T) *T { return &v }

func candidateIDs(candidates []*models.Candidate) []string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	return ids
}

func TestListCandidates_ExcludesOwnInactiveAndRated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rater := env.createUser(t, 0, models.GenderMale, 30)
	owner := env.createUser(t, 0, models.GenderFemale, 25)

	env.createPhoto(t, rater.ID, true) // own, active
	visible := env.createPhoto(t, owner.ID, true)
	env.createPhoto(t, owner.ID, false)
	rated := env.createPhoto(t, owner.ID, true)

	if _, err := env.ratings.Rate(ctx, rated.ID, rater.ID, 4); err != nil {
		t.Fatal(err)
	}

	candidates, err := env.feed.ListCandidates(ctx, rater.ID, models.CandidateFilter{})
	if err != nil {
		t.Fatalf("ListCandidates failed: %v", err)
	}
	ids := candidateIDs(candidates)
	if len(ids) != 1 || ids[0] != visible.ID {
		t.Fatalf("expected only %s, got %v", visible.ID, ids)
	}

	c := candidates[0]
	if c.Owner.ID != owner.ID || c.Owner.Gender != models.GenderFemale || c.Owner.Age != 25 {
		t.Errorf("unexpected owner %+v", c.Owner)
	}
	if c.URL != "/uploads/"+visible.FilePath {
		t.Errorf("unexpected URL %q", c.URL)
	}
}

func TestListCandidates_NeverReturnsOwnPhotos(t *testing.T) {
	env := newTestEnv(t)
	rater := env.createUser(t, 0, models.GenderFemale, 25)
	for i := 0; i < 3; i++ {
		env.createPhoto(t, rater.ID, true)
	}

	// filters match the rater's own demographics
	candidates, err := env.feed.ListCandidates(context.Background(), rater.ID, models.CandidateFilter{
		Gender: ptr(models.GenderFemale),
		MinAge: ptr(20),
		MaxAge: ptr(30),
	})
	if err != nil {
		t.Fatal(err)
	}
	if candidates == nil || len(candidates) != 0 {
		t.Errorf("expected empty non-nil list, got %v", candidates)
	}
}

func TestListCandidates_Filters(t *testing.T) {
	env := newTestEnv(t)
	rater := env.createUser(t, 0, models.GenderOther, 30)

	woman18 := env.createPhoto(t, env.createUser(t, 0, models.GenderFemale, 18).ID, true)
	woman30 := env.createPhoto(t, env.createUser(t, 0, models.GenderFemale, 30).ID, true)
	man30 := env.createPhoto(t, env.createUser(t, 0, models.GenderMale, 30).ID, true)
	man45 := env.createPhoto(t, env.createUser(t, 0, models.GenderMale, 45).ID, true)

	tests := []struct {
		name   string
		filter models.CandidateFilter
		want   []string
	}{
		{"none", models.CandidateFilter{}, []string{woman18.ID, woman30.ID, man30.ID, man45.ID}},
		{"gender", models.CandidateFilter{Gender: ptr(models.GenderMale)}, []string{man30.ID, man45.ID}},
		{"min age inclusive", models.CandidateFilter{MinAge: ptr(30)}, []string{woman30.ID, man30.ID, man45.ID}},
		{"max age inclusive", models.CandidateFilter{MaxAge: ptr(30)}, []string{woman18.ID, woman30.ID, man30.ID}},
		{"range", models.CandidateFilter{MinAge: ptr(19), MaxAge: ptr(44)}, []string{woman30.ID, man30.ID}},
		{"gender and age combine", models.CandidateFilter{Gender: ptr(models.GenderFemale), MinAge: ptr(20)}, []string{woman30.ID}},
		{"no match", models.CandidateFilter{Gender: ptr(models.GenderOther)}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates, err := env.feed.ListCandidates(context.Background(), rater.ID, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			got := candidateIDs(candidates)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestListCandidates_InvalidFilter(t *testing.T) {
	env := newTestEnv(t)
	rater := env.createUser(t, 0, models.GenderOther, 30)

	tests := []struct {
		name   string
		filter models.CandidateFilter
	}{
		{"unknown gender", models.CandidateFilter{Gender: ptr("robot")}},
		{"negative min", models.CandidateFilter{MinAge: ptr(-1)}},
		{"negative max", models.CandidateFilter{MaxAge: ptr(-5)}},
		{"min above max", models.CandidateFilter{MinAge: ptr(40), MaxAge: ptr(30)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.feed.ListCandidates(context.Background(), rater.ID, tt.filter); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

package resolve

import (
	"errors"
	"strings"
	"testing"
)

type rec struct {
	ID   int64
	Name string
}

func fakeSource(rows []rec) Source[rec] {
	return Source[rec]{
		Kind: "zone",
		ByID: func(id int64) (*rec, error) {
			for _, r := range rows {
				if r.ID == id {
					return &r, nil
				}
			}
			return nil, nil
		},
		ByNameExact: func(name string) ([]rec, error) {
			var out []rec
			for _, r := range rows {
				if strings.EqualFold(r.Name, name) {
					out = append(out, r)
				}
			}
			return out, nil
		},
		ByNameContains: func(name string) ([]rec, error) {
			var out []rec
			for _, r := range rows {
				if strings.Contains(strings.ToLower(r.Name), strings.ToLower(name)) {
					out = append(out, r)
				}
			}
			return out, nil
		},
		ID: func(r *rec) int64 { return r.ID },
	}
}

func TestResolveByID(t *testing.T) {
	src := fakeSource([]rec{{1, "Jardin"}, {2, "Garage"}})

	id := int64(2)
	got, err := One(src, &id, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Name != "Garage" {
		t.Errorf("name = %q, want %q", got.Name, "Garage")
	}
}

func TestResolveByIDNotFound(t *testing.T) {
	src := fakeSource([]rec{{1, "Jardin"}})

	id := int64(99)
	_, err := One(src, &id, "")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestResolveExactMatchCaseInsensitive(t *testing.T) {
	src := fakeSource([]rec{{1, "Jardin"}, {2, "Garage"}})

	got, err := One(src, nil, "jardin")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("id = %d, want 1", got.ID)
	}
}

func TestResolveExactWinsOverContains(t *testing.T) {
	// "Garage" matches "Garage" exactly and "Garage nord" by substring.
	// The exact pass must win without ever reaching the contains pass.
	src := fakeSource([]rec{{1, "Garage"}, {2, "Garage nord"}})

	got, err := One(src, nil, "Garage")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("id = %d, want 1", got.ID)
	}
}

func TestResolveContainsFallback(t *testing.T) {
	src := fakeSource([]rec{{1, "Salle de bain"}, {2, "Cuisine"}})

	got, err := One(src, nil, "bain")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("id = %d, want 1", got.ID)
	}
}

func TestResolveAmbiguousExact(t *testing.T) {
	src := fakeSource([]rec{{1, "Garage"}, {2, "garage"}})

	_, err := One(src, nil, "Garage")
	var amb *AmbiguousError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguousError, got %v", err)
	}
	if len(amb.Candidates) != 2 {
		t.Errorf("candidates = %v, want two ids", amb.Candidates)
	}
}

func TestResolveAmbiguousContains(t *testing.T) {
	src := fakeSource([]rec{{1, "Chambre nord"}, {2, "Chambre sud"}})

	_, err := One(src, nil, "chambre")
	var amb *AmbiguousError
	if !errors.As(err, &amb) {
		t.Fatalf("expected AmbiguousError, got %v", err)
	}
}

func TestResolveNoMatch(t *testing.T) {
	src := fakeSource([]rec{{1, "Jardin"}})

	_, err := One(src, nil, "piscine")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestResolveEmptyReference(t *testing.T) {
	src := fakeSource([]rec{{1, "Jardin"}})

	_, err := One(src, nil, "  ")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

// Package resolve finds a single household-scoped record from a
// user-supplied id or name.
//
// Name resolution is deliberately strict: an exact case-insensitive pass,
// then a substring pass, each with a zero/one/many policy. When several
// records match, resolution fails with the candidate ids rather than
// guessing.
package resolve

import (
	"fmt"
	"strings"
)

// NotFoundError reports that no record matched the given reference.
type NotFoundError struct {
	Kind string
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Ref)
}

// AmbiguousError reports that a name matched more than one record.
// Candidates lists the matching ids so the caller can retry by id.
type AmbiguousError struct {
	Kind       string
	Name       string
	Candidates []int64
}

func (e *AmbiguousError) Error() string {
	ids := make([]string, len(e.Candidates))
	for i, id := range e.Candidates {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("several %ss match %q (ids %s); retry with an id", e.Kind, e.Name, strings.Join(ids, ", "))
}

// Source describes how to look records of one kind up. All funcs must
// already be scoped to the caller's household.
type Source[T any] struct {
	Kind string

	// ByID returns (nil, nil) when the id does not exist in scope.
	ByID func(id int64) (*T, error)

	// ByNameExact and ByNameContains return every case-insensitive match.
	ByNameExact    func(name string) ([]T, error)
	ByNameContains func(name string) ([]T, error)

	// ID extracts the record id, used for ambiguity reporting.
	ID func(*T) int64
}

// One resolves a single record. At least one of id and name must be set.
func One[T any](src Source[T], id *int64, name string) (*T, error) {
	name = strings.TrimSpace(name)

	if id != nil {
		rec, err := src.ByID(*id)
		if err != nil {
			return nil, fmt.Errorf("resolve %s by id: %w", src.Kind, err)
		}
		if rec == nil {
			return nil, &NotFoundError{Kind: src.Kind, Ref: fmt.Sprintf("#%d", *id)}
		}
		return rec, nil
	}

	if name == "" {
		return nil, &NotFoundError{Kind: src.Kind, Ref: ""}
	}

	matches, err := src.ByNameExact(name)
	if err != nil {
		return nil, fmt.Errorf("resolve %s by name: %w", src.Kind, err)
	}
	if rec, err := pick(src, name, matches); rec != nil || err != nil {
		return rec, err
	}

	matches, err = src.ByNameContains(name)
	if err != nil {
		return nil, fmt.Errorf("resolve %s by partial name: %w", src.Kind, err)
	}
	if rec, err := pick(src, name, matches); rec != nil || err != nil {
		return rec, err
	}

	return nil, &NotFoundError{Kind: src.Kind, Ref: name}
}

// pick applies the zero/one/many policy to one pass of matches.
// Zero matches returns (nil, nil) so the caller can fall through.
func pick[T any](src Source[T], name string, matches []T) (*T, error) {
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		ids := make([]int64, len(matches))
		for i := range matches {
			ids[i] = src.ID(&matches[i])
		}
		return nil, &AmbiguousError{Kind: src.Kind, Name: name, Candidates: ids}
	}
}

// Package record defines the TestObject entity and its XML wire format.
//
// A TestObject is constructed once, either freshly with generated level and
// names or verbatim from decoded data, and never mutated afterwards.
package record

import (
	"math/rand/v2"
	"slices"

	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/idgen"
)

// Bounds for generated field values.
const (
	MinLevel = 1
	MaxLevel = 100
	MinNames = 1
	MaxNames = 10
)

// TestObject is the structured test entity packed into archives.
type TestObject struct {
	// ID is the unique token assigned by the id generator
	ID string
	// Level is an integer in [1,100], fixed at creation
	Level int
	// Names is an ordered sequence of 1 to 10 opaque tokens
	Names []string
}

// New constructs a fresh TestObject for the given id with a random level
// and a random count of random names.
func New(id string) (*TestObject, error) {
	if id == "" {
		return nil, errors.New(errors.ErrorTypeValidation, "record id must not be empty")
	}

	names := make([]string, MinNames+rand.IntN(MaxNames-MinNames+1))
	for i := range names {
		names[i] = idgen.Token()
	}

	return &TestObject{
		ID:    id,
		Level: MinLevel + rand.IntN(MaxLevel-MinLevel+1),
		Names: names,
	}, nil
}

// Reconstruct rebuilds a TestObject from decoded data. Level and names are
// taken verbatim; the only structural requirements are a non-empty id and
// at least one name.
func Reconstruct(id string, level int, names []string) (*TestObject, error) {
	if id == "" {
		return nil, errors.New(errors.ErrorTypeValidation, "record id must not be empty")
	}
	if len(names) < MinNames {
		return nil, errors.New(errors.ErrorTypeValidation, "record must carry at least one name")
	}

	return &TestObject{
		ID:    id,
		Level: level,
		Names: names,
	}, nil
}

// Equal reports whether two records carry identical field values.
func (o *TestObject) Equal(other *TestObject) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.ID == other.ID &&
		o.Level == other.Level &&
		slices.Equal(o.Names, other.Names)
}

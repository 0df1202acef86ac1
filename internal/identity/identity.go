// Package identity supplies the GUIDs stamped on workflows and manifest
// resources. Builders take a Generator so tests can use a fixed sequence.
package identity

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Generator produces new identifiers in canonical lower-case GUID form.
type Generator interface {
	NewID() string
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func() string

// NewID calls f.
func (f GeneratorFunc) NewID() string { return f() }

// Random returns a Generator backed by random (version 4) UUIDs.
func Random() Generator {
	return GeneratorFunc(func() string { return uuid.New().String() })
}

// Sequence yields deterministic GUIDs 00000000-0000-0000-0000-000000000001,
// ...0002 and so on. Safe for concurrent use.
type Sequence struct {
	mu   sync.Mutex
	next uint64
}

// NewSequence returns a Sequence starting at 1.
func NewSequence() *Sequence {
	return &Sequence{next: 1}
}

// NewID returns the next identifier of the sequence.
func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("00000000-0000-0000-0000-%012d", s.next)
	s.next++
	return id
}

// Bare strips surrounding braces from a GUID.
func Bare(id string) string {
	return strings.NewReplacer("{", "", "}", "").Replace(id)
}

// Braced returns the GUID in {brace} notation.
func Braced(id string) string {
	return "{" + Bare(id) + "}"
}

// Upper returns the brace-less upper-case form used in package file names.
func Upper(id string) string {
	return strings.ToUpper(Bare(id))
}

// Valid reports whether id, with or without braces, parses as a GUID.
func Valid(id string) bool {
	_, err := uuid.Parse(Bare(id))
	return err == nil
}

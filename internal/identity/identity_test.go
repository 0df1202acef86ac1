package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceIsDeterministic(t *testing.T) {
	seq := NewSequence()
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", seq.NewID())
	assert.Equal(t, "00000000-0000-0000-0000-000000000002", seq.NewID())
	assert.True(t, Valid(seq.NewID()))
}

func TestRandomProducesDistinctGUIDs(t *testing.T) {
	gen := Random()
	a, b := gen.NewID(), gen.NewID()
	assert.NotEqual(t, a, b)
	assert.True(t, Valid(a))
}

func TestFormatting(t *testing.T) {
	id := "{abcdef01-2345-6789-abcd-ef0123456789}"
	assert.Equal(t, "abcdef01-2345-6789-abcd-ef0123456789", Bare(id))
	assert.Equal(t, "{abcdef01-2345-6789-abcd-ef0123456789}", Braced(Bare(id)))
	assert.Equal(t, "ABCDEF01-2345-6789-ABCD-EF0123456789", Upper(id))
	assert.False(t, Valid("not-a-guid"))
}

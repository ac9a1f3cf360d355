package rc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_CloneRelease_FreesExactlyOnce(t *testing.T) {
	before := AllocStats()

	torndown := 0
	ref, err := Collect(
		SliceSource([]int32{1, 2, 3}),
		WithDestructor(func(*int32) { torndown++ }),
	)
	require.NoError(t, err)

	c1 := ref.Clone()
	c2 := ref.Clone()

	ref.Release()
	assert.Equal(t, 0, torndown, "teardown must wait for the last release")
	assert.Equal(t, before.Live+1, AllocStats().Live, "block must survive earlier releases")

	c1.Release()
	assert.Equal(t, 0, torndown)
	assert.Equal(t, before.Live+1, AllocStats().Live)

	c2.Release()
	assert.Equal(t, 3, torndown, "one teardown per element, at the last release")

	after := AllocStats()
	assert.Equal(t, before.Live, after.Live)
	assert.Equal(t, before.Frees+1, after.Frees, "block freed exactly once")
}

func TestRef_ClonesShareOneBlock(t *testing.T) {
	ref, err := Collect(SliceSource([]int32{42}))
	require.NoError(t, err)

	c := ref.Clone()
	assert.Equal(t, ref.base, c.base)
	assert.Equal(t, ref.View(), c.View())

	c.Release()
	ref.Release()
}

func TestRef_ReleaseAfterFreePanics(t *testing.T) {
	ref, err := Collect(SliceSource([]int32{1}))
	require.NoError(t, err)
	ref.Release()

	require.PanicsWithValue(t, "rc: release of dead handle", func() {
		ref.Release()
	})
}

func TestRef_ZeroValueIsInert(t *testing.T) {
	var r Ref[int32]
	assert.Equal(t, 0, r.Len())
	assert.True(t, r.IsEmpty())
	assert.Nil(t, r.View())

	// Clone and Release on the zero handle are no-ops.
	r.Clone().Release()
	r.Release()
}

func TestStr_CloneRelease(t *testing.T) {
	before := AllocStats()

	s, err := CollectText(StringSource("shared"))
	require.NoError(t, err)

	c := s.Clone()
	s.Release()
	assert.Equal(t, "shared", c.String(), "payload must survive earlier releases")

	c.Release()
	assert.Equal(t, before.Live, AllocStats().Live, "leak check")
}

func TestStr_ZeroValueIsInert(t *testing.T) {
	var s Str
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.IsEmpty())
	assert.Equal(t, "", s.String())
	assert.Nil(t, s.Bytes())
	s.Release()
}

package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare_Identical(t *testing.T) {
	a := []Request{
		rangeReq(keyA, 0, 4095),
		NewWholeFileRequest(rootSC1, RootFolderConfig, keyB, false),
	}
	d := Compare(a, a)

	assert.True(t, d.Empty())
	assert.Equal(t, 2, d.Common)
}

func TestCompare_CoalescesBeforeComparing(t *testing.T) {
	a := []Request{rangeReq(keyA, 0, 8191)}
	b := []Request{
		rangeReq(keyA, 0, 4095),
		rangeReq(keyA, 4096, 8191),
		rangeReq(keyA, 100, 200),
	}
	d := Compare(a, b)
	assert.True(t, d.Empty(), "equivalent coverage must not diff")
}

func TestCompare_OnlyOnOneSide(t *testing.T) {
	a := []Request{rangeReq(keyA, 0, 1023)}
	b := []Request{rangeReq(keyB, 0, 1023)}

	d := Compare(a, b)
	require.Len(t, d.OnlyA, 1)
	require.Len(t, d.OnlyB, 1)
	assert.Equal(t, keyA, d.OnlyA[0].ContentKey)
	assert.Equal(t, keyB, d.OnlyB[0].ContentKey)
	assert.False(t, d.Empty())
}

func TestCompare_ChangedCoverage(t *testing.T) {
	a := []Request{rangeReq(keyA, 0, 1023)}
	b := []Request{rangeReq(keyA, 0, 2047)}

	d := Compare(a, b)
	require.Len(t, d.Changed, 1)
	assert.Equal(t, uint64(1024), d.Changed[0].BytesA)
	assert.Equal(t, uint64(2048), d.Changed[0].BytesB)
}

func TestCompare_WholeFileVsRanges(t *testing.T) {
	a := []Request{NewWholeFileRequest(rootSC1, RootFolderData, keyA, false)}
	b := []Request{rangeReq(keyA, 0, 1023)}

	d := Compare(a, b)
	require.Len(t, d.Changed, 1)
	assert.True(t, d.Changed[0].WholeA)
	assert.False(t, d.Changed[0].WholeB)
}

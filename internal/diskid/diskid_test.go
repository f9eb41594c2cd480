package diskid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDiskKey(t *testing.T) {
	key := ParsePDiskKey("224-1001")
	require.NotNil(t, key.NodeID)
	require.NotNil(t, key.PDiskID)
	assert.Equal(t, uint32(224), *key.NodeID)
	assert.Equal(t, uint32(1001), *key.PDiskID)
	assert.Equal(t, "224-1001", key.String())
}

func TestParsePDiskKey_Malformed(t *testing.T) {
	tests := []string{"", "224", "224-1001-3", "abc-def"}
	for _, s := range tests {
		key := ParsePDiskKey(s)
		assert.Nil(t, key.PDiskID, "input %q", s)
		assert.Equal(t, "", key.String(), "input %q", s)
	}

	partial := ParsePDiskKey("224-x")
	require.NotNil(t, partial.NodeID)
	assert.Equal(t, uint32(224), *partial.NodeID)
	assert.Nil(t, partial.PDiskID)
}

func TestVDiskID(t *testing.T) {
	id := ParseVDiskID("2181038134-22-0-0-0")
	require.NotNil(t, id.GroupID)
	assert.Equal(t, uint32(2181038134), *id.GroupID)
	assert.Equal(t, uint32(22), *id.GroupGeneration)
	assert.Equal(t, "2181038134-22-0-0-0", id.String())

	assert.Equal(t, "", VDiskID{Domain: Uint32(1)}.String())
	assert.Equal(t, "", ParseVDiskID("1-2-3").String())
}

func TestVDiskID_Partial(t *testing.T) {
	assert.True(t, VDiskID{}.Empty())
	assert.True(t, ParseVDiskID("1-2-3").Empty())
	assert.True(t, ParseVDiskID("abc").Empty())
	assert.Equal(t, "", ParseVDiskID("abc").Partial())

	partial := ParseVDiskID("1-2-x-4-5")
	assert.False(t, partial.Empty())
	assert.Equal(t, "", partial.String())
	assert.Equal(t, "1-2--4-5", partial.Partial())

	full := ParseVDiskID("7-1-0-2-3")
	assert.Equal(t, full.String(), full.Partial())
}

func TestVSlotKey(t *testing.T) {
	key := VSlotKey{NodeID: Uint32(1), PDiskID: Uint32(2), VSlotID: Uint32(3)}
	assert.Equal(t, "1-2-3", key.String())
	assert.Equal(t, "1-2", key.PDisk().String())
	assert.Equal(t, "", VSlotKey{NodeID: Uint32(1)}.String())
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.True(t, Equal(Uint32(3), Uint32(3)))
	assert.False(t, Equal(Uint32(3), nil))
	assert.False(t, Equal(Uint32(3), Uint32(4)))
}

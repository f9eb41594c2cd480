package disks

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soltixdb/diskhealth/internal/capacity"
	"github.com/soltixdb/diskhealth/internal/diskid"
)

var u32 = diskid.Uint32

func intPtr(v int) *int {
	return &v
}

func assertUnknown(t *testing.T, v capacity.Value, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, math.IsNaN(float64(v)), msgAndArgs...)
}

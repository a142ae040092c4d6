package runner

import (
	"math"
	"testing"
)

func TestClampToFileLimit(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		soft      uint64
		ok        bool
		want      int
	}{
		{"adequate limit leaves concurrency untouched", 200, 4096, true, 200},
		{"tight limit clamps with headroom", 200, 128, true, 64},
		{"very tight limit still leaves one worker", 200, 10, true, 1},
		{"infinite limit leaves concurrency untouched", 200, ^uint64(0), true, 200},
		{"limit above int32 range leaves concurrency untouched", 200, math.MaxInt32 + 1, true, 200},
		{"unknown limit leaves concurrency untouched", 200, 0, false, 200},
		{"request under the limit passes through", 50, 4096, true, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampToFileLimit(tt.requested, tt.soft, tt.ok); got != tt.want {
				t.Errorf("clampToFileLimit(%d, %d, %v) = %d, want %d",
					tt.requested, tt.soft, tt.ok, got, tt.want)
			}
		})
	}
}

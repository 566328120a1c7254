package common

import (
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorPredicates(t *testing.T) {
	shape := errors.Wrap(NewShapeError("resize", "height is %d", 0), "planning")
	nonFinite := errors.Wrap(NewNonFiniteError("deblur", "denominator", 7), "channel 0")
	unsupported := NewUnsupportedConfigError("plan", "scale %v", -1.0)

	assert.True(t, IsShape(shape))
	assert.False(t, IsShape(nonFinite))
	assert.True(t, IsNonFinite(nonFinite))
	assert.Equal(t, "denominator", Stage(nonFinite))
	assert.Equal(t, "", Stage(shape))
	assert.True(t, IsUnsupported(unsupported))
	assert.Contains(t, nonFinite.Error(), `stage "denominator"`)
	assert.Contains(t, shape.Error(), "height is 0")
}

func TestDeviceValidate(t *testing.T) {
	tests := []struct {
		name    string
		device  Device
		wantErr bool
	}{
		{name: "zero value", device: Device{}},
		{name: "cpu", device: CPU(4)},
		{name: "cuda", device: Device{Backend: CUDABackend}, wantErr: true},
		{name: "negative workers", device: Device{Workers: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.device.Validate("test")
			if tt.wantErr {
				assert.True(t, IsUnsupported(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestParallelCoversRangeOnce(t *testing.T) {
	for _, workers := range []int{1, 2, 3, 8} {
		const n = 1000
		hits := make([]int32, n)
		err := Parallel(CPU(workers), n, func(start, end int) error {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
			return nil
		})
		require.NoError(t, err)
		for i, h := range hits {
			require.Equalf(t, int32(1), h, "workers=%d index=%d", workers, i)
		}
	}
}

func TestParallelReturnsError(t *testing.T) {
	err := Parallel(CPU(4), 100, func(start, end int) error {
		if start == 0 {
			return NewNonFiniteError("test", "row", start)
		}
		return nil
	})
	assert.True(t, IsNonFinite(err))
}

func TestParallelRejectsUnusableDevice(t *testing.T) {
	called := false
	fn := func(start, end int) error {
		called = true
		return nil
	}
	assert.True(t, IsUnsupported(Parallel(Device{Backend: CUDABackend}, 10, fn)))
	assert.True(t, IsUnsupported(Parallel(Device{Workers: -1}, 10, fn)))
	assert.False(t, called)
}

func TestParallelEmpty(t *testing.T) {
	called := false
	err := Parallel(CPU(2), 0, func(start, end int) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.False(t, called)
}

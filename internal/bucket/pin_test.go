package bucket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rameshdebur/filebucket/internal/apperror"
)

type proberFunc func(ctx context.Context, pin string, now time.Time) (bool, error)

func (f proberFunc) PINInUse(ctx context.Context, pin string, now time.Time) (bool, error) {
	return f(ctx, pin, now)
}

func TestValidPIN(t *testing.T) {
	assert.True(t, ValidPIN("1234"))
	assert.True(t, ValidPIN("0000"))
	assert.False(t, ValidPIN("123"))
	assert.False(t, ValidPIN("12345"))
	assert.False(t, ValidPIN("12a4"))
	assert.False(t, ValidPIN("１２３４"), "full-width digits are not ASCII")
	assert.False(t, ValidPIN(""))
}

func TestRandomPIN_Range(t *testing.T) {
	for i := 0; i < 500; i++ {
		pin, err := randomPIN()
		require.NoError(t, err)
		require.True(t, ValidPIN(pin), pin)
		assert.GreaterOrEqual(t, pin, "1000")
		assert.LessOrEqual(t, pin, "9999")
	}
}

func TestAllocate_SkipsPINsInUse(t *testing.T) {
	draws := []string{"1111", "2222", "3333"}
	a := NewAllocator(proberFunc(func(_ context.Context, pin string, _ time.Time) (bool, error) {
		return pin != "3333", nil
	}), nil)
	a.draw = func() (string, error) {
		d := draws[0]
		draws = draws[1:]
		return d, nil
	}

	pin, attempts, err := a.Allocate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "3333", pin)
	assert.Equal(t, 3, attempts)
}

func TestAllocate_Exhausted(t *testing.T) {
	probes := 0
	a := NewAllocator(proberFunc(func(context.Context, string, time.Time) (bool, error) {
		probes++
		return true, nil
	}), nil)

	_, attempts, err := a.Allocate(context.Background())
	assert.ErrorIs(t, err, apperror.ErrAllocationExhausted)
	assert.Equal(t, MaxPINAttempts, attempts)
	assert.Equal(t, MaxPINAttempts, probes)
}

func TestAllocate_ProbeErrorIsBackend(t *testing.T) {
	a := NewAllocator(proberFunc(func(context.Context, string, time.Time) (bool, error) {
		return false, errors.New("connection reset")
	}), nil)

	_, _, err := a.Allocate(context.Background())
	assert.ErrorIs(t, err, apperror.ErrBackend)
	assert.NotErrorIs(t, err, apperror.ErrAllocationExhausted)
}

func TestAllocate_ProbesWithClock(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var seen time.Time
	a := NewAllocator(proberFunc(func(_ context.Context, _ string, now time.Time) (bool, error) {
		seen = now
		return false, nil
	}), func() time.Time { return at })

	_, _, err := a.Allocate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, at, seen)
}

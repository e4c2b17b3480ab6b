package bucket

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/rameshdebur/filebucket/internal/apperror"
)

const (
	// PINLength is the fixed width of every access code.
	PINLength = 4

	pinMin  = 1000
	pinSpan = 9000 // 1000..9999

	// MaxPINAttempts bounds the random probe in Allocate.
	MaxPINAttempts = 20
)

// PINProber answers whether a PIN is held by a live bucket.
type PINProber interface {
	PINInUse(ctx context.Context, pin string, now time.Time) (bool, error)
}

// Allocator hands out PINs not held by any ACTIVE, unexpired bucket.
//
// Two concurrent allocations can both see a candidate as free before either
// bucket row is committed. That window is accepted; Allocate never returns a
// PIN it observed to be in use.
type Allocator struct {
	prober   PINProber
	now      func() time.Time
	draw     func() (string, error)
	attempts int
}

// NewAllocator returns an Allocator probing prober with crypto-random draws.
func NewAllocator(prober PINProber, now func() time.Time) *Allocator {
	if now == nil {
		now = time.Now
	}
	return &Allocator{prober: prober, now: now, draw: randomPIN, attempts: MaxPINAttempts}
}

// Allocate returns a free PIN and the number of draws it took.
func (a *Allocator) Allocate(ctx context.Context) (string, int, error) {
	for i := 1; i <= a.attempts; i++ {
		candidate, err := a.draw()
		if err != nil {
			return "", i, fmt.Errorf("draw pin: %w", err)
		}

		inUse, err := a.prober.PINInUse(ctx, candidate, a.now())
		if err != nil {
			return "", i, fmt.Errorf("probe pin: %w: %w", apperror.ErrBackend, err)
		}
		if !inUse {
			return candidate, i, nil
		}
	}
	return "", a.attempts, apperror.ErrAllocationExhausted
}

// ValidPIN reports whether pin has the expected width and only ASCII digits.
func ValidPIN(pin string) bool {
	if len(pin) != PINLength {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}

// randomPIN draws uniformly from 1000..9999 using crypto/rand.
func randomPIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(pinSpan))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", PINLength, n.Int64()+pinMin), nil
}

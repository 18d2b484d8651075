package session_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jmdottavio/product-calculator/internal/order"
	"github.com/jmdottavio/product-calculator/internal/session"
)

func newRegistry() *session.Registry {
	return session.NewRegistry(func() *order.Calculator {
		return order.NewCalculator(order.CalculatorConfig{})
	})
}

func TestRegistryLifecycle(t *testing.T) {
	r := newRegistry()
	require.Equal(t, 0, r.Len())

	s := r.Create()
	require.Equal(t, 1, r.Len())

	got, err := r.Get(s.ID)
	require.NoError(t, err)
	require.Same(t, s, got)

	r.Delete(s.ID)
	require.Equal(t, 0, r.Len())

	_, err = r.Get(s.ID)
	require.ErrorIs(t, err, session.ErrNotFound)

	// Deleting twice is harmless.
	r.Delete(s.ID)
}

func TestRegistryUnknownID(t *testing.T) {
	r := newRegistry()
	_, err := r.Get(uuid.New())
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestCreateSeedsBlankLine(t *testing.T) {
	r := newRegistry()
	s := r.Create()

	snap := s.Snapshot()
	require.Len(t, snap.Lines, 1)
	require.Equal(t, 1, snap.Lines[0].Quantity)
	require.Equal(t, "0.00", snap.Lines[0].ExtendedPriceDisplay)
}

func TestDoSerialisesEdits(t *testing.T) {
	r := newRegistry()
	s := r.Create()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_ = s.Do(func(c *order.Calculator) error {
				c.Order().AddLine()
				return nil
			})
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	require.Len(t, s.Snapshot().Lines, 9)
}

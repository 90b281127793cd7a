package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProgress(t *testing.T) {
	t.Parallel()

	p := NewProgress(10)
	require.Equal(t, 10, p.total)
	require.Equal(t, DefaultProgressWidth, p.bar.Width)
}

func TestProgressRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		total     int
		completed int
		want      float64
	}{
		{"zero total", 0, 0, 0},
		{"half", 10, 5, 0.5},
		{"complete", 4, 4, 1},
		{"beyond total is capped", 10, 15, 1},
		{"negative is floored", 10, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.InDelta(t, tt.want, NewProgress(tt.total).Ratio(tt.completed), 1e-9)
		})
	}
}

func TestProgressView(t *testing.T) {
	t.Parallel()

	t.Run("renders counts and percentage", func(t *testing.T) {
		t.Parallel()
		view := NewProgress(8).View(2)
		require.Contains(t, view, "2/8")
		require.Contains(t, view, "25%")
	})

	t.Run("shows the actual count beyond total", func(t *testing.T) {
		t.Parallel()
		view := NewProgress(10).View(15)
		require.Contains(t, view, "15/10")
		require.Contains(t, view, "100%")
	})

	t.Run("bar takes up space", func(t *testing.T) {
		t.Parallel()
		view := NewProgress(100).View(50)
		require.Greater(t, len(strings.TrimSpace(view)), len("50/100 50%"))
	})
}

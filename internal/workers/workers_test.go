package workers

import (
	"os"
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	originalEnv := os.Getenv("RENDER_WORKERS")
	defer func() {
		if originalEnv != "" {
			os.Setenv("RENDER_WORKERS", originalEnv)
		} else {
			os.Unsetenv("RENDER_WORKERS")
		}
	}()

	os.Unsetenv("RENDER_WORKERS")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{
			name:       "CPU-bound (1.0x multiplier)",
			multiplier: 1.0,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
		{
			name:       "I/O-bound (2.0x multiplier)",
			multiplier: 2.0,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU * 2,
		},
		{
			name:       "limit below calculated count",
			multiplier: 2.0,
			limit:      2,
			minExpect:  1,
			maxExpect:  2,
		},
		{
			name:       "fractional multiplier never drops below one",
			multiplier: 0.1,
			limit:      0,
			minExpect:  1,
			maxExpect:  availableCPU,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)
			if got < tt.minExpect || got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, want within [%d, %d]",
					tt.multiplier, tt.limit, got, tt.minExpect, tt.maxExpect)
			}
		})
	}
}

func TestCountEnvOverride(t *testing.T) {
	originalEnv := os.Getenv("RENDER_WORKERS")
	defer func() {
		if originalEnv != "" {
			os.Setenv("RENDER_WORKERS", originalEnv)
		} else {
			os.Unsetenv("RENDER_WORKERS")
		}
	}()

	os.Setenv("RENDER_WORKERS", "3")
	if got := Count(1.0, 0); got != 3 {
		t.Errorf("Count with override = %d, want 3", got)
	}

	// Override still respects the hard limit.
	if got := Count(1.0, 2); got != 2 {
		t.Errorf("Count with override and limit = %d, want 2", got)
	}

	// Invalid overrides fall back to the calculation.
	os.Setenv("RENDER_WORKERS", "not-a-number")
	if got := Count(1.0, 0); got < 1 {
		t.Errorf("Count with invalid override = %d, want >= 1", got)
	}
}

func TestForCPUAndForIO(t *testing.T) {
	originalEnv := os.Getenv("RENDER_WORKERS")
	os.Unsetenv("RENDER_WORKERS")
	defer func() {
		if originalEnv != "" {
			os.Setenv("RENDER_WORKERS", originalEnv)
		}
	}()

	if got := ForCPU(0); got < 1 {
		t.Errorf("ForCPU(0) = %d, want >= 1", got)
	}
	if got := ForIO(0); got < ForCPU(0) {
		t.Errorf("ForIO(0) = %d, want >= ForCPU(0) = %d", got, ForCPU(0))
	}
}

package orientation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		sample Sample
		want   Orientation
	}{
		{"flat face up", Sample{X: 0, Y: 0, Z: -9.8}, Portrait},
		{"flat face down", Sample{X: 0.3, Y: -0.2, Z: 9.8}, Portrait},
		{"flat with tilt", Sample{X: -4, Y: 5, Z: 6}, Portrait},
		{"landscape right", Sample{X: 9.8, Y: 0, Z: 0}, LandscapeRight},
		{"landscape left", Sample{X: -9.8, Y: 0, Z: 0}, LandscapeLeft},
		{"upright", Sample{X: 0, Y: -9.8, Z: 0}, Portrait},
		{"upside down", Sample{X: 0, Y: 9.8, Z: 0}, PortraitUpsideDown},
		{"x equals z goes to x", Sample{X: 5, Y: 1, Z: 5}, LandscapeRight},
		{"x equals y goes to y", Sample{X: 5, Y: 5, Z: 0}, PortraitUpsideDown},
		{"all zero", Sample{}, Portrait},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.sample))
		})
	}
}

func TestClassifyDominantZIsPortrait(t *testing.T) {
	for _, x := range []float64{-3, -1, 0, 1, 3} {
		for _, y := range []float64{-3, -1, 0, 1, 3} {
			for _, z := range []float64{-9.8, 9.8, 3.5} {
				s := Sample{X: x, Y: y, Z: z}
				assert.Equal(t, Portrait, Classify(s), "sample %+v", s)
			}
		}
	}
}

func TestClassifyDominantX(t *testing.T) {
	for _, x := range []float64{2, 5, 9.8} {
		for _, y := range []float64{-1.5, 0, 1.5} {
			for _, z := range []float64{-x, 0, x} {
				assert.Equal(t, LandscapeRight, Classify(Sample{X: x, Y: y, Z: z}))
				assert.Equal(t, LandscapeLeft, Classify(Sample{X: -x, Y: y, Z: z}))
			}
		}
	}
}

func TestOrientationString(t *testing.T) {
	assert.Equal(t, "portrait", Portrait.String())
	assert.Equal(t, "landscape-right", LandscapeRight.String())
	assert.Equal(t, "unknown", Orientation(42).String())
	assert.False(t, Orientation(-1).Valid())
	assert.True(t, PortraitUpsideDown.Valid())
}

func TestClassifierDefaultsToPortrait(t *testing.T) {
	c := NewClassifier(&ClassifierConfig{})
	assert.Equal(t, Portrait, c.Current())
	assert.Equal(t, DefaultInterval, c.Interval())
}

func TestClassifierObserveOverwritesAndSignalsChanges(t *testing.T) {
	var changes [][2]Orientation
	c := NewClassifier(&ClassifierConfig{
		OnChange: func(prev, cur Orientation) {
			changes = append(changes, [2]Orientation{prev, cur})
		},
	})

	c.Observe(Sample{X: 9.8})
	c.Observe(Sample{X: 9.5, Y: 1})
	c.Observe(Sample{Y: 9.8})
	c.Observe(Sample{X: 9.8})

	assert.Equal(t, LandscapeRight, c.Current())
	assert.Equal(t, [][2]Orientation{
		{Portrait, LandscapeRight},
		{LandscapeRight, PortraitUpsideDown},
		{PortraitUpsideDown, LandscapeRight},
	}, changes)
}

func TestClassifierSamplesInBackground(t *testing.T) {
	var reads atomic.Int32
	src := SourceFunc(func(ctx context.Context) (Sample, error) {
		reads.Add(1)
		return Sample{X: -9.8}, nil
	})

	c := NewClassifier(&ClassifierConfig{Source: src, Interval: 5 * time.Millisecond})
	c.Start()
	defer c.Stop()

	require.Eventually(t, func() bool {
		return c.Current() == LandscapeLeft
	}, time.Second, 5*time.Millisecond)
	assert.True(t, c.Running())
	assert.Positive(t, reads.Load())
}

func TestClassifierRetainsOrientationOnSourceError(t *testing.T) {
	var mu sync.Mutex
	fail := false
	var failedReads atomic.Int32
	src := SourceFunc(func(ctx context.Context) (Sample, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			failedReads.Add(1)
			return Sample{}, fmt.Errorf("sensor unavailable")
		}
		return Sample{Y: 9.8}, nil
	})

	c := NewClassifier(&ClassifierConfig{Source: src, Interval: 5 * time.Millisecond})
	c.Start()
	defer c.Stop()

	require.Eventually(t, func() bool {
		return c.Current() == PortraitUpsideDown
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	fail = true
	mu.Unlock()

	require.Eventually(t, func() bool {
		return failedReads.Load() >= 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, PortraitUpsideDown, c.Current())
}

func TestClassifierIgnoresIdleSource(t *testing.T) {
	var reads atomic.Int32
	src := SourceFunc(func(ctx context.Context) (Sample, error) {
		if reads.Add(1) == 1 {
			return Sample{X: 9.8}, nil
		}
		return Sample{}, fmt.Errorf("redis: %w", ErrNoSample)
	})

	var changes atomic.Int32
	c := NewClassifier(&ClassifierConfig{
		Source:   src,
		Interval: 2 * time.Millisecond,
		OnChange: func(previous, current Orientation) { changes.Add(1) },
	})
	c.Start()
	defer c.Stop()

	require.Eventually(t, func() bool {
		return reads.Load() >= 5
	}, time.Second, 2*time.Millisecond)
	assert.Equal(t, LandscapeRight, c.Current())
	assert.Equal(t, int32(1), changes.Load())
}

func TestClassifierChangeCallbacksDoNotOverlap(t *testing.T) {
	var inFlight, overlaps atomic.Int32
	c := NewClassifier(&ClassifierConfig{
		OnChange: func(previous, current Orientation) {
			if inFlight.Add(1) > 1 {
				overlaps.Add(1)
			}
			time.Sleep(100 * time.Microsecond)
			inFlight.Add(-1)
		},
	})

	samples := []Sample{{X: 9.8}, {X: -9.8}, {Y: 9.8}, {Y: -9.8}}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Observe(samples[(i+j)%len(samples)])
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(0), overlaps.Load())
	assert.True(t, c.Current().Valid())
}

func TestClassifierStartIsIdempotent(t *testing.T) {
	var active atomic.Int32
	var maxActive atomic.Int32
	src := SourceFunc(func(ctx context.Context) (Sample, error) {
		n := active.Add(1)
		defer active.Add(-1)
		if n > maxActive.Load() {
			maxActive.Store(n)
		}
		time.Sleep(time.Millisecond)
		return Sample{X: 9.8}, nil
	})

	c := NewClassifier(&ClassifierConfig{Source: src, Interval: 2 * time.Millisecond})
	c.Start()
	c.Start()
	c.Start()

	time.Sleep(50 * time.Millisecond)
	c.Stop()

	assert.Equal(t, int32(1), maxActive.Load())
	assert.False(t, c.Running())
}

func TestClassifierStopWithoutStart(t *testing.T) {
	c := NewClassifier(&ClassifierConfig{Source: SourceFunc(func(ctx context.Context) (Sample, error) {
		return Sample{}, nil
	})})
	c.Stop()
	c.Stop()
	assert.False(t, c.Running())
}

func TestClassifierWithoutSourceStaysPortrait(t *testing.T) {
	c := NewClassifier(&ClassifierConfig{Interval: time.Millisecond})
	c.Start()
	defer c.Stop()
	assert.False(t, c.Running())
	assert.Equal(t, Portrait, c.Current())
}

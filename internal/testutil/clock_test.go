package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClock_NextIncrementsMonotonically(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, int64(0), clock.Current())

	assert.Equal(t, int64(1), clock.Next())
	assert.Equal(t, int64(2), clock.Next())
	assert.Equal(t, int64(3), clock.Next())
	assert.Equal(t, int64(3), clock.Current())
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := NewDeterministicClock()
	clock.Next()
	clock.Next()

	clock.Reset()
	assert.Equal(t, int64(0), clock.Current())
	assert.Equal(t, int64(1), clock.Next())
}

func TestDeterministicClock_ThreadSafe(t *testing.T) {
	clock := NewDeterministicClock()
	const goroutines = 50
	const calls = 100

	var wg sync.WaitGroup
	wg.Add(goroutines)
	results := make([][]int64, goroutines)
	for i := 0; i < goroutines; i++ {
		results[i] = make([]int64, calls)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				results[idx][j] = clock.Next()
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, row := range results {
		for _, v := range row {
			require.False(t, seen[v], "duplicate value %d", v)
			seen[v] = true
		}
	}
	assert.Len(t, seen, goroutines*calls)
}

func TestStepClock_AdvancesPerRead(t *testing.T) {
	clock := NewStepClock(5 * time.Millisecond)

	first := clock.Now()
	second := clock.Now()

	assert.Equal(t, Epoch, first)
	assert.Equal(t, 5*time.Millisecond, second.Sub(first))
}

func TestStepClock_AdvanceAndSetStep(t *testing.T) {
	clock := NewStepClock(0)
	clock.Advance(time.Second)
	assert.Equal(t, Epoch.Add(time.Second), clock.Now())

	clock.SetStep(time.Minute)
	a := clock.Now()
	b := clock.Now()
	assert.Equal(t, time.Minute, b.Sub(a))
}

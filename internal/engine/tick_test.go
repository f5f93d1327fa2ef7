package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSimTime(t *testing.T) {
	cases := []struct {
		tick uint64
		want string
	}{
		{0, "Spring Day 1, Year 1"},
		{89, "Spring Day 90, Year 1"},
		{90, "Summer Day 1, Year 1"},
		{180, "Autumn Day 1, Year 1"},
		{359, "Winter Day 90, Year 1"},
		{360, "Spring Day 1, Year 2"},
		{721, "Spring Day 2, Year 3"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, SimTime(tc.tick), "tick %d", tc.tick)
	}
}

func TestSeasonName(t *testing.T) {
	require.Equal(t, "Spring", SeasonName(0))
	require.Equal(t, "Summer", SeasonName(1))
	require.Equal(t, "Autumn", SeasonName(2))
	require.Equal(t, "Winter", SeasonName(3))
	require.Equal(t, "Spring", SeasonName(4))
}

func TestEngineCadence(t *testing.T) {
	e := NewEngine()

	var days, weeks, seasons int
	var lastTick uint64
	e.OnTick = func(tick uint64) {
		days++
		require.Equal(t, lastTick+1, tick, "ticks must be consecutive")
		lastTick = tick
	}
	e.OnWeek = func(tick uint64) {
		weeks++
		require.Zero(t, tick%TicksPerWeek)
	}
	e.OnSeason = func(tick uint64) {
		seasons++
		require.Zero(t, tick%TicksPerSeason)
	}

	for i := 0; i < TicksPerSeason; i++ {
		e.step()
	}

	require.Equal(t, 90, days)
	require.Equal(t, 12, weeks)
	require.Equal(t, 1, seasons)
	require.Equal(t, uint64(TicksPerSeason), e.Tick)
}

func TestEngineDefaults(t *testing.T) {
	e := NewEngine()
	require.Equal(t, 1.0, e.Speed())
	require.NotZero(t, e.Interval)
	require.False(t, e.IsRunning())
}

// Speed changes and Stop land from another goroutine while the loop runs.
func TestEngineControlWhileRunning(t *testing.T) {
	e := NewEngine()
	e.Interval = time.Millisecond
	e.OnTick = func(uint64) {}

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	require.Eventually(t, e.IsRunning, time.Second, time.Millisecond)

	e.SetSpeed(1000)
	require.Equal(t, float64(1000), e.Speed())

	e.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("engine did not stop")
	}
	require.False(t, e.IsRunning())
}

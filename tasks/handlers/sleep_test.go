package handlers

import (
	"bytes"
	"testing"
	"time"

	"task-dispatch/errors"

	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"
)

// FakeSleeper records the sleep duration without actually pausing execution.
type FakeSleeper struct {
	CalledWith time.Duration
	Calls      int
}

func (f *FakeSleeper) Sleep(d time.Duration) {
	f.CalledWith = d
	f.Calls++
}

func TestSleep(t *testing.T) {
	tests := []struct {
		name            string
		duration        time.Duration
		wantErr         bool
		wantErrContains string
	}{
		{name: "one second", duration: time.Second},
		{name: "sub second", duration: 250 * time.Millisecond},
		{name: "zero", duration: 0, wantErr: true, wantErrContains: "must be > 0"},
		{name: "negative", duration: -time.Second, wantErr: true, wantErrContains: "must be > 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sleeper := &FakeSleeper{}
			task, err := Sleep(sleeper, tt.duration)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErrContains)
				assert.Assert(t, errors.IsType(err, errors.ValidationError))
				assert.Assert(t, task == nil)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, 0, sleeper.Calls, "building the task must not sleep")
			task()
			assert.Equal(t, 1, sleeper.Calls)
			assert.Equal(t, tt.duration, sleeper.CalledWith)
		})
	}
}

func TestSleep_DefaultsToRealSleeper(t *testing.T) {
	task, err := Sleep(nil, time.Millisecond)
	require.NoError(t, err)

	start := time.Now()
	task()
	assert.Assert(t, time.Since(start) >= time.Millisecond)
}

func TestSleepJob(t *testing.T) {
	var buf bytes.Buffer
	sleeper := &FakeSleeper{}

	build, err := SleepJob(&buf, sleeper, 3, 2*time.Second)
	require.NoError(t, err)

	list := build()
	assert.Equal(t, 3, list.Size())
	assert.Equal(t, 0, sleeper.Calls)

	require.NoError(t, list.Invoke(2))
	assert.Equal(t, 1, sleeper.Calls)
	assert.Equal(t, 2*time.Second, sleeper.CalledWith)
	assert.Equal(t, "Slept 2s: 2\n", buf.String())
}

func TestSleepJob_InvalidDuration(t *testing.T) {
	build, err := SleepJob(&bytes.Buffer{}, &FakeSleeper{}, 3, 0)

	require.Error(t, err)
	assert.Assert(t, errors.IsType(err, errors.ValidationError))
	assert.Assert(t, build == nil)
}

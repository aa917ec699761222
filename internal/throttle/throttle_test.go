package throttle_test

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leftmike/rowset/internal/throttle"
)

func TestDisabledWhenThrottleMBIsZero(t *testing.T) {
	log, hook := test.NewNullLogger()
	tr := throttle.New("MemRowSet-1", 0, log)
	tr.SetSleepFunc(func(d time.Duration) {
		t.Fatal("should not sleep when disabled")
	})

	tr.Check(1 << 40)
	assert.Empty(t, hook.Entries)
}

func TestSleepsProportionalToOverage(t *testing.T) {
	log, hook := test.NewNullLogger()
	tr := throttle.New("MemRowSet-1", 1, log) // 1 MiB threshold

	var slept time.Duration
	tr.SetSleepFunc(func(d time.Duration) { slept = d })

	footprint := int64(2 * 1024 * 1024) // 1 MiB over threshold
	tr.Check(footprint)

	want := time.Duration((1024*1024)/524288) * time.Microsecond
	assert.Equal(t, want, slept)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.Entries[0].Level)
}

func TestWarningIsOneShot(t *testing.T) {
	log, hook := test.NewNullLogger()
	tr := throttle.New("MemRowSet-1", 1, log)
	tr.SetSleepFunc(func(time.Duration) {})

	tr.Check(4 * 1024 * 1024)
	tr.Check(4 * 1024 * 1024)
	tr.Check(4 * 1024 * 1024)

	assert.Len(t, hook.Entries, 1)
}

func TestNoSleepUnderThreshold(t *testing.T) {
	log, _ := test.NewNullLogger()
	tr := throttle.New("MemRowSet-1", 10, log)
	tr.SetSleepFunc(func(time.Duration) {
		t.Fatal("should not sleep under threshold")
	})
	tr.Check(1024)
}

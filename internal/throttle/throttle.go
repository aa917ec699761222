// Package throttle implements the write-side back-pressure spec.md §4.7 describes: once an
// MRS's memory footprint crosses a configured threshold, mutators sleep proportionally to the
// overage instead of failing outright.
//
// Grounded on testutil/logger.go and cmd/maho.go's logrus setup for the warning log line.
package throttle

import (
	"fmt"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/sirupsen/logrus"
	uberatomic "go.uber.org/atomic"
)

// Throttler sleeps mutators back when an MRS's footprint exceeds ThrottleMB. A ThrottleMB of 0
// disables throttling entirely.
type Throttler struct {
	name       string
	ThrottleMB int64
	log        logrus.FieldLogger

	warned      uberatomic.Bool
	sleepsTotal *metrics.Counter
	sleptNanos  *metrics.Counter

	sleep func(time.Duration) // overridable for tests
}

// New creates a Throttler for the MRS named name, logging warnings via log.
func New(name string, throttleMB int64, log logrus.FieldLogger) *Throttler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Throttler{
		name:       name,
		ThrottleMB: throttleMB,
		log:        log,
		sleepsTotal: metrics.GetOrCreateCounter(
			fmt.Sprintf(`rowset_throttle_sleeps_total{mrs=%q}`, name)),
		sleptNanos: metrics.GetOrCreateCounter(
			fmt.Sprintf(`rowset_throttle_slept_nanos_total{mrs=%q}`, name)),
		sleep: time.Sleep,
	}
}

// SetSleepFunc overrides the sleep implementation, for tests.
func (t *Throttler) SetSleepFunc(sleep func(time.Duration)) {
	t.sleep = sleep
}

// Check inspects footprint against the configured threshold and sleeps the caller if it's
// exceeded. Must be called outside any CSI critical section so readers are unaffected.
func (t *Throttler) Check(footprint int64) {
	if t.ThrottleMB <= 0 {
		return
	}
	overage := footprint - t.ThrottleMB*1024*1024
	if overage <= 0 {
		return
	}

	if t.warned.CompareAndSwap(false, true) {
		t.log.WithFields(logrus.Fields{
			"mrs":      t.name,
			"footprint": footprint,
			"threshold": t.ThrottleMB * 1024 * 1024,
		}).Warn("memrowset write throttling engaged")
	}

	// overage_bytes / 524288 microseconds, per spec.md §4.7.
	d := time.Duration(overage/524288) * time.Microsecond
	t.sleepsTotal.Inc()
	t.sleptNanos.Add(int(d.Nanoseconds()))
	t.sleep(d)
}

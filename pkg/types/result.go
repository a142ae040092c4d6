package types

import "time"

// FailureCause classifies a failed connect attempt
type FailureCause int

const (
	CauseNone FailureCause = iota
	CauseTimeout
	CauseRefused
	CauseUnreachable
	CauseOther
)

func (c FailureCause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseTimeout:
		return "timeout"
	case CauseRefused:
		return "refused"
	case CauseUnreachable:
		return "unreachable"
	default:
		return "other"
	}
}

// ProbeOutcome is a single timed connect attempt. Latency is recorded in
// whole milliseconds, floor-rounded from the measured duration.
type ProbeOutcome struct {
	OK        bool
	LatencyMS int64
	Cause     FailureCause
}

// SuccessOutcome records a successful attempt that took d.
func SuccessOutcome(d time.Duration) ProbeOutcome {
	return ProbeOutcome{OK: true, LatencyMS: d.Milliseconds()}
}

// FailureOutcome records a failed attempt with its classified cause.
func FailureOutcome(cause FailureCause) ProbeOutcome {
	return ProbeOutcome{Cause: cause}
}

// NoLatency is the representative latency of a result with zero successful
// attempts. Such results sort after every successful one.
const NoLatency int64 = -1

// ProbeResult aggregates the ordered attempt outcomes for one address.
// Immutable once created; owned by the scheduler's result store.
type ProbeResult struct {
	Address  Address
	Outcomes []ProbeOutcome
}

// Successes returns the number of successful attempts.
func (r *ProbeResult) Successes() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK {
			n++
		}
	}
	return n
}

// AvgLatencyMS returns the mean latency of the successful attempts in whole
// milliseconds, or NoLatency when no attempt succeeded.
func (r *ProbeResult) AvgLatencyMS() int64 {
	var sum, n int64
	for _, o := range r.Outcomes {
		if o.OK {
			sum += o.LatencyMS
			n++
		}
	}
	if n == 0 {
		return NoLatency
	}
	return sum / n
}

// Loss returns the fraction of attempts that failed.
func (r *ProbeResult) Loss() float64 {
	if len(r.Outcomes) == 0 {
		return 1
	}
	return 1 - float64(r.Successes())/float64(len(r.Outcomes))
}

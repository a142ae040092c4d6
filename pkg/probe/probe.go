// Package probe measures connect latency against a single address. Attempts
// within one address are strictly sequential so the recorded jitter reflects
// real spacing; concurrency across addresses is the scheduler's job.
package probe

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"

	"tcprank/pkg/types"
)

const (
	// DefaultTimeout bounds a single connect attempt when none is configured.
	DefaultTimeout = 9999 * time.Millisecond
)

// DialFunc dials one connection. Tests inject instrumented implementations to
// verify the concurrency bound and timeout behavior.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// TCPProber performs timed TCP connect attempts. The connection is closed
// immediately after the handshake; no payload is exchanged.
type TCPProber struct {
	Attempts int
	Timeout  time.Duration

	dial DialFunc
}

func NewTCP(attempts int, timeout time.Duration) *TCPProber {
	attempts, timeout = clamp(attempts, timeout)
	dialer := &net.Dialer{Timeout: timeout}
	return &TCPProber{Attempts: attempts, Timeout: timeout, dial: dialer.DialContext}
}

// NewTCPWithDialer is used by tests to instrument dialing.
func NewTCPWithDialer(attempts int, timeout time.Duration, dial DialFunc) *TCPProber {
	attempts, timeout = clamp(attempts, timeout)
	return &TCPProber{Attempts: attempts, Timeout: timeout, dial: dial}
}

// Probe runs the configured number of sequential connect attempts against
// addr. Per-attempt failures are absorbed into the result, never returned.
// Context cancellation stops remaining attempts; outcomes recorded so far
// still form the result.
func (p *TCPProber) Probe(ctx context.Context, addr types.Address) *types.ProbeResult {
	outcomes := make([]types.ProbeOutcome, 0, p.Attempts)
	target := addr.String()

	for i := 0; i < p.Attempts; i++ {
		if ctx.Err() != nil {
			break
		}
		attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
		start := time.Now()
		conn, err := p.dial(attemptCtx, "tcp", target)
		elapsed := time.Since(start)
		cancel()

		if err != nil {
			// a dial aborted by run cancellation is not a probe failure
			if ctx.Err() != nil {
				break
			}
			outcomes = append(outcomes, types.FailureOutcome(Classify(err)))
			continue
		}
		_ = conn.Close()
		outcomes = append(outcomes, types.SuccessOutcome(elapsed))
	}

	return &types.ProbeResult{Address: addr, Outcomes: outcomes}
}

// Classify maps a connect error to its failure cause.
func Classify(err error) types.FailureCause {
	if err == nil {
		return types.CauseNone
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return types.CauseTimeout
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return types.CauseTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return types.CauseRefused
	}
	if errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return types.CauseUnreachable
	}
	return types.CauseOther
}

func clamp(attempts int, timeout time.Duration) (int, time.Duration) {
	if attempts < 1 {
		attempts = 1
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return attempts, timeout
}

package probe

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"tcprank/pkg/types"
)

// HTTPProber times a minimal GET / exchange per attempt instead of a bare
// handshake. One fresh connection per attempt, Connection: close, success is
// any parseable HTTP status line. Same sequential-attempt contract as
// TCPProber.
type HTTPProber struct {
	Attempts int
	Timeout  time.Duration
	Host     string

	dial DialFunc
}

func NewHTTP(attempts int, timeout time.Duration, host string) *HTTPProber {
	attempts, timeout = clamp(attempts, timeout)
	return &HTTPProber{Attempts: attempts, Timeout: timeout, Host: host, dial: defaultDialer(timeout)}
}

// NewHTTPWithDialer is used by tests to instrument dialing.
func NewHTTPWithDialer(attempts int, timeout time.Duration, host string, dial DialFunc) *HTTPProber {
	attempts, timeout = clamp(attempts, timeout)
	return &HTTPProber{Attempts: attempts, Timeout: timeout, Host: host, dial: dial}
}

func (p *HTTPProber) Probe(ctx context.Context, addr types.Address) *types.ProbeResult {
	outcomes := make([]types.ProbeOutcome, 0, p.Attempts)
	target := addr.String()
	host := p.Host
	if host == "" {
		host = addr.IP.String()
	}

	for i := 0; i < p.Attempts; i++ {
		if ctx.Err() != nil {
			break
		}
		outcome := p.attempt(ctx, target, host)
		// an exchange aborted by run cancellation is not a probe failure
		if !outcome.OK && ctx.Err() != nil {
			break
		}
		outcomes = append(outcomes, outcome)
	}

	return &types.ProbeResult{Address: addr, Outcomes: outcomes}
}

// attempt covers the full request/response round trip with one deadline: the
// per-attempt timeout bounds dial, write and first response line together.
func (p *HTTPProber) attempt(ctx context.Context, target, host string) types.ProbeOutcome {
	attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	start := time.Now()
	conn, err := p.dial(attemptCtx, "tcp", target)
	if err != nil {
		return types.FailureOutcome(Classify(err))
	}
	defer func() {
		_ = conn.Close()
	}()
	deadline, ok := attemptCtx.Deadline()
	if ok {
		_ = conn.SetDeadline(deadline)
	}

	request := fmt.Sprintf("GET / HTTP/1.1\r\nHost: %s\r\nAccept: */*\r\nConnection: close\r\n\r\n", host)
	if _, err := conn.Write([]byte(request)); err != nil {
		return types.FailureOutcome(Classify(err))
	}

	statusLine, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return types.FailureOutcome(Classify(err))
	}
	if !strings.HasPrefix(statusLine, "HTTP/") {
		return types.FailureOutcome(types.CauseOther)
	}

	return types.SuccessOutcome(time.Since(start))
}

func defaultDialer(timeout time.Duration) DialFunc {
	d := &net.Dialer{Timeout: timeout}
	return d.DialContext
}

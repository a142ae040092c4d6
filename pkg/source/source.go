// Package source expands CIDR blocks, IP literals, hostnames and target files
// into a lazy, deduplicated stream of probe addresses. Large CIDR blocks are
// never materialized; expansion is pulled one address at a time so the
// scheduler's worker pool is the only thing throttling production.
package source

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"net/netip"
	"os"
	"strings"

	"github.com/projectdiscovery/mapcidr"
	sliceutil "github.com/projectdiscovery/utils/slice"

	"tcprank/pkg/types"
)

// entry is one classified input target: either a CIDR kept in string form for
// lazy expansion, or a concrete address.
type entry struct {
	cidr string
	addr netip.Addr
}

// Source produces the candidate addresses for a scan.
type Source struct {
	entries []entry
	port    uint16

	// dedupe tracking is only needed when entries can overlap
	seen map[netip.Addr]struct{}

	pos    int
	stream chan string
}

// Parse resolves raw targets into a Source. Each target may be a CIDR block,
// an IP literal, a hostname, or a path to a file holding one target per line
// (blank lines and # comments skipped). Any malformed target is fatal.
func Parse(ctx context.Context, targets []string, port uint16, res *Resolver) (*Source, error) {
	if res == nil {
		res = NewResolver()
	}

	var entries []entry
	for _, target := range sliceutil.Dedupe(targets) {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if isFile(target) {
			lines, err := readTargetFile(target)
			if err != nil {
				return nil, err
			}
			for _, line := range lines {
				parsed, err := classify(ctx, line, res)
				if err != nil {
					return nil, fmt.Errorf("%w: file %s: %s", types.ErrInvalidInput, target, err)
				}
				entries = append(entries, parsed...)
			}
			continue
		}
		parsed, err := classify(ctx, target, res)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", types.ErrInvalidInput, err)
		}
		entries = append(entries, parsed...)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no addresses resolved from targets %v", types.ErrInvalidInput, targets)
	}

	src := &Source{entries: entries, port: port}
	if len(entries) > 1 {
		src.seen = make(map[netip.Addr]struct{})
	}
	return src, nil
}

// classify turns one target string into entries. Hostnames fan out to every
// resolved address.
func classify(ctx context.Context, target string, res *Resolver) ([]entry, error) {
	target = strings.TrimSpace(target)
	if strings.Contains(target, "/") {
		if _, _, err := net.ParseCIDR(target); err != nil {
			return nil, fmt.Errorf("malformed CIDR %q", target)
		}
		return []entry{{cidr: target}}, nil
	}
	if ip, err := netip.ParseAddr(target); err == nil {
		return []entry{{addr: ip.Unmap()}}, nil
	}
	ips, err := res.Resolve(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %q: %s", target, err)
	}
	entries := make([]entry, 0, len(ips))
	for _, ip := range ips {
		entries = append(entries, entry{addr: ip})
	}
	return entries, nil
}

// Count estimates the total number of candidate addresses. Overlap between
// entries is not accounted for; the value drives progress display only and is
// never a termination condition.
func (s *Source) Count() uint64 {
	var total uint64
	for _, e := range s.entries {
		if e.cidr == "" {
			total++
			continue
		}
		if n, err := mapcidr.AddressCount(e.cidr); err == nil {
			total += n
		}
	}
	return total
}

// Next returns the next candidate address, skipping duplicates. The second
// return is false once the source is exhausted.
func (s *Source) Next() (types.Address, bool) {
	for {
		ip, ok := s.nextAddr()
		if !ok {
			return types.Address{}, false
		}
		if s.seen != nil {
			if _, dup := s.seen[ip]; dup {
				continue
			}
			s.seen[ip] = struct{}{}
		}
		return types.NewAddress(ip, s.port), true
	}
}

func (s *Source) nextAddr() (netip.Addr, bool) {
	for s.pos < len(s.entries) {
		e := s.entries[s.pos]
		if e.cidr == "" {
			s.pos++
			return e.addr, true
		}
		if s.stream == nil {
			stream, err := mapcidr.IPAddressesAsStream(e.cidr)
			if err != nil {
				s.pos++
				continue
			}
			s.stream = stream
		}
		raw, ok := <-s.stream
		if !ok {
			s.stream = nil
			s.pos++
			continue
		}
		ip, err := netip.ParseAddr(raw)
		if err != nil {
			continue
		}
		return ip.Unmap(), true
	}
	return netip.Addr{}, false
}

// Sample materializes the source and keeps a uniformly random subset of at
// most n addresses. With n <= 0 or n >= total the source is unchanged.
func (s *Source) Sample(n int) *Source {
	if n <= 0 {
		return s
	}
	var all []entry
	for {
		addr, ok := s.Next()
		if !ok {
			break
		}
		all = append(all, entry{addr: addr.IP})
	}
	if n < len(all) {
		rand.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
		all = all[:n]
	}
	return &Source{entries: all, port: s.port}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func readTargetFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read %s: %s", types.ErrInvalidInput, path, err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

package source

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"github.com/projectdiscovery/gcache"
)

// LookupFunc resolves a hostname to its addresses.
type LookupFunc func(ctx context.Context, host string) ([]netip.Addr, error)

// Resolver resolves hostname targets, caching results so a name repeated
// across large target files hits DNS once.
type Resolver struct {
	cache  gcache.Cache[string, []netip.Addr]
	lookup LookupFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		cache:  gcache.New[string, []netip.Addr](1024).LRU().Build(),
		lookup: systemLookup,
	}
}

// NewResolverWithLookup is used by tests to stub DNS.
func NewResolverWithLookup(lookup LookupFunc) *Resolver {
	return &Resolver{
		cache:  gcache.New[string, []netip.Addr](1024).LRU().Build(),
		lookup: lookup,
	}
}

func (r *Resolver) Resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	if ips, err := r.cache.Get(host); err == nil {
		return ips, nil
	}
	ips, err := r.lookup(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("no addresses for host %q", host)
	}
	_ = r.cache.Set(host, ips)
	return ips, nil
}

func systemLookup(ctx context.Context, host string) ([]netip.Addr, error) {
	records, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	seen := make(map[netip.Addr]struct{}, len(records))
	ips := make([]netip.Addr, 0, len(records))
	for _, rec := range records {
		ip, ok := netip.AddrFromSlice(rec.IP)
		if !ok {
			continue
		}
		ip = ip.Unmap()
		if _, dup := seen[ip]; dup {
			continue
		}
		seen[ip] = struct{}{}
		ips = append(ips, ip)
	}
	return ips, nil
}

// Package rank reduces raw probe results to a ranked report: ascending by
// representative latency, total failures excluded, truncated to the display
// count.
package rank

import (
	"sort"

	"tcprank/pkg/types"
)

// Options tunes report construction. UpperMS/LowerMS form the acceptable
// average-latency band; entries outside it are excluded from the report but
// stay in the full result set.
type Options struct {
	Display int
	UpperMS int64
	LowerMS int64
}

// Build produces the ranked report. The input slice comes from a map and has
// no defined order, so results are first ordered by address to make repeated
// runs on identical data deterministic, then stably sorted by the ranking
// rule. Entries with zero successful attempts never appear in the report.
func Build(results []*types.ProbeResult, opts Options) []*types.ProbeResult {
	if opts.Display <= 0 {
		return nil
	}

	ranked := Order(results)

	filtered := ranked[:0]
	for _, r := range ranked {
		avg := r.AvgLatencyMS()
		if avg == types.NoLatency {
			continue
		}
		if opts.UpperMS > 0 && avg > opts.UpperMS {
			continue
		}
		if avg < opts.LowerMS {
			continue
		}
		filtered = append(filtered, r)
	}

	if opts.Display < len(filtered) {
		filtered = filtered[:opts.Display]
	}
	return filtered
}

// Order sorts every result by the ranking rule without filtering or
// truncation: ascending representative latency, zero-success entries last,
// ties broken by address so the order is reproducible.
func Order(results []*types.ProbeResult) []*types.ProbeResult {
	ordered := make([]*types.ProbeResult, len(results))
	copy(ordered, results)

	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Address.IP.Less(ordered[j].Address.IP)
	})
	sort.SliceStable(ordered, func(i, j int) bool {
		ai, aj := ordered[i].AvgLatencyMS(), ordered[j].AvgLatencyMS()
		if ai == types.NoLatency {
			return false
		}
		if aj == types.NoLatency {
			return true
		}
		return ai < aj
	})
	return ordered
}

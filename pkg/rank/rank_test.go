package rank

import (
	"net/netip"
	"testing"
	"time"

	"tcprank/pkg/types"
)

func mkResult(ip string, latenciesMS []int64, failures int) *types.ProbeResult {
	r := &types.ProbeResult{
		Address: types.NewAddress(netip.MustParseAddr(ip), 443),
	}
	for _, ms := range latenciesMS {
		r.Outcomes = append(r.Outcomes, types.SuccessOutcome(time.Duration(ms)*time.Millisecond))
	}
	for i := 0; i < failures; i++ {
		r.Outcomes = append(r.Outcomes, types.FailureOutcome(types.CauseTimeout))
	}
	return r
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		results []*types.ProbeResult
		opts    Options
		want    []string
	}{
		{
			name: "ascending by average latency",
			results: []*types.ProbeResult{
				mkResult("10.0.0.1", []int64{30}, 0),
				mkResult("10.0.0.2", []int64{10}, 0),
				mkResult("10.0.0.3", []int64{20}, 0),
			},
			opts: Options{Display: 10},
			want: []string{"10.0.0.2", "10.0.0.3", "10.0.0.1"},
		},
		{
			name: "zero successful attempts excluded",
			results: []*types.ProbeResult{
				mkResult("10.0.0.1", []int64{5, 5}, 0),
				mkResult("10.0.0.2", nil, 2),
			},
			opts: Options{Display: 10},
			want: []string{"10.0.0.1"},
		},
		{
			name: "truncated to display count",
			results: []*types.ProbeResult{
				mkResult("10.0.0.1", []int64{30}, 0),
				mkResult("10.0.0.2", []int64{10}, 0),
				mkResult("10.0.0.3", []int64{20}, 0),
			},
			opts: Options{Display: 2},
			want: []string{"10.0.0.2", "10.0.0.3"},
		},
		{
			name: "display zero yields empty report",
			results: []*types.ProbeResult{
				mkResult("10.0.0.1", []int64{10}, 0),
			},
			opts: Options{Display: 0},
			want: nil,
		},
		{
			name: "upper latency band excludes slow entries",
			results: []*types.ProbeResult{
				mkResult("10.0.0.1", []int64{200}, 0),
				mkResult("10.0.0.2", []int64{50}, 0),
			},
			opts: Options{Display: 10, UpperMS: 100},
			want: []string{"10.0.0.2"},
		},
		{
			name: "lower latency band excludes fast entries",
			results: []*types.ProbeResult{
				mkResult("10.0.0.1", []int64{200}, 0),
				mkResult("10.0.0.2", []int64{50}, 0),
			},
			opts: Options{Display: 10, LowerMS: 100},
			want: []string{"10.0.0.1"},
		},
		{
			name: "equal latency ties break by address",
			results: []*types.ProbeResult{
				mkResult("10.0.0.9", []int64{10}, 0),
				mkResult("10.0.0.1", []int64{10}, 0),
				mkResult("10.0.0.5", []int64{10}, 0),
			},
			opts: Options{Display: 10},
			want: []string{"10.0.0.1", "10.0.0.5", "10.0.0.9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.results, tt.opts)
			if len(got) != len(tt.want) {
				t.Fatalf("Build() returned %d entries, want %d", len(got), len(tt.want))
			}
			for i, r := range got {
				if r.Address.IP.String() != tt.want[i] {
					t.Errorf("entry %d = %s, want %s", i, r.Address.IP, tt.want[i])
				}
			}
		})
	}
}

func TestBuildDeterministic(t *testing.T) {
	results := []*types.ProbeResult{
		mkResult("10.0.0.3", []int64{10}, 0),
		mkResult("10.0.0.1", []int64{10}, 0),
		mkResult("10.0.0.2", []int64{20}, 0),
	}
	first := Build(results, Options{Display: 10})
	for i := 0; i < 5; i++ {
		again := Build(results, Options{Display: 10})
		for j := range first {
			if first[j].Address != again[j].Address {
				t.Fatalf("run %d: entry %d = %s, want %s", i, j, again[j].Address, first[j].Address)
			}
		}
	}
}

func TestOrderPlacesFailuresLast(t *testing.T) {
	results := []*types.ProbeResult{
		mkResult("10.0.0.1", nil, 2),
		mkResult("10.0.0.2", []int64{40}, 0),
		mkResult("10.0.0.3", []int64{10}, 0),
	}
	ordered := Order(results)
	want := []string{"10.0.0.3", "10.0.0.2", "10.0.0.1"}
	for i, r := range ordered {
		if r.Address.IP.String() != want[i] {
			t.Errorf("entry %d = %s, want %s", i, r.Address.IP, want[i])
		}
	}
}

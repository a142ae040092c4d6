package runner

import (
	"context"
	"errors"
	"math"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/projectdiscovery/gologger"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/v3/process"

	"tcprank/pkg/probe"
	"tcprank/pkg/rank"
	"tcprank/pkg/report"
	"tcprank/pkg/scan"
	"tcprank/pkg/source"
)

// Runner contains the internal logic of the program
type Runner struct {
	options *Options
	runID   string
}

// NewRunner instance
func NewRunner(options *Options) (*Runner, error) {
	return &Runner{options: options, runID: xid.New().String()}, nil
}

// Run the instance: resolve targets, probe them under the concurrency bound,
// rank the outcomes and hand them to the console and CSV sinks. Per-address
// probe failures never surface here; only input resolution and final output
// errors do.
func (r *Runner) Run(ctx context.Context) error {
	opts := r.options
	gologger.Verbose().Msgf("run %s: resolving %d target(s)", r.runID, len(opts.Targets))

	src, err := source.Parse(ctx, opts.Targets, uint16(opts.Port), source.NewResolver())
	if err != nil {
		return err
	}
	if opts.RandomCount > 0 {
		src = src.Sample(opts.RandomCount)
	}

	concurrency := r.boundConcurrency(opts.Number)

	var prober scan.Prober
	if opts.HTTPing {
		prober = probe.NewHTTP(opts.Time, opts.Timeout(), opts.HTTPingHost)
	} else {
		prober = probe.NewTCP(opts.Time, opts.Timeout())
	}
	sched := scan.NewScheduler(prober, concurrency)

	total := src.Count()
	gologger.Info().Msgf("probing up to %d addresses on port %d (%d workers, %d attempts, %s timeout)",
		total, opts.Port, concurrency, opts.Time, opts.Timeout())

	stopProgress := func() {}
	if !opts.Silent {
		stopProgress = r.startProgress(sched, total)
	}

	runErr := sched.Run(ctx, src)
	stopProgress()
	if runErr != nil {
		if !errors.Is(runErr, context.Canceled) {
			return runErr
		}
		// interrupted runs still report whatever completed
		gologger.Warning().Msgf("scan interrupted, reporting %d completed probes", sched.Completed())
	}

	results := sched.Results()
	if len(results) == 0 {
		gologger.Info().Msgf("no probes completed")
		return nil
	}

	ranked := rank.Build(results, rank.Options{
		Display: opts.Display,
		UpperMS: int64(opts.AvgUpperMS),
		LowerMS: int64(opts.AvgLowerMS),
	})
	report.WriteTable(os.Stdout, ranked, au)

	if err := report.WriteCSV(opts.Output, rank.Order(results)); err != nil {
		return err
	}
	gologger.Info().Msgf("wrote %d results to %s", len(results), opts.Output)
	return nil
}

// Close the runner instance
func (r *Runner) Close() {}

// startProgress drives the progress bar off the scheduler's completed
// counter. The returned func stops the bar.
func (r *Runner) startProgress(sched *scan.Scheduler, total uint64) func() {
	bar := pb.New64(int64(total))
	bar.SetTemplate(`{{counters . }} {{bar . }} {{percent . }} {{etime . }}`)
	bar.Start()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				bar.SetCurrent(int64(sched.Completed()))
			}
		}
	}()

	return func() {
		close(done)
		bar.SetCurrent(int64(sched.Completed()))
		bar.Finish()
	}
}

// boundConcurrency keeps the worker count under the soft open-file limit so
// a large -number cannot exhaust descriptors on constrained devices.
func (r *Runner) boundConcurrency(requested int) int {
	soft, ok := openFileLimit()
	bounded := clampToFileLimit(requested, soft, ok)
	if bounded < requested {
		gologger.Warning().Msgf("lowering concurrency from %d to %d to stay under the open file limit (%d)",
			requested, bounded, soft)
	}
	return bounded
}

func clampToFileLimit(requested int, soft uint64, ok bool) int {
	if !ok {
		return requested
	}
	// RLIM_INFINITY and similarly huge limits cannot be exhausted by a
	// worker pool; they must not wrap when narrowed to int
	if soft > math.MaxInt32 {
		return requested
	}
	// headroom for stdio, the CSV file and the resolver
	limit := int(soft) - 64
	if limit < 1 {
		limit = 1
	}
	if requested > limit {
		return limit
	}
	return requested
}

func openFileLimit() (uint64, bool) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, false
	}
	limits, err := proc.RlimitUsage(false)
	if err != nil {
		return 0, false
	}
	for _, l := range limits {
		if l.Resource == process.RLIMIT_NOFILE {
			return l.Soft, true
		}
	}
	return 0, false
}

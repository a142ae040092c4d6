// Package report renders ranked results to the console and persists them as
// CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/logrusorgru/aurora/v4"

	"tcprank/pkg/types"
)

// WriteTable prints the ranked results as a fixed-width table. An empty
// report produces no output at all.
func WriteTable(w io.Writer, results []*types.ProbeResult, au *aurora.Aurora) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintf(w, "%-24s %6s %6s %8s %10s\n",
		au.BrightWhite("IP Address"), au.BrightWhite("Sent"), au.BrightWhite("Recv"),
		au.BrightWhite("Loss"), au.BrightWhite("Avg(ms)"))
	for _, r := range results {
		fmt.Fprintf(w, "%-24s %6d %6d %8s %10s\n",
			au.Cyan(r.Address.IP.String()),
			len(r.Outcomes),
			r.Successes(),
			fmt.Sprintf("%.1f%%", r.Loss()*100),
			latencyCell(r, au),
		)
	}
}

func latencyCell(r *types.ProbeResult, au *aurora.Aurora) string {
	avg := r.AvgLatencyMS()
	if avg == types.NoLatency {
		return au.Red("-").String()
	}
	return au.Green(strconv.FormatInt(avg, 10)).String()
}

// WriteCSV persists results to path, one row per address. The latency column
// is left empty for addresses with zero successful attempts.
func WriteCSV(path string, results []*types.ProbeResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: cannot create %s: %s", types.ErrOutput, path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	if err := writeCSVRows(f, results); err != nil {
		return fmt.Errorf("%w: cannot write %s: %s", types.ErrOutput, path, err)
	}
	return nil
}

func writeCSVRows(w io.Writer, results []*types.ProbeResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"IP", "Sent", "Recv", "Loss", "Delay(ms)"}); err != nil {
		return err
	}
	for _, r := range results {
		delay := ""
		if avg := r.AvgLatencyMS(); avg != types.NoLatency {
			delay = strconv.FormatInt(avg, 10)
		}
		row := []string{
			r.Address.IP.String(),
			strconv.Itoa(len(r.Outcomes)),
			strconv.Itoa(r.Successes()),
			fmt.Sprintf("%.1f", r.Loss()),
			delay,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

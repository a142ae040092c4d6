package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/logrusorgru/aurora/v4"

	"tcprank/pkg/types"
)

func plain() *aurora.Aurora {
	return aurora.New(aurora.WithColors(false))
}

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

func TestWriteTableEmptyReportPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, nil, plain())
	if buf.Len() != 0 {
		t.Errorf("empty report produced output:\n%s", buf.String())
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, []*types.ProbeResult{
		mkResult("104.16.0.1", []int64{12, 14}, 0),
		mkResult("104.16.0.2", []int64{20}, 1),
	}, plain())

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 rows:\n%s", len(lines), out)
	}
	for _, want := range []string{"IP Address", "Sent", "Recv", "Loss", "Avg(ms)"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("header missing %q: %s", want, lines[0])
		}
	}
	if !strings.Contains(lines[1], "104.16.0.1") || !strings.Contains(lines[1], "13") {
		t.Errorf("row for 104.16.0.1 wrong: %s", lines[1])
	}
	if !strings.Contains(lines[2], "50.0%") {
		t.Errorf("row for 104.16.0.2 missing loss: %s", lines[2])
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.csv")
	err := WriteCSV(path, []*types.ProbeResult{
		mkResult("104.16.0.1", []int64{12, 14}, 0),
		mkResult("104.16.0.2", nil, 2),
	})
	if err != nil {
		t.Fatalf("WriteCSV() = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	wantHeader := []string{"IP", "Sent", "Recv", "Loss", "Delay(ms)"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header column %d = %q, want %q", i, rows[0][i], col)
		}
	}
	if rows[1][0] != "104.16.0.1" || rows[1][4] != "13" {
		t.Errorf("first row wrong: %v", rows[1])
	}
	if rows[2][4] != "" {
		t.Errorf("failed address delay = %q, want empty", rows[2][4])
	}
	if rows[2][3] != "1.0" {
		t.Errorf("failed address loss = %q, want 1.0", rows[2][3])
	}
}

func TestWriteCSVBadPath(t *testing.T) {
	err := WriteCSV(filepath.Join(t.TempDir(), "missing", "result.csv"), nil)
	if err == nil {
		t.Fatal("WriteCSV() succeeded, want error")
	}
	if !errors.Is(err, types.ErrOutput) {
		t.Errorf("error %v does not wrap ErrOutput", err)
	}
}

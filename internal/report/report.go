// Package report renders an analysis result as a plain-text report.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"callflow/internal/analyzer"
	"callflow/internal/graph"
	"callflow/internal/metrics"
)

// Writer renders analysis results.
type Writer struct {
	out io.Writer
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Write renders the full report to the configured output.
func (w *Writer) Write(result *analyzer.Result) error {
	var buf bytes.Buffer

	writeSummary(&buf, result)
	writeModuleTable(&buf, result.Graph.Modules)
	writeFunctionTable(&buf, result.Flow)
	writeCoupling(&buf, result.Coupling)
	writeCohesion(&buf, result.Cohesion)
	writeLegend(&buf)

	_, err := w.out.Write(buf.Bytes())
	return err
}

// WriteFile renders the report to both out and a file under root.
func (w *Writer) WriteFile(result *analyzer.Result, root, name string) (string, error) {
	path := filepath.Join(root, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	tee := &Writer{out: io.MultiWriter(w.out, f)}
	if err := tee.Write(result); err != nil {
		return "", err
	}
	return path, nil
}

func writeSummary(buf *bytes.Buffer, result *analyzer.Result) {
	fmt.Fprintln(buf, "Call Graph Analysis")
	fmt.Fprintln(buf, strings.Repeat("=", 60))
	fmt.Fprintf(buf, "Root:       %s\n", result.Root)
	fmt.Fprintf(buf, "Files:      %d analyzed", len(result.Files)-len(result.Skipped))
	if len(result.Skipped) > 0 {
		fmt.Fprintf(buf, ", %d skipped", len(result.Skipped))
	}
	fmt.Fprintln(buf)
	fmt.Fprintf(buf, "Modules:    %d\n", len(result.Graph.Units))
	fmt.Fprintf(buf, "Functions:  %d\n", result.FunctionCount())
	fmt.Fprintf(buf, "Calls:      %d\n", result.CallCount())

	totalIn, totalOut := 0, 0
	for _, unit := range result.Graph.Units {
		for _, fn := range unit.Functions {
			totalIn += fn.FanIn
			totalOut += fn.FanOut
		}
	}
	avgIn, avgOut := 0.0, 0.0
	if n := result.FunctionCount(); n > 0 {
		avgIn = float64(totalIn) / float64(n)
		avgOut = float64(totalOut) / float64(n)
	}
	fmt.Fprintf(buf, "Fan-In:     %d total, %.2f avg per function\n", totalIn, avgIn)
	fmt.Fprintf(buf, "Fan-Out:    %d total, %.2f avg per function\n", totalOut, avgOut)
	fmt.Fprintf(buf, "Duration:   %s\n", result.Duration.Round(time.Millisecond))
	fmt.Fprintln(buf)

	if len(result.Skipped) > 0 {
		fmt.Fprintln(buf, "Skipped files:")
		for _, s := range result.Skipped {
			fmt.Fprintf(buf, "  %s\n", s)
		}
		fmt.Fprintln(buf)
	}
}

func writeModuleTable(buf *bytes.Buffer, modules []*graph.ModuleMetrics) {
	fmt.Fprintln(buf, "Modules")
	fmt.Fprintln(buf, strings.Repeat("-", 60))

	table := tablewriter.NewWriter(buf)
	table.SetHeader([]string{"Module", "File", "Functions", "Fan-In", "Fan-Out"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	for _, m := range modules {
		table.Append([]string{
			m.Name,
			m.Path,
			strconv.Itoa(m.FunctionCount),
			strconv.Itoa(m.FanIn),
			strconv.Itoa(m.FanOut),
		})
	}
	table.Render()
	fmt.Fprintln(buf)
}

func writeFunctionTable(buf *bytes.Buffer, flow []metrics.IFCEntry) {
	fmt.Fprintln(buf, "Information Flow")
	fmt.Fprintln(buf, strings.Repeat("-", 60))

	sorted := make([]metrics.IFCEntry, len(flow))
	copy(sorted, flow)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].FanIn != sorted[j].FanIn {
			return sorted[i].FanIn > sorted[j].FanIn
		}
		return sorted[i].FanOut > sorted[j].FanOut
	})

	table := tablewriter.NewWriter(buf)
	table.SetHeader([]string{"Function", "File", "Line", "Fan-In", "Fan-Out", "IFC", "Rating"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
	})

	for _, e := range sorted {
		table.Append([]string{
			e.Function,
			e.Path,
			strconv.Itoa(e.Line),
			strconv.Itoa(e.FanIn),
			strconv.Itoa(e.FanOut),
			strconv.Itoa(e.Score),
			e.Rating,
		})
	}
	table.Render()
	fmt.Fprintln(buf)
}

func writeCoupling(buf *bytes.Buffer, pairs []metrics.CouplingPair) {
	fmt.Fprintln(buf, "Coupling")
	fmt.Fprintln(buf, strings.Repeat("-", 60))
	if len(pairs) == 0 {
		fmt.Fprintln(buf, "No coupled pairs detected.")
		fmt.Fprintln(buf)
		return
	}

	table := tablewriter.NewWriter(buf)
	table.SetHeader([]string{"A", "B", "Calls", "Level"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	for _, p := range pairs {
		table.Append([]string{p.A, p.B, strconv.Itoa(p.Calls), p.Level})
	}
	table.Render()
	fmt.Fprintln(buf)
}

func writeCohesion(buf *bytes.Buffer, scores []metrics.CohesionScore) {
	fmt.Fprintln(buf, "Cohesion")
	fmt.Fprintln(buf, strings.Repeat("-", 60))

	table := tablewriter.NewWriter(buf)
	table.SetHeader([]string{"Module", "Score", "Rating", "Note"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	for _, s := range scores {
		table.Append([]string{
			s.Module,
			fmt.Sprintf("%.2f", s.Score),
			s.Rating,
			s.Reason,
		})
	}
	table.Render()
	fmt.Fprintln(buf)
}

func writeLegend(buf *bytes.Buffer) {
	fmt.Fprintln(buf, "Legend")
	fmt.Fprintln(buf, strings.Repeat("-", 60))
	fmt.Fprintln(buf, "Fan-In:  distinct callers (same-file call sites plus caller files)")
	fmt.Fprintln(buf, "Fan-Out: distinct direct calls made by the function")
	fmt.Fprintln(buf, "IFC:     (fan-in x fan-out) squared; 0 when either flow is absent")
	fmt.Fprintln(buf, "Coupling: tight above the configured call threshold, loose otherwise")
	fmt.Fprintln(buf, "Cohesion: share of function pairs with shared calls, params, or vocabulary")
}

// Package report renders the board lists for the terminal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"sigs.k8s.io/yaml"

	"github.com/blakemcanally/pr-status-watcher/internal/application"
	"github.com/blakemcanally/pr-status-watcher/internal/domain/model"
)

// Format selects how Render writes a report.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

const maxTitleWidth = 48

// Report is the serialized form of every board list.
type Report struct {
	Lists []List `json:"lists"`
}

// List is one board list and its fetch outcome.
type List struct {
	Name       string `json:"name"`
	Loaded     bool   `json:"loaded"`
	Error      string `json:"error,omitempty"`
	CapReached bool   `json:"capReached,omitempty"`
	Dropped    int    `json:"dropped,omitempty"`
	PRs        []Row  `json:"prs"`
}

// Row is one pull request line.
type Row struct {
	PR               string   `json:"pr"`
	Title            string   `json:"title"`
	URL              string   `json:"url"`
	State            string   `json:"state"`
	CI               string   `json:"ci"`
	ChecksPassed     int      `json:"checksPassed"`
	ChecksFailed     int      `json:"checksFailed"`
	ChecksPending    int      `json:"checksPending"`
	ChecksTotal      int      `json:"checksTotal"`
	FailedChecks     []string `json:"failedChecks,omitempty"`
	Review           string   `json:"review"`
	Mergeable        string   `json:"mergeable"`
	Ready            bool     `json:"ready"`
	DaysSinceUpdated int      `json:"daysSinceUpdated"`
}

// Build converts board lists into a Report.
func Build(lists ...*application.BoardList) Report {
	r := Report{Lists: make([]List, 0, len(lists))}
	for _, l := range lists {
		if l == nil {
			continue
		}
		out := List{
			Name:       listName(l.Kind),
			Loaded:     l.Status.HasSucceeded,
			Error:      l.Status.LastError,
			CapReached: l.Status.CapReached,
			Dropped:    l.Status.Dropped,
			PRs:        make([]Row, 0, len(l.Entries)),
		}
		for _, e := range l.Entries {
			out.PRs = append(out.PRs, toRow(e))
		}
		r.Lists = append(r.Lists, out)
	}
	return r
}

func toRow(e application.BoardEntry) Row {
	pr := e.PR
	row := Row{
		PR:               pr.ID.String(),
		Title:            pr.Title,
		URL:              pr.URL,
		State:            string(pr.State),
		CI:               string(pr.CIStatus),
		ChecksPassed:     pr.ChecksPassed,
		ChecksFailed:     pr.ChecksFailed,
		ChecksPending:    pr.ChecksPending,
		ChecksTotal:      pr.ChecksTotal,
		Review:           string(pr.ReviewDecision),
		Mergeable:        string(pr.Mergeable),
		Ready:            e.Ready,
		DaysSinceUpdated: pr.DaysSinceUpdated(),
	}
	for _, c := range pr.FailedChecks {
		row.FailedChecks = append(row.FailedChecks, c.Name)
	}
	return row
}

func listName(kind model.ListKind) string {
	if kind == model.ListReviewRequested {
		return "review requested"
	}
	return "authored"
}

// Render writes r to w in the given format.
func Render(w io.Writer, format Format, r Report) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		data, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case FormatTable, "":
		return renderTable(w, r)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

var tableHeader = []string{"PR", "TITLE", "CI", "CHECKS", "REVIEW", "READY", "UPDATED"}

func renderTable(w io.Writer, r Report) error {
	var b strings.Builder
	for i, l := range r.Lists {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s (%d)\n", strings.ToUpper(l.Name), len(l.PRs))

		switch {
		case !l.Loaded && l.Error != "":
			fmt.Fprintf(&b, "  not loaded: %s\n", l.Error)
			continue
		case !l.Loaded:
			b.WriteString("  not loaded yet\n")
			continue
		case l.Error != "":
			fmt.Fprintf(&b, "  last refresh failed, showing previous data: %s\n", l.Error)
		}
		if l.CapReached {
			b.WriteString("  result cap reached, list may be incomplete\n")
		}
		if l.Dropped > 0 {
			fmt.Fprintf(&b, "  %d malformed records skipped\n", l.Dropped)
		}
		if len(l.PRs) == 0 {
			b.WriteString("  no pull requests\n")
			continue
		}

		rows := make([][]string, 0, len(l.PRs)+1)
		rows = append(rows, tableHeader)
		for _, pr := range l.PRs {
			rows = append(rows, []string{
				pr.PR,
				runewidth.Truncate(pr.Title, maxTitleWidth, "…"),
				pr.CI,
				checksCell(pr),
				pr.Review,
				readyCell(pr.Ready),
				fmt.Sprintf("%dd", pr.DaysSinceUpdated),
			})
		}
		writeAligned(&b, rows)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func checksCell(pr Row) string {
	if pr.ChecksTotal == 0 {
		return "-"
	}
	return fmt.Sprintf("%d/%d/%d of %d", pr.ChecksPassed, pr.ChecksFailed, pr.ChecksPending, pr.ChecksTotal)
}

func readyCell(ready bool) string {
	if ready {
		return "yes"
	}
	return "no"
}

// writeAligned pads every column to its widest cell, measured in terminal cells.
func writeAligned(b *strings.Builder, rows [][]string) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	for _, row := range rows {
		b.WriteString("  ")
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(PadRight(cell, widths[i]+2))
		}
		b.WriteString("\n")
	}
}

// PadRight pads str with spaces to width terminal cells.
func PadRight(str string, width int) string {
	w := runewidth.StringWidth(str)
	if w < width {
		return str + strings.Repeat(" ", width-w)
	}
	return str
}

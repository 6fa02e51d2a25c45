package notifications

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// ReportLine is one (key, note) row in a report table.
type ReportLine struct {
	Key  string
	Note string
}

// SyncReport carries everything the sync report needs; built by the sync
// orchestrator on success.
type SyncReport struct {
	RunID        string
	StartedAt    time.Time
	LockAcquired bool
	Archive      int
	Relocations  int
	Duplicates   int
	Rejected     int
	Queued       int
	Exceptions   []ReportLine
}

// BuildSyncReport renders the subject and HTML body of the sync report.
func BuildSyncReport(report SyncReport) (string, string) {
	routed := report.Archive + report.Relocations
	subject := fmt.Sprintf("rowsweep sync: %d routed, %d rejected", routed, report.Rejected)

	var b strings.Builder
	b.WriteString("<h2>Sync run</h2>")
	writeMeta(&b, report.RunID, report.StartedAt, report.LockAcquired)
	b.WriteString("<ul>")
	fmt.Fprintf(&b, "<li>Archived: %d</li>", report.Archive)
	fmt.Fprintf(&b, "<li>Relocations: %d</li>", report.Relocations)
	fmt.Fprintf(&b, "<li>Already transferred: %d</li>", report.Duplicates)
	fmt.Fprintf(&b, "<li>Rejected: %d</li>", report.Rejected)
	fmt.Fprintf(&b, "<li>Queued for deletion: %d</li>", report.Queued)
	b.WriteString("</ul>")
	writeLines(&b, "Exceptions", report.Exceptions)
	return subject, b.String()
}

// CleanupReport carries the consolidated cycle report; built once per cycle
// on its terminal pass.
type CleanupReport struct {
	RunID        string
	CycleID      string
	StartedAt    time.Time
	LockAcquired bool
	Exhausted    bool
	Passes       int
	Deleted      []string
	NotFound     []string
	Skipped      []ReportLine
	PassLines    []string
	Err          string
}

// BuildCleanupReport renders the subject and HTML body of the cleanup cycle
// report.
func BuildCleanupReport(report CleanupReport) (string, string) {
	var subject string
	switch {
	case report.Err != "":
		subject = "rowsweep cleanup: STOPPED (max passes reached) with error"
	case report.Exhausted:
		subject = "rowsweep cleanup: STOPPED (max passes reached)"
	default:
		subject = fmt.Sprintf("rowsweep cleanup: COMPLETE (%d deleted)", len(report.Deleted))
	}

	var b strings.Builder
	b.WriteString("<h2>Cleanup cycle</h2>")
	writeMeta(&b, report.RunID, report.StartedAt, report.LockAcquired)
	fmt.Fprintf(&b, "<p>Cycle %s finished after %d pass(es).</p>",
		html.EscapeString(report.CycleID), report.Passes)
	if report.Err != "" {
		fmt.Fprintf(&b, "<p><b>Error:</b> %s</p>", html.EscapeString(report.Err))
	}
	writeKeyList(&b, "Deleted", report.Deleted)
	writeKeyList(&b, "Not found in source", report.NotFound)
	writeLines(&b, "Skipped (recent edits)", report.Skipped)
	if len(report.PassLines) > 0 {
		b.WriteString("<h3>Passes</h3><ol>")
		for _, line := range report.PassLines {
			fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(line))
		}
		b.WriteString("</ol>")
	}
	return subject, b.String()
}

// BuildErrorReport renders the report sent when a job fails outright.
func BuildErrorReport(job string, runID string, err error) (string, string) {
	subject := fmt.Sprintf("rowsweep %s: ERROR", job)
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s failed</h2>", html.EscapeString(job))
	fmt.Fprintf(&b, "<p>Run %s.</p>", html.EscapeString(runID))
	fmt.Fprintf(&b, "<p><b>Error:</b> %s</p>", html.EscapeString(err.Error()))
	return subject, b.String()
}

func writeMeta(b *strings.Builder, runID string, startedAt time.Time, lockAcquired bool) {
	fmt.Fprintf(b, "<p>Run %s, started %s.",
		html.EscapeString(runID), startedAt.UTC().Format(time.RFC3339))
	if !lockAcquired {
		b.WriteString(" <b>Warning:</b> job lock was not acquired; a concurrent run may have interfered.")
	}
	b.WriteString("</p>")
}

func writeKeyList(b *strings.Builder, title string, keyList []string) {
	if len(keyList) == 0 {
		return
	}
	fmt.Fprintf(b, "<h3>%s (%d)</h3><p>%s</p>",
		html.EscapeString(title), len(keyList), html.EscapeString(strings.Join(keyList, ", ")))
}

func writeLines(b *strings.Builder, title string, lines []ReportLine) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "<h3>%s</h3><ul>", html.EscapeString(title))
	for _, line := range lines {
		fmt.Fprintf(b, "<li><b>%s</b>: %s</li>", html.EscapeString(line.Key), html.EscapeString(line.Note))
	}
	b.WriteString("</ul>")
}

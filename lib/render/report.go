// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"strings"

	"github.com/hubsync/habitude/lib/change"
	"github.com/hubsync/habitude/lib/processor"
)

// BuildReportMarkdown renders result as a markdown document: one
// heading per report, naming its kind/name and resolved state, and a
// GFM table of the changes (or lack of them) found for that report.
func BuildReportMarkdown(result *processor.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Change Report\n\n")
	fmt.Fprintf(&sb, "%d object(s) evaluated.\n\n", len(result.Reports))

	for _, report := range result.Reports {
		fmt.Fprintf(&sb, "## %s — %s\n\n", report.Key.String(), report.State())

		if report.State() == change.ReportFailed && report.UpstreamFailureReason() != "" {
			fmt.Fprintf(&sb, "_%s_\n\n", report.UpstreamFailureReason())
			continue
		}

		changes := report.Changes()
		if len(changes) == 0 {
			sb.WriteString("No changes.\n\n")
			continue
		}

		sb.WriteString("| Op | State | Description |\n")
		sb.WriteString("| --- | --- | --- |\n")
		for _, c := range changes {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", c.Op, c.State(), c.Description)
		}
		sb.WriteString("\n")
	}

	if len(result.Phantoms) > 0 {
		sb.WriteString("## Phantoms\n\n")
		for _, key := range result.Phantoms {
			fmt.Fprintf(&sb, "- %s\n", key.String())
		}
		sb.WriteString("\n")
	}

	if len(result.Diagnostics) > 0 {
		sb.WriteString("## Diagnostics\n\n")
		for _, diagnostic := range result.Diagnostics {
			fmt.Fprintf(&sb, "- %s\n", diagnostic)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderReport generates result's markdown report and renders it for
// a terminal of the given width under theme.
func RenderReport(result *processor.Result, theme Theme, width int) string {
	return renderMarkdown(BuildReportMarkdown(result), theme, width)
}

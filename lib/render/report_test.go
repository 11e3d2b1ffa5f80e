// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"strings"
	"testing"

	"github.com/hubsync/habitude/lib/change"
	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/processor"
)

func shortCircuitedReport(kind, name, reason string) *change.Report {
	report := change.NewReport(hubkey.Key{Kind: kind, Name: name}, nil)
	report.ShortCircuit(reason)
	return report
}

func TestBuildReportMarkdownIncludesFailureReason(t *testing.T) {
	t.Parallel()

	result := &processor.Result{
		Reports: []*change.Report{shortCircuitedReport("tag", "build", "upstream failure")},
	}

	doc := BuildReportMarkdown(result)

	if !strings.Contains(doc, "tag:build") {
		t.Errorf("report markdown missing key, got %q", doc)
	}
	if !strings.Contains(doc, "upstream failure") {
		t.Errorf("report markdown missing failure reason, got %q", doc)
	}
}

func TestBuildReportMarkdownListsPhantomsAndDiagnostics(t *testing.T) {
	t.Parallel()

	result := &processor.Result{
		Phantoms:    []hubkey.Key{{Kind: "tag", Name: "missing"}},
		Diagnostics: []string{"skipping tag:missing: dependency closure contains a phantom"},
	}

	doc := BuildReportMarkdown(result)

	if !strings.Contains(doc, "## Phantoms") || !strings.Contains(doc, "tag:missing") {
		t.Errorf("report markdown missing phantom section, got %q", doc)
	}
	if !strings.Contains(doc, "## Diagnostics") {
		t.Errorf("report markdown missing diagnostics section, got %q", doc)
	}
}

func TestRenderReportProducesNonEmptyOutput(t *testing.T) {
	t.Parallel()

	result := &processor.Result{
		Reports: []*change.Report{shortCircuitedReport("tag", "build", "upstream failure")},
	}

	rendered := RenderReport(result, DefaultTheme, 80)

	if rendered == "" {
		t.Fatalf("expected non-empty rendered report")
	}
}

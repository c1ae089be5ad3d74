// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/lexguard/services/lexguard/grounding"
)

// RenderReport formats a validation report for humans.
//
// # Description
//
// Prints a status line, then one line per correction and per semantic
// issue. Skipped validations render a single muted line.
//
// # Inputs
//
//   - report: The report to render. Nil renders an empty string.
//
// # Outputs
//
//   - string: Rendered text ending in a newline.
func (p Printer) RenderReport(report *grounding.Report) string {
	if report == nil {
		return ""
	}
	var b strings.Builder

	title := "lexguard"
	if report.RequestID != "" {
		title += " " + report.RequestID
	}
	b.WriteString(p.Style(Styles.Title, title))
	b.WriteString("\n")

	if !report.Performed {
		b.WriteString(p.Style(Styles.Muted, "validation skipped: no article evidence"))
		b.WriteString("\n")
		return b.String()
	}

	switch {
	case report.Modified():
		fmt.Fprintf(&b, "%s %d correction(s) applied\n", p.Icon(IconWarning), len(report.Corrections))
	case len(report.SemanticIssues) > 0:
		fmt.Fprintf(&b, "%s %d issue(s) reported\n", p.Icon(IconWarning), len(report.SemanticIssues))
	default:
		fmt.Fprintf(&b, "%s links consistent with evidence\n", p.Icon(IconSuccess))
	}

	fmt.Fprintf(&b, "%s %s  %s %d  %s %d  %s %s\n",
		p.Style(Styles.Label, "articles"), strings.Join(report.ArticlesIndexed, ", "),
		p.Style(Styles.Label, "citations"), report.CitationsFound,
		p.Style(Styles.Label, "links"), report.LinksFound,
		p.Style(Styles.Label, "took"), report.Duration,
	)

	for _, c := range report.Corrections {
		fmt.Fprintf(&b, "  %s [%s] %s %s %s\n",
			IconBullet, c.Reason,
			p.Style(Styles.Removed, c.OriginalText),
			IconArrow,
			p.Style(Styles.Added, c.ReplacementText),
		)
	}

	for _, issue := range report.SemanticIssues {
		icon := IconError
		if issue.Corrected {
			icon = IconSuccess
		}
		fmt.Fprintf(&b, "  %s %s: %q cites article %s, link points to article %s\n",
			p.Icon(icon), issue.Code, issue.Citation.Raw, issue.CitedArticle, issue.LinkedArticle)
	}

	return b.String()
}

// Summary is a one-line outcome used by the batch command.
func (p Printer) Summary(report *grounding.Report) string {
	if report == nil {
		return ""
	}
	id := report.RequestID
	if id == "" {
		id = "-"
	}
	switch {
	case !report.Performed:
		return fmt.Sprintf("%s %s skipped", p.Style(Styles.Muted, string(IconBullet)), id)
	case report.Modified():
		return fmt.Sprintf("%s %s corrections=%d issues=%d", p.Icon(IconWarning), id, len(report.Corrections), len(report.SemanticIssues))
	case len(report.SemanticIssues) > 0:
		return fmt.Sprintf("%s %s issues=%d", p.Icon(IconError), id, len(report.SemanticIssues))
	default:
		return fmt.Sprintf("%s %s ok", p.Icon(IconSuccess), id)
	}
}

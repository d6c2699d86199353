// Package tui renders audit reports for the terminal.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tagaudit/tagaudit/internal/domain"
)

// ── Claude-inspired warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	labelColors = map[string]lipgloss.Color{
		"High":     success,
		"Good":     lipgloss.Color("#A3E635"), // lime
		"Medium":   warning,
		"Low":      lipgloss.Color("#FB923C"), // orange
		"Critical": danger,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	vendorStyle   = lipgloss.NewStyle().Bold(true).Foreground(fg)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	optTagStyle   = lipgloss.NewStyle().Foreground(dim).Bold(true)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderAudit formats a full audit report for terminal output.
func RenderAudit(report *domain.AuditReport) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("tagaudit")
	subtitle := dimStyle.Render("Tracking Quality Audit")
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(labelColor(report.OverallLabel)).
		Render(fmt.Sprintf("%d / 100", report.Overall))
	labelStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(labelColor(report.OverallLabel)).
		Render(report.OverallLabel)

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreStyled + "  " + labelStyled))
	b.WriteString("\n\n")

	mapped := dimStyle.Render(fmt.Sprintf("%d of %d captured requests mapped to tracking events",
		report.RequestsMapped, report.RequestsSeen))
	b.WriteString("  " + mapped + "\n\n")

	if len(report.Solutions) == 0 {
		b.WriteString("  " + dimStyle.Render("No tracking vendors detected in this capture.") + "\n")
		return b.String()
	}

	for i, key := range sortedVendorKeys(report.Solutions) {
		renderSolution(&b, report.Solutions[key])
		if i < len(report.Solutions)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func sortedVendorKeys(solutions map[string]*domain.SolutionReport) []string {
	keys := make([]string, 0, len(solutions))
	for k := range solutions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func renderSolution(b *strings.Builder, sol *domain.SolutionReport) {
	scoreText := lipgloss.NewStyle().Bold(true).Foreground(scoreColor(sol.Score)).
		Render(fmt.Sprintf("%d", sol.Score))
	bar := coloredBar(sol.Score, 20)

	name := vendorStyle.Render(padRight(sol.SolutionName, 20))
	fmt.Fprintf(b, "  %s %s  %s %s\n", name, bar, scoreText, dimStyle.Render(sol.ScoreLabel))

	if sol.PixelID != "" && sol.PixelID != "N/A" {
		fmt.Fprintf(b, "    %s %s\n", dimStyle.Render("ID"), faintStyle.Render(sol.PixelID))
	}
	fmt.Fprintf(b, "    %s\n", dimStyle.Render(fmt.Sprintf("%d events audited", sol.EventsAudited)))

	for _, ev := range sol.Events {
		renderEvent(b, ev)
	}

	renderDiagnosis(b, sol.Diagnosis)
}

func renderEvent(b *strings.Builder, ev domain.EventSummary) {
	name := padRight(ev.EventName, 26)
	counts := dimStyle.Render(fmt.Sprintf("%d ok / %d warn / %d err",
		ev.Scoring.SuccessCount, ev.Scoring.WarningCount, ev.Scoring.ErrorCount))
	fmt.Fprintf(b, "    %s %s %s\n", statusDot(ev.Status), name, counts)

	for _, preview := range ev.IssuePreview {
		fmt.Fprintf(b, "      %s\n", faintStyle.Render(preview))
	}
}

func renderDiagnosis(b *strings.Builder, diag domain.Diagnosis) {
	groups := diag.BySeverity
	if len(groups.Critical)+len(groups.Important)+len(groups.Optimization) == 0 {
		b.WriteString("    " + passStyle.Render("No issues found.") + "\n")
		return
	}

	b.WriteString("\n")
	b.WriteString("  " + separatorLine + "\n")
	renderSeveritySection(b, errorTagStyle, groups.Critical)
	renderSeveritySection(b, warnTagStyle, groups.Important)
	renderSeveritySection(b, optTagStyle, groups.Optimization)
}

func renderSeveritySection(b *strings.Builder, tagStyle lipgloss.Style, groups []*domain.IssueGroup) {
	if len(groups) == 0 {
		return
	}

	meta := groups[0].SeverityMeta
	fmt.Fprintf(b, "\n  %s  %s\n",
		tagStyle.Render(fmt.Sprintf("%s (%d)", meta.Label, len(groups))),
		faintStyle.Render(meta.Description))

	for _, g := range groups {
		fmt.Fprintf(b, "    %s %s\n", tagStyle.Render("▸"), titleStyle.Render(g.Label))
		fmt.Fprintf(b, "      %s\n", dimStyle.Render(fmt.Sprintf("%d affected: %s", g.Count, eventNames(g.AffectedEvents))))
		if g.Recommendation != "" {
			fmt.Fprintf(b, "      %s\n", faintStyle.Render(g.Recommendation))
		}
	}
}

func eventNames(refs []domain.EventRef) string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, fmt.Sprintf("#%d %s", r.EventID, r.EventName))
	}
	return strings.Join(names, ", ")
}

func statusDot(status domain.Status) string {
	switch status {
	case domain.StatusError:
		return failStyle.Render("●")
	case domain.StatusWarning:
		return warnStyle.Render("●")
	default:
		return passStyle.Render("●")
	}
}

func coloredBar(score, width int) string {
	filled := max(0, min(score*width/100, width))
	empty := width - filled

	color := scoreColor(score)
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func scoreColor(score int) lipgloss.Color {
	return labelColor(domain.ScoreLabel(score))
}

func labelColor(label string) lipgloss.Color {
	if c, ok := labelColors[label]; ok {
		return c
	}
	return fg
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderHistory formats audit history for terminal output.
func RenderHistory(entries []domain.AuditEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No audit history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Audit History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		day := e.Timestamp
		if len(day) > 10 {
			day = day[:10]
		}

		scoreStyled := lipgloss.NewStyle().
			Foreground(scoreColor(e.Overall)).
			Render(fmt.Sprintf("%d/100", e.Overall))

		line := fmt.Sprintf("  %s  %s  %s  %s",
			dimStyle.Render(day),
			scoreStyled,
			padRight(e.Label, 8),
			faintStyle.Render(e.CaptureFile),
		)

		if i > 0 {
			diff := e.Overall - entries[i-1].Overall
			if diff > 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↑%d", diff))
			} else if diff < 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↓%d", -diff))
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

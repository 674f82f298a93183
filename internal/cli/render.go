package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/epodak/grule/pkg/engine"
	"github.com/epodak/grule/pkg/install"
	"github.com/epodak/grule/pkg/project"
	"github.com/epodak/grule/pkg/rule"
	"github.com/epodak/grule/pkg/store"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "243", Dark: "247"})

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "250", Dark: "238"})
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}

			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func renderAnalysis(path string, attrs *project.Attributes) string {
	t := newTable("ATTRIBUTE", "VALUE", "EVIDENCE")
	for _, f := range attrs.Features() {
		t.Row(f.Key, f.Value, f.Description)
	}

	return strings.Join([]string{
		titleStyle.Render("Project analysis"),
		subtleStyle.Render(path),
		t.Render(),
	}, "\n")
}

func renderRecommendations(result *engine.Result) string {
	t := newTable("RULE", "CATEGORY", "WEIGHT", "REASON")
	for _, rec := range result.Recommendations {
		t.Row(rec.Name, rec.Category, fmt.Sprintf("%d", rec.Weight), rec.Reason)
	}

	return strings.Join([]string{
		titleStyle.Render(fmt.Sprintf("Recommended rules (%d)", len(result.Recommendations))),
		t.Render(),
	}, "\n")
}

func renderSummary(summary *install.Summary) string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Installed %d rules", len(summary.Installed))),
	}
	if len(summary.Missing) > 0 {
		lines = append(lines, subtleStyle.Render(
			fmt.Sprintf("Missing from library: %s", strings.Join(summary.Missing, ", ")),
		))
	}

	return strings.Join(lines, "\n")
}

func renderStatus(st store.Status, rec *install.Record) string {
	t := newTable("", "")
	t.Row("Library", st.Dir)

	if st.Deployed {
		t.Row("Deployed", "yes")
		t.Row("Project rules", fmt.Sprintf("%d", st.RuleCount))
		t.Row("Global rules", fmt.Sprintf("%d", st.GlobalCount))
		t.Row("Updated", humanize.Time(st.ModTime))
	} else {
		t.Row("Deployed", "no")
	}

	lines := []string{
		titleStyle.Render("Rule library"),
		t.Render(),
	}

	if rec != nil {
		rt := newTable("", "")
		rt.Row("Target", string(rec.Target))
		rt.Row("Rules", strings.Join(rec.Rules, ", "))
		rt.Row("Installed", humanize.Time(rec.InstalledAt))

		lines = append(lines,
			titleStyle.Render("This project"),
			rt.Render(),
		)
	}

	return strings.Join(lines, "\n")
}

func renderCatalog(rules []*rule.Rule) string {
	t := newTable("RULE", "CATEGORY", "WEIGHT", "ALWAYS", "DESCRIPTION")
	for _, r := range rules {
		always := ""
		if r.Always {
			always = "yes"
		}

		t.Row(r.Name, r.Category, fmt.Sprintf("%d", r.Weight), always, r.Description)
	}

	return strings.Join([]string{
		titleStyle.Render(fmt.Sprintf("Catalog (%d rules)", len(rules))),
		t.Render(),
	}, "\n")
}

func renderRule(r *rule.Rule) string {
	t := newTable("", "")
	t.Row("Name", r.Name)
	t.Row("Category", r.Category)
	t.Row("Weight", fmt.Sprintf("%d", r.Weight))

	if r.Always {
		t.Row("Always", "yes")
	}
	if len(r.Tags) > 0 {
		t.Row("Tags", strings.Join(r.Tags, ", "))
	}
	if r.Description != "" {
		t.Row("Description", r.Description)
	}

	for _, c := range r.Conditions {
		t.Row("Condition", c.String())
	}

	if r.Match != "" {
		t.Row("Match", r.Match)
	}

	return strings.Join([]string{
		titleStyle.Render(r.Name),
		t.Render(),
	}, "\n")
}

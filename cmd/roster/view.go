package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	jsoniter "github.com/json-iterator/go"

	"roster/internal/controller"
	"roster/internal/models"
)

var tableHeaders = []string{"ID", "Full name", "Birth date", "Team", "Home city", "Team type", "Position"}

// termView renders controller pages to a terminal. Table refreshes are
// buffered and written by flush so one command prints one table.
type termView struct {
	out    io.Writer
	errOut io.Writer
	asJSON bool
	last   *controller.Page

	header  lipgloss.Style
	cell    lipgloss.Style
	footer  lipgloss.Style
	errText lipgloss.Style
	okText  lipgloss.Style
}

func newTermView(out, errOut io.Writer, asJSON bool) *termView {
	r := lipgloss.NewRenderer(out)
	er := lipgloss.NewRenderer(errOut)
	return &termView{
		out:     out,
		errOut:  errOut,
		asJSON:  asJSON,
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7C79FF"}),
		cell:    r.NewStyle(),
		footer:  r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}),
		errText: er.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F56", Dark: "#FF6B6B"}),
		okText:  r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#02BA84", Dark: "#02D98E"}),
	}
}

func (v *termView) UpdateTable(p controller.Page) { v.last = &p }

func (v *termView) ShowErrors(msg string) {
	for _, line := range strings.Split(msg, "\n") {
		fmt.Fprintln(v.errOut, v.errText.Render("error: "+line))
	}
}

func (v *termView) ShowDeleted(msg string) {
	if v.asJSON {
		return
	}
	fmt.Fprintln(v.out, v.okText.Render(msg))
}

// flush writes the last buffered page, if any.
func (v *termView) flush() error {
	if v.last == nil {
		return nil
	}
	p := *v.last
	v.last = nil
	return v.render(p)
}

func (v *termView) render(p controller.Page) error {
	if v.asJSON {
		return writeJSON(v.out, p)
	}
	fmt.Fprintln(v.out, v.table(p.Players))
	fmt.Fprintln(v.out, v.footer.Render(fmt.Sprintf("page %d/%d, %d records", p.CurrentPage, p.TotalPages, p.TotalRecords)))
	return nil
}

// renderResults prints a search result as a single page.
func (v *termView) renderResults(players []models.Player) error {
	return v.render(controller.Page{Players: players, CurrentPage: 1, TotalPages: 1, TotalRecords: len(players)})
}

func (v *termView) table(players []models.Player) string {
	rows := make([][]string, 0, len(players))
	for _, p := range players {
		id := ""
		if p.ID != 0 {
			id = strconv.FormatInt(p.ID, 10)
		}
		rows = append(rows, []string{
			id, p.FullName, p.BirthDate.String(), p.FootballTeam, p.HomeCity,
			p.TeamType.Label(), p.Position.Label(),
		})
	}
	widths := make([]int, len(tableHeaders))
	for i, h := range tableHeaders {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, c := range row {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}

	var b strings.Builder
	b.WriteString(v.line(v.header, tableHeaders, widths))
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(v.line(v.cell, row, widths))
	}
	return b.String()
}

func (v *termView) line(style lipgloss.Style, cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = style.Width(widths[i] + 2).Render(c)
	}
	return strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, parts...), " ")
}

type jsonPage struct {
	Page         int             `json:"page"`
	TotalPages   int             `json:"total_pages"`
	TotalRecords int             `json:"total_records"`
	Players      []models.Player `json:"players"`
}

func writeJSON(w io.Writer, p controller.Page) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	players := p.Players
	if players == nil {
		players = []models.Player{}
	}
	return enc.Encode(jsonPage{
		Page:         p.CurrentPage,
		TotalPages:   p.TotalPages,
		TotalRecords: p.TotalRecords,
		Players:      players,
	})
}

package tabfit

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/paulhankin/tabfit/fit"
	"github.com/paulhankin/tabfit/paths"
)

var (
	colorTitle = lipgloss.Color("36")
	colorDim   = lipgloss.Color("240")
	colorGray  = lipgloss.Color("245")
	colorWarn  = lipgloss.Color("220")

	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorTitle)
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(colorGray)
	styleWarn   = lipgloss.NewStyle().Foreground(colorWarn)
	styleCell   = lipgloss.NewStyle().Padding(0, 1)

	// Kind colors follow the stroke colors of WriteSVG.
	kindColors = map[string]lipgloss.Color{
		fit.Adjustable.String():   lipgloss.Color(paths.ColorOneX),
		fit.TabConnector.String(): lipgloss.Color("75"),
		fit.SlotEdge.String():     lipgloss.Color("35"),
	}
)

func point(p [2]float64) string {
	return strconv.FormatFloat(p[0], 'f', 2, 64) + "," + strconv.FormatFloat(p[1], 'f', 2, 64)
}

// WriteReport writes rep to w as styled tables.
func WriteReport(w io.Writer, rep *Report) error {
	var b strings.Builder

	rows := make([][]string, 0, len(rep.Segments))
	for _, s := range rep.Segments {
		kind := s.Kind
		if s.Multiplier > 1 {
			kind += " " + strconv.Itoa(s.Multiplier) + "x"
		}
		if s.Curve {
			kind += " (curve)"
		}
		rows = append(rows, []string{s.ID, point(s.Start), point(s.End), strconv.FormatFloat(s.Length, 'f', 3, 64), kind})
	}
	segs := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Segment", "Start", "End", "Length", "Kind").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			if col == 4 && row >= 0 && row < len(rep.Segments) {
				if c, ok := kindColors[rep.Segments[row].Kind]; ok {
					return styleCell.Foreground(c)
				}
			}
			return styleCell
		})

	fmt.Fprintln(&b, styleTitle.Render(fmt.Sprintf("%d segments", len(rep.Segments))))
	fmt.Fprintln(&b, segs.Render())

	fmt.Fprintln(&b, styleTitle.Render(fmt.Sprintf("%d shapes, %d open", len(rep.Shapes), rep.Open)))
	if len(rep.Shapes) > 0 {
		rows = rows[:0]
		for _, sh := range rep.Shapes {
			rows = append(rows, []string{sh.ID, sh.Winding, strconv.Itoa(len(sh.Lines)), strings.Join(sh.Lines, " ")})
		}
		shapes := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
			Headers("Shape", "Winding", "Lines", "Segments").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return styleHeader.Padding(0, 1)
				}
				return styleCell
			})
		fmt.Fprintln(&b, shapes.Render())
	}

	for _, p := range rep.Problems {
		fmt.Fprintln(&b, styleWarn.Render("! "+p))
	}
	if len(rep.Skipped) > 0 {
		fmt.Fprintln(&b, lipgloss.NewStyle().Foreground(colorDim).Render("skipped: "+strings.Join(rep.Skipped, ", ")))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

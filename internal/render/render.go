package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/lululau/jcal/internal/calendar"
	"github.com/lululau/jcal/internal/textwidth"
)

const cellPadding = 1

var noColorMode bool

// SetNoColor disables all colour output.
func SetNoColor(disable bool) {
	noColorMode = disable
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FEC260"))
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A5B4FC"))
	dimStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	todayStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#34D399")).Bold(true)
	offStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	observanceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F97316"))
	helpStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	tableWrapperStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#475569")).
				Padding(0, 1)
)

// MonthBlock packages rendered lines with their visual width/height.
type MonthBlock struct {
	Lines  []string
	Width  int
	Height int
}

// BuildBlocks converts month views into renderable blocks.
func BuildBlocks(views []calendar.MonthView) ([]MonthBlock, error) {
	blocks := make([]MonthBlock, len(views))
	for i, view := range views {
		block, err := buildMonthBlock(view)
		if err != nil {
			return nil, err
		}
		blocks[i] = block
	}
	return blocks, nil
}

// Layout places blocks side by side in as many columns as fit in width,
// and stacks the rows of blocks.
func Layout(blocks []MonthBlock, width int) string {
	if len(blocks) == 0 {
		return ""
	}
	const gap = 2
	perRow := 1
	if blockWidth := blocks[0].Width; blockWidth > 0 && width > blockWidth {
		perRow = max(1, min(3, (width+gap)/(blockWidth+gap)))
	}

	var rows []string
	for start := 0; start < len(blocks); start += perRow {
		end := min(start+perRow, len(blocks))
		rows = append(rows, joinBlocks(blocks[start:end], gap))
	}
	return strings.Join(rows, "\n\n")
}

func joinBlocks(blocks []MonthBlock, gap int) string {
	height := 0
	for _, b := range blocks {
		height = max(height, b.Height)
	}
	lines := make([]string, height)
	for i := range lines {
		var sb strings.Builder
		for j, b := range blocks {
			line := ""
			if i < len(b.Lines) {
				line = b.Lines[i]
			}
			if j < len(blocks)-1 {
				line = textwidth.PadRight(line, b.Width+gap)
			}
			sb.WriteString(line)
		}
		lines[i] = strings.TrimRight(sb.String(), " ")
	}
	return strings.Join(lines, "\n")
}

func buildMonthBlock(view calendar.MonthView) (MonthBlock, error) {
	if len(view.Weekdays) != 7 {
		return MonthBlock{}, fmt.Errorf("month %d-%02d has %d weekday headers", view.Year, view.Month, len(view.Weekdays))
	}
	colWidth := determineColumnWidth(view)
	columns := make([]table.Column, len(view.Weekdays))
	for i, title := range view.Weekdays {
		columns[i] = table.Column{Title: title, Width: colWidth}
	}

	// Each week is a day row, a label row and a spacer.
	rows := make([]table.Row, 0, len(view.Weeks)*3)
	cells := make([][]*calendar.Day, 0, cap(rows))
	for weekIdx, week := range view.Weeks {
		dayRow := make(table.Row, len(week))
		labelRow := make(table.Row, len(week))
		refs := make([]*calendar.Day, len(week))
		for idx := range week {
			dayRow[idx] = renderDayCell(week[idx])
			labelRow[idx] = renderLabelCell(week[idx])
			refs[idx] = &week[idx]
		}
		rows = append(rows, dayRow, labelRow)
		cells = append(cells, refs, refs)
		if weekIdx != len(view.Weeks)-1 {
			rows = append(rows, blankRow(len(week)))
			cells = append(cells, nil)
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)
	t.SetStyles(tableStyles())
	t.Blur()

	lines := strings.Split(strings.TrimRight(t.View(), "\n"), "\n")
	for len(lines) > len(cells)+1 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if !noColorMode {
		colorCells(lines, cells, colWidth+cellPadding*2)
	}
	tableView := strings.Join(lines, "\n")
	if !noColorMode {
		tableView = tableWrapperStyle.Render(tableView)
	}

	title := view.Title
	if !noColorMode {
		title = titleStyle.Render(title)
	}
	out := append([]string{title, ""}, strings.Split(tableView, "\n")...)

	width := 0
	for _, line := range out {
		width = max(width, textwidth.StringWidth(line))
	}
	return MonthBlock{Lines: out, Width: width, Height: len(out)}, nil
}

// colorCells styles cells in place. The table has already been laid out, so
// every cell occupies a fixed span of cellWidth columns; day and label rows
// hold only ASCII, which keeps byte offsets equal to columns.
func colorCells(lines []string, cells [][]*calendar.Day, cellWidth int) {
	header := len(lines) - len(cells)
	if header < 0 {
		return
	}
	for r, refs := range cells {
		if refs == nil {
			continue
		}
		line := lines[header+r]
		var sb strings.Builder
		for c, day := range refs {
			lo, hi := c*cellWidth, (c+1)*cellWidth
			if hi > len(line) {
				hi = len(line)
			}
			if lo >= hi {
				break
			}
			segment := line[lo:hi]
			if style, ok := cellStyle(day); ok {
				trimmed := strings.TrimSpace(segment)
				if trimmed != "" {
					i := strings.Index(segment, trimmed)
					segment = segment[:i] + style.Render(trimmed) + segment[i+len(trimmed):]
				}
			}
			sb.WriteString(segment)
		}
		if tail := len(refs) * cellWidth; tail < len(line) {
			sb.WriteString(line[tail:])
		}
		lines[header+r] = sb.String()
	}
}

// cellStyle picks the colour of a day. Today wins over holidays, holidays
// and Fridays over observances, and anything unselectable is dimmed.
func cellStyle(day *calendar.Day) (lipgloss.Style, bool) {
	switch {
	case !day.InMonth:
		return lipgloss.Style{}, false
	case day.IsToday:
		return todayStyle, true
	case !day.Selectable:
		return dimStyle, true
	case day.IsOff():
		return offStyle, true
	case day.HolidayInfo != nil:
		return observanceStyle, true
	}
	return lipgloss.Style{}, false
}

func determineColumnWidth(view calendar.MonthView) int {
	width := 3
	for _, title := range view.Weekdays {
		width = max(width, textwidth.StringWidth(title))
	}
	for _, week := range view.Weeks {
		for _, day := range week {
			width = max(width, textwidth.StringWidth(renderDayCell(day)))
			width = max(width, textwidth.StringWidth(renderLabelCell(day)))
		}
	}
	return width
}

func renderDayCell(day calendar.Day) string {
	if !day.InMonth {
		return ""
	}
	return fmt.Sprintf("%2d", day.Date.Day)
}

func renderLabelCell(day calendar.Day) string {
	if !day.InMonth {
		return ""
	}
	return day.SecondaryLabel()
}

func blankRow(cols int) table.Row {
	return make(table.Row, cols)
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	if noColorMode {
		styles.Header = lipgloss.NewStyle().Padding(0, cellPadding)
	} else {
		styles.Header = headerStyle.Padding(0, cellPadding)
	}
	styles.Selected = lipgloss.NewStyle()
	styles.Cell = lipgloss.NewStyle().Padding(0, cellPadding)
	return styles
}

// HelpLine describes the interactive key bindings.
func HelpLine() string {
	text := "j/] next month  k/[ previous month  J/} next year  K/{ previous year  . today  y year  m month  q quit"
	if noColorMode {
		return text
	}
	return helpStyle.Render(text)
}

// ColorLegend explains the colour coding of days.
func ColorLegend() string {
	legend := "red = Friday or holiday  orange = observance  green = today  grey = not selectable"
	if noColorMode {
		return legend
	}
	return dimStyle.Render(legend)
}

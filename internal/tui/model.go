package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lululau/jcal/internal/bounds"
	"github.com/lululau/jcal/internal/calendar"
	"github.com/lululau/jcal/internal/render"
)

var noColorMode bool

// SetNoColor disables all colour output.
func SetNoColor(disable bool) {
	noColorMode = disable
}

type inputMode int

const (
	inputNone inputMode = iota
	inputYear
	inputMonth
)

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F97316"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

const staleHolidays = "Holiday data is missing or older than 6 months; run `jcal holidays update` to refresh it."

// Run starts the interactive Bubble Tea UI. Navigation stays within the
// bounds of calc when it is not nil.
func Run(svc *calendar.Service, calc *bounds.Calculator, req calendar.Request, holidayCacheValid bool) error {
	if svc == nil {
		svc = calendar.NewService()
	}
	prog := tea.NewProgram(newModel(svc, calc, req, holidayCacheValid), tea.WithAltScreen())
	_, err := prog.Run()
	return err
}

type model struct {
	svc               *calendar.Service
	bounds            *bounds.Calculator
	request           calendar.Request
	width             int
	inputMode         inputMode
	input             textinput.Model
	statusMsg         string
	holidayCacheValid bool
}

func newModel(svc *calendar.Service, calc *bounds.Calculator, req calendar.Request, holidayCacheValid bool) model {
	ti := textinput.New()
	ti.CharLimit = 16
	ti.Prompt = "> "
	return model{
		svc:               svc,
		bounds:            calc,
		request:           req.Clamp(calc),
		input:             ti,
		holidayCacheValid: holidayCacheValid,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		if m.inputMode != inputNone {
			return m.handleInputKey(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "k", "[":
			m.navigate(m.request.PreviousMonth())
		case "j", "]":
			m.navigate(m.request.NextMonth())
		case "K", "{":
			m.navigate(m.request.PreviousYear())
		case "J", "}":
			m.navigate(m.request.NextYear())
		case "v":
			if m.request.Mode == calendar.ModeYear {
				m.request.Mode = calendar.ModeMonth
			} else {
				m.request.Mode = calendar.ModeYear
			}
			m.statusMsg = ""
		case "y":
			m.activateInput(inputYear, "1403 or 1403 5")
		case "m":
			m.activateInput(inputMonth, "1-12")
		case ".":
			today, err := m.svc.Today()
			if err != nil {
				m.statusMsg = err.Error()
				break
			}
			m.navigate(calendar.Request{Year: today.Year, Month: today.Month, Mode: calendar.ModeMonth})
		}
	}
	return m, nil
}

// navigate moves to next when it is selectable. Otherwise the view stays
// where it is and a status message explains why.
func (m *model) navigate(next calendar.Request) {
	next = next.Normalize()
	m.statusMsg = ""
	if next.Clamp(m.bounds) != next {
		m.statusMsg = "Reached the end of the selectable range"
		return
	}
	m.request = next
}

func (m model) View() string {
	if m.inputMode != inputNone {
		return m.inputView()
	}

	body, err := m.renderCalendar()
	status := m.statusMsg
	if err != nil {
		status = err.Error()
	}

	var sb strings.Builder
	sb.WriteString(body)
	sb.WriteString("\n\n")
	sb.WriteString(render.HelpLine() + "  v year view")
	if status != "" {
		sb.WriteString("\n")
		sb.WriteString(colorize(statusStyle, status))
	}
	if !m.holidayCacheValid {
		sb.WriteString("\n\n")
		sb.WriteString(colorize(warningStyle, staleHolidays))
	}
	return sb.String()
}

func colorize(style lipgloss.Style, s string) string {
	if noColorMode {
		return s
	}
	return style.Render(s)
}

func (m model) renderCalendar() (string, error) {
	views, err := m.fetchViews()
	if err != nil {
		return "", err
	}
	blocks, err := render.BuildBlocks(views)
	if err != nil {
		return "", err
	}
	width := m.width
	if width <= 0 {
		width = 100
	}
	return render.Layout(blocks, width), nil
}

func (m model) fetchViews() ([]calendar.MonthView, error) {
	if m.request.Mode == calendar.ModeYear {
		views, err := m.svc.Year(m.request.Year)
		if err != nil {
			return nil, err
		}
		if m.bounds != nil {
			views = views[:m.bounds.LastSelectableMonth(m.request.Year)]
		}
		return views, nil
	}
	month, err := m.svc.Month(m.request.Year, m.request.Month)
	if err != nil {
		return nil, err
	}
	return []calendar.MonthView{month}, nil
}

func (m model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.inputMode = inputNone
		m.statusMsg = ""
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.applyInput()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) activateInput(mode inputMode, placeholder string) {
	m.inputMode = mode
	m.input.SetValue("")
	m.input.Placeholder = placeholder
	m.input.CursorEnd()
	m.input.Focus()
	m.statusMsg = ""
}

func (m *model) checkYear(year int) bool {
	if m.bounds == nil {
		if year < calendar.MinSupportedYear || year > calendar.MaxSupportedYear {
			m.statusMsg = fmt.Sprintf("Year must be between %d and %d", calendar.MinSupportedYear, calendar.MaxSupportedYear)
			return false
		}
		return true
	}
	if r := m.bounds.SelectableYearRange(); !r.Contains(year) {
		m.statusMsg = fmt.Sprintf("Year must be between %d and %d", r.Low, r.High)
		return false
	}
	return true
}

func (m *model) checkMonth(year, month int) bool {
	last := 12
	if m.bounds != nil {
		last = m.bounds.LastSelectableMonth(year)
	}
	if month < 1 || month > last {
		m.statusMsg = fmt.Sprintf("Month must be between 1 and %d", last)
		return false
	}
	return true
}

func (m *model) applyInput() {
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		m.statusMsg = "Please enter a number"
		return
	}
	next := m.request
	switch m.inputMode {
	case inputYear:
		fields := strings.Fields(value)
		if len(fields) > 2 {
			m.statusMsg = "Expected: year, or year and month"
			return
		}
		year, err := strconv.Atoi(fields[0])
		if err != nil {
			m.statusMsg = "Invalid year"
			return
		}
		if !m.checkYear(year) {
			return
		}
		next.Year = year
		if len(fields) == 2 {
			month, err := strconv.Atoi(fields[1])
			if err != nil {
				m.statusMsg = "Invalid month"
				return
			}
			if !m.checkMonth(year, month) {
				return
			}
			next.Month = month
		} else if m.bounds != nil {
			next.Month = min(next.Month, m.bounds.LastSelectableMonth(year))
		}
		next.Mode = calendar.ModeMonth
	case inputMonth:
		month, err := strconv.Atoi(value)
		if err != nil {
			m.statusMsg = "Invalid month"
			return
		}
		if !m.checkMonth(next.Year, month) {
			return
		}
		next.Month = month
		next.Mode = calendar.ModeMonth
	}
	m.navigate(next)
	m.inputMode = inputNone
	m.input.Blur()
}

func (m model) inputView() string {
	var label string
	switch m.inputMode {
	case inputYear:
		label = "Enter a year (Enter to confirm / Esc to cancel)"
	case inputMonth:
		label = "Enter a month (Enter to confirm / Esc to cancel)"
	default:
		return ""
	}
	if m.statusMsg != "" {
		label += "\n" + colorize(statusStyle, m.statusMsg)
	}
	if noColorMode {
		return label + "\n\n" + m.input.View()
	}
	return lipgloss.NewStyle().Bold(true).Render(label) + "\n\n" + m.input.View()
}

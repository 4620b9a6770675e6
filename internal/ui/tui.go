package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	itemlist "github.com/idilsaglam/grocer/internal/list"
	"github.com/idilsaglam/grocer/internal/model"
	"github.com/idilsaglam/grocer/internal/notify"
)

// rowItem adapts a GroceryItem to bubbles/list.Item
type rowItem struct {
	ID        string
	Name      string
	Category  string
	Completed bool
}

func (i rowItem) rowText() string {
	box := boxUnchecked
	if i.Completed {
		box = boxChecked
	}
	return fmt.Sprintf("%s %s", box, i.Name)
}

// Implement list.Item interface
func (i rowItem) Title() string       { return i.rowText() }
func (i rowItem) Description() string { return "" }
func (i rowItem) FilterValue() string { return i.Name }

// Custom delegate to control how items render (single line)
type rowDelegate struct{}

func (d rowDelegate) Height() int                               { return 1 }
func (d rowDelegate) Spacing() int                              { return 0 }
func (d rowDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(rowItem)

	boxStyled := mutedStyle.Render(boxUnchecked)
	nameStyled := it.Name
	if it.Completed {
		boxStyled = successStyle.Render(boxChecked)
		nameStyled = doneStyle.Render(it.Name)
	}

	line := fmt.Sprintf("%s %s %s", boxStyled, nameStyled, categoryStyle.Render("("+it.Category+")"))
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

// The controller and queue mutate outside the Bubble Tea loop (network
// commands, expiry timers), so the visible state is resynced on a short tick
// as well as after every completed operation.
type syncMsg time.Time

type opDoneMsg struct{ err error }

type Model struct {
	list  list.Model
	ctrl  *itemlist.Controller
	queue *notify.Queue

	filters   []string
	filterIdx int

	// Inline add
	adding bool            // true when inline add is active
	ti     textinput.Model // name input
	catIdx int             // category cycled with tab
	addErr string

	width  int
	height int
}

// NewModel builds the interactive list for an authenticated user.
func NewModel(ctrl *itemlist.Controller, queue *notify.Queue, user model.User) Model {
	l := list.New(nil, rowDelegate{}, 0, 0)
	l.Title = titleStyle.Render("Groceries") + mutedStyle.Render("  ·  "+user.Name)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")

	// Extend help with our bindings
	addBind := key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	toggleBind := key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	delBind := key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	catBind := key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "category filter"))
	refreshBind := key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	extra := func() []key.Binding {
		return []key.Binding{addBind, toggleBind, delBind, catBind, refreshBind}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	m := Model{
		list:    l,
		ctrl:    ctrl,
		queue:   queue,
		filters: append([]string{model.FilterAll}, model.Categories...),
	}
	m.ti = textinput.New()
	m.ti.Prompt = "> "
	m.ti.Placeholder = "New item name..."
	m.ti.CharLimit = 200
	return m
}

// Run starts the interactive list program.
func Run(ctrl *itemlist.Controller, queue *notify.Queue, user model.User) error {
	p := tea.NewProgram(NewModel(ctrl, queue, user), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return syncMsg(t) })
}

func (m Model) op(f func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{err: f(context.Background())}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.op(m.ctrl.Refresh), tick())
}

func (m Model) filter() string { return m.filters[m.filterIdx] }

func (m *Model) syncRows() {
	items := m.ctrl.FilteredView(m.filter())
	rows := make([]list.Item, 0, len(items))
	for _, it := range items {
		rows = append(rows, rowItem{ID: it.ID, Name: it.Name, Category: it.Category, Completed: it.Completed})
	}
	m.list.SetItems(rows)
}

func (m Model) selectedID() (string, bool) {
	if it, ok := m.list.SelectedItem().(rowItem); ok {
		return it.ID, true
	}
	return "", false
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case syncMsg:
		m.syncRows()
		return m, tick()
	case opDoneMsg:
		// Failures already landed in the queue; just resync the rows.
		m.syncRows()
		return m, nil
	}

	// add mode
	if m.adding {
		var cmd tea.Cmd
		if x, ok := msg.(tea.KeyMsg); ok {
			switch x.String() {
			case "enter":
				name := strings.TrimSpace(m.ti.Value())
				if name == "" {
					m.addErr = "Name cannot be empty"
					return m, nil
				}
				category := model.Categories[m.catIdx]
				m.adding = false
				m.addErr = ""
				m.ti.SetValue("")
				m.ti.Blur()
				return m, m.op(func(ctx context.Context) error {
					return m.ctrl.Add(ctx, name, category)
				})
			case "tab":
				m.catIdx = (m.catIdx + 1) % len(model.Categories)
				return m, nil
			case "shift+tab":
				m.catIdx = (m.catIdx + len(model.Categories) - 1) % len(model.Categories)
				return m, nil
			case "esc":
				m.adding = false
				m.addErr = ""
				m.ti.SetValue("")
				m.ti.Blur()
				return m, nil
			}
		}
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok && !m.list.SettingFilter() {
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case " ":
			if id, ok := m.selectedID(); ok {
				// The flip inside Toggle is applied before the network
				// round-trip; the next sync tick makes it visible.
				return m, m.op(func(ctx context.Context) error {
					return m.ctrl.Toggle(ctx, id)
				})
			}
			return m, nil
		case "d":
			if id, ok := m.selectedID(); ok {
				return m, m.op(func(ctx context.Context) error {
					return m.ctrl.Delete(ctx, id)
				})
			}
			return m, nil
		case "a":
			m.adding = true
			m.ti.SetValue("")
			m.ti.Focus()
			return m, nil
		case "f":
			m.filterIdx = (m.filterIdx + 1) % len(m.filters)
			m.syncRows()
			return m, nil
		case "r":
			return m, m.op(m.ctrl.Refresh)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	w, h := m.width, m.height
	if w == 0 {
		w, h = 80, 24
	}
	notes := m.queue.Notifications()
	listHeight := h - 4 - len(notes)
	if m.adding {
		listHeight -= 3
	}
	if listHeight < 1 {
		listHeight = 1
	}
	m.list.SetSize(w-2, listHeight)

	content := m.list.View()

	if m.filter() != model.FilterAll {
		content += "\n" + mutedStyle.Render("filter: "+m.filter())
	}

	if m.adding {
		bar := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
		title := "Add new item" + categoryStyle.Render("  tab: "+model.Categories[m.catIdx])
		if m.addErr != "" {
			title += "  " + errorStyle.Render(m.addErr)
		}
		content += "\n" + bar.Render(title+"\n"+m.ti.View())
	}

	for _, n := range notes {
		content += "\n" + RenderNotification(n)
	}

	return Panel(content)
}

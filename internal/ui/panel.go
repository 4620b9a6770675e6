package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/grocer/internal/model"
)

// Panel frames content in a rounded border.
func Panel(inner string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1)
	return border.Render(inner)
}

// ProgressBar renders a Unicode completion bar.
func ProgressBar(done, total, width int) string {
	if total == 0 {
		total = 1
	}
	if width <= 0 {
		width = 28
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf("] %d/%d", done, total)
}

// Header renders the list title with live counts.
func Header(items []model.GroceryItem) string {
	done, pending := Stats(items)
	return fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Groceries"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), pending,
		accentStyle.Render("Total"), len(items),
	)
}

// PlainList renders a static, non-interactive panel of the items.
func PlainList(items []model.GroceryItem, category string) string {
	var lines []string
	lines = append(lines, Header(items))
	done, pending := Stats(items)
	lines = append(lines, mutedStyle.Render(ProgressBar(done, done+pending, 28)))
	if category != "" && category != model.FilterAll {
		lines = append(lines, mutedStyle.Render("filter: "+category))
	}
	lines = append(lines, "")

	if len(items) == 0 {
		lines = append(lines, mutedStyle.Render("no items"))
	}
	for i, it := range items {
		idx := fmt.Sprintf("%2d.", i+1)
		box := mutedStyle.Render(boxUnchecked)
		name := it.Name
		if it.Completed {
			box = successStyle.Render(boxChecked)
			name = doneStyle.Render(name)
		}
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			mutedStyle.Render(idx), box, name, categoryStyle.Render("("+it.Category+")")))
	}
	lines = append(lines, "")
	lines = append(lines, mutedStyle.Render("Tip: add with `grocer add Drinks \"Orange juice\"`"))
	return Panel(strings.Join(lines, "\n"))
}

// Stats counts completed and pending items.
func Stats(items []model.GroceryItem) (done, pending int) {
	for _, it := range items {
		if it.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

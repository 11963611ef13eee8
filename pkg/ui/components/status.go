// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// VenueStatus represents a venue's health.
type VenueStatus struct {
	Name       string
	Healthy    bool
	Latency    time.Duration
	LastUpdate time.Time
}

// StatusComponent renders venue health.
type StatusComponent struct {
	venues []VenueStatus
}

// NewStatusComponent creates a new status component.
func NewStatusComponent() *StatusComponent {
	return &StatusComponent{
		venues: make([]VenueStatus, 0),
	}
}

// Update updates a venue's status.
func (s *StatusComponent) Update(status VenueStatus) {
	for i, v := range s.venues {
		if v.Name == status.Name {
			s.venues[i] = status
			return
		}
	}
	s.venues = append(s.venues, status)
}

// View renders the status component.
func (s *StatusComponent) View() string {
	if len(s.venues) == 0 {
		return "No venues"
	}

	var result string
	for _, v := range s.venues {
		status := "● healthy"
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
		if !v.Healthy {
			status = "○ unreachable"
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
		}

		line := fmt.Sprintf("├─ %s: %s", v.Name, style.Render(status))
		if v.Healthy && v.Latency > 0 {
			line += fmt.Sprintf(" (%s)", v.Latency.Round(time.Millisecond))
		}
		result += line + "\n"
	}

	return result
}

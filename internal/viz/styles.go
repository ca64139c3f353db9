package viz

import (
	"math"

	"github.com/charmbracelet/lipgloss"
)

var (
	plainStyle  = lipgloss.NewStyle()
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00")).Bold(true)
	playStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88")).Bold(true)
)

// Palettes run from faint to bright. The upper bob leaves a yellow trail and
// the lower bob a blue one.
var palettes = map[Hue][]lipgloss.Color{
	HueRod:   {"240", "245", "250", "255"},
	HueUpper: {"58", "100", "142", "184", "226"},
	HueLower: {"17", "19", "25", "33", "39"},
}

// shade picks the palette entry for an ink. ok is false for empty cells.
func shade(ink Ink) (lipgloss.Color, bool) {
	p := palettes[ink.Hue]
	if ink.Alpha <= 0 || len(p) == 0 {
		return "", false
	}
	i := int(math.Ceil(ink.Alpha*float64(len(p)))) - 1
	if i >= len(p) {
		i = len(p) - 1
	}
	if i < 0 {
		i = 0
	}
	return p[i], true
}

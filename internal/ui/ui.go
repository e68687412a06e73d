package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	White = lipgloss.Color("15")

	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	debugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

func Success(format string, args ...any) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

func Info(format string, args ...any) {
	fmt.Println(infoStyle.Render(fmt.Sprintf(format, args...)))
}

func Debug(format string, args ...any) {
	fmt.Println(debugStyle.Render(fmt.Sprintf(format, args...)))
}

func Warn(format string, args ...any) {
	fmt.Println(warnStyle.Render(fmt.Sprintf(format, args...)))
}

func Error(format string, args ...any) {
	fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf(format, args...)))
}

// PrefixedUI renders output with a fixed prefix, used when several stages
// write to the same terminal.
type PrefixedUI struct {
	Prefix string
}

func (p *PrefixedUI) Success(format string, args ...any) {
	fmt.Println(p.Prefix + successStyle.Render(fmt.Sprintf(format, args...)))
}

func (p *PrefixedUI) Info(format string, args ...any) {
	fmt.Println(p.Prefix + infoStyle.Render(fmt.Sprintf(format, args...)))
}

func (p *PrefixedUI) Warn(format string, args ...any) {
	fmt.Println(p.Prefix + warnStyle.Render(fmt.Sprintf(format, args...)))
}

func (p *PrefixedUI) Error(format string, args ...any) {
	fmt.Fprintln(os.Stderr, p.Prefix+errorStyle.Render(fmt.Sprintf(format, args...)))
}

// Copyright (c) 2026 ToeiRei
// vssh - SSH certificates signed by HashiCorp Vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package ui prints the operator facing status lines of the CLI.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	markSuccess = "✓"
	markWait    = "…"
	markWarn    = "!"
	markFail    = "✗"
)

// Printer writes styled status lines to a single writer. Colors are only
// emitted when the writer is a terminal.
type Printer struct {
	w io.Writer

	success lipgloss.Style
	wait    lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	label   lipgloss.Style
}

// NewPrinter returns a printer for w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		success: r.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		wait:    r.NewStyle().Foreground(lipgloss.Color("214")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		fail:    r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		label:   r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func (p *Printer) line(style lipgloss.Style, mark, msg string) {
	fmt.Fprintf(p.w, "%s %s\n", style.Render(mark), msg)
}

func (p *Printer) Success(msg string) { p.line(p.success, markSuccess, msg) }
func (p *Printer) Wait(msg string)    { p.line(p.wait, markWait, msg) }
func (p *Printer) Warn(msg string)    { p.line(p.warn, markWarn, msg) }
func (p *Printer) Fail(msg string)    { p.line(p.fail, markFail, msg) }

// Println writes msg unstyled.
func (p *Printer) Println(msg string) { fmt.Fprintln(p.w, msg) }

// Field is one row of a KeyValues block.
type Field struct {
	Label string
	Value string
}

// KeyValues writes aligned "label: value" rows. Empty values print as "-".
func (p *Printer) KeyValues(fields []Field) {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.Label))
	}
	for _, f := range fields {
		value := f.Value
		if strings.TrimSpace(value) == "" {
			value = "-"
		}
		label := p.label.Render(f.Label + ":" + strings.Repeat(" ", width-len(f.Label)))
		fmt.Fprintf(p.w, "%s %s\n", label, value)
	}
}

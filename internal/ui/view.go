// Package ui печатает ход работы демо-программ в консоль.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// DefaultWidth — ширина переноса строк.
const DefaultWidth = 80

// Printer выводит заголовки, tool calls и ответы модели.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter создаёт Printer для out. width <= 0 — DefaultWidth.
func NewPrinter(out io.Writer, width int) *Printer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Printer{out: out, width: width}
}

// Stdout — Printer для стандартного вывода.
func Stdout() *Printer {
	return NewPrinter(os.Stdout, DefaultWidth)
}

// Header печатает заголовок программы.
func (p *Printer) Header(title string) {
	fmt.Fprintln(p.out, headerStyle.Render(title))
}

// User печатает запрос пользователя.
func (p *Printer) User(query string) {
	fmt.Fprintln(p.out, userMsgStyle.Render("> ")+p.wrap(query, 2))
}

// ToolCall печатает вызов инструмента и его результат.
func (p *Printer) ToolCall(name, args, output string) {
	fmt.Fprintln(p.out, toolNameStyle.Render(name)+" "+args)
	if output != "" {
		fmt.Fprintln(p.out, toolOutputStyle.Render(indent(p.wrap(output, 2), "  ")))
	}
}

// Answer печатает финальный ответ модели.
func (p *Printer) Answer(text string) {
	fmt.Fprintln(p.out, answerStyle.Render(p.wrap(text, 0)))
}

// Line печатает строку без оформления.
func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Error печатает ошибку.
func (p *Printer) Error(err error) {
	fmt.Fprintln(p.out, errorMsgStyle.Render("Error: ")+err.Error())
}

// Table печатает пары "ключ: значение" выровненными колонками.
func (p *Printer) Table(rows [][2]string) {
	keyWidth := 0
	for _, r := range rows {
		if w := lipgloss.Width(r[0]); w > keyWidth {
			keyWidth = w
		}
	}
	keyStyle := lipgloss.NewStyle().Width(keyWidth + 2).Bold(true)
	for _, r := range rows {
		fmt.Fprintln(p.out, keyStyle.Render(r[0]+":")+r[1])
	}
}

func (p *Printer) wrap(s string, reserve int) string {
	return wordwrap.String(s, p.width-reserve)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

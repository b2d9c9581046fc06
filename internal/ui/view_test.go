package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func newTestPrinter(width int) (*Printer, *bytes.Buffer) {
	// Без цветов: сравниваем чистый текст
	lipgloss.SetColorProfile(termenv.Ascii)
	buf := &bytes.Buffer{}
	return NewPrinter(buf, width), buf
}

func TestPrinter_AnswerWraps(t *testing.T) {
	p, buf := newTestPrinter(20)
	p.Answer("Mutton Curry has about 540 kcal per serving.")

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, len(strings.TrimRight(line, " ")), 20, "line %q", line)
	}
	assert.Contains(t, buf.String(), "Mutton Curry")
}

func TestPrinter_ToolCall(t *testing.T) {
	p, buf := newTestPrinter(0)
	p.ToolCall("findRecipe", `{"searchQuery":"pasta"}`, "White Sauce Pasta")

	out := buf.String()
	assert.Contains(t, out, `findRecipe {"searchQuery":"pasta"}`)
	assert.Contains(t, out, "  White Sauce Pasta")
}

func TestPrinter_ErrorAndTable(t *testing.T) {
	p, buf := newTestPrinter(0)
	p.Error(errors.New("authentication failed"))
	p.Table([][2]string{{"Calories", "540 kcal"}, {"Fat", "30 g"}})

	out := buf.String()
	assert.Contains(t, out, "Error: authentication failed")
	assert.Contains(t, out, "Calories: 540 kcal")
	assert.Contains(t, out, "Fat:      30 g")
}

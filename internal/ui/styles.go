// Красота

package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Цвета
	primaryColor   = lipgloss.Color("62")  // Фиолетовый
	secondaryColor = lipgloss.Color("205") // Розовый
	grayColor      = lipgloss.Color("240")

	// Стиль заголовка программы
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 1).
			Bold(true)

	userMsgStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	// Имя инструмента в выводе tool call
	toolNameStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	toolOutputStyle = lipgloss.NewStyle().
			Foreground(grayColor)

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")) // Зеленый

	errorMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)
)

package ui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"voicewriter-go/internal/model"
)

var (
	styleCorrect     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true) // Green
	styleIncorrect   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)  // Red
	styleHighlight   = lipgloss.NewStyle().Background(lipgloss.Color("22")).Foreground(lipgloss.Color("0"))
	styleSubtle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleHeader      = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleTitle       = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // Yellow
	styleStatus      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleInputDiff   = lipgloss.NewStyle().Background(lipgloss.Color("9")).Foreground(lipgloss.Color("0"))
	styleCorrectDiff = lipgloss.NewStyle().Background(lipgloss.Color("10")).Foreground(lipgloss.Color("0"))
	styleCursor      = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	styleBarGreen    = lipgloss.NewStyle().Background(lipgloss.Color("10")).SetString(" ")
	styleBarRed      = lipgloss.NewStyle().Background(lipgloss.Color("9")).SetString(" ")
	styleBarEmpty    = lipgloss.NewStyle().Background(lipgloss.Color("236")).SetString(" ")

	styleIconHome   = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))  // Blue
	styleIconWork   = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))  // Green
	styleIconTravel = lipgloss.NewStyle().Foreground(lipgloss.Color("208")) // Orange

	styleEasy   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	styleHard   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

const barWidth = 20

func iconGlyph(i model.Icon) string {
	switch i {
	case model.IconWork:
		return styleIconWork.Render("▣")
	case model.IconTravel:
		return styleIconTravel.Render("✈")
	default:
		return styleIconHome.Render("⌂")
	}
}

func difficultyTag(d model.Difficulty) string {
	switch d {
	case model.DifficultyMedium:
		return styleMedium.Render("[medium]")
	case model.DifficultyHard:
		return styleHard.Render("[hard]")
	case model.DifficultyEasy:
		return styleEasy.Render("[easy]")
	default:
		return styleSubtle.Render("[" + string(d) + "]")
	}
}

// renderBar draws ratio (0.0-1.0) as a coloured bar; untried items get a
// neutral bar.
func renderBar(ratio float64, attempts, width int) string {
	if attempts == 0 {
		return strings.Repeat(styleBarEmpty.String(), width)
	}
	greenCount := int(ratio * float64(width))
	redCount := width - greenCount
	return strings.Repeat(styleBarGreen.String(), greenCount) +
		strings.Repeat(styleBarRed.String(), redCount)
}

// diffStrings highlights, rune by rune, where input and target disagree.
func diffStrings(input, target string) (string, string) {
	var inputStyled, targetStyled strings.Builder
	runesInput := []rune(input)
	runesTarget := []rune(target)
	maxLen := max(len(runesInput), len(runesTarget))
	for i := 0; i < maxLen; i++ {
		inputInBounds := i < len(runesInput)
		targetInBounds := i < len(runesTarget)
		switch {
		case inputInBounds && targetInBounds:
			inputRune, targetRune := runesInput[i], runesTarget[i]
			if unicode.ToLower(inputRune) == unicode.ToLower(targetRune) {
				inputStyled.WriteRune(inputRune)
				targetStyled.WriteRune(targetRune)
			} else {
				inputStyled.WriteString(styleInputDiff.Render(string(inputRune)))
				targetStyled.WriteString(styleCorrectDiff.Render(string(targetRune)))
			}
		case inputInBounds:
			inputStyled.WriteString(styleInputDiff.Render(string(runesInput[i])))
		case targetInBounds:
			targetStyled.WriteString(styleCorrectDiff.Render(string(runesTarget[i])))
		}
	}
	return inputStyled.String(), targetStyled.String()
}

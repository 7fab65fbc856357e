package ui

import "strings"

const (
	reset      = "\033[0m"
	bold       = "\033[1m"
	barkBrown  = "\033[38;5;94m"
	mossGreen  = "\033[38;5;106m"
	leafGreen  = "\033[38;5;70m"
	fernGreen  = "\033[38;5;34m"
	mint       = "\033[38;5;121m"
	seafoam    = "\033[38;5;49m"
	canopyBlue = "\033[38;5;33m"
)

// Banner renders a colored treetop wordmark.
func Banner() string {
	var b strings.Builder

	t := []string{"████████╗", "╚══██╔══╝", "   ██║   ", "   ██║   ", "   ██║   ", "   ╚═╝   "}
	r := []string{"██████╗ ", "██╔══██╗", "██████╔╝", "██╔══██╗", "██║  ██║", "╚═╝  ╚═╝"}
	e := []string{"███████╗", "██╔════╝", "█████╗  ", "██╔══╝  ", "███████╗", "╚══════╝"}
	o := []string{" ██████╗ ", "██╔═══██╗", "██║   ██║", "██║   ██║", "╚██████╔╝", " ╚═════╝ "}
	p := []string{"██████╗ ", "██╔══██╗", "██████╔╝", "██╔═══╝ ", "██║     ", "╚═╝     "}

	letters := [][]string{t, r, e, e, t, o, p}
	gradient := []string{barkBrown, mossGreen, leafGreen, fernGreen, mint, seafoam, canopyBlue}
	rows := make([]string, len(t))
	for i, letter := range letters {
		color := gradient[i%len(gradient)]
		for row := range letter {
			rows[row] += color + letter[row] + " "
		}
	}
	for _, line := range rows {
		b.WriteString(bold + line + reset + "\n")
	}

	b.WriteString("\n")
	b.WriteString(bold + leafGreen + "treetop" + reset + "  •  live process tree\n\n")

	return b.String()
}

package observability

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	colorReset    = "\033[0m"
	colorNeonCyan = "\033[96m"
)

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

// PrintBanner prints the startup banner centered to the terminal width.
func PrintBanner() {
	banner := `
    ____  __    ___    _   __    __    ____  ____  ____
   / __ \/ /   /   |  / | / /   / /   / __ \/ __ \/ __ \
  / /_/ / /   / /| | /  |/ /   / /   / / / / / / / /_/ /
 / ____/ /___/ ___ |/ /|  /   / /___/ /_/ / /_/ / ____/
/_/   /_____/_/  |_/_/ |_/   /_____/\____/\____/_/

        >> plan / execute / replan <<
`

	width := termWidth()
	lines := strings.Split(banner, "\n")

	for _, l := range lines {
		padding := (width - len(l)) / 2
		if padding < 0 {
			padding = 0
		}
		fmt.Printf("%s%s%s\n", strings.Repeat(" ", padding), colorNeonCyan+l, colorReset)
	}
}

package display

import (
	"fmt"
	"io"

	"github.com/backmassage/tripmaster/internal/term"
)

// PrintBanner prints the ASCII art banner in magenta when colors are enabled.
func PrintBanner(w io.Writer) {
	fmt.Fprint(w, term.Magenta)
	fmt.Fprint(w, ` _____     _                           _
|_   _| __(_)_ __  _ __ ___   __ _ ___| |_ ___ _ __
  | || '__| | '_ \| '_ `+"`"+` _ \ / _`+"`"+` / __| __/ _ \ '__|
  | || |  | | |_) | | | | | | (_| \__ \ ||  __/ |
  |_||_|  |_| .__/|_| |_| |_|\__,_|___/\__\___|_|
            |_|
`)
	if term.NC != "" {
		fmt.Fprintln(w, term.NC)
	}
}

package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	` ___                 _ _           `,
	`|   \ _  _ _ __  _ _| (_)_ _  __ _ `,
	`| |) | || | '  \| '_ \ | | ' \/ _' |`,
	`|___/ \_,_|_|_|_| .__/_|_|_||_\__, |`,
	`                |_|           |___/ `,
}

// Steamed dough to chili oil.
var bannerColors = []string{"#fde68a", "#fdba74", "#fb923c", "#f97316", "#ef4444"}

// PrintBanner writes the dumpling ASCII banner and the version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(out.Color(bannerColors[i])))
	}
	fmt.Fprintln(w, out.String("  emotions, folded  v"+version).Faint())
	fmt.Fprintln(w)
}

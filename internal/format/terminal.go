package format

import (
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const defaultWidth = 80

// ResolveColor decides whether output to out should be colored. Explicit
// flags win over detection; NO_COLOR disables auto detection.
func ResolveColor(force, disable bool, out io.Writer) bool {
	if force {
		return true
	}
	if disable {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// TerminalWidth returns the column count of out, falling back to $COLUMNS
// and then 80.
func TerminalWidth(out io.Writer) int {
	if file, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(file.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if colsStr := os.Getenv("COLUMNS"); colsStr != "" {
		if v, err := strconv.Atoi(colsStr); err == nil && v > 0 {
			return v
		}
	}
	return defaultWidth
}

func colorize(enabled bool, colors text.Colors, s string) string {
	if !enabled {
		return s
	}
	return colors.Sprint(s)
}

// truncateWidth cuts s to at most width terminal cells, marking the cut.
func truncateWidth(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

package ui

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

// ASCIILogo is printed at startup
const ASCIILogo = `
    ╔═══════════════════════════════════════════════════════╗
    ║  ██████╗ ███████╗██╗  ██╗██╗   ██╗                     ║
    ║  ██╔══██╗██╔════╝██║ ██╔╝╚██╗ ██╔╝                     ║
    ║  ██████╔╝███████╗█████╔╝  ╚████╔╝                      ║
    ║  ██╔══██╗╚════██║██╔═██╗   ╚██╔╝                       ║
    ║  ██████╔╝███████║██║  ██╗   ██║                        ║
    ║  ╚═════╝ ╚══════╝╚═╝  ╚═╝   ╚═╝   S C R A P E R        ║
    ╚═══════════════════════════════════════════════════════╝
`

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// Out receives all console output
var Out io.Writer = os.Stdout

var quiet atomic.Bool

// SetQuiet suppresses everything except errors
func SetQuiet(q bool) { quiet.Store(q) }

// IsQuietMode reports whether output is suppressed
func IsQuietMode() bool { return quiet.Load() }

func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

func PrintLogo() {
	if IsQuietMode() {
		return
	}
	fmt.Fprint(Out, Cyan(ASCIILogo))
}

// PrintError prints msg in red, followed by the first arg if given. Shown in quiet mode.
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = fmt.Sprintf("%s: %v", msg, args[0])
	}
	fmt.Fprintln(Out, Red(msg))
}

func PrintSuccess(msg string) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintln(Out, Green(msg))
}

// PrintInfo prints a label/value pair
func PrintInfo(label string, value string) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintf(Out, "%s: %s\n", Cyan(label), Yellow(value))
}

func PrintWarning(msg string, args ...interface{}) {
	if IsQuietMode() {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf("%s: %v", msg, args[0])
	}
	fmt.Fprintln(Out, Yellow(msg))
}

// PrintHighlight prints a stage banner
func PrintHighlight(msg string) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintln(Out, Magenta(msg))
}

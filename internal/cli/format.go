package cli

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	warnColor   = color.New(color.FgYellow)
	dimColor    = color.New(color.FgHiBlack)
)

// printHeader prints a section header for a multi-line output block.
func printHeader(title string) {
	fmt.Println()
	_, _ = headerColor.Println(title)
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	_, _ = dimColor.Printf("  "+format+"\n", args...)
}

// printWarn prints an advisory warning line.
func printWarn(format string, args ...any) {
	_, _ = warnColor.Printf("  ⚠️  "+format+"\n", args...)
}

package cli

import (
	"os"
)

// IsStdinPipe returns true if stdin is a pipe or redirect (not a terminal),
// so `echo $KEY | figma-mcp auth login` can read the key without it
// showing up in shell history or process listings.
func IsStdinPipe() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

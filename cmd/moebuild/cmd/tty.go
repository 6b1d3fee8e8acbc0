package cmd

import "os"

// isStdoutTTY returns true if stdout is connected to a terminal.
func isStdoutTTY() bool {
	return isTTY(os.Stdout)
}

// isStderrTTY returns true if stderr is connected to a terminal.
func isStderrTTY() bool {
	return isTTY(os.Stderr)
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// useColor reports whether stdout output should carry ANSI colors.
func useColor() bool {
	return !noColorFlag && isStdoutTTY()
}

package cli

import "os"

// PrettyOutput determines from input flags whether we should show 'pretty' output (ie. coloured).
func PrettyOutput(colour bool, noColour bool, verbosity Verbosity) bool {
	if colour && noColour {
		log.Fatal("Can't pass both --colour and --nocolour")
	}
	return colour || (!noColour && StdErrIsATerminal)
}

// isTerminal reports whether f is an interactive character device, e.g. a tty.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

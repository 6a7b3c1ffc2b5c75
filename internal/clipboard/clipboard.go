// Package clipboard provides clipboard access via the platform's paste tools.
package clipboard

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"
)

// ErrClipboardUnavailable is returned when no clipboard tool can be found.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// commandFor returns the copy command for this platform, or
// ErrClipboardUnavailable when none of the known tools is installed.
func commandFor() (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		if _, err := exec.LookPath("pbcopy"); err == nil {
			return exec.Command("pbcopy"), nil
		}
	case "linux":
		// X11 first, then Wayland, then xsel
		if _, err := exec.LookPath("xclip"); err == nil {
			return exec.Command("xclip", "-selection", "clipboard"), nil
		}
		if _, err := exec.LookPath("wl-copy"); err == nil {
			return exec.Command("wl-copy"), nil
		}
		if _, err := exec.LookPath("xsel"); err == nil {
			return exec.Command("xsel", "--clipboard", "--input"), nil
		}
	}
	return nil, ErrClipboardUnavailable
}

// IsAvailable reports whether a clipboard tool exists on this system.
func IsAvailable() bool {
	_, err := commandFor()
	return err == nil
}

// Copy writes text to the system clipboard.
// Returns ErrClipboardUnavailable when no clipboard tool is installed.
func Copy(text string) error {
	cmd, err := commandFor()
	if err != nil {
		return err
	}
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

package detector

import (
	"os"

	"github.com/pkg/errors"

	"github.com/mouseidle/mouseidle/pkg/integrations/x11"
	"github.com/mouseidle/mouseidle/pkg/pointer"
)

// New opens the pointer backend for the current session
func New() (pointer.Backend, error) {
	switch ds := DetectDisplayServer(); ds {
	case "x11":
		b, err := x11.NewBackend()
		if err != nil {
			return nil, err
		}
		return b, nil
	case "wayland":
		return nil, errors.New("wayland sessions do not allow global pointer query or warp; run under X11")
	default:
		return nil, errors.Errorf("no supported display server detected (got %q)", ds)
	}
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}

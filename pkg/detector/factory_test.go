package detector

import (
	"os"
	"testing"
)

func TestNew(t *testing.T) {
	backend, err := New()
	if err != nil {
		t.Logf("New() returned error (may be expected): %v", err)
		return
	}

	if backend == nil {
		t.Fatal("New() returned nil backend without error")
	}

	displayServer := backend.GetDisplayServer()
	t.Logf("Detected display server: %s", displayServer)

	if displayServer != "x11" {
		t.Errorf("GetDisplayServer() = %s, want x11", displayServer)
	}

	p, err := backend.Position()
	if err != nil {
		t.Logf("Position() error: %v", err)
	} else {
		t.Logf("Current pointer: %s", p)
	}

	if err := backend.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestDetectDisplayServer(t *testing.T) {
	tests := []struct {
		name             string
		sessionType      string
		waylandDisplay   string
		x11Display       string
		expectedContains string
	}{
		{
			name:             "Wayland session",
			sessionType:      "wayland",
			waylandDisplay:   "wayland-0",
			x11Display:       "",
			expectedContains: "wayland",
		},
		{
			name:             "X11 session",
			sessionType:      "x11",
			waylandDisplay:   "",
			x11Display:       ":0",
			expectedContains: "x11",
		},
		{
			name:             "Unknown session",
			sessionType:      "",
			waylandDisplay:   "",
			x11Display:       "",
			expectedContains: "unknown",
		},
		{
			name:             "Wayland display set",
			sessionType:      "",
			waylandDisplay:   "wayland-1",
			x11Display:       "",
			expectedContains: "wayland",
		},
		{
			name:             "X11 display set",
			sessionType:      "",
			waylandDisplay:   "",
			x11Display:       ":1",
			expectedContains: "x11",
		},
	}

	origSessionType := os.Getenv("XDG_SESSION_TYPE")
	origWaylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	origX11Display := os.Getenv("DISPLAY")

	defer func() {
		os.Setenv("XDG_SESSION_TYPE", origSessionType)
		os.Setenv("WAYLAND_DISPLAY", origWaylandDisplay)
		os.Setenv("DISPLAY", origX11Display)
	}()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("XDG_SESSION_TYPE", tt.sessionType)
			os.Setenv("WAYLAND_DISPLAY", tt.waylandDisplay)
			os.Setenv("DISPLAY", tt.x11Display)

			result := DetectDisplayServer()
			if result != tt.expectedContains {
				t.Errorf("DetectDisplayServer() = %s, want %s", result, tt.expectedContains)
			}
		})
	}
}

func TestNewWithUnsupportedSystem(t *testing.T) {
	origSessionType := os.Getenv("XDG_SESSION_TYPE")
	origWaylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	origX11Display := os.Getenv("DISPLAY")

	defer func() {
		os.Setenv("XDG_SESSION_TYPE", origSessionType)
		os.Setenv("WAYLAND_DISPLAY", origWaylandDisplay)
		os.Setenv("DISPLAY", origX11Display)
	}()

	os.Unsetenv("XDG_SESSION_TYPE")
	os.Unsetenv("WAYLAND_DISPLAY")
	os.Unsetenv("DISPLAY")

	backend, err := New()
	if err == nil {
		backend.Close()
		t.Fatal("New() succeeded without any display server env vars")
	}
}

func TestNewOnWayland(t *testing.T) {
	origSessionType := os.Getenv("XDG_SESSION_TYPE")
	defer os.Setenv("XDG_SESSION_TYPE", origSessionType)

	os.Setenv("XDG_SESSION_TYPE", "wayland")

	backend, err := New()
	if err == nil {
		backend.Close()
		t.Fatal("New() succeeded on a wayland session")
	}
	t.Logf("New() on wayland: %v", err)
}

func TestMultipleBackendInstances(t *testing.T) {
	backend1, err := New()
	if err != nil {
		t.Skip("Display server not available")
	}
	defer backend1.Close()

	backend2, err := New()
	if err != nil {
		t.Skip("Display server not available")
	}
	defer backend2.Close()

	ds1 := backend1.GetDisplayServer()
	ds2 := backend2.GetDisplayServer()

	if ds1 != ds2 {
		t.Errorf("Display servers don't match: %s vs %s", ds1, ds2)
	}

	t.Logf("Successfully created multiple backend instances")
}

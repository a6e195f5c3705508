package x11

import (
	"math"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/mouseidle/mouseidle/pkg/pointer"
)

// Backend implements pointer.Backend on top of the core X11 protocol.
// QueryPointer is used for sampling and WarpPointer for moves, so no
// extension (XTest, XInput) is needed.
type Backend struct {
	conn *xgb.Conn
	root xproto.Window
}

// NewBackend connects to the display named by $DISPLAY
func NewBackend() (*Backend, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to X11 display")
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)
	if screen == nil {
		conn.Close()
		return nil, errors.New("X11 display has no default screen")
	}

	return &Backend{
		conn: conn,
		root: screen.Root,
	}, nil
}

// IsAvailable reports whether the backend holds an open connection
func (b *Backend) IsAvailable() bool {
	return b.conn != nil
}

// GetDisplayServer returns "x11"
func (b *Backend) GetDisplayServer() string {
	return "x11"
}

// Position returns the pointer coordinate relative to the root window
func (b *Backend) Position() (pointer.Point, error) {
	if b.conn == nil {
		return pointer.Point{}, errors.New("x11 backend is closed")
	}

	reply, err := xproto.QueryPointer(b.conn, b.root).Reply()
	if err != nil {
		return pointer.Point{}, errors.Wrap(err, "failed to query x11 pointer")
	}

	return pointer.Point{X: int(reply.RootX), Y: int(reply.RootY)}, nil
}

// MoveBy warps the pointer relative to its current position
func (b *Backend) MoveBy(dx, dy int) error {
	return b.warp(xproto.WindowNone, clampInt16(dx), clampInt16(dy))
}

// MoveTo warps the pointer to an absolute root-window coordinate
func (b *Backend) MoveTo(p pointer.Point) error {
	return b.warp(b.root, clampInt16(p.X), clampInt16(p.Y))
}

func (b *Backend) warp(dst xproto.Window, x, y int16) error {
	if b.conn == nil {
		return errors.New("x11 backend is closed")
	}

	err := xproto.WarpPointerChecked(b.conn, xproto.WindowNone, dst, 0, 0, 0, 0, x, y).Check()
	if err != nil {
		return errors.Wrap(err, "failed to warp x11 pointer")
	}
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
	return nil
}

// clampInt16 keeps coordinates inside the range of the X11 wire format
func clampInt16(v int) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

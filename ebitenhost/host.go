// Package ebitenhost runs rowan on an Ebitengine window. The Host supplies
// frame ticks from Game.Update, feeds command batches to a renderer
// Compositor, draws the Compositor's element model and turns mouse clicks
// and window resizes into UI events for the logic side.
package ebitenhost

import (
	"image/color"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/rowan"
	"github.com/phanxgames/rowan/command"
	"github.com/phanxgames/rowan/renderer"
)

// Host implements rowan.Host and ebiten.Game.
type Host struct {
	cfg        rowan.Config
	compositor *renderer.Compositor
	handler    func([]any)

	ticks map[rowan.TickHandle]func(float64)
	order []rowan.TickHandle
	next  rowan.TickHandle
	start time.Time

	// Background is the clear color.
	Background color.RGBA
}

// New creates a Host drawing compositor's state.
func New(cfg rowan.Config, compositor *renderer.Compositor) *Host {
	return &Host{
		cfg:        cfg,
		compositor: compositor,
		ticks:      make(map[rowan.TickHandle]func(float64)),
		start:      time.Now(),
		Background: color.RGBA{R: 30, G: 30, B: 40, A: 255},
	}
}

// Compositor returns the compositor the host draws.
func (h *Host) Compositor() *renderer.Compositor {
	return h.compositor
}

// --- rowan.Host ---

// RequestTick runs fn during the next Game.Update.
func (h *Host) RequestTick(fn func(float64)) rowan.TickHandle {
	h.next++
	h.ticks[h.next] = fn
	h.order = append(h.order, h.next)
	return h.next
}

// CancelTick drops a pending request.
func (h *Host) CancelTick(handle rowan.TickHandle) {
	delete(h.ticks, handle)
}

// PostToHost replays batch into the compositor and sends its replies back.
func (h *Host) PostToHost(batch []any) {
	h.send(h.compositor.Receive(batch))
}

// OnHostMessage installs the handler for messages to the logic side.
func (h *Host) OnHostMessage(fn func([]any)) {
	h.handler = fn
}

// Send delivers a control message to the installed handler.
func (h *Host) Send(msg []any) {
	h.send(msg)
}

func (h *Host) send(msg []any) {
	if len(msg) > 0 && h.handler != nil {
		h.handler(msg)
	}
}

// --- ebiten.Game ---

// Update fires pending ticks and turns a left click into a UI event on the
// element under the cursor.
func (h *Host) Update() error {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if path, ok := h.compositor.HitTest(float64(x), float64(y)); ok {
			h.send(h.compositor.Trigger(path, command.EventClick, []any{float64(x), float64(y)}))
		}
	}

	ts := float64(time.Since(h.start)) / float64(time.Millisecond)
	order := h.order
	h.order = nil
	for _, handle := range order {
		fn, ok := h.ticks[handle]
		if !ok {
			continue
		}
		delete(h.ticks, handle)
		fn(ts)
	}
	return nil
}

// Draw paints every displayed element as a filled rectangle, parents first.
func (h *Host) Draw(screen *ebiten.Image) {
	screen.Fill(h.Background)

	paths := h.compositor.Paths()
	slices.SortStableFunc(paths, func(a, b string) int {
		return strings.Count(a, "/") - strings.Count(b, "/")
	})
	for _, path := range paths {
		e := h.compositor.Element(path)
		if e.Tag == "" || !h.compositor.Visible(path) {
			continue
		}
		drawElement(screen, e)
	}

	if h.cfg.Debug {
		ebitenutil.DebugPrint(screen, "TPS: "+strconv.FormatFloat(ebiten.ActualTPS(), 'f', 1, 64)+
			"\nelements: "+strconv.Itoa(h.compositor.Len()))
	}
}

// Layout reports the window size to the compositor, which answers scenes that
// asked for their size.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	h.send(h.compositor.Resize(float64(outsideWidth), float64(outsideHeight)))
	return outsideWidth, outsideHeight
}

var whitePixel *ebiten.Image

func ensureWhitePixel() *ebiten.Image {
	if whitePixel == nil {
		whitePixel = ebiten.NewImage(1, 1)
		whitePixel.Fill(color.White)
	}
	return whitePixel
}

func drawElement(screen *ebiten.Image, e *renderer.Element) {
	m := &e.Transform
	if e.Size[0] > 0 && e.Size[1] > 0 {
		var op ebiten.DrawImageOptions
		op.GeoM.Scale(e.Size[0], e.Size[1])
		var world ebiten.GeoM
		world.SetElement(0, 0, m[0])
		world.SetElement(0, 1, m[4])
		world.SetElement(0, 2, m[12])
		world.SetElement(1, 0, m[1])
		world.SetElement(1, 1, m[5])
		world.SetElement(1, 2, m[13])
		op.GeoM.Concat(world)

		c := parseColor(e.Properties["background-color"], color.RGBA{R: 80, G: 180, B: 255, A: 255})
		op.ColorScale.ScaleWithColor(c)
		op.ColorScale.ScaleAlpha(float32(math.Max(0, math.Min(1, e.Opacity()))))
		screen.DrawImage(ensureWhitePixel(), &op)
	}
	if text := e.Properties["content"]; text != "" {
		ebitenutil.DebugPrintAt(screen, text, int(m[12]), int(m[13]))
	}
	if e.Light != nil {
		lt := &e.Light.Transform
		ebitenutil.DebugPrintAt(screen, "*", int(lt[12]), int(lt[13]))
	}
}

// parseColor reads "#rrggbb". Anything else yields fallback.
func parseColor(s string, fallback color.RGBA) color.RGBA {
	if len(s) != 7 || s[0] != '#' {
		return fallback
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return fallback
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

// Run opens a window for cfg, calls setup with the host so the caller can
// connect an Engine or ThreadManager, and blocks until the window closes.
func Run(cfg rowan.Config, setup func(h *Host) error) error {
	h := New(cfg, renderer.New())
	if err := setup(h); err != nil {
		return err
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.TPS)
	return ebiten.RunGame(h)
}

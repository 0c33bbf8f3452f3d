package main

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"time"

	"flightmap/sheet"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	statusBarHeight = 24
	tapSlop         = 6  // Pointer travel (px) that turns a tap into a drag
	pickRadius      = 14 // Marker hit radius (px)
)

// pointerRole is what a pointer landed on when it went down
type pointerRole int

const (
	roleMap pointerRole = iota
	roleSheet
	roleContent
	roleScrim
)

type pointerTrack struct {
	role    pointerRole
	start   sheet.Point
	last    sheet.Point
	moved   bool
	dragLat float64
	dragLon float64
}

// App is the main application
type App struct {
	cfg         Config
	client      *TrafficClient
	tileManager *TileManager
	lg          *slog.Logger

	sched    *sheet.Scheduler
	mux      *sheet.Mux
	input    *PointerInput
	pointers map[int]*pointerTrack

	// Selected entity
	sheet    *sheet.Sheet
	panel    *Panel
	content  *ContentList
	selected string

	// View state
	centerLat float64
	centerLon float64
	zoom      int
	width     int
	height    int

	showHelp bool
}

// NewApp creates a new application
func NewApp(cfg Config, client *TrafficClient, tileManager *TileManager, sched *sheet.Scheduler, lg *slog.Logger) *App {
	if cfg.Satellite {
		tileManager.SetSource(MapSourceSatellite)
	}
	return &App{
		cfg:         cfg,
		client:      client,
		tileManager: tileManager,
		lg:          lg,
		sched:       sched,
		mux:         sheet.NewMux(),
		input:       NewPointerInput(sched.Now),
		pointers:    make(map[int]*pointerTrack),
		centerLat:   cfg.Lat,
		centerLon:   cfg.Lon,
		zoom:        cfg.Zoom,
		width:       cfg.Width,
		height:      cfg.Height,
	}
}

// Run starts the application
func (a *App) Run() error {
	ebiten.SetWindowSize(a.width, a.height)
	ebiten.SetWindowTitle("Flight Map")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if a.cfg.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	// Connect to the traffic feed
	if err := a.client.Connect(); err != nil {
		a.lg.Warn("Could not connect to traffic feed", slog.Any("error", err))
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := a.client.Snapshot(ctx); err != nil {
			a.lg.Warn("Initial traffic snapshot failed", slog.Any("error", err))
		}
		cancel()
		a.client.StartStream()
	}

	return ebiten.RunGame(a)
}

// Shutdown cleans up resources
func (a *App) Shutdown() {
	if a.sheet != nil {
		a.sheet.Unmount()
	}
	a.client.Disconnect()
}

// Update handles input and logic updates
func (a *App) Update() error {
	if err := a.handleKeyboard(); err != nil {
		return err
	}
	a.handleWheel()
	a.input.Poll(a.handlePointer)
	a.step()
	return nil
}

// step runs the per-frame work that does not read devices
func (a *App) step() {
	a.sched.Tick()
	if a.sheet != nil {
		a.panel.Update(a.sheet, a.width, a.height)
	}
}

// Draw renders the application
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{30, 30, 30, 255})

	a.drawMap(screen)
	a.drawTraffic(screen)

	if a.sheet != nil {
		a.panel.Draw(screen, a.sheet)
	}

	if a.showHelp {
		a.drawHelp(screen)
	}
	a.drawStatusBar(screen)
}

// Layout tracks the window size
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.width, a.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Viewport height for the sheet
func (a *App) viewportHeight() float64 {
	return float64(a.height)
}

// openSheet replaces any open sheet with one describing the selection
func (a *App) openSheet(title string, lines []string) {
	if a.sheet != nil {
		a.sheet.Unmount()
		a.closeSheet()
	}

	content := NewContentList(lines)
	var s *sheet.Sheet
	s, err := sheet.New(sheet.Options{
		Config:    a.cfg.Sheet,
		Scheduler: a.sched,
		Viewport:  sheet.ViewportFunc(a.viewportHeight),
		Content:   content,
		Logger:    a.lg.With(slog.String("sheet", title)),
		OnClose: func() {
			if a.sheet == s {
				a.closeSheet()
			}
		},
	})
	if err != nil {
		a.lg.Error("Cannot open sheet", slog.Any("error", err))
		return
	}

	a.sheet = s
	a.content = content
	a.panel = NewPanel(title, content, a.cfg.Sheet.ScrimGain)
	a.selected = title
	s.Mount(a.mux)
	a.lg.Debug("Sheet opened", slog.String("title", title))
}

func (a *App) closeSheet() {
	a.sheet, a.panel, a.content = nil, nil, nil
	a.selected = ""
}

// handlePointer routes one pointer event to the sheet, the content list,
// the scrim or the map
func (a *App) handlePointer(ev sheet.Event) {
	switch ev.Kind {
	case sheet.Begin:
		a.pointers[ev.Pointer] = a.pointerDown(ev)

	case sheet.Move:
		tr := a.pointers[ev.Pointer]
		if tr == nil {
			return
		}
		dy := ev.Pos.Y - tr.last.Y
		tr.last = ev.Pos
		if math.Hypot(ev.Pos.X-tr.start.X, ev.Pos.Y-tr.start.Y) > tapSlop {
			tr.moved = true
		}

		if a.mux.Dispatch(sheet.TargetWindow, ev) {
			return
		}
		switch tr.role {
		case roleContent:
			if a.content != nil {
				a.content.ScrollBy(-dy)
			}
		case roleMap:
			a.panTo(tr, ev.Pos)
		}

	case sheet.End:
		tr := a.pointers[ev.Pointer]
		delete(a.pointers, ev.Pointer)
		a.mux.Dispatch(sheet.TargetWindow, ev)
		if tr == nil || tr.moved {
			return
		}
		switch tr.role {
		case roleScrim:
			if a.sheet == nil || !a.sheet.ScrimClick() {
				a.selectAt(ev.Pos)
			}
		case roleMap:
			a.selectAt(ev.Pos)
		}
	}
}

func (a *App) pointerDown(ev sheet.Event) *pointerTrack {
	tr := &pointerTrack{role: roleMap, start: ev.Pos, last: ev.Pos, dragLat: a.centerLat, dragLon: a.centerLon}
	if a.sheet == nil {
		return tr
	}

	panel, handle, _ := a.panel.Layout(a.width, a.height)
	switch {
	case handle.Contains(ev.Pos):
		tr.role = roleSheet
		a.mux.Dispatch(sheet.TargetHandle, ev)
	case panel.Contains(ev.Pos):
		tr.role = roleContent
		a.mux.Dispatch(sheet.TargetContent, ev)
	case a.sheet.ScrimInteractive():
		tr.role = roleScrim
	}
	return tr
}

func (a *App) panTo(tr *pointerTrack, p sheet.Point) {
	dx := p.X - tr.start.X
	dy := p.Y - tr.start.Y

	// Convert pixel delta to lat/lon delta
	scale := 360.0 / (float64(TileSize) * math.Pow(2, float64(a.zoom)))
	a.centerLon = wrapLon(tr.dragLon - dx*scale)
	a.centerLat = clampLat(tr.dragLat + dy*scale*math.Cos(tr.dragLat*math.Pi/180))
}

// screenPos projects lat/lon onto the screen
func (a *App) screenPos(lat, lon float64) (float64, float64) {
	cx, cy := LatLonToPixel(a.centerLat, a.centerLon, a.zoom)
	px, py := LatLonToPixel(lat, lon, a.zoom)
	return float64(a.width)/2 + px - cx, float64(a.height)/2 + py - cy
}

// selectAt opens a sheet for the marker nearest to p, if any is in reach
func (a *App) selectAt(p sheet.Point) {
	traffic := a.client.Traffic()
	best := pickRadius * pickRadius * 1.0
	var title string
	var lines []string

	for _, pl := range traffic.Pilots {
		x, y := a.screenPos(pl.Latitude, pl.Longitude)
		if d := (x-p.X)*(x-p.X) + (y-p.Y)*(y-p.Y); d <= best {
			best = d
			title, lines = describePilot(pl)
		}
	}
	for _, c := range traffic.Controllers {
		if c.Latitude == 0 && c.Longitude == 0 {
			continue
		}
		x, y := a.screenPos(c.Latitude, c.Longitude)
		if d := (x-p.X)*(x-p.X) + (y-p.Y)*(y-p.Y); d <= best {
			best = d
			title, lines = describeController(c)
		}
	}

	if title != "" {
		a.openSheet(title, lines)
	}
}

func (a *App) handleKeyboard() error {
	// Zoom
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		a.zoomBy(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		a.zoomBy(-1)
	}

	// Pan with arrow keys
	panSpeed := 0.001 * math.Pow(2, float64(18-a.zoom))
	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		a.centerLat = clampLat(a.centerLat + panSpeed)
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		a.centerLat = clampLat(a.centerLat - panSpeed)
	}
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		a.centerLon = wrapLon(a.centerLon - panSpeed)
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		a.centerLon = wrapLon(a.centerLon + panSpeed)
	}

	// Toggle map source (street/satellite)
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		a.tileManager.ToggleSource()
		a.lg.Info("Map source changed", slog.String("source", a.tileManager.SourceName()))
	}

	// Toggle help
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) || inpututil.IsKeyJustPressed(ebiten.KeySlash) {
		a.showHelp = !a.showHelp
	}

	// Fullscreen toggle
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}

	// Escape dismisses the sheet first, then quits
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if a.sheet != nil {
			a.sheet.Close()
			return nil
		}
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	return nil
}

func (a *App) handleWheel() {
	_, dy := ebiten.Wheel()
	if dy == 0 {
		return
	}

	// Wheel over the sheet scrolls its content
	if a.sheet != nil {
		x, y := ebiten.CursorPosition()
		panel, _, _ := a.panel.Layout(a.width, a.height)
		if panel.Contains(sheet.Point{X: float64(x), Y: float64(y)}) {
			a.content.ScrollBy(-dy * lineHeight * 3)
			return
		}
	}

	if dy > 0 {
		a.zoomBy(1)
	} else {
		a.zoomBy(-1)
	}
}

func (a *App) zoomBy(d int) {
	z := a.zoom + d
	if z < MinZoom || z > MaxZoom {
		return
	}
	a.zoom = z
}

func (a *App) drawMap(screen *ebiten.Image) {
	coords := a.tileManager.GetTilesForView(a.centerLat, a.centerLon, a.zoom, a.width, a.height)
	centerPx, centerPy := LatLonToPixel(a.centerLat, a.centerLon, a.zoom)
	worldW := float64(int(TileSize) << a.zoom)

	for _, coord := range coords {
		tileX := float64(coord.X*TileSize) - centerPx + float64(a.width)/2
		tileY := float64(coord.Y*TileSize) - centerPy + float64(a.height)/2

		// Tiles wrapped across the antimeridian sit one world away
		if tileX > float64(a.width) {
			tileX -= worldW
		} else if tileX+TileSize < 0 {
			tileX += worldW
		}

		tile := a.tileManager.GetTile(coord)
		if tile == nil {
			// Draw placeholder
			vector.DrawFilledRect(screen, float32(tileX), float32(tileY), TileSize, TileSize, color.RGBA{50, 50, 55, 255}, false)
			vector.StrokeRect(screen, float32(tileX), float32(tileY), TileSize, TileSize, 1, color.RGBA{70, 70, 75, 255}, false)
			continue
		}

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(tileX, tileY)
		screen.DrawImage(tile, op)
	}
}

func (a *App) drawTraffic(screen *ebiten.Image) {
	traffic := a.client.Traffic()

	for _, c := range traffic.Controllers {
		if c.Latitude == 0 && c.Longitude == 0 {
			continue
		}
		x, y := a.screenPos(c.Latitude, c.Longitude)
		if !a.onScreen(x, y) {
			continue
		}
		clr := color.RGBA{0, 200, 0, 200}
		if c.Callsign == a.selected {
			clr = color.RGBA{0, 200, 255, 255}
		}
		vector.StrokeCircle(screen, float32(x), float32(y), 10, 2, clr, true)
		ebitenutil.DebugPrintAt(screen, c.Callsign, int(x)+12, int(y)-8)
	}

	for _, p := range traffic.Pilots {
		x, y := a.screenPos(p.Latitude, p.Longitude)
		if !a.onScreen(x, y) {
			continue
		}
		clr := color.RGBA{255, 100, 100, 255}
		if p.Callsign == a.selected {
			clr = color.RGBA{0, 200, 255, 255}
		}
		drawAircraft(screen, float32(x), float32(y), float64(p.Heading), clr)
		if a.zoom >= 7 {
			ebitenutil.DebugPrintAt(screen, p.Callsign, int(x)+10, int(y)+4)
		}
	}
}

func (a *App) onScreen(x, y float64) bool {
	return x > -pickRadius && x < float64(a.width)+pickRadius && y > -pickRadius && y < float64(a.height)+pickRadius
}

// drawAircraft draws an aircraft outline pointing along heading
func drawAircraft(screen *ebiten.Image, sx, sy float32, heading float64, clr color.RGBA) {
	headingRad := heading * math.Pi / 180
	size := float32(10)

	// Nose (front)
	noseX := sx + size*float32(math.Sin(headingRad))
	noseY := sy - size*float32(math.Cos(headingRad))

	// Wings
	leftX := sx + size*0.7*float32(math.Sin(headingRad+2.5))
	leftY := sy - size*0.7*float32(math.Cos(headingRad+2.5))
	rightX := sx + size*0.7*float32(math.Sin(headingRad-2.5))
	rightY := sy - size*0.7*float32(math.Cos(headingRad-2.5))

	// Tail
	tailX := sx - size*0.5*float32(math.Sin(headingRad))
	tailY := sy + size*0.5*float32(math.Cos(headingRad))

	vector.StrokeLine(screen, noseX, noseY, leftX, leftY, 2, clr, true)
	vector.StrokeLine(screen, noseX, noseY, rightX, rightY, 2, clr, true)
	vector.StrokeLine(screen, leftX, leftY, tailX, tailY, 2, clr, true)
	vector.StrokeLine(screen, rightX, rightY, tailX, tailY, 2, clr, true)
}

func (a *App) drawStatusBar(screen *ebiten.Image) {
	barY := a.height - statusBarHeight
	vector.DrawFilledRect(screen, 0, float32(barY), float32(a.width), statusBarHeight, color.RGBA{0, 0, 0, 200}, false)

	connStatus := "Disconnected"
	if a.client.IsConnected() {
		connStatus = "Connected"
	}
	traffic := a.client.Traffic()

	sheetStr := "-"
	if a.sheet != nil {
		sheetStr = fmt.Sprintf("%s %.2f", a.sheet.Phase(), a.sheet.Openness())
	}

	status := fmt.Sprintf(" %s | %d pilots %d atc | Zoom: %d | %s | Sheet: %s | F1=Help",
		connStatus, len(traffic.Pilots), len(traffic.Controllers), a.zoom, a.tileManager.SourceName(), sheetStr)
	ebitenutil.DebugPrintAt(screen, status, 5, barY+5)
}

func (a *App) drawHelp(screen *ebiten.Image) {
	help := []string{
		"=== Flight Map ===",
		"",
		"+/-     Zoom in/out",
		"Scroll  Zoom",
		"Drag    Pan map",
		"Arrows  Pan map",
		"Click   Show aircraft/ATC",
		"M       Toggle map (street/sat)",
		"F11     Toggle fullscreen",
		"F1/?    Toggle this help",
		"Esc     Close sheet / quit",
		"Q       Quit",
	}

	panelW := 250
	panelH := len(help)*16 + 20
	vector.DrawFilledRect(screen, 10, 10, float32(panelW), float32(panelH), color.RGBA{0, 0, 0, 200}, false)

	y := 20
	for _, line := range help {
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 16
	}
}

func clampLat(lat float64) float64 {
	return math.Max(-85, math.Min(85, lat))
}

func wrapLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

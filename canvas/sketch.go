package canvas

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/gogpu/gg"
)

const (
	DefaultWidth      = 800
	DefaultHeight     = 600
	DefaultBackground = "#ffffff"
	DefaultColor      = "#000000"
	DefaultBrushSize  = 5

	MaxWidth  = 4096
	MaxHeight = 4096
)

// ValidateSize reports whether a width and height can be rendered.
// Zero or negative values mean "not initialized" and are accepted here.
func ValidateSize(width, height int) error {
	if width > MaxWidth || height > MaxHeight {
		return fmt.Errorf("%w: %dx%d is larger than %dx%d", ErrTooLarge, width, height, MaxWidth, MaxHeight)
	}
	return nil
}

// PresetColors is the palette offered to users.
var PresetColors = []string{
	"#000000", "#FFFFFF", "#FF0000", "#00FF00",
	"#0000FF", "#FFFF00", "#FF00FF", "#00FFFF",
	"#FFA500", "#800080", "#FFC0CB", "#A52A2A",
	"#808080", "#FFD700", "#4B0082", "#00CED1",
}

// BrushSizes are the preset brush widths, small to extra-extra-large.
var BrushSizes = []float64{2, 5, 10, 20, 40}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Stroke struct {
	Points []Point `json:"points"`
	Color  string  `json:"color,omitempty"`
	Width  float64 `json:"width"`
	Erase  bool    `json:"erase,omitempty"`
}

// Sketch is an in-memory raster Surface. The zero value has no size and
// refuses to export until Resize or Reset is called.
type Sketch struct {
	mu         sync.Mutex
	width      int
	height     int
	background string
	color      string
	brush      float64
	erase      bool
	state      State

	strokes []Stroke
	redo    []Stroke
	current *Stroke
}

func NewSketch(width, height int, background string) *Sketch {
	s := &Sketch{}
	s.Reset()
	if width > 0 && height > 0 {
		s.width, s.height = width, height
	}
	if background != "" {
		s.background = background
	}
	return s
}

func (s *Sketch) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *Sketch) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = max(width, 0), max(height, 0)
}

func (s *Sketch) SetColor(hex string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.color = hex
}

func (s *Sketch) SetBrushSize(size float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if size > 0 {
		s.brush = size
	}
}

func (s *Sketch) SetEraseMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.erase = on
}

func (s *Sketch) EraseMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.erase
}

func (s *Sketch) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// BeginStroke starts a stroke with the current color, brush and mode.
// An unfinished stroke is committed first.
func (s *Sketch) BeginStroke(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked()
	st := s.newStrokeLocked()
	st.Points = []Point{{X: x, Y: y}}
	s.current = &st
}

func (s *Sketch) ExtendStroke(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	s.current.Points = append(s.current.Points, Point{X: x, Y: y})
}

func (s *Sketch) EndStroke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked()
}

// AddStroke commits a complete stroke. Empty color and width take the
// current settings and erase mode overrides the stroke's own flag.
func (s *Sketch) AddStroke(st Stroke) {
	if len(st.Points) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked()

	base := s.newStrokeLocked()
	if st.Color != "" && !s.erase {
		base.Color = st.Color
	}
	if st.Width > 0 {
		base.Width = st.Width
		if base.Erase {
			base.Width *= 2
		}
	}
	base.Points = append([]Point(nil), st.Points...)
	s.strokes = append(s.strokes, base)
	s.redo = nil
}

func (s *Sketch) newStrokeLocked() Stroke {
	if s.erase {
		return Stroke{Erase: true, Width: s.brush * 2}
	}
	return Stroke{Color: s.color, Width: s.brush}
}

func (s *Sketch) commitLocked() {
	if s.current == nil {
		return
	}
	s.strokes = append(s.strokes, *s.current)
	s.current = nil
	s.redo = nil
}

// Strokes returns a copy of the committed strokes, oldest first.
func (s *Sketch) Strokes() []Stroke {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Stroke(nil), s.strokes...)
}

func (s *Sketch) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.strokes) > 0 || s.current != nil
}

func (s *Sketch) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

func (s *Sketch) Undo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked()
	if n := len(s.strokes); n > 0 {
		s.redo = append(s.redo, s.strokes[n-1])
		s.strokes = s.strokes[:n-1]
	}
}

func (s *Sketch) Redo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.redo); n > 0 {
		s.strokes = append(s.strokes, s.redo[n-1])
		s.redo = s.redo[:n-1]
	}
}

func (s *Sketch) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strokes, s.redo, s.current = nil, nil, nil
}

func (s *Sketch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = DefaultWidth, DefaultHeight
	s.background = DefaultBackground
	s.color = DefaultColor
	s.brush = DefaultBrushSize
	s.erase = false
	s.strokes, s.redo, s.current = nil, nil, nil
}

func (s *Sketch) Export() (string, error) {
	s.mu.Lock()
	if s.width <= 0 || s.height <= 0 {
		s.mu.Unlock()
		return "", ErrNotInitialized
	}
	if err := ValidateSize(s.width, s.height); err != nil {
		s.mu.Unlock()
		return "", err
	}
	if s.state == StateExporting {
		s.mu.Unlock()
		return "", ErrExportInProgress
	}
	s.state = StateExporting
	width, height, bg := s.width, s.height, s.background
	strokes := append([]Stroke(nil), s.strokes...)
	if s.current != nil {
		strokes = append(strokes, *s.current)
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.state = StateReady
		s.mu.Unlock()
	}()

	data, err := render(width, height, bg, strokes)
	if err != nil {
		return "", err
	}
	return EncodeDataURL("image/png", data), nil
}

func render(width, height int, background string, strokes []Stroke) ([]byte, error) {
	dc := gg.NewContext(width, height)
	defer dc.Close()

	dc.ClearWithColor(gg.Hex(background))
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)

	for _, st := range strokes {
		color := st.Color
		switch {
		case st.Erase:
			color = background
		case color == "":
			color = DefaultColor
		}
		dc.SetHexColor(color)

		if len(st.Points) == 1 {
			p := st.Points[0]
			dc.DrawCircle(p.X, p.Y, st.Width/2)
			if err := dc.Fill(); err != nil {
				return nil, fmt.Errorf("fill dot: %w", err)
			}
			continue
		}

		dc.SetLineWidth(st.Width)
		dc.MoveTo(st.Points[0].X, st.Points[0].Y)
		for _, p := range st.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		if err := dc.Stroke(); err != nil {
			return nil, fmt.Errorf("stroke path: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

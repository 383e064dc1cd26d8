package canvas

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"
)

func decodeExport(t *testing.T, s *Sketch) image.Image {
	t.Helper()
	url, err := s.Export()
	if err != nil {
		t.Fatalf("Export() failed: %v", err)
	}
	mime, data, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("DecodeDataURL() failed: %v", err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png", mime)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() failed: %v", err)
	}
	return img
}

func luminance(img image.Image, x, y int) uint32 {
	r, g, b, _ := img.At(x, y).RGBA()
	return (r + g + b) / 3 >> 8
}

func horizontal(y float64) Stroke {
	return Stroke{Points: []Point{{X: 0, Y: y}, {X: 60, Y: y}}}
}

func TestSketch_ZeroValueNotInitialized(t *testing.T) {
	var s Sketch

	if _, err := s.Export(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Export() error = %v, want ErrNotInitialized", err)
	}
}

func TestSketch_ExportBlank(t *testing.T) {
	s := NewSketch(60, 40, "#ffffff")
	img := decodeExport(t, s)

	if b := img.Bounds(); b.Dx() != 60 || b.Dy() != 40 {
		t.Errorf("image size = %dx%d, want 60x40", b.Dx(), b.Dy())
	}
	if l := luminance(img, 30, 20); l < 250 {
		t.Errorf("blank pixel luminance = %d, want white", l)
	}
	if s.State() != StateReady {
		t.Errorf("State() after export = %v, want ready", s.State())
	}
}

func TestSketch_StrokeIsRendered(t *testing.T) {
	s := NewSketch(60, 40, "")
	s.SetBrushSize(10)
	s.AddStroke(horizontal(20))
	img := decodeExport(t, s)

	if l := luminance(img, 30, 20); l > 40 {
		t.Errorf("stroke pixel luminance = %d, want dark", l)
	}
	if l := luminance(img, 30, 2); l < 250 {
		t.Errorf("background pixel luminance = %d, want white", l)
	}
}

func TestSketch_EraseStrokePaintsBackground(t *testing.T) {
	s := NewSketch(60, 40, "")
	s.SetBrushSize(6)
	s.AddStroke(horizontal(20))
	s.SetEraseMode(true)
	s.AddStroke(Stroke{Points: []Point{{X: 0, Y: 20}, {X: 60, Y: 20}}, Color: "#ff0000"})

	strokes := s.Strokes()
	if !strokes[1].Erase || strokes[1].Width != 12 {
		t.Errorf("erase stroke = %+v, want erase with width 12", strokes[1])
	}

	img := decodeExport(t, s)
	if l := luminance(img, 30, 20); l < 250 {
		t.Errorf("erased pixel luminance = %d, want white", l)
	}
}

func TestSketch_EraseModeAffectsLaterStrokesOnly(t *testing.T) {
	s := NewSketch(60, 40, "")
	s.BeginStroke(0, 20)
	s.SetEraseMode(true)
	s.ExtendStroke(60, 20)
	s.EndStroke()
	s.BeginStroke(0, 10)
	s.EndStroke()

	strokes := s.Strokes()
	if len(strokes) != 2 {
		t.Fatalf("got %d strokes, want 2", len(strokes))
	}
	if strokes[0].Erase {
		t.Error("stroke started before SetEraseMode(true) became an erase stroke")
	}
	if !strokes[1].Erase {
		t.Error("stroke started after SetEraseMode(true) is not an erase stroke")
	}
}

func TestSketch_UndoRedo(t *testing.T) {
	s := NewSketch(60, 40, "")
	s.AddStroke(horizontal(10))
	s.AddStroke(horizontal(20))

	s.Undo()
	if n := len(s.Strokes()); n != 1 {
		t.Fatalf("strokes after undo = %d, want 1", n)
	}
	if !s.CanRedo() {
		t.Error("CanRedo() = false after undo")
	}

	s.Redo()
	if n := len(s.Strokes()); n != 2 {
		t.Fatalf("strokes after redo = %d, want 2", n)
	}
}

func TestSketch_UndoRedoBoundaries(t *testing.T) {
	s := NewSketch(60, 40, "")

	s.Undo()
	s.Redo()
	if len(s.Strokes()) != 0 || s.CanUndo() || s.CanRedo() {
		t.Error("undo/redo on an empty sketch changed state")
	}

	s.AddStroke(horizontal(10))
	s.Redo()
	if n := len(s.Strokes()); n != 1 {
		t.Errorf("redo with empty history changed strokes to %d", n)
	}
	s.Undo()
	s.Undo()
	if n := len(s.Strokes()); n != 0 {
		t.Errorf("extra undo left %d strokes", n)
	}
}

func TestSketch_NewStrokeClearsRedo(t *testing.T) {
	s := NewSketch(60, 40, "")
	s.AddStroke(horizontal(10))
	s.Undo()
	s.AddStroke(horizontal(20))

	if s.CanRedo() {
		t.Error("CanRedo() = true after a new stroke")
	}
}

func TestSketch_ClearIsNotUndoable(t *testing.T) {
	s := NewSketch(60, 40, "")
	s.AddStroke(horizontal(10))
	s.AddStroke(horizontal(20))
	s.Undo()

	s.Clear()
	s.Undo()
	s.Redo()

	if n := len(s.Strokes()); n != 0 {
		t.Errorf("strokes after clear+undo+redo = %d, want 0", n)
	}
	if w, h := s.Size(); w != 60 || h != 40 {
		t.Errorf("Clear() changed size to %dx%d", w, h)
	}
}

func TestSketch_ResetRestoresDefaults(t *testing.T) {
	s := NewSketch(100, 50, "#000000")
	s.SetColor("#ff0000")
	s.SetBrushSize(20)
	s.SetEraseMode(true)
	s.AddStroke(horizontal(10))

	s.Reset()

	if w, h := s.Size(); w != DefaultWidth || h != DefaultHeight {
		t.Errorf("size after Reset() = %dx%d, want %dx%d", w, h, DefaultWidth, DefaultHeight)
	}
	if s.EraseMode() {
		t.Error("erase mode survived Reset()")
	}
	if s.CanUndo() || s.CanRedo() {
		t.Error("history survived Reset()")
	}

	s.AddStroke(horizontal(10))
	st := s.Strokes()[0]
	if st.Color != DefaultColor || st.Width != DefaultBrushSize {
		t.Errorf("stroke after Reset() = %+v, want default color and width", st)
	}
}

func TestSketch_ResizeToZero(t *testing.T) {
	s := NewSketch(60, 40, "")
	s.Resize(0, 0)

	if _, err := s.Export(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Export() error = %v, want ErrNotInitialized", err)
	}
}

func TestSketch_DotStroke(t *testing.T) {
	s := NewSketch(40, 40, "")
	s.SetBrushSize(16)
	s.BeginStroke(20, 20)
	s.EndStroke()

	img := decodeExport(t, s)
	if l := luminance(img, 20, 20); l > 40 {
		t.Errorf("dot centre luminance = %d, want dark", l)
	}
}

func TestExportAsync(t *testing.T) {
	s := NewSketch(20, 20, "")

	res := <-ExportAsync(s)
	if res.Err != nil {
		t.Fatalf("ExportAsync() failed: %v", res.Err)
	}
	if !IsValidImageDataURL(res.ImageURL) {
		t.Error("ExportAsync() did not return a data URL")
	}

	var empty Sketch
	if res := <-ExportAsync(&empty); !errors.Is(res.Err, ErrNotInitialized) {
		t.Errorf("ExportAsync() on zero sketch error = %v", res.Err)
	}
}

func TestSketch_ConcurrentExports(t *testing.T) {
	s := NewSketch(200, 200, "")
	s.AddStroke(horizontal(50))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Export(); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if !errors.Is(err, ErrExportInProgress) {
			t.Errorf("unexpected export error: %v", err)
		}
	}
	if s.State() != StateReady {
		t.Errorf("State() = %v after exports finished", s.State())
	}
}

func TestValidateSize(t *testing.T) {
	if err := ValidateSize(MaxWidth, MaxHeight); err != nil {
		t.Errorf("ValidateSize(max) = %v, want nil", err)
	}
	if err := ValidateSize(MaxWidth+1, 10); !errors.Is(err, ErrTooLarge) {
		t.Errorf("ValidateSize(wide) = %v, want ErrTooLarge", err)
	}
	if err := ValidateSize(10, MaxHeight+1); !errors.Is(err, ErrTooLarge) {
		t.Errorf("ValidateSize(tall) = %v, want ErrTooLarge", err)
	}
}

func TestSketch_ExportTooLarge(t *testing.T) {
	s := NewSketch(1<<24, 1<<24, "")

	url, err := s.Export()
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("Export() error = %v, want ErrTooLarge", err)
	}
	if url != "" {
		t.Error("Export() returned an image for an oversized canvas")
	}
	if s.State() != StateReady {
		t.Errorf("State() = %v, want ready", s.State())
	}

	s.Resize(32, 32)
	if _, err := s.Export(); err != nil {
		t.Errorf("Export() after resize failed: %v", err)
	}
}

type panickingSurface struct{ Sketch }

func (p *panickingSurface) Export() (string, error) { panic("renderer exploded") }

func TestExportAsync_RecoversPanic(t *testing.T) {
	res := <-ExportAsync(&panickingSurface{})

	if res.Err == nil {
		t.Fatal("ExportAsync() returned no error for a panicking export")
	}
	if res.ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty", res.ImageURL)
	}
}

package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestNewCameraStartsClosed(t *testing.T) {
	cam := NewCamera(0, Options{})
	if cam.IsOpen() {
		t.Fatalf("expected camera closed before Open")
	}
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Fatalf("expected ErrCameraNotOpen, got %v", err)
	}
	if err := cam.Close(); err != nil {
		t.Fatalf("expected Close on closed camera to succeed, got %v", err)
	}
	dc := cam.(*deviceCamera)
	if dc.opts.Width != DefaultWidth || dc.opts.Height != DefaultHeight || dc.opts.FPS != DefaultFPS {
		t.Fatalf("expected defaults filled in, got %+v", dc.opts)
	}
}

func TestMirrorFlipsHorizontally(t *testing.T) {
	src := gocv.NewMatWithSize(1, 2, gocv.MatTypeCV8U)
	src.SetUCharAt(0, 0, 10)
	src.SetUCharAt(0, 1, 200)
	out := Mirror(&src)
	defer out.Close()
	if out.GetUCharAt(0, 0) != 200 || out.GetUCharAt(0, 1) != 10 {
		t.Fatalf("expected pixels swapped, got %d %d", out.GetUCharAt(0, 0), out.GetUCharAt(0, 1))
	}
}

func TestMockCameraPlayback(t *testing.T) {
	frames := []gocv.Mat{
		gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC3),
		gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3),
	}
	defer func() {
		for i := range frames {
			frames[i].Close()
		}
	}()

	cam := NewMockCamera(frames, false)
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Fatalf("expected ErrCameraNotOpen, got %v", err)
	}
	if err := cam.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, wantRows := range []int{2, 4} {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame: %v", err)
		}
		if f.Rows() != wantRows {
			t.Fatalf("expected %d rows, got %d", wantRows, f.Rows())
		}
		f.Close()
	}
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrNoFrames) {
		t.Fatalf("expected ErrNoFrames, got %v", err)
	}
	if cam.Reads() != 2 {
		t.Fatalf("expected 2 reads, got %d", cam.Reads())
	}
}

func TestMockCameraLoop(t *testing.T) {
	frames := []gocv.Mat{gocv.NewMatWithSize(1, 1, gocv.MatTypeCV8UC3)}
	defer frames[0].Close()
	cam := NewMockCamera(frames, true)
	if err := cam.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := 0; i < 3; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame %d: %v", i, err)
		}
		f.Close()
	}
	if err := cam.Close(); err != nil || cam.IsOpen() {
		t.Fatalf("expected camera closed")
	}
}

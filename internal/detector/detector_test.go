package detector

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

const epsilon = 1e-9

func TestNormalizePlacesWristAtOrigin(t *testing.T) {
	hand := FlatHandLandmarks()
	n := hand.Normalize()
	if n.Points[Wrist].Norm() > epsilon {
		t.Fatalf("expected wrist at origin, got %+v", n.Points[Wrist])
	}
	if d := n.Points[MiddleMCP].Norm(); math.Abs(d-1) > epsilon {
		t.Fatalf("expected unit wrist to middle MCP, got %f", d)
	}
	if n.Handedness != hand.Handedness || n.Score != hand.Score {
		t.Fatalf("expected metadata preserved, got %+v", n)
	}
}

func TestNormalizeIsScaleAndTranslationInvariant(t *testing.T) {
	hand := FistLandmarks()
	moved := hand
	for i := range moved.Points {
		moved.Points[i] = Point3D{
			X: moved.Points[i].X*3 + 10,
			Y: moved.Points[i].Y*3 - 4,
			Z: moved.Points[i].Z * 3,
		}
	}
	if d := Distance(hand.Normalize(), moved.Normalize()); d > 1e-6 {
		t.Fatalf("expected normalized hands to match, distance %f", d)
	}
}

func TestNormalizeDegenerateHand(t *testing.T) {
	var hand HandLandmarks
	hand.Points[Wrist] = Point3D{X: 1, Y: 1}
	hand.Points[MiddleMCP] = Point3D{X: 1, Y: 1}
	n := hand.Normalize()
	if n.Points[MiddleMCP].Norm() != 0 {
		t.Fatalf("expected degenerate hand to be translated only")
	}
	var nilHand *HandLandmarks
	if nilHand.Normalize() != nil {
		t.Fatalf("expected nil for nil hand")
	}
}

func TestFlatten(t *testing.T) {
	hand := FistLandmarks()
	v := hand.Flatten()
	if len(v) != FeatureLen {
		t.Fatalf("expected %d values, got %d", FeatureLen, len(v))
	}
	if v[3*ThumbTip] != hand.Points[ThumbTip].X || v[3*ThumbTip+2] != hand.Points[ThumbTip].Z {
		t.Fatalf("unexpected layout")
	}
}

func jsonPoints(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"x":%d,"y":0.5,"z":0}`, i)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestDecodeResponse(t *testing.T) {
	line := fmt.Sprintf(`{"hands":[{"points":%s,"handedness":"Left","score":0.9},{"points":%s,"handedness":"Right","score":0.8}]}`,
		jsonPoints(NumLandmarks), jsonPoints(NumLandmarks))
	hands, err := decodeResponse([]byte(line), 1)
	if err != nil {
		t.Fatalf("decodeResponse: %v", err)
	}
	if len(hands) != 1 {
		t.Fatalf("expected max one hand, got %d", len(hands))
	}
	if hands[0].Handedness != "Left" || hands[0].Points[PinkyTip].X != 20 {
		t.Fatalf("unexpected hand %+v", hands[0])
	}
}

func TestDecodeResponseSkipsIncompleteHands(t *testing.T) {
	line := fmt.Sprintf(`{"hands":[{"points":%s,"score":0.9}]}`, jsonPoints(5))
	hands, err := decodeResponse([]byte(line), 0)
	if err != nil {
		t.Fatalf("decodeResponse: %v", err)
	}
	if len(hands) != 0 {
		t.Fatalf("expected incomplete hand to be dropped, got %d", len(hands))
	}
}

func TestDecodeResponseErrors(t *testing.T) {
	if _, err := decodeResponse([]byte("not json"), 1); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := decodeResponse([]byte(`{"hands":[],"error":"bad frame"}`), 1); err == nil || !strings.Contains(err.Error(), "bad frame") {
		t.Fatalf("expected service error, got %v", err)
	}
}

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := writeFrame(&buf, []byte("jpeg")); err != nil {
		t.Fatalf("writeFrame: %v", err)
	}
	data := buf.Bytes()
	if binary.BigEndian.Uint32(data[:4]) != 4 || string(data[4:]) != "jpeg" {
		t.Fatalf("unexpected frame bytes %v", data)
	}
}

func TestNewMediaPipeDetectorMissingScript(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScriptPath = t.TempDir() + "/missing.py"
	if _, err := NewMediaPipeDetector(cfg, nil); err == nil {
		t.Fatalf("expected error for missing script")
	}
}

func TestMockDetector(t *testing.T) {
	m := NewMockDetector()
	m.Enqueue(FistLandmarks())
	m.SetHands(nil)

	hands, err := m.Detect(nil)
	if err != nil || len(hands) != 1 {
		t.Fatalf("expected queued hand, got %v %v", hands, err)
	}
	hands, err = m.Detect(nil)
	if err != nil || len(hands) != 0 {
		t.Fatalf("expected no hands once queue drained, got %v %v", hands, err)
	}
	boom := errors.New("boom")
	m.SetError(boom)
	if _, err := m.Detect(nil); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if m.Calls() != 3 {
		t.Fatalf("expected 3 calls, got %d", m.Calls())
	}
	if err := m.Close(); err != nil || !m.Closed() {
		t.Fatalf("expected closed")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxHands != 1 || cfg.MinConfidence != 0.8 || cfg.MinTrackingConf != 0.8 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

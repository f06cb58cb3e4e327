// Package detector finds hand landmarks in camera frames.
package detector

import "math"

// Landmark indices in MediaPipe order.
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// FeatureLen is the length of a flattened landmark vector.
const FeatureLen = NumLandmarks * 3

// Point3D is a landmark position. X and Y are normalized to the frame, Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Sub returns p - q.
func (p Point3D) Sub(q Point3D) Point3D {
	return Point3D{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Norm returns the Euclidean length of p.
func (p Point3D) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// HandLandmarks is one detected hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"`
	Score      float64               `json:"score"`
}

// Normalize returns a copy with the wrist at the origin and the
// wrist-to-middle-MCP distance scaled to 1. Degenerate hands are only translated.
func (h *HandLandmarks) Normalize() *HandLandmarks {
	if h == nil {
		return nil
	}
	out := &HandLandmarks{Handedness: h.Handedness, Score: h.Score}
	wrist := h.Points[Wrist]
	for i := range h.Points {
		out.Points[i] = h.Points[i].Sub(wrist)
	}
	scale := out.Points[MiddleMCP].Norm()
	if scale < 1e-10 {
		return out
	}
	for i := range out.Points {
		out.Points[i].X /= scale
		out.Points[i].Y /= scale
		out.Points[i].Z /= scale
	}
	return out
}

// Flatten returns x, y, z for each landmark in order.
func (h *HandLandmarks) Flatten() []float64 {
	out := make([]float64, 0, FeatureLen)
	for _, p := range h.Points {
		out = append(out, p.X, p.Y, p.Z)
	}
	return out
}

// Distance sums the per-landmark Euclidean distances between two hands.
func Distance(a, b *HandLandmarks) float64 {
	total := 0.0
	for i := range a.Points {
		total += a.Points[i].Sub(b.Points[i]).Norm()
	}
	return total
}

package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector returns scripted results. Queued results are consumed first,
// then the fixed hands are returned on every call.
type MockDetector struct {
	mu     sync.Mutex
	queue  [][]HandLandmarks
	hands  []HandLandmarks
	err    error
	calls  int
	closed bool
}

// NewMockDetector returns a detector that reports no hands.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands returned once the queue is empty.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// Enqueue appends one call's worth of hands.
func (m *MockDetector) Enqueue(hands ...HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, hands)
}

// SetError makes every Detect call fail with err.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the next scripted result.
func (m *MockDetector) Detect(_ *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.hands, nil
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// FistLandmarks approximates the letter A: fingers curled, thumb along the side.
func FistLandmarks() HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}
	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}
	h.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.76}
	h.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.70}
	h.Points[ThumbIP] = Point3D{X: 0.61, Y: 0.64}
	h.Points[ThumbTip] = Point3D{X: 0.61, Y: 0.59}
	h.Points[IndexMCP] = Point3D{X: 0.56, Y: 0.64, Z: -0.02}
	h.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.58, Z: -0.05}
	h.Points[IndexDIP] = Point3D{X: 0.56, Y: 0.62, Z: -0.06}
	h.Points[IndexTip] = Point3D{X: 0.55, Y: 0.66, Z: -0.05}
	h.Points[MiddleMCP] = Point3D{X: 0.51, Y: 0.63, Z: -0.02}
	h.Points[MiddlePIP] = Point3D{X: 0.51, Y: 0.57, Z: -0.05}
	h.Points[MiddleDIP] = Point3D{X: 0.51, Y: 0.61, Z: -0.06}
	h.Points[MiddleTip] = Point3D{X: 0.51, Y: 0.65, Z: -0.05}
	h.Points[RingMCP] = Point3D{X: 0.47, Y: 0.64, Z: -0.02}
	h.Points[RingPIP] = Point3D{X: 0.47, Y: 0.58, Z: -0.05}
	h.Points[RingDIP] = Point3D{X: 0.47, Y: 0.62, Z: -0.06}
	h.Points[RingTip] = Point3D{X: 0.47, Y: 0.66, Z: -0.05}
	h.Points[PinkyMCP] = Point3D{X: 0.43, Y: 0.66, Z: -0.02}
	h.Points[PinkyPIP] = Point3D{X: 0.43, Y: 0.61, Z: -0.04}
	h.Points[PinkyDIP] = Point3D{X: 0.43, Y: 0.64, Z: -0.05}
	h.Points[PinkyTip] = Point3D{X: 0.43, Y: 0.67, Z: -0.04}
	return h
}

// FlatHandLandmarks approximates the letter B: fingers straight up, thumb across the palm.
func FlatHandLandmarks() HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}
	h.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}
	h.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76}
	h.Points[ThumbMCP] = Point3D{X: 0.57, Y: 0.71}
	h.Points[ThumbIP] = Point3D{X: 0.53, Y: 0.68, Z: -0.03}
	h.Points[ThumbTip] = Point3D{X: 0.49, Y: 0.67, Z: -0.04}
	h.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.64}
	h.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.52}
	h.Points[IndexDIP] = Point3D{X: 0.55, Y: 0.44}
	h.Points[IndexTip] = Point3D{X: 0.55, Y: 0.37}
	h.Points[MiddleMCP] = Point3D{X: 0.51, Y: 0.63}
	h.Points[MiddlePIP] = Point3D{X: 0.51, Y: 0.50}
	h.Points[MiddleDIP] = Point3D{X: 0.51, Y: 0.41}
	h.Points[MiddleTip] = Point3D{X: 0.51, Y: 0.33}
	h.Points[RingMCP] = Point3D{X: 0.47, Y: 0.64}
	h.Points[RingPIP] = Point3D{X: 0.47, Y: 0.52}
	h.Points[RingDIP] = Point3D{X: 0.47, Y: 0.44}
	h.Points[RingTip] = Point3D{X: 0.47, Y: 0.37}
	h.Points[PinkyMCP] = Point3D{X: 0.43, Y: 0.66}
	h.Points[PinkyPIP] = Point3D{X: 0.43, Y: 0.57}
	h.Points[PinkyDIP] = Point3D{X: 0.43, Y: 0.51}
	h.Points[PinkyTip] = Point3D{X: 0.43, Y: 0.45}
	return h
}

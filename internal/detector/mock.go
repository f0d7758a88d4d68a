package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	hook  func()
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetDetectHook sets a function invoked at the start of every Detect call,
// letting tests stall or count detections.
func (m *MockDetector) SetDetectHook(hook func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = hook
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	hands, err, hook := m.hands, m.err, m.hook
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// FistLandmarks returns a preset HandLandmarks for a closed fist with the
// thumb resting against the side, the handshape used for the letter "A".
func FistLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.93,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.82, Z: 0.0}

	// Thumb alongside the curled fingers
	landmarks.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.77, Z: 0.01}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.71, Z: 0.01}
	landmarks.Points[ThumbIP] = Point3D{X: 0.61, Y: 0.65, Z: 0.0}
	landmarks.Points[ThumbTip] = Point3D{X: 0.61, Y: 0.60, Z: 0.0}

	// Index curled into the palm
	landmarks.Points[IndexMCP] = Point3D{X: 0.56, Y: 0.66, Z: -0.01}
	landmarks.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.60, Z: -0.04}
	landmarks.Points[IndexDIP] = Point3D{X: 0.55, Y: 0.64, Z: -0.06}
	landmarks.Points[IndexTip] = Point3D{X: 0.55, Y: 0.69, Z: -0.05}

	// Middle curled
	landmarks.Points[MiddleMCP] = Point3D{X: 0.52, Y: 0.65, Z: -0.01}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.52, Y: 0.58, Z: -0.05}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.51, Y: 0.63, Z: -0.07}
	landmarks.Points[MiddleTip] = Point3D{X: 0.51, Y: 0.69, Z: -0.05}

	// Ring curled
	landmarks.Points[RingMCP] = Point3D{X: 0.48, Y: 0.66, Z: -0.01}
	landmarks.Points[RingPIP] = Point3D{X: 0.48, Y: 0.59, Z: -0.05}
	landmarks.Points[RingDIP] = Point3D{X: 0.47, Y: 0.64, Z: -0.07}
	landmarks.Points[RingTip] = Point3D{X: 0.47, Y: 0.69, Z: -0.05}

	// Pinky curled
	landmarks.Points[PinkyMCP] = Point3D{X: 0.44, Y: 0.68, Z: -0.01}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.44, Y: 0.62, Z: -0.04}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.43, Y: 0.66, Z: -0.06}
	landmarks.Points[PinkyTip] = Point3D{X: 0.43, Y: 0.71, Z: -0.05}

	return landmarks
}

// OpenPalmLandmarks returns a preset HandLandmarks with all fingers extended
// and together, the flat handshape used for the letter "B".
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.50, Y: 0.82, Z: 0.0}

	// Thumb folded across the palm
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76, Z: 0.01}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.57, Y: 0.70, Z: -0.01}
	landmarks.Points[ThumbIP] = Point3D{X: 0.54, Y: 0.66, Z: -0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.50, Y: 0.64, Z: -0.04}

	// Index extended upward
	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.64, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.54, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.56, Y: 0.46, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.56, Y: 0.39, Z: 0.0}

	// Middle extended upward
	landmarks.Points[MiddleMCP] = Point3D{X: 0.51, Y: 0.63, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.51, Y: 0.51, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.51, Y: 0.42, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.51, Y: 0.34, Z: 0.0}

	// Ring extended upward
	landmarks.Points[RingMCP] = Point3D{X: 0.47, Y: 0.64, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.46, Y: 0.53, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.46, Y: 0.44, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.46, Y: 0.37, Z: 0.0}

	// Pinky extended upward
	landmarks.Points[PinkyMCP] = Point3D{X: 0.43, Y: 0.66, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.42, Y: 0.57, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.41, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.41, Y: 0.44, Z: 0.0}

	return landmarks
}

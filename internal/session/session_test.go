package session

import (
	"errors"
	"testing"
	"time"

	"github.com/carmina/signado/internal/capture"
	"github.com/carmina/signado/internal/classify"
	"github.com/carmina/signado/internal/detector"
	"gocv.io/x/gocv"
)

func newTestSession(interval time.Duration, camera capture.Camera, det detector.Detector) *Session {
	classifier := classify.NewClassifier(classify.NewFileSource("testdata"))
	return New(Config{Interval: interval}, camera, det, classifier)
}

func TestStartProcessing_NoDetector(t *testing.T) {
	camera := capture.NewMockCamera(nil, false)
	s := newTestSession(0, camera, nil)

	err := s.StartProcessing()
	if !errors.Is(err, ErrDetectorUnavailable) {
		t.Errorf("expected ErrDetectorUnavailable, got %v", err)
	}
	if camera.IsOpen() {
		t.Error("camera must not be opened when the detector is missing")
	}
}

func TestStartProcessing_RequiresOpenCamera(t *testing.T) {
	camera := capture.NewMockCamera(nil, false)
	s := newTestSession(0, camera, detector.NewMockDetector())

	err := s.StartProcessing()
	if !errors.Is(err, capture.ErrCameraNotOpen) {
		t.Errorf("expected ErrCameraNotOpen, got %v", err)
	}
	if s.IsProcessing() {
		t.Error("loop must not be running after a failed start")
	}
	if camera.IsOpen() {
		t.Error("StartProcessing must not open the camera itself")
	}
}

func TestStartCamera_Failure(t *testing.T) {
	camera := capture.NewMockCamera(nil, false)
	camera.SetOpenError(capture.ErrCameraUnavailable)
	s := newTestSession(0, camera, detector.NewMockDetector())

	if err := s.StartCamera(); !errors.Is(err, capture.ErrCameraUnavailable) {
		t.Errorf("expected ErrCameraUnavailable, got %v", err)
	}
}

func TestLifecycle_Idempotent(t *testing.T) {
	camera := capture.NewMockCamera(nil, false)
	s := newTestSession(time.Hour, camera, detector.NewMockDetector())

	// Stopping before any start is a no-op
	s.StopProcessing()
	if err := s.StopCamera(); err != nil {
		t.Fatalf("StopCamera on fresh session: %v", err)
	}

	if err := s.StartCamera(); err != nil {
		t.Fatalf("StartCamera failed: %v", err)
	}
	if err := s.StartProcessing(); err != nil {
		t.Fatalf("StartProcessing failed: %v", err)
	}
	if err := s.StartProcessing(); err != nil {
		t.Fatalf("second StartProcessing failed: %v", err)
	}
	if !s.IsProcessing() {
		t.Error("loop should be running")
	}
	if !camera.IsOpen() {
		t.Error("camera should be open")
	}

	// Stopping the loop leaves the camera open for preview
	s.StopProcessing()
	s.StopProcessing()
	if s.IsProcessing() {
		t.Error("loop should be stopped")
	}
	if !camera.IsOpen() {
		t.Error("camera must stay open after StopProcessing")
	}

	if err := s.StopCamera(); err != nil {
		t.Fatalf("StopCamera failed: %v", err)
	}
	if camera.IsOpen() {
		t.Error("camera should be closed")
	}
}

func TestStopCamera_HaltsProcessing(t *testing.T) {
	camera := capture.NewMockCamera(nil, false)
	s := newTestSession(time.Hour, camera, detector.NewMockDetector())

	if err := s.StartCamera(); err != nil {
		t.Fatalf("StartCamera failed: %v", err)
	}
	if err := s.StartProcessing(); err != nil {
		t.Fatalf("StartProcessing failed: %v", err)
	}
	if err := s.StopCamera(); err != nil {
		t.Fatalf("StopCamera failed: %v", err)
	}
	if s.IsProcessing() {
		t.Error("StopCamera must stop the recognition loop")
	}
}

func TestOnPrediction_FanOut(t *testing.T) {
	camera := capture.NewMockCamera(nil, false)
	s := newTestSession(time.Hour, camera, detector.NewMockDetector())

	var first, second []string
	s.OnPrediction(func(p classify.Prediction) { first = append(first, p.Label) })
	s.OnPrediction(func(p classify.Prediction) { second = append(second, p.Label) })

	if err := s.StartCamera(); err != nil {
		t.Fatalf("StartCamera failed: %v", err)
	}
	if err := s.StartProcessing(); err != nil {
		t.Fatalf("StartProcessing failed: %v", err)
	}
	defer s.StopCamera()

	s.deliver(1, classify.Prediction{Label: "A", Confidence: 0.5})

	if len(first) != 1 || first[0] != "A" {
		t.Errorf("first listener saw %v, want [A]", first)
	}
	if len(second) != 1 || second[0] != "A" {
		t.Errorf("second listener saw %v, want [A]", second)
	}
}

func TestRun_DeliversPredictions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()
	camera := capture.NewMockCamera([]*gocv.Mat{&frame}, true)

	det := detector.NewMockDetector()
	det.SetHands(nil) // no hands in frame

	s := newTestSession(10*time.Millisecond, camera, det)

	predictions := make(chan classify.Prediction, 16)
	s.OnPrediction(func(p classify.Prediction) {
		select {
		case predictions <- p:
		default:
		}
	})

	if err := s.StartCamera(); err != nil {
		t.Fatalf("StartCamera failed: %v", err)
	}
	if err := s.StartProcessing(); err != nil {
		t.Fatalf("StartProcessing failed: %v", err)
	}
	defer s.StopCamera()

	select {
	case p := <-predictions:
		if p.Label != classify.NoGestureLabel {
			t.Errorf("label = %q, want %q for a frame without hands", p.Label, classify.NoGestureLabel)
		}
		if p.Confidence != 0 {
			t.Errorf("confidence = %f, want 0", p.Confidence)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no prediction delivered")
	}
}

func TestRun_NoDeliveryAfterStop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()
	camera := capture.NewMockCamera([]*gocv.Mat{&frame}, true)

	// The detector blocks until released, so a detect call started before
	// StopProcessing finishes after it.
	release := make(chan struct{})
	det := detector.NewMockDetector()
	det.SetDetectHook(func() { <-release })

	s := newTestSession(10*time.Millisecond, camera, det)

	delivered := make(chan struct{}, 1)
	s.OnPrediction(func(classify.Prediction) {
		select {
		case delivered <- struct{}{}:
		default:
		}
	})

	if err := s.StartCamera(); err != nil {
		t.Fatalf("StartCamera failed: %v", err)
	}
	if err := s.StartProcessing(); err != nil {
		t.Fatalf("StartProcessing failed: %v", err)
	}

	// Let a detect call get in flight, then stop and release it.
	time.Sleep(50 * time.Millisecond)
	s.StopProcessing()
	close(release)

	select {
	case <-delivered:
		t.Error("prediction from a stopped loop must not be delivered")
	case <-time.After(200 * time.Millisecond):
	}

	if err := s.StopCamera(); err != nil {
		t.Fatalf("StopCamera failed: %v", err)
	}
}

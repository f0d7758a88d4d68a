// Package session runs the recognition loop that samples camera frames,
// detects hand landmarks, and publishes classifier predictions.
package session

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/carmina/signado/internal/capture"
	"github.com/carmina/signado/internal/classify"
	"github.com/carmina/signado/internal/detector"
)

// ErrDetectorUnavailable is returned when processing is started without a
// working hand detector.
var ErrDetectorUnavailable = errors.New("hand detector unavailable")

// DefaultInterval is the frame sampling interval of the recognition loop.
const DefaultInterval = 300 * time.Millisecond

// Config holds the session's sampling parameters.
type Config struct {
	// Interval between frame samples. Zero means DefaultInterval.
	Interval time.Duration
}

// PredictionFunc receives each prediction the loop produces.
type PredictionFunc func(classify.Prediction)

// Session owns the camera and processing lifecycles independently: the
// camera can be open without the recognition loop running, and stopping
// the loop leaves the camera open for preview streaming.
type Session struct {
	config     Config
	camera     capture.Camera
	detector   detector.Detector
	classifier *classify.Classifier

	mu         sync.Mutex
	stopCh     chan struct{}
	generation uint64
	listeners  []PredictionFunc
}

// New creates a Session over the given camera, detector, and classifier.
// The detector may be nil; StartProcessing then fails with
// ErrDetectorUnavailable.
func New(config Config, camera capture.Camera, det detector.Detector, classifier *classify.Classifier) *Session {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	return &Session{
		config:     config,
		camera:     camera,
		detector:   det,
		classifier: classifier,
	}
}

// OnPrediction registers a callback invoked with each prediction. Multiple
// callbacks may be registered; each receives every prediction. Predictions
// from a stopped loop are never delivered.
func (s *Session) OnPrediction(fn PredictionFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// StartCamera opens the camera device. Opening an already-open camera is a
// no-op. Failure is reported as capture.ErrCameraUnavailable.
func (s *Session) StartCamera() error {
	if s.camera.IsOpen() {
		return nil
	}
	return s.camera.Open()
}

// StopCamera stops the recognition loop if running, then releases the
// camera. Stopping a camera that was never started is a no-op.
func (s *Session) StopCamera() error {
	s.StopProcessing()
	return s.camera.Close()
}

// StartProcessing begins the recognition loop. It requires a working
// detector and an already-open camera; callers open the camera via
// StartCamera first. Starting an already-running loop is a no-op.
func (s *Session) StartProcessing() error {
	if s.detector == nil {
		return ErrDetectorUnavailable
	}
	if !s.camera.IsOpen() {
		return fmt.Errorf("cannot start processing: %w", capture.ErrCameraNotOpen)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopCh != nil {
		return nil
	}

	s.generation++
	s.stopCh = make(chan struct{})
	go s.run(s.stopCh, s.generation)

	log.Println("Recognition loop started")
	return nil
}

// StopProcessing halts the recognition loop. The camera stays open.
// Stopping a loop that is not running is a no-op.
func (s *Session) StopProcessing() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopCh == nil {
		return
	}
	close(s.stopCh)
	s.stopCh = nil

	log.Println("Recognition loop stopped")
}

// IsProcessing reports whether the recognition loop is running.
func (s *Session) IsProcessing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopCh != nil
}

// run is the recognition loop. Each tick it samples one frame and runs
// detection plus classification. Detection work happens off the tick
// goroutine so a slow detector makes the loop skip ticks rather than
// queue them.
func (s *Session) run(stopCh chan struct{}, generation uint64) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// At most one detect call is in flight at a time.
	busy := make(chan struct{}, 1)

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			select {
			case busy <- struct{}{}:
			default:
				continue
			}

			frame, err := s.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				<-busy
				continue
			}

			go func() {
				defer func() { <-busy }()

				hands, err := s.detector.Detect(frame)
				frame.Close()
				if err != nil {
					log.Printf("Error detecting hands: %v", err)
					return
				}

				s.deliver(generation, s.classifier.Predict(hands))
			}()
		}
	}
}

// deliver invokes the prediction callbacks unless the loop has been stopped
// or restarted since this frame was sampled.
func (s *Session) deliver(generation uint64, p classify.Prediction) {
	s.mu.Lock()
	stale := s.stopCh == nil || s.generation != generation
	listeners := s.listeners
	s.mu.Unlock()

	if stale {
		return
	}
	for _, fn := range listeners {
		fn(p)
	}
}

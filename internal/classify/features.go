// Package classify turns detected hand landmarks into labeled sign
// predictions using a random-forest ensemble.
package classify

import (
	"errors"

	"github.com/carmina/signado/internal/detector"
)

// Feature vector layout, per hand: all 21 normalized landmark coordinates,
// 5 wrist-to-fingertip distances, 10 pairwise fingertip distances, and the
// bounding-box width and height of the normalized hand. The second hand's
// slot is zero-filled when only one hand is detected, so the total length
// is constant regardless of hand count.
const (
	HandFeatureLength = detector.NumLandmarks*3 + 5 + 10 + 2
	FeatureLength     = 2 * HandFeatureLength
)

// ErrNoHands is returned by Extract when there are no hands to extract
// features from.
var ErrNoHands = errors.New("no hands detected")

// fingertip landmark indices, thumb to pinky.
var fingertips = [5]int{
	detector.ThumbTip,
	detector.IndexTip,
	detector.MiddleTip,
	detector.RingTip,
	detector.PinkyTip,
}

// Extract builds the feature vector for the given hands. Exactly one hand
// zero-pads the second slot; when two or more hands are supplied, the first
// two are used in the order the detector reported them.
func Extract(hands []detector.HandLandmarks) ([]float64, error) {
	if len(hands) == 0 {
		return nil, ErrNoHands
	}

	features := make([]float64, 0, FeatureLength)
	features = append(features, handFeatures(&hands[0])...)

	if len(hands) >= 2 {
		features = append(features, handFeatures(&hands[1])...)
	} else {
		features = append(features, make([]float64, HandFeatureLength)...)
	}

	return features, nil
}

// handFeatures derives the per-hand feature block from one normalized hand.
func handFeatures(hand *detector.HandLandmarks) []float64 {
	normalized := hand.Normalize()
	coords := normalized.Points

	features := make([]float64, 0, HandFeatureLength)

	// Raw normalized coordinates
	for i := 0; i < detector.NumLandmarks; i++ {
		features = append(features, coords[i].X, coords[i].Y, coords[i].Z)
	}

	// Wrist-to-fingertip distances
	wrist := coords[detector.Wrist]
	for _, tip := range fingertips {
		features = append(features, detector.Distance3D(coords[tip], wrist))
	}

	// Pairwise fingertip distances
	for i := 0; i < len(fingertips)-1; i++ {
		for j := i + 1; j < len(fingertips); j++ {
			features = append(features, detector.Distance3D(coords[fingertips[i]], coords[fingertips[j]]))
		}
	}

	// Bounding box of the normalized hand
	minX, maxX := coords[0].X, coords[0].X
	minY, maxY := coords[0].Y, coords[0].Y
	for i := 1; i < detector.NumLandmarks; i++ {
		if coords[i].X < minX {
			minX = coords[i].X
		}
		if coords[i].X > maxX {
			maxX = coords[i].X
		}
		if coords[i].Y < minY {
			minY = coords[i].Y
		}
		if coords[i].Y > maxY {
			maxY = coords[i].Y
		}
	}
	features = append(features, maxX-minX, maxY-minY)

	return features
}

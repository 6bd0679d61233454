// Package analyzer defines the contract with the external behavior-analysis
// engine and the typed result record it produces.
package analyzer

import (
	"context"

	"behavior-backend/internal/imaging"
)

// Engine is the external behavior-analysis collaborator. ProcessFrame is
// synchronous and returns a best-effort Result even when nothing was
// detected in the frame; it errors only on genuine failures (transport,
// timeout, engine crash).
type Engine interface {
	ProcessFrame(ctx context.Context, frame *imaging.Frame) (*Result, error)
	Ready() bool
}

// Result is the engine's per-frame output. Every field may be absent;
// pointer fields distinguish "not reported" from a zero value.
type Result struct {
	FrameCount       int              `json:"frame_count"`
	FrameConfidence  float64          `json:"frame_confidence"`
	Metrics          Metrics          `json:"metrics"`
	DetectionResults DetectionResults `json:"detection_results"`
	Timestamp        *float64         `json:"timestamp"`
	Warnings         []string         `json:"warnings"`
}

// Metrics are the behavioral measurements. Nil means the engine could not
// estimate that metric for this frame.
type Metrics struct {
	AttentionPercent       *float64 `json:"attention_percent"`
	HeadMovementNormalized *float64 `json:"head_movement_normalized"`
	ShoulderTiltDeg        *float64 `json:"shoulder_tilt_deg"`
	HandActivityNormalized *float64 `json:"hand_activity_normalized"`
}

type DetectionResults struct {
	HandsDetectedCount int `json:"hands_detected_count"`
}

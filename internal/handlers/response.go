package handlers

import (
	"math"

	"behavior-backend/internal/analyzer"
	"behavior-backend/internal/models"
)

// ConfidenceThreshold is the fixed boundary on frame confidence; at or above
// it the frame passes.
const ConfidenceThreshold = 0.3

const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// BuildResponse maps the engine's raw result onto the response contract.
// It is total: absent fields degrade to null or a default, never an error.
// Metrics the engine did not report stay nil so callers can tell "not
// measured" from zero.
func BuildResponse(result *analyzer.Result) models.FrameAnalysisResponse {
	status := StatusFail
	if result.FrameConfidence >= ConfidenceThreshold {
		status = StatusPass
	}

	timestamp := nowUnix()
	if result.Timestamp != nil {
		timestamp = *result.Timestamp
	}

	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	return models.FrameAnalysisResponse{
		Frame:            result.FrameCount,
		FrameConfidence:  round(result.FrameConfidence, 3),
		ConfidenceStatus: status,
		Attention:        roundPtr(result.Metrics.AttentionPercent, 1),
		HeadMovement:     roundPtr(result.Metrics.HeadMovementNormalized, 4),
		ShoulderTilt:     roundPtr(result.Metrics.ShoulderTiltDeg, 1),
		HandActivity:     roundPtr(result.Metrics.HandActivityNormalized, 4),
		HandsDetected:    result.DetectionResults.HandsDetectedCount,
		Timestamp:        timestamp,
		Success:          true,
		Warnings:         warnings,
	}
}

func round(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

func roundPtr(v *float64, decimals int) *float64 {
	if v == nil {
		return nil
	}
	rounded := round(*v, decimals)
	return &rounded
}

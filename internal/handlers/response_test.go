package handlers

import (
	"testing"

	"behavior-backend/internal/analyzer"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestConfidenceStatusThreshold(t *testing.T) {
	cases := []struct {
		confidence float64
		status     string
	}{
		{0.0, StatusFail},
		{0.25, StatusFail},
		{0.29999, StatusFail},
		{0.3, StatusPass}, // boundary is inclusive
		{0.31, StatusPass},
		{1.0, StatusPass},
	}

	for _, c := range cases {
		resp := BuildResponse(&analyzer.Result{FrameConfidence: c.confidence})
		if resp.ConfidenceStatus != c.status {
			t.Errorf("confidence %v: status = %q, want %q", c.confidence, resp.ConfidenceStatus, c.status)
		}
	}
}

func TestBuildResponseRounding(t *testing.T) {
	ts := 1000.0
	resp := BuildResponse(&analyzer.Result{
		FrameCount:      42,
		FrameConfidence: 0.86666,
		Metrics: analyzer.Metrics{
			AttentionPercent:       floatPtr(87.6543),
			HeadMovementNormalized: floatPtr(0.123456),
			ShoulderTiltDeg:        floatPtr(4.44),
			HandActivityNormalized: floatPtr(0.98765),
		},
		DetectionResults: analyzer.DetectionResults{HandsDetectedCount: 2},
		Timestamp:        &ts,
		Warnings:         []string{"low light"},
	})

	if resp.Frame != 42 {
		t.Errorf("Frame = %d, want 42", resp.Frame)
	}
	if resp.FrameConfidence != 0.867 {
		t.Errorf("FrameConfidence = %v, want 0.867", resp.FrameConfidence)
	}
	if *resp.Attention != 87.7 {
		t.Errorf("Attention = %v, want 87.7", *resp.Attention)
	}
	if *resp.HeadMovement != 0.1235 {
		t.Errorf("HeadMovement = %v, want 0.1235", *resp.HeadMovement)
	}
	if *resp.ShoulderTilt != 4.4 {
		t.Errorf("ShoulderTilt = %v, want 4.4", *resp.ShoulderTilt)
	}
	if *resp.HandActivity != 0.9877 {
		t.Errorf("HandActivity = %v, want 0.9877", *resp.HandActivity)
	}
	if resp.HandsDetected != 2 {
		t.Errorf("HandsDetected = %d, want 2", resp.HandsDetected)
	}
	if resp.Timestamp != 1000.0 {
		t.Errorf("Timestamp = %v, want 1000.0", resp.Timestamp)
	}
	if !resp.Success {
		t.Error("Success should be true")
	}
}

func TestBuildResponseSparseResult(t *testing.T) {
	ts := 1000.0
	resp := BuildResponse(&analyzer.Result{
		FrameConfidence: 0.25,
		Timestamp:       &ts,
	})

	if resp.FrameConfidence != 0.25 {
		t.Errorf("FrameConfidence = %v, want 0.25", resp.FrameConfidence)
	}
	if resp.ConfidenceStatus != StatusFail {
		t.Errorf("ConfidenceStatus = %q, want FAIL", resp.ConfidenceStatus)
	}
	// Unreported metrics must stay nil, never become zero.
	if resp.Attention != nil || resp.HeadMovement != nil || resp.ShoulderTilt != nil || resp.HandActivity != nil {
		t.Error("unreported metrics should be nil")
	}
	if resp.HandsDetected != 0 {
		t.Errorf("HandsDetected = %d, want 0", resp.HandsDetected)
	}
	if resp.Warnings == nil || len(resp.Warnings) != 0 {
		t.Errorf("Warnings = %v, want empty slice", resp.Warnings)
	}
	if !resp.Success {
		t.Error("Success should be true even for a failed-confidence frame")
	}
}

func TestBuildResponseDefaultTimestamp(t *testing.T) {
	resp := BuildResponse(&analyzer.Result{FrameConfidence: 0.5})
	if resp.Timestamp == 0 {
		t.Error("missing result timestamp should default to the current time")
	}
}

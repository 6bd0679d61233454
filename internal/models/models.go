package models

// FrameAnalysisResponse is the service's output contract for a single
// analyzed frame. Pointer fields are metrics the engine did not report for
// this frame; they render as null, which callers must distinguish from 0.
type FrameAnalysisResponse struct {
	Frame            int      `json:"frame"`
	FrameConfidence  float64  `json:"frame_confidence"`
	ConfidenceStatus string   `json:"confidence_status"`
	Attention        *float64 `json:"attention"`
	HeadMovement     *float64 `json:"head_movement"`
	ShoulderTilt     *float64 `json:"shoulder_tilt"`
	HandActivity     *float64 `json:"hand_activity"`
	HandsDetected    int      `json:"hands_detected"`
	Timestamp        float64  `json:"timestamp"`
	Success          bool     `json:"success"`
	Warnings         []string `json:"warnings"`
}

type HealthResponse struct {
	Status        string  `json:"status"`
	AnalyzerReady bool    `json:"analyzer_ready"`
	Timestamp     float64 `json:"timestamp"`
}

type APIKeyStatusResponse struct {
	KeysConfigured bool   `json:"keys_configured"`
	KeyCount       int    `json:"key_count"`
	PrimaryKeySet  bool   `json:"primary_key_set"`
	Message        string `json:"message"`
}

type Base64Request struct {
	Image string `json:"image"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// WSMessage is the envelope for the websocket transport. Each FRAME message
// carries one independent base64-encoded image in its payload.
type WSMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	ClientID  string      `json:"client_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

type WSFramePayload struct {
	Image string `json:"image"`
}

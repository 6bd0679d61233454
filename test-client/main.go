// Standalone smoke client for the behavior analysis backend. Generates a
// test image in-process and walks every endpoint, including the auth
// failure paths. Expects the backend (and its analysis engine) running.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

var (
	backendURL = envOr("BACKEND_URL", "http://localhost:8000")
	apiKey     = envOr("VIDEO_ANALYZER_API_KEY", "abc123")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func generateTestImage() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func testHealth() error {
	fmt.Println("\n[TEST] Testing /health...")
	resp, err := http.Get(backendURL + "/health")
	if err != nil {
		return fmt.Errorf("health check failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("✓ Health check: %s\n", strings.TrimSpace(string(body)))
	return nil
}

func testKeyStatus() error {
	fmt.Println("\n[TEST] Testing /api-key/status...")
	resp, err := http.Get(backendURL + "/api-key/status")
	if err != nil {
		return fmt.Errorf("key status failed: %v", err)
	}
	defer resp.Body.Close()

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to parse key status: %v", err)
	}
	fmt.Printf("✓ Keys configured: %v (count: %v)\n", status["keys_configured"], status["key_count"])
	return nil
}

func testAuthRejection() error {
	fmt.Println("\n[TEST] Testing auth rejection...")

	req, _ := http.NewRequest("POST", backendURL+"/analyze/base64", strings.NewReader(`{"image": "x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		return fmt.Errorf("expected 401 without key, got %d", resp.StatusCode)
	}
	fmt.Println("✓ Missing key rejected with 401")

	req, _ = http.NewRequest("POST", backendURL+"/analyze/base64", strings.NewReader(`{"image": "x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "definitely-wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		return fmt.Errorf("expected 401 with bad key, got %d", resp.StatusCode)
	}
	fmt.Println("✓ Invalid key rejected with 401")
	return nil
}

func testAnalyzeFrame(imageData []byte) error {
	fmt.Println("\n[TEST] Testing /analyze/frame (multipart)...")

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "frame.png")
	if err != nil {
		return err
	}
	part.Write(imageData)
	writer.Close()

	req, _ := http.NewRequest("POST", backendURL+"/analyze/frame", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-API-Key", apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("frame request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("frame analysis failed: status %d, body: %s", resp.StatusCode, string(raw))
	}
	return printAnalysis(raw)
}

func testAnalyzeBase64(imageData []byte, withDataURL bool) error {
	label := "plain base64"
	encoded := base64.StdEncoding.EncodeToString(imageData)
	if withDataURL {
		label = "data URL"
		encoded = "data:image/png;base64," + encoded
	}
	fmt.Printf("\n[TEST] Testing /analyze/base64 (%s)...\n", label)

	payload, _ := json.Marshal(map[string]string{"image": encoded})
	req, _ := http.NewRequest("POST", backendURL+"/analyze/base64", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("base64 request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("base64 analysis failed: status %d, body: %s", resp.StatusCode, string(raw))
	}
	return printAnalysis(raw)
}

func printAnalysis(raw []byte) error {
	var result map[string]interface{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}
	fmt.Printf("✓ Analysis successful!\n")
	fmt.Printf("  - Confidence: %v (%v)\n", result["frame_confidence"], result["confidence_status"])
	fmt.Printf("  - Attention: %v\n", result["attention"])
	fmt.Printf("  - Hands detected: %v\n", result["hands_detected"])
	fmt.Printf("  - Timestamp: %v\n", result["timestamp"])
	return nil
}

func testMetrics() error {
	fmt.Println("\n[TEST] Testing /metrics...")
	resp, err := http.Get(backendURL + "/metrics")
	if err != nil {
		return fmt.Errorf("metrics failed: %v", err)
	}
	defer resp.Body.Close()

	var metrics map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&metrics); err != nil {
		return fmt.Errorf("failed to parse metrics: %v", err)
	}
	fmt.Printf("✓ Frames: %v, errors: %v, avg latency: %vms\n",
		metrics["total_frames"], metrics["total_errors"], metrics["avg_latency_ms"])
	return nil
}

func main() {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("BEHAVIOR ANALYSIS - Backend Testing Client")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Println("\n[INFO] Backend:", backendURL)
	fmt.Println("[INFO] Make sure the analysis engine is running as well")

	fmt.Println("\n[INFO] Generating test image...")
	imageData, err := generateTestImage()
	if err != nil {
		log.Fatalf("Failed to generate test image: %v", err)
	}
	fmt.Printf("✓ Generated test image: %d bytes\n", len(imageData))

	start := time.Now()
	tests := []struct {
		name string
		fn   func() error
	}{
		{"Health Check", testHealth},
		{"Key Status", testKeyStatus},
		{"Auth Rejection", testAuthRejection},
		{"Analyze Frame", func() error { return testAnalyzeFrame(imageData) }},
		{"Analyze Base64", func() error { return testAnalyzeBase64(imageData, false) }},
		{"Analyze Data URL", func() error { return testAnalyzeBase64(imageData, true) }},
		{"Metrics", testMetrics},
	}

	for _, test := range tests {
		if err := test.fn(); err != nil {
			log.Printf("❌ %s failed: %v", test.name, err)
			os.Exit(1)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("✅ All tests completed successfully in %v!\n", time.Since(start).Round(time.Millisecond))
	fmt.Println(strings.Repeat("=", 60))
}

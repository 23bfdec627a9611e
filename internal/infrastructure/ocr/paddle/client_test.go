package paddle

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testImage() image.Image {
	return image.NewGray(image.Rect(0, 0, 10, 10))
}

func TestRecognizeFiltersLowConfidenceRegions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ocr" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req ocrRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Image == "" {
			t.Error("request carried no image payload")
		}
		json.NewEncoder(w).Encode(ocrResponse{Regions: []ocrRegion{
			{Text: "Dear Sir", Confidence: 0.91},
			{Text: "zzgkq", Confidence: 0.11},
			{Text: "kind regards", Confidence: 0.45},
		}})
	}))
	defer srv.Close()

	client := New(srv.URL, 0.2)
	got, err := client.Recognize(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	want := "Dear Sir\nkind regards"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRecognizeServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := New(srv.URL, 0.2)
	if _, err := client.Recognize(context.Background(), testImage()); err == nil {
		t.Fatal("expected error for 503 response")
	}
}

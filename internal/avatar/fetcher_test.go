package avatar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// mockValidator はSSRF検証を差し替えるモック。
// httptestサーバーはループバックで動くため、テストでは検証を素通しにする。
type mockValidator struct {
	validateErr error
}

func (m *mockValidator) ValidateURL(rawURL string) error {
	return m.validateErr
}

func (m *mockValidator) NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client {
	return &http.Client{Timeout: timeout}
}

var _ SSRFValidator = (*mockValidator)(nil)

func TestFetch_Success(t *testing.T) {
	pngBytes := []byte{0x89, 0x50, 0x4E, 0x47}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes)
	}))
	defer server.Close()

	fetcher := NewFetcher(&mockValidator{}, 0, 0)

	data, mimeType, err := fetcher.Fetch(context.Background(), server.URL+"/avatar.png")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if mimeType != "image/png" {
		t.Errorf("mimeType = %q, want %q", mimeType, "image/png")
	}
	if len(data) != len(pngBytes) {
		t.Errorf("data length = %d, want %d", len(data), len(pngBytes))
	}
}

func TestFetch_SSRFBlocked_ReturnsNilWithoutError(t *testing.T) {
	fetcher := NewFetcher(&mockValidator{validateErr: errors.New("blocked host")}, 0, 0)

	data, mimeType, err := fetcher.Fetch(context.Background(), "http://169.254.169.254/avatar.png")
	if err != nil {
		t.Fatalf("Fetch() error = %v, want nil", err)
	}
	if data != nil || mimeType != "" {
		t.Errorf("data = %v, mimeType = %q; want nil and empty", data, mimeType)
	}
}

func TestFetch_EmptyURL_ReturnsNil(t *testing.T) {
	fetcher := NewFetcher(&mockValidator{}, 0, 0)

	data, mimeType, err := fetcher.Fetch(context.Background(), "")
	if err != nil {
		t.Fatalf("Fetch() error = %v, want nil", err)
	}
	if data != nil || mimeType != "" {
		t.Errorf("data = %v, mimeType = %q; want nil and empty", data, mimeType)
	}
}

func TestFetch_NonImageContentType_ReturnsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(&mockValidator{}, 0, 0)

	data, _, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v, want nil", err)
	}
	if data != nil {
		t.Errorf("data = %v, want nil for a non-image response", data)
	}
}

func TestFetch_OversizedResponse_ReturnsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(make([]byte, 2048))
	}))
	defer server.Close()

	fetcher := NewFetcher(&mockValidator{}, 5*time.Second, 1024)

	data, _, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v, want nil", err)
	}
	if data != nil {
		t.Errorf("data = %v, want nil for an oversized response", data)
	}
}

func TestFetch_ErrorStatus_ReturnsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(&mockValidator{}, 0, 0)

	data, _, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v, want nil", err)
	}
	if data != nil {
		t.Errorf("data = %v, want nil for a 404 response", data)
	}
}

func TestExtractMimeType(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "image/png", want: "image/png"},
		{input: "image/jpeg; charset=utf-8", want: "image/jpeg"},
		{input: "IMAGE/PNG", want: "image/png"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		if got := extractMimeType(tt.input); got != tt.want {
			t.Errorf("extractMimeType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

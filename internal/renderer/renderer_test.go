package renderer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/shaiso/Vitrine/internal/mq"
)

// --- Registry Tests ---

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(NewTextSource())

	s, err := r.Get(PluginText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.PluginID() != PluginText {
		t.Errorf("PluginID = %q, want %q", s.PluginID(), PluginText)
	}

	if _, err := r.Get("unknown"); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("error = %v, want ErrSourceNotFound", err)
	}
}

func TestRegistry_PluginIDs_Sorted(t *testing.T) {
	r := DefaultRegistry()
	want := []string{PluginHTTP, PluginText}
	if got := r.PluginIDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("PluginIDs = %v, want %v", got, want)
	}
}

// --- TextSource Tests ---

func TestTextSource_Render(t *testing.T) {
	s := NewTextSource()

	content, err := s.Render(context.Background(), map[string]any{"text": "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(content) != "hello" {
		t.Errorf("content = %q, want hello", content)
	}

	if _, err := s.Render(context.Background(), map[string]any{}); err == nil {
		t.Error("expected error for missing text setting")
	}
}

// --- HTTPSource Tests ---

func TestHTTPSource_Render(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	s := NewHTTPSource()
	content, err := s.Render(context.Background(), map[string]any{"url": srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(content) != "payload" {
		t.Errorf("content = %q, want payload", content)
	}
}

func TestHTTPSource_Render_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewHTTPSource()
	if _, err := s.Render(context.Background(), map[string]any{"url": srv.URL}); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestHTTPSource_Render_MissingURL(t *testing.T) {
	s := NewHTTPSource()
	if _, err := s.Render(context.Background(), map[string]any{}); err == nil {
		t.Error("expected error for missing url setting")
	}
}

// --- render Tests ---

func TestRenderer_Render_HashAndFile(t *testing.T) {
	dir := t.TempDir()
	r := New(Config{OutputDir: dir})

	job := &mq.RefreshDuePayload{
		JobID:          uuid.New(),
		PluginID:       PluginText,
		PluginInstance: "Front Hall",
		Settings:       map[string]any{"text": "hello"},
	}

	hash, err := r.render(context.Background(), r.logger, job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := sha256.Sum256([]byte("hello"))
	if want := hex.EncodeToString(sum[:]); hash != want {
		t.Errorf("hash = %q, want %q", hash, want)
	}

	// Spaces in the instance name become underscores in the filename
	content, err := os.ReadFile(filepath.Join(dir, "text_Front_Hall.png"))
	if err != nil {
		t.Fatalf("output file: %v", err)
	}
	if string(content) != "hello" {
		t.Errorf("file content = %q, want hello", content)
	}
}

func TestRenderer_Render_NoOutputDir(t *testing.T) {
	r := New(Config{})

	job := &mq.RefreshDuePayload{
		JobID:          uuid.New(),
		PluginID:       PluginText,
		PluginInstance: "a",
		Settings:       map[string]any{"text": "hello"},
	}

	if _, err := r.render(context.Background(), r.logger, job); err != nil {
		t.Errorf("hash-only render should succeed, got %v", err)
	}
}

func TestRenderer_Render_UnknownPlugin(t *testing.T) {
	r := New(Config{})

	job := &mq.RefreshDuePayload{
		JobID:    uuid.New(),
		PluginID: "nonexistent",
	}

	if _, err := r.render(context.Background(), r.logger, job); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("error = %v, want ErrSourceNotFound", err)
	}
}

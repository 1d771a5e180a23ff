// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package uploads

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/models"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type memStore struct {
	mu      sync.Mutex
	uploads map[string]models.Upload
}

func newMemStore() *memStore { return &memStore{uploads: make(map[string]models.Upload)} }

func (m *memStore) CreateUpload(_ context.Context, u *models.Upload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads[u.ID] = *u
	return nil
}

func (m *memStore) GetUpload(_ context.Context, id string) (*models.Upload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.uploads[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &u, nil
}

func (m *memStore) DeleteUpload(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.uploads, id)
	return nil
}

func newLocalService(t *testing.T, maxSize int64) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	b, err := NewLocalBackend(dir)
	if err != nil {
		t.Fatalf("NewLocalBackend() error = %v", err)
	}
	return NewService(newMemStore(), b, maxSize), dir
}

func TestService_SaveAndOpen(t *testing.T) {
	t.Parallel()

	svc, dir := newLocalService(t, 1024)
	body := append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte("x"), 200)...)

	u, err := svc.Save(context.Background(), "u1", models.UploadResume, "../../etc/My CV.pdf", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	sum := sha256.Sum256(body)
	if u.SHA256 != hex.EncodeToString(sum[:]) {
		t.Errorf("SHA256 = %s", u.SHA256)
	}
	if u.Size != int64(len(body)) || u.ContentType != "application/pdf" || u.Filename != "My CV.pdf" {
		t.Errorf("upload = %+v", u)
	}
	if _, err := os.Stat(filepath.Join(dir, u.ID)); err != nil {
		t.Errorf("stored file missing: %v", err)
	}

	got, err := svc.Get(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	rc, err := svc.Open(context.Background(), got)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if !bytes.Equal(data, body) {
		t.Error("Open() returned different bytes")
	}

	if err := svc.Delete(context.Background(), got); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := svc.Get(context.Background(), u.ID); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("Get() after delete error = %v", err)
	}
	if _, err := svc.Open(context.Background(), got); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Open() after delete error = %v", err)
	}
}

func TestService_SaveRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    models.UploadKind
		body    []byte
		wantErr error
	}{
		{"text as avatar", models.UploadAvatar, []byte("just some words"), ErrUnsupportedType},
		{"png as resume", models.UploadResume, pngHeader, ErrUnsupportedType},
		{"unknown kind", models.UploadKind("tax_return"), []byte("%PDF-1.7"), ErrUnsupportedType},
		{"empty", models.UploadLogo, nil, ErrUnsupportedType},
		{"over limit after sniff", models.UploadCourseMaterial, append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte("a"), 2000)...), ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, dir := newLocalService(t, 1024)
			_, err := svc.Save(context.Background(), "u1", tt.kind, "f", bytes.NewReader(tt.body))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Save() error = %v, want %v", err, tt.wantErr)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Errorf("backend left %d files behind", len(entries))
			}
		})
	}
}

func TestService_AvatarPNG(t *testing.T) {
	t.Parallel()

	svc, _ := newLocalService(t, 0)
	if svc.MaxSize() != DefaultMaxSize {
		t.Errorf("MaxSize() = %d", svc.MaxSize())
	}
	u, err := svc.Save(context.Background(), "u1", models.UploadAvatar, "me.png", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if u.ContentType != "image/png" {
		t.Errorf("ContentType = %s", u.ContentType)
	}
}

func TestLocalBackend_RejectsTraversal(t *testing.T) {
	t.Parallel()

	b, err := NewLocalBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"", "../secret", "a/b", "a.b"} {
		if err := b.Put(context.Background(), key, strings.NewReader("x"), 1, ""); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Put(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
	if err := b.Delete(context.Background(), "missing-key"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
}

// objectStore is a minimal upstream speaking PUT/GET/DELETE.
type objectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	auth    []string
	fail    bool
}

func (o *objectStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.auth = append(o.auth, r.Header.Get("Authorization"))
	if o.fail {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	key := strings.TrimPrefix(r.URL.Path, "/objects/")
	switch r.Method {
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		o.objects[key] = data
		w.WriteHeader(http.StatusCreated)
	case http.MethodGet:
		data, ok := o.objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(data)
	case http.MethodDelete:
		delete(o.objects, key)
		w.WriteHeader(http.StatusNoContent)
	}
}

func TestHTTPBackend_RoundTrip(t *testing.T) {
	t.Parallel()

	upstream := &objectStore{objects: make(map[string][]byte)}
	srv := httptest.NewServer(upstream)
	defer srv.Close()

	b, err := NewHTTPBackend(config.UploadsConfig{UpstreamURL: srv.URL + "/objects/", UpstreamToken: "tok", RatePerSec: 1000})
	if err != nil {
		t.Fatalf("NewHTTPBackend() error = %v", err)
	}
	svc := NewService(newMemStore(), b, 4096)

	u, err := svc.Save(context.Background(), "u1", models.UploadLogo, "logo.png", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	rc, err := svc.Open(context.Background(), u)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if !bytes.Equal(data, pngHeader) {
		t.Errorf("upstream returned %q", data)
	}
	if err := svc.Delete(context.Background(), u); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := b.Open(context.Background(), u.StorageKey); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Open() after delete error = %v", err)
	}

	upstream.mu.Lock()
	defer upstream.mu.Unlock()
	for _, a := range upstream.auth {
		if a != "Bearer tok" {
			t.Errorf("Authorization = %q", a)
		}
	}
}

func TestHTTPBackend_UpstreamFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(&objectStore{objects: make(map[string][]byte), fail: true})
	defer srv.Close()

	b, err := NewHTTPBackend(config.UploadsConfig{UpstreamURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Put(context.Background(), "k1", strings.NewReader("x"), 1, "text/plain"); !errors.Is(err, ErrUpstream) {
		t.Errorf("Put() error = %v, want ErrUpstream", err)
	}
	if _, err := b.Open(context.Background(), "k1"); !errors.Is(err, ErrUpstream) {
		t.Errorf("Open() error = %v, want ErrUpstream", err)
	}
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(config.UploadsConfig{Backend: "s3"}); err == nil {
		t.Error("NewBackend(s3) succeeded")
	}
	if _, err := NewBackend(config.UploadsConfig{Backend: BackendHTTP, UpstreamURL: "ftp://x"}); err == nil {
		t.Error("NewBackend(http, ftp://) succeeded")
	}
	b, err := NewBackend(config.UploadsConfig{Backend: BackendLocal, Dir: t.TempDir()})
	if err != nil || b.Name() != BackendLocal {
		t.Errorf("NewBackend(local) = %v, %v", b, err)
	}
}

func TestCleanFilename(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"cv.pdf":                "cv.pdf",
		"C:\\Users\\me\\cv.pdf": "cv.pdf",
		"../../x\n.pdf":         "x.pdf",
		"":                      "upload",
		"\"quoted\".txt":        "quoted.txt",
	}
	for in, want := range tests {
		if got := cleanFilename(in); got != want {
			t.Errorf("cleanFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanFilename_TruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()

	// "é" is two bytes, so byte 255 falls inside a rune.
	long := strings.Repeat("é", 200) + ".pdf"
	got := cleanFilename(long)
	if !utf8.ValidString(got) {
		t.Fatalf("cleanFilename produced invalid UTF-8: %q", got)
	}
	if len(got) != 254 || got != strings.Repeat("é", 127) {
		t.Errorf("len = %d, want 254 bytes of whole runes", len(got))
	}

	ascii := strings.Repeat("a", 300)
	if got := cleanFilename(ascii); len(got) != 255 {
		t.Errorf("ascii len = %d, want 255", len(got))
	}
}

package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *AttachmentStore {
	t.Helper()
	store, err := NewAttachmentStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewAttachmentStore: %v", err)
	}
	return store
}

func TestSaveAndOpen(t *testing.T) {
	store := newTestStore(t)
	formID := uuid.New()

	name, err := store.Save(formID, "certificate.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if name != "certificate.pdf" {
		t.Errorf("stored name = %q, want certificate.pdf", name)
	}

	rc, err := store.Open(formID, "certificate.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "pdf bytes" {
		t.Errorf("read back %q", body)
	}
}

func TestSaveStripsPathComponents(t *testing.T) {
	store := newTestStore(t)
	formID := uuid.New()

	name, err := store.Save(formID, "../../etc/passwd.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if name != "passwd.txt" {
		t.Errorf("stored name = %q, want passwd.txt", name)
	}

	path, err := store.Path(formID, name)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if !strings.Contains(path, "form_"+formID.String()) {
		t.Errorf("path %q escaped the form directory", path)
	}
}

func TestSaveRejectsDisallowedExtension(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Save(uuid.New(), "payload.exe", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for .exe upload")
	}
}

func TestSaveOverwritesOnCollision(t *testing.T) {
	store := newTestStore(t)
	formID := uuid.New()

	if _, err := store.Save(formID, "invoice.pdf", strings.NewReader("first")); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if _, err := store.Save(formID, "invoice.pdf", strings.NewReader("second")); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	rc, err := store.Open(formID, "invoice.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "second" {
		t.Errorf("content after overwrite = %q, want second", body)
	}
}

func TestConcurrentSavesSameForm(t *testing.T) {
	store := newTestStore(t)
	formID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			name := "file" + string(rune('a'+n%5)) + ".txt"
			if _, err := store.Save(formID, name, strings.NewReader(strings.Repeat("x", 1024))); err != nil {
				t.Errorf("Save %s: %v", name, err)
			}
		}(i)
	}
	wg.Wait()

	path, _ := store.Path(formID, "filea.txt")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != 1024 {
		t.Errorf("file size = %d, want 1024 (interleaved writes)", info.Size())
	}
}

func TestCleanup(t *testing.T) {
	store := newTestStore(t)
	formID := uuid.New()

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		if _, err := store.Save(formID, name, strings.NewReader("x")); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
	}

	removed, err := store.Cleanup(formID)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}

	path, _ := store.Path(formID, "a.pdf")
	if _, err := os.Stat(filepath.Dir(path)); !os.IsNotExist(err) {
		t.Errorf("form directory still exists after cleanup")
	}

	// Cleanup of an unknown form is a no-op.
	removed, err = store.Cleanup(uuid.New())
	if err != nil || removed != 0 {
		t.Errorf("cleanup of missing form = (%d, %v), want (0, nil)", removed, err)
	}
}

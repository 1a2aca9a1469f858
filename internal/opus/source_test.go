package opus

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "measurement.0")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestMemSourceReadExact(t *testing.T) {
	t.Parallel()
	src := NewMemSource([]byte{1, 2, 3, 4, 5})

	got, err := src.ReadExact(1, 3)
	if err != nil {
		t.Fatalf("ReadExact(1, 3): %v", err)
	}
	if got[0] != 2 || got[2] != 4 {
		t.Errorf("ReadExact(1, 3) = %v, want [2 3 4]", got)
	}

	size, err := src.Size()
	if err != nil || size != 5 {
		t.Errorf("Size() = %d, %v, want 5, nil", size, err)
	}
}

func TestMemSourceRejectsOutOfRange(t *testing.T) {
	t.Parallel()
	src := NewMemSource([]byte{1, 2, 3, 4, 5})

	tests := []struct {
		name   string
		offset int64
		n      int
	}{
		{"Past end", 3, 3},
		{"Far past end", 100, 1},
		{"Negative offset", -1, 2},
		{"Negative length", 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := src.ReadExact(tt.offset, tt.n); err == nil {
				t.Errorf("ReadExact(%d, %d) succeeded, want error", tt.offset, tt.n)
			}
		})
	}
}

func TestFileSourceReadExact(t *testing.T) {
	t.Parallel()
	path := writeTempFile(t, []byte("abcdefgh"))
	src := NewFileSource(path)

	got, err := src.ReadExact(2, 3)
	if err != nil {
		t.Fatalf("ReadExact(2, 3): %v", err)
	}
	if string(got) != "cde" {
		t.Errorf("ReadExact(2, 3) = %q, want %q", got, "cde")
	}

	// A range past end-of-file must fail, never return a short read.
	if _, err := src.ReadExact(6, 4); err == nil {
		t.Error("ReadExact(6, 4) succeeded past end of file")
	}

	size, err := src.Size()
	if err != nil || size != 8 {
		t.Errorf("Size() = %d, %v, want 8, nil", size, err)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	t.Parallel()
	src := NewFileSource(filepath.Join(t.TempDir(), "nope.0"))
	if _, err := src.ReadExact(0, 4); err == nil {
		t.Error("expected error reading missing file")
	}
}

func TestPrefixSourceBoundsReads(t *testing.T) {
	t.Parallel()
	path := writeTempFile(t, []byte("abcdefghij"))

	src, err := NewPrefixSource(path, 4)
	if err != nil {
		t.Fatalf("NewPrefixSource: %v", err)
	}

	if got, err := src.ReadExact(0, 4); err != nil || string(got) != "abcd" {
		t.Errorf("ReadExact(0, 4) = %q, %v, want %q, nil", got, err, "abcd")
	}
	// Bytes beyond the prefix exist on disk but not in the source.
	if _, err := src.ReadExact(2, 4); err == nil {
		t.Error("ReadExact(2, 4) succeeded beyond the prefix")
	}
	if size, _ := src.Size(); size != 4 {
		t.Errorf("Size() = %d, want 4", size)
	}
}

func TestPrefixSourceShortFile(t *testing.T) {
	t.Parallel()
	path := writeTempFile(t, []byte("ab"))

	// A prefix longer than the file holds what the file holds.
	src, err := NewPrefixSource(path, 100)
	if err != nil {
		t.Fatalf("NewPrefixSource: %v", err)
	}
	if size, _ := src.Size(); size != 2 {
		t.Errorf("Size() = %d, want 2", size)
	}
}

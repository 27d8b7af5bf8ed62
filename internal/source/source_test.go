package source

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSortImagePaths(t *testing.T) {
	paths := []string{"10.png", "2.jpg", "Cover.png", "b.jpeg", "002.png", "a.PNG", "1.png"}
	SortImagePaths(paths)

	want := []string{"a.PNG", "b.jpeg", "Cover.png", "1.png", "002.png", "2.jpg", "10.png"}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, paths)
		}
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
}

func TestImageSourceDirectory(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "10.png"), 4, 3)
	writePNG(t, filepath.Join(dir, "2.png"), 8, 6)
	writePNG(t, filepath.Join(dir, "title.png"), 2, 2)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0644)

	src, err := NewImageSource(dir)
	if err != nil {
		t.Fatalf("NewImageSource failed: %v", err)
	}
	defer src.Close()

	if src.PageCount() != 3 {
		t.Fatalf("Expected 3 images, got %d", src.PageCount())
	}
	if got := filepath.Base(src.Path(0)); got != "title.png" {
		t.Errorf("Expected title.png first, got %s", got)
	}
	if got := filepath.Base(src.Path(1)); got != "2.png" {
		t.Errorf("Expected 2.png second, got %s", got)
	}

	w, h, err := src.GetPageDimensions(1)
	if err != nil {
		t.Fatal(err)
	}
	if w != 8 || h != 6 {
		t.Errorf("Expected 8x6, got %.0fx%.0f", w, h)
	}

	img, err := src.RenderPage(2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 4 {
		t.Errorf("Expected width 4, got %d", img.Bounds().Dx())
	}
}

func TestImageSourceEmptyDirectory(t *testing.T) {
	if _, err := NewImageSource(t.TempDir()); err == nil {
		t.Error("Expected error for directory without images")
	}
}

func TestSampled(t *testing.T) {
	dir := t.TempDir()
	for i, name := range []string{"1.png", "2.png", "3.png"} {
		writePNG(t, filepath.Join(dir, name), i+1, 1)
	}
	src, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	s, err := NewSampled(src, []int{0, 2})
	if err != nil {
		t.Fatal(err)
	}
	if s.PageCount() != 2 {
		t.Errorf("Expected 2 pages, got %d", s.PageCount())
	}
	w, _, err := s.GetPageDimensions(1)
	if err != nil {
		t.Fatal(err)
	}
	if w != 3 {
		t.Errorf("Expected page 1 to map to 3.png, got width %.0f", w)
	}

	if _, err := NewSampled(src, []int{5}); err == nil {
		t.Error("Expected error for out of range index")
	}
}

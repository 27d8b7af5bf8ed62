package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

type ImageSource struct {
	paths []string
}

// NewImageSource opens a single image or every .jpg/.jpeg/.png file of a
// directory, ordered by SortImagePaths.
func NewImageSource(path string) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() && imageExts[strings.ToLower(filepath.Ext(entry.Name()))] {
				paths = append(paths, filepath.Join(path, entry.Name()))
			}
		}
		SortImagePaths(paths)
		if len(paths) == 0 {
			return nil, fmt.Errorf("в каталоге %s нет изображений", path)
		}
	} else {
		paths = []string{path}
	}

	return &ImageSource{paths: paths}, nil
}

// SortImagePaths orders files for display: names that are not plain numbers
// come first, case-insensitively; numbered files follow in numeric order
// ("2.png" before "10.png"). Ties are broken by the lowercase file name.
func SortImagePaths(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return imageLess(filepath.Base(paths[i]), filepath.Base(paths[j]))
	})
}

func imageLess(a, b string) bool {
	sa, sb := stem(a), stem(b)
	na, nb := isDigits(sa), isDigits(sb)

	if na != nb {
		return !na
	}
	if na {
		if c := compareNumeric(sa, sb); c != 0 {
			return c < 0
		}
	} else if la, lb := strings.ToLower(sa), strings.ToLower(sb); la != lb {
		return la < lb
	}
	return strings.ToLower(a) < strings.ToLower(b)
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// compareNumeric compares two digit strings by value without parsing them,
// so arbitrarily long names cannot overflow.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func (s *ImageSource) PageCount() int {
	return len(s.paths)
}

// Path returns the file behind page index.
func (s *ImageSource) Path(index int) string {
	return s.paths[index]
}

func (s *ImageSource) GetPageDimensions(index int) (float64, float64, error) {
	f, err := os.Open(s.paths[index])
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	img, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s: %w", filepath.Base(s.paths[index]), err)
	}
	return float64(img.Width), float64(img.Height), nil
}

func (s *ImageSource) RenderPage(index int, dpi int) (image.Image, error) {
	f, err := os.Open(s.paths[index])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(s.paths[index]), err)
	}
	return img, nil
}

func (s *ImageSource) Close() error {
	return nil
}

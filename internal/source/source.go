package source

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Source is an ordered sequence of still images. Order is display order.
type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height float64, err error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// Open picks the source for path: PDF documents are rendered page by page,
// anything else is treated as an image file or a directory of images.
func Open(path string) (Source, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		src, err := NewFitzPDFSource(path)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	src, err := NewImageSource(path)
	if err != nil {
		return nil, err
	}
	return src, nil
}

type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

// GetPageDimensions reports the page size in points. Rendered pages are
// larger by dpi/72, which keeps the aspect ratio and so the cover scale.
func (f *FitzPDFSource) GetPageDimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	// fitz.Document не потокобезопасен: каждый воркер открывает свою копию
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}

// Sampled exposes a subset of another source, in the order of Indices.
type Sampled struct {
	Source
	Indices []int
}

// NewSampled wraps src so page i maps to src page indices[i].
func NewSampled(src Source, indices []int) (*Sampled, error) {
	n := src.PageCount()
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("индекс %d вне диапазона 0..%d", idx, n-1)
		}
	}
	return &Sampled{Source: src, Indices: indices}, nil
}

func (s *Sampled) PageCount() int {
	return len(s.Indices)
}

func (s *Sampled) GetPageDimensions(index int) (float64, float64, error) {
	return s.Source.GetPageDimensions(s.Indices[index])
}

func (s *Sampled) RenderPage(index int, dpi int) (image.Image, error) {
	return s.Source.RenderPage(s.Indices[index], dpi)
}

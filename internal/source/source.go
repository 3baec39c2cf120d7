package source

import (
	"image"

	"github.com/gen2brain/go-fitz"
)

// Source produces rendered page buffers for one document. RenderPage takes a
// zoom factor: document-space coordinates times zoom give pixel coordinates
// in the returned image.
type Source interface {
	PageCount() int
	GetPageDimensions(index int) (width, height float64, err error)
	RenderPage(index int, zoom float64) (image.Image, error)
	Close() error
}

// FitzPDFSource rasterizes PDF pages with MuPDF.
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

func (f *FitzPDFSource) GetPageDimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

// RenderPage opens a private document handle per call so pages can render
// concurrently; MuPDF handles are not safe for shared use.
func (f *FitzPDFSource) RenderPage(index int, zoom float64) (image.Image, error) {
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	// MuPDF's natural scale is 72 DPI, so zoom maps onto DPI directly.
	return workerDoc.ImageDPI(index, zoom*72)
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}

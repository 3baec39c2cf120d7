package engine

import (
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/pdfmarks/internal/config"
	"github.com/ivlev/pdfmarks/internal/detect"
	"github.com/ivlev/pdfmarks/internal/region"
	"github.com/ivlev/pdfmarks/internal/source"
	"github.com/ivlev/pdfmarks/internal/system"
)

// SummaryFile is the document-level summary written next to the crops.
const SummaryFile = "extraction_summary.json"

// Project runs annotation extraction over one document: every page is
// rendered, candidate regions are detected from native metadata and from
// pixel color, color candidates are merged into groups, and the crops plus a
// JSON summary land in OutputDir.
type Project struct {
	Config      config.Config
	Source      source.Source
	Annotations source.AnnotationSource
	OutputDir   string
}

func NewProject(cfg config.Config, src source.Source, ann source.AnnotationSource, outputDir string) *Project {
	return &Project{Config: cfg, Source: src, Annotations: ann, OutputDir: outputDir}
}

// Run processes all pages and returns the extraction records in page order.
// A failed page is logged and skipped; it never aborts the document.
func (p *Project) Run() ([]region.Record, error) {
	startTime := time.Now()

	pageCount := p.Source.PageCount()
	if pageCount == 0 {
		return nil, fmt.Errorf("source contains no pages")
	}

	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return nil, err
	}

	workers := system.Workers(p.Config.Workers, p.estimatePageBytes())
	if workers > pageCount {
		workers = pageCount
	}

	fmt.Println("--- [PROJECT: ANNOTATION EXTRACTION] ---")
	fmt.Printf("[*] Pages: %d | Workers: %d | Zoom: %.1fx\n", pageCount, workers, p.Config.Zoom)
	fmt.Printf("[*] Highlights: %v | Handwriting: %v\n", p.Config.Extraction.Highlights, p.Config.Extraction.Handwriting)
	fmt.Println("----------------------------------------")

	// Pages share no state; each slot is written by exactly one task.
	results := make([][]region.Record, pageCount)

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < pageCount; i++ {
		g.Go(func() error {
			records, err := p.processPage(i)
			if err != nil {
				log.Printf("[!] Page %d skipped: %v", i+1, err)
				return nil
			}
			results[i] = records
			fmt.Printf("[>] Page %d/%d: %d regions\n", i+1, pageCount, len(records))
			return nil
		})
	}
	g.Wait()

	records := []region.Record{}
	for _, pageRecords := range results {
		records = append(records, pageRecords...)
	}

	if err := p.writeSummary(records); err != nil {
		return records, err
	}

	fmt.Printf("[*] Done in %.2fs: %d regions -> %s\n", time.Since(startTime).Seconds(), len(records), p.OutputDir)
	return records, nil
}

// processPage renders one page and runs both detection paths over it. The
// rendered buffer lives only for the duration of this call.
func (p *Project) processPage(index int) ([]region.Record, error) {
	img, err := p.Source.RenderPage(index, p.Config.Zoom)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	page := toRGBA(img)
	pageW, pageH := page.Bounds().Dx(), page.Bounds().Dy()

	ext := &region.Extractor{OutputDir: p.OutputDir}
	var records []region.Record
	seq := make(map[string]int)

	// Native annotation metadata path. Padding is applied by the detector,
	// so the extractor adds none.
	md := &detect.MetadataDetector{
		Zoom:        p.Config.Zoom,
		Padding:     p.Config.Extraction.AnnotationPadding,
		Highlights:  p.Config.Extraction.Highlights,
		Handwriting: p.Config.Extraction.Handwriting,
	}
	for _, a := range p.Annotations.PageAnnotations(index) {
		cand, ok := md.Detect(a, pageW, pageH)
		if !ok {
			continue
		}

		seq[cand.Type]++
		name := region.CropName(index+1, cand.Type, seq[cand.Type])
		rect, written, err := ext.Extract(page, cand.Rect, 0, name)
		if err != nil {
			log.Printf("[!] Page %d: writing %s: %v", index+1, name, err)
			continue
		}
		if !written {
			continue
		}

		records = append(records, region.Record{
			Page:        index + 1,
			Type:        cand.Type,
			Filename:    name,
			Coordinates: region.RecordCoordinates(rect),
		})
	}

	// Independent color detection path, one category at a time so groups
	// never mix categories.
	for _, cat := range detect.Categories() {
		if !p.categoryEnabled(cat) {
			continue
		}
		params := p.categoryParams(cat)

		rects := detect.NewMaskDetector(params).Detect(page)
		groups := region.Merge(rects, params.MergeH, params.MergeV)

		typ := cat.String() + "_group"
		for _, grp := range groups {
			seq[typ]++
			name := region.CropName(index+1, typ, seq[typ])
			rect, written, err := ext.Extract(page, grp.Rect, p.Config.Extraction.GroupPadding, name)
			if err != nil {
				log.Printf("[!] Page %d: writing %s: %v", index+1, name, err)
				continue
			}
			if !written {
				continue
			}

			records = append(records, region.Record{
				Page:              index + 1,
				Type:              typ,
				Filename:          name,
				Coordinates:       region.RecordCoordinates(rect),
				IndividualRegions: grp.Members,
			})
		}
	}

	return records, nil
}

func (p *Project) categoryEnabled(cat detect.Category) bool {
	switch cat {
	case detect.YellowHighlight:
		return p.Config.Extraction.Highlights
	case detect.RedMark:
		return p.Config.Extraction.Handwriting
	}
	return false
}

// categoryParams applies config overrides onto the calibrated defaults.
func (p *Project) categoryParams(cat detect.Category) detect.Params {
	params := cat.Params()

	var o config.CategoryOverrides
	switch cat {
	case detect.YellowHighlight:
		o = p.Config.Extraction.Highlight
	case detect.RedMark:
		o = p.Config.Extraction.Mark
	}

	if o.MinArea > 0 {
		params.MinArea = o.MinArea
	}
	if o.MergeHorizontal > 0 {
		params.MergeH = o.MergeHorizontal
	}
	if o.MergeVertical > 0 {
		params.MergeV = o.MergeVertical
	}
	return params
}

// estimatePageBytes sizes one rendered page buffer (RGBA) from the first
// page's document dimensions and the render zoom.
func (p *Project) estimatePageBytes() uint64 {
	w, h, err := p.Source.GetPageDimensions(0)
	if err != nil || w <= 0 || h <= 0 {
		return 0
	}
	z := p.Config.Zoom
	return uint64(w*z) * uint64(h*z) * 4
}

func (p *Project) writeSummary(records []region.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(p.OutputDir, SummaryFile), data, 0644)
}

// toRGBA returns img as *image.RGBA anchored at the origin, converting only
// when needed.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

package engine

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/pdfmarks/internal/config"
	"github.com/ivlev/pdfmarks/internal/detect"
	"github.com/ivlev/pdfmarks/internal/region"
)

// fakeSource serves pre-built page images; failing pages return an error.
type fakeSource struct {
	pages  []image.Image
	broken map[int]bool
}

func (s *fakeSource) PageCount() int { return len(s.pages) }

func (s *fakeSource) GetPageDimensions(index int) (float64, float64, error) {
	b := s.pages[index].Bounds()
	return float64(b.Dx()), float64(b.Dy()), nil
}

func (s *fakeSource) RenderPage(index int, zoom float64) (image.Image, error) {
	if s.broken[index] {
		return nil, fmt.Errorf("synthetic render failure")
	}
	return s.pages[index], nil
}

func (s *fakeSource) Close() error { return nil }

// fakeAnnotations maps 0-based page index to native annotation records.
type fakeAnnotations map[int][]detect.Annotation

func (f fakeAnnotations) PageAnnotations(index int) []detect.Annotation { return f[index] }

func whitePage(w, h int) *image.RGBA {
	page := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(page, page.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return page
}

func paint(page *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(page, r, image.NewUniform(c), image.Point{}, draw.Src)
}

var highlighterYellow = color.RGBA{R: 255, G: 230, B: 60, A: 255}

func testConfig(workers int) config.Config {
	cfg := config.Default()
	cfg.Workers = workers
	return cfg
}

// Two adjacent yellow bars on one page merge into a single group: bounding
// box (100,100)-(210,120), padded by 15 and clamped, counting both members.
func TestRunMergesColorRegions(t *testing.T) {
	page := whitePage(900, 1200)
	paint(page, image.Rect(100, 100, 150, 120), highlighterYellow)
	paint(page, image.Rect(160, 100, 210, 120), highlighterYellow)

	dir := t.TempDir()
	project := NewProject(testConfig(1), &fakeSource{pages: []image.Image{page}}, fakeAnnotations{}, dir)

	records, err := project.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d: %+v", len(records), records)
	}

	rec := records[0]
	if rec.Page != 1 {
		t.Errorf("Page = %d, want 1", rec.Page)
	}
	if rec.Type != "yellow_highlight_group" {
		t.Errorf("Type = %q", rec.Type)
	}
	if rec.Filename != "page_1_yellow_highlight_group_1.png" {
		t.Errorf("Filename = %q", rec.Filename)
	}
	want := region.Coordinates{X1: 85, Y1: 85, X2: 225, Y2: 135}
	if rec.Coordinates != want {
		t.Errorf("Coordinates = %+v, want %+v", rec.Coordinates, want)
	}
	if rec.IndividualRegions != 2 {
		t.Errorf("IndividualRegions = %d, want 2", rec.IndividualRegions)
	}

	if _, err := os.Stat(filepath.Join(dir, rec.Filename)); err != nil {
		t.Errorf("Crop file missing: %v", err)
	}
}

func TestRunMetadataPath(t *testing.T) {
	page := whitePage(900, 1200)

	annotations := fakeAnnotations{
		0: {{Type: "Highlight", Stroke: []float64{1.0, 0.9, 0.2}, Rect: [4]float64{10, 10, 50, 20}}},
	}

	dir := t.TempDir()
	project := NewProject(testConfig(1), &fakeSource{pages: []image.Image{page}}, annotations, dir)

	records, err := project.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d: %+v", len(records), records)
	}

	rec := records[0]
	if rec.Type != "Highlight" {
		t.Errorf("Type = %q, want Highlight", rec.Type)
	}
	if rec.Filename != "page_1_Highlight_1.png" {
		t.Errorf("Filename = %q", rec.Filename)
	}
	// Document (10,10)-(50,20) at 3x is (30,30)-(150,60), plus 10px padding.
	want := region.Coordinates{X1: 20, Y1: 20, X2: 160, Y2: 70}
	if rec.Coordinates != want {
		t.Errorf("Coordinates = %+v, want %+v", rec.Coordinates, want)
	}
	if rec.IndividualRegions != 0 {
		t.Errorf("IndividualRegions = %d, metadata records must omit it", rec.IndividualRegions)
	}
}

func TestRunDisabledCategory(t *testing.T) {
	page := whitePage(900, 1200)
	paint(page, image.Rect(100, 100, 210, 120), highlighterYellow)

	cfg := testConfig(1)
	cfg.Extraction.Highlights = false

	project := NewProject(cfg, &fakeSource{pages: []image.Image{page}}, fakeAnnotations{}, t.TempDir())
	records, err := project.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Highlights disabled but extracted: %+v", records)
	}
}

// A page that fails to render is skipped; the rest of the document still
// processes, and records stay in page order.
func TestRunIsolatesPageFailures(t *testing.T) {
	goodPage := func() *image.RGBA {
		p := whitePage(900, 1200)
		paint(p, image.Rect(100, 100, 210, 120), highlighterYellow)
		return p
	}

	src := &fakeSource{
		pages:  []image.Image{goodPage(), whitePage(900, 1200), goodPage()},
		broken: map[int]bool{1: true},
	}

	project := NewProject(testConfig(2), src, fakeAnnotations{}, t.TempDir())
	records, err := project.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Page != 1 || records[1].Page != 3 {
		t.Errorf("Pages = %d, %d, want 1, 3", records[0].Page, records[1].Page)
	}
}

func TestRunWritesSummary(t *testing.T) {
	page := whitePage(900, 1200)
	paint(page, image.Rect(100, 100, 210, 120), highlighterYellow)

	dir := t.TempDir()
	project := NewProject(testConfig(1), &fakeSource{pages: []image.Image{page}}, fakeAnnotations{}, dir)

	want, err := project.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	if err != nil {
		t.Fatalf("Summary missing: %v", err)
	}

	var got []region.Record
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Summary is not valid JSON: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Summary has %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Summary record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRunEmptySource(t *testing.T) {
	project := NewProject(testConfig(1), &fakeSource{}, fakeAnnotations{}, t.TempDir())
	if _, err := project.Run(); err == nil {
		t.Error("Empty source must be an error")
	}
}

func TestCategoryParamsOverrides(t *testing.T) {
	cfg := testConfig(1)
	cfg.Extraction.Highlight = config.CategoryOverrides{MinArea: 900, MergeHorizontal: 150}

	project := NewProject(cfg, &fakeSource{}, fakeAnnotations{}, t.TempDir())

	p := project.categoryParams(detect.YellowHighlight)
	if p.MinArea != 900 || p.MergeH != 150 {
		t.Errorf("Overridden params = %+v", p)
	}
	// Unset overrides keep the calibrated defaults.
	if p.MergeV != 50 {
		t.Errorf("MergeV = %d, want default 50", p.MergeV)
	}

	rp := project.categoryParams(detect.RedMark)
	if rp.MinArea != 200 || rp.MergeH != 80 || rp.MergeV != 40 {
		t.Errorf("Red params changed without overrides: %+v", rp)
	}
}

func TestSweep(t *testing.T) {
	page := whitePage(900, 1200)
	paint(page, image.Rect(100, 100, 150, 120), highlighterYellow)
	paint(page, image.Rect(260, 100, 310, 120), highlighterYellow) // 110px gap

	dir := t.TempDir()
	project := NewProject(testConfig(1), &fakeSource{pages: []image.Image{page}}, fakeAnnotations{}, dir)

	reportPath := filepath.Join(dir, "tuning_report.yaml")
	report, err := project.Sweep(nil, 1, reportPath)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if report.Pages != 1 {
		t.Errorf("Pages = %d, want 1", report.Pages)
	}

	byPreset := make(map[string]SweepResult)
	for _, r := range report.Results {
		if r.Category == "yellow_highlight" {
			byPreset[r.Preset] = r
		}
	}

	// The 110px gap splits under conservative thresholds and joins under
	// aggressive ones.
	if got := byPreset["conservative"]; got.Regions != 2 || got.Groups != 2 {
		t.Errorf("Conservative = %+v, want 2 regions, 2 groups", got)
	}
	if got := byPreset["aggressive"]; got.Regions != 2 || got.Groups != 1 {
		t.Errorf("Aggressive = %+v, want 2 regions, 1 group", got)
	}

	if _, err := os.Stat(reportPath); err != nil {
		t.Errorf("Report file missing: %v", err)
	}
}

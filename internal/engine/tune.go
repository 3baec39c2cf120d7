package engine

import (
	"fmt"
	"image"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/pdfmarks/internal/detect"
	"github.com/ivlev/pdfmarks/internal/region"
)

// SweepPreset is one merge-threshold combination to evaluate.
type SweepPreset struct {
	Name       string `yaml:"name"`
	Horizontal int    `yaml:"merge_horizontal"`
	Vertical   int    `yaml:"merge_vertical"`
}

// DefaultSweepPresets spans conservative to very aggressive grouping.
func DefaultSweepPresets() []SweepPreset {
	return []SweepPreset{
		{Name: "conservative", Horizontal: 50, Vertical: 25},
		{Name: "moderate", Horizontal: 100, Vertical: 50},
		{Name: "aggressive", Horizontal: 150, Vertical: 75},
		{Name: "very_aggressive", Horizontal: 200, Vertical: 100},
	}
}

// SweepResult records how one preset groups one category's regions across the
// sampled pages.
type SweepResult struct {
	Preset     string `yaml:"preset"`
	Category   string `yaml:"category"`
	Horizontal int    `yaml:"merge_horizontal"`
	Vertical   int    `yaml:"merge_vertical"`
	Regions    int    `yaml:"regions"`
	Groups     int    `yaml:"groups"`
}

// SweepReport is the YAML report written by Sweep.
type SweepReport struct {
	Pages   int           `yaml:"pages_sampled"`
	Results []SweepResult `yaml:"results"`
}

// Sweep runs color detection once per category over up to maxPages pages and
// re-merges the detected rectangles under each preset, reporting how many
// groups each combination produces. Detection is the expensive step, so the
// raw rectangles are reused across presets. The report lands at path.
func (p *Project) Sweep(presets []SweepPreset, maxPages int, path string) (*SweepReport, error) {
	if len(presets) == 0 {
		presets = DefaultSweepPresets()
	}

	pageCount := p.Source.PageCount()
	if pageCount == 0 {
		return nil, fmt.Errorf("source contains no pages")
	}
	if maxPages > 0 && pageCount > maxPages {
		pageCount = maxPages
	}

	// Collect raw per-category rectangles over the sampled pages.
	detected := make(map[detect.Category][][]image.Rectangle)
	for i := 0; i < pageCount; i++ {
		img, err := p.Source.RenderPage(i, p.Config.Zoom)
		if err != nil {
			log.Printf("[!] Sweep: page %d skipped: %v", i+1, err)
			continue
		}
		page := toRGBA(img)
		for _, cat := range detect.Categories() {
			if !p.categoryEnabled(cat) {
				continue
			}
			found := detect.NewMaskDetector(p.categoryParams(cat)).Detect(page)
			detected[cat] = append(detected[cat], found)
		}
	}

	report := &SweepReport{Pages: pageCount}
	for _, preset := range presets {
		for _, cat := range detect.Categories() {
			pages, ok := detected[cat]
			if !ok {
				continue
			}
			total, groups := 0, 0
			for _, found := range pages {
				total += len(found)
				groups += len(region.Merge(found, preset.Horizontal, preset.Vertical))
			}
			report.Results = append(report.Results, SweepResult{
				Preset:     preset.Name,
				Category:   cat.String(),
				Horizontal: preset.Horizontal,
				Vertical:   preset.Vertical,
				Regions:    total,
				Groups:     groups,
			})
		}
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, err
	}
	return report, nil
}

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivlev/pdfmarks/internal/config"
	"github.com/ivlev/pdfmarks/internal/engine"
	"github.com/ivlev/pdfmarks/internal/region"
	"github.com/ivlev/pdfmarks/internal/source"
	"github.com/ivlev/pdfmarks/internal/system"
)

func main() {
	system.InitResourceLimits()

	os.MkdirAll("input/pdf", 0755)

	inputPtr := flag.String("input", "", "PDF path or directory of page images (default: most recent file in input/pdf/)")
	outputPtr := flag.String("output", "extracted_content", "Output directory for crops and extraction_summary.json")
	configPtr := flag.String("config", "config.yaml", "Config file (missing file uses defaults)")
	annotationsPtr := flag.String("annotations", "", "Native annotation sidecar JSON (default: <input>.annotations.json)")
	zoomPtr := flag.Float64("zoom", 0, "Render zoom override (default from config, 3.0)")
	workersPtr := flag.Int("workers", 0, "Page workers (0: size from the machine)")
	tunePtr := flag.Bool("tune", false, "Run a merge-threshold sweep instead of extraction")
	tunePagesPtr := flag.Int("tune-pages", 5, "Pages sampled by -tune")

	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}
	if *zoomPtr > 0 {
		cfg.Zoom = *zoomPtr
	}
	if *workersPtr > 0 {
		cfg.Workers = *workersPtr
	}

	inputPath := *inputPtr
	if inputPath == "" {
		latest, err := system.FindLatestPDF("input/pdf")
		if err != nil {
			log.Fatalf("[-] Error: %v. Put a PDF in input/pdf/", err)
		}
		inputPath = latest
		fmt.Printf("[*] Selected file: %s\n", inputPath)
	}

	var src source.Source
	if strings.HasSuffix(strings.ToLower(inputPath), ".pdf") {
		src, err = source.NewFitzPDFSource(inputPath)
	} else {
		src, err = source.NewImageSource(inputPath)
	}
	if err != nil {
		log.Fatalf("[-] Source error: %v", err)
	}
	defer src.Close()

	annotationsPath := *annotationsPtr
	if annotationsPath == "" {
		annotationsPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".annotations.json"
	}
	annotations, err := source.LoadAnnotations(annotationsPath)
	if err != nil {
		log.Fatalf("[-] Annotations error: %v", err)
	}

	project := engine.NewProject(cfg, src, annotations, *outputPtr)

	if *tunePtr {
		reportPath := filepath.Join(*outputPtr, "tuning_report.yaml")
		os.MkdirAll(*outputPtr, 0755)
		report, err := project.Sweep(nil, *tunePagesPtr, reportPath)
		if err != nil {
			log.Fatalf("[-] Sweep error: %v", err)
		}
		fmt.Printf("[*] Sampled %d pages\n", report.Pages)
		for _, r := range report.Results {
			fmt.Printf("[>] %-16s %-16s h=%-3d v=%-3d: %d regions -> %d groups\n",
				r.Preset, r.Category, r.Horizontal, r.Vertical, r.Regions, r.Groups)
		}
		fmt.Printf("[+++] Report saved: %s\n", reportPath)
		return
	}

	records, err := project.Run()
	if err != nil {
		log.Fatalf("[-] Extraction error: %v", err)
	}

	if len(records) == 0 {
		fmt.Println("[!] No highlighted content or red annotations found.")
		return
	}

	printReport(records)
	fmt.Printf("[+++] Done! Output: %s\n", *outputPtr)
}

// printReport mirrors the per-category summary users calibrate against:
// group counts plus how many raw regions merging collapsed.
func printReport(records []region.Record) {
	var yellowGroups, redGroups, yellowRegions, redRegions int
	for _, r := range records {
		switch {
		case strings.HasPrefix(r.Type, "yellow_highlight"):
			yellowGroups++
			yellowRegions += max(r.IndividualRegions, 1)
		case strings.HasPrefix(r.Type, "red_mark"):
			redGroups++
			redRegions += max(r.IndividualRegions, 1)
		}
	}

	fmt.Printf("[*] Extracted %d items\n", len(records))
	fmt.Printf("[*] Color detection: yellow %d regions -> %d groups | red %d regions -> %d groups\n",
		yellowRegions, yellowGroups, redRegions, redGroups)
	for _, r := range records {
		merged := ""
		if r.IndividualRegions > 1 {
			merged = fmt.Sprintf(" (merged %d regions)", r.IndividualRegions)
		}
		fmt.Printf("[>] Page %d: %s%s -> %s\n", r.Page, r.Type, merged, r.Filename)
	}
}

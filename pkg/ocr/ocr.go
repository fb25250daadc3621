// Package ocr turns uploaded receipt files into plain text for the
// extraction pipeline. Images go through light preprocessing and Tesseract;
// PDFs go through pdftotext. Line structure is preserved deliberately: the
// downstream layout strategies (multi-line totals, header merchant scan)
// depend on it.
package ocr

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// ExtractImageText OCRs a receipt image. It runs two passes, one on the
// preprocessed image and one on the original, and keeps whichever recovered
// more text; low-contrast photos often do better raw while clean scans do
// better binarized. An empty result is valid (logo-only or blank scans), not
// an error.
func ExtractImageText(path string) (string, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}

	pre := preprocessForOCR(img)
	tmpFile, err := os.CreateTemp("", "ocr-*.png")
	tmp := path
	if err == nil {
		tmp = tmpFile.Name()
		_ = tmpFile.Close()
		if err := imaging.Save(pre, tmp); err != nil {
			tmp = path
		}
		defer os.Remove(tmp)
	}

	preText, err := runTesseract(tmp)
	if err != nil {
		return "", err
	}
	origText, err := runTesseract(path)
	if err != nil {
		// The preprocessed pass already succeeded; use it.
		origText = ""
	}

	text := preText
	if recoverable(origText) > recoverable(preText) {
		text = origText
	}
	log.Printf("ocr %s: recovered %d chars (pre=%d orig=%d)", path, len(text), len(preText), len(origText))
	return tidyText(text), nil
}

func runTesseract(path string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage("eng")
	client.SetImage(path)
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return text, nil
}

// recoverable counts letters and digits, ignoring the punctuation noise OCR
// produces on poor scans.
func recoverable(s string) int {
	n := 0
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			n++
		}
	}
	return n
}

// tidyText trims trailing whitespace per line and collapses runs of blank
// lines, keeping line boundaries intact for the layout-sensitive strategies.
func tidyText(s string) string {
	var out []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n")) + "\n"
}

// snippet shortens text for log lines.
func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

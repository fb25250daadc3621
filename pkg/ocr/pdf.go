package ocr

import (
	"bytes"
	"fmt"
	"os/exec"
)

// ExtractPDFText pulls the text layer out of a PDF with pdftotext (poppler).
// -layout keeps the visual line structure, which the extraction strategies
// rely on. A PDF with no text layer (a scanned document) yields an empty
// string, which is a valid result.
func ExtractPDFText(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext %s: %v (%s)", path, err, snippet(stderr.String(), 120))
	}
	return tidyText(stdout.String()), nil
}

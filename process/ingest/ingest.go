// Package ingest drives receipt processing: it takes an uploaded file, runs
// the OCR/PDF text step, feeds the text to the extraction pipeline, and moves
// the Receipt row to completed or failed. It also provides the directory
// scanner/watcher used by the standalone job.
package ingest

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gorm.io/gorm"

	"receipt-recon-backend/models"
	"receipt-recon-backend/pkg/extract"
	"receipt-recon-backend/pkg/ocr"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
}

// ReadText produces the plain text for a stored receipt file, along with the
// source kind the pipeline should record. Unsupported or unreadable files are
// the input-unreadable case: the caller marks the receipt failed.
func ReadText(fullPath string) (string, extract.SourceKind, error) {
	ext := strings.ToLower(filepath.Ext(fullPath))
	switch {
	case ext == ".pdf":
		text, err := ocr.ExtractPDFText(fullPath)
		return text, extract.SourceDocument, err
	case ext == ".txt":
		b, err := os.ReadFile(fullPath)
		return string(b), extract.SourceDocument, err
	case imageExts[ext]:
		text, err := ocr.ExtractImageText(fullPath)
		return text, extract.SourceImage, err
	}
	return "", "", fmt.Errorf("unsupported receipt file type %q", ext)
}

// ProcessReceipt runs the single extraction attempt for a receipt. On a text
// failure the row moves to failed with no fields populated; otherwise it moves
// to completed, even when every field came back nil (no-signal is not an
// error).
func ProcessReceipt(db *gorm.DB, rec *models.Receipt, fullPath string) error {
	text, kind, err := ReadText(fullPath)
	if err != nil {
		rec.Status = models.ReceiptStatusFailed
		rec.FailedReason = err.Error()
		if dbErr := db.Save(rec).Error; dbErr != nil {
			return fmt.Errorf("save failed receipt: %w", dbErr)
		}
		return err
	}

	fields := extract.Extract(text, kind)
	rec.RawText = text
	rec.ExtractedAmount = fields.Amount
	rec.ExtractedDate = fields.Date
	rec.ExtractedMerchant = fields.Merchant
	rec.AmountSource = fields.AmountSource
	rec.DateSource = fields.DateSource
	rec.MerchantSource = fields.MerchantSource
	rec.Status = models.ReceiptStatusCompleted
	rec.FailedReason = ""
	if err := db.Save(rec).Error; err != nil {
		return fmt.Errorf("save receipt: %w", err)
	}
	log.Printf("processed receipt id=%d file=%s amount=%v date=%v merchant=%v",
		rec.ID, rec.FileName, deref(fields.Amount), derefS(fields.Date), derefS(fields.Merchant))
	return nil
}

func deref(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func derefS(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// Options configures a scanner/watcher run.
type Options struct {
	Dir     string
	Watch   bool
	Workers int
	DryRun  bool
	Verbose bool
}

// Run scans Dir for receipt files with pending rows, processes them through a
// worker pool, and optionally keeps watching for new files. Receipts are
// looked up by stored file name; files without a row are skipped (the upload
// handler owns row creation).
func Run(db *gorm.DB, opts Options) error {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	files := listReceiptFiles(opts.Dir)
	log.Printf("ingest: scanning %d files in %s (workers=%d)", len(files), opts.Dir, workers)

	fileCh := make(chan string, 1024)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				processFile(db, opts, name)
			}
		}()
	}

	for _, f := range files {
		fileCh <- f
	}

	if !opts.Watch {
		close(fileCh)
		wg.Wait()
		return nil
	}
	return watchDirectory(opts, fileCh)
}

func processFile(db *gorm.DB, opts Options, name string) {
	var rec models.Receipt
	err := db.Where("file_name = ? AND status IN ?", name,
		[]string{models.ReceiptStatusPending, models.ReceiptStatusProcessing}).First(&rec).Error
	if err != nil {
		if opts.Verbose {
			log.Printf("ingest: no pending receipt for %s", name)
		}
		return
	}
	full := filepath.Join(opts.Dir, name)
	if opts.DryRun {
		text, kind, err := ReadText(full)
		if err != nil {
			log.Printf("DRY: %s unreadable: %v", name, err)
			return
		}
		f := extract.Extract(text, kind)
		log.Printf("DRY: %s amount=%v (%s) date=%v merchant=%v", name, deref(f.Amount), f.AmountSource, derefS(f.Date), derefS(f.Merchant))
		return
	}
	if err := ProcessReceipt(db, &rec, full); err != nil {
		log.Printf("ingest: receipt %s failed: %v", name, err)
	}
}

func listReceiptFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func isSupportedExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".pdf" || ext == ".txt" || imageExts[ext]
}

// watchDirectory feeds newly created files into fileCh, debounced so partial
// writes settle before processing.
func watchDirectory(opts Options, fileCh chan<- string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(opts.Dir); err != nil {
		return err
	}
	log.Printf("ingest: watching %s (debounced)", opts.Dir)

	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				close(fileCh)
				return nil
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				name := filepath.Base(ev.Name)
				if isSupportedExt(name) {
					pending[name] = time.Now()
				}
			}
		case <-ticker.C:
			now := time.Now()
			for name, t := range pending {
				if now.Sub(t) > 300*time.Millisecond { // stable
					fileCh <- name
					delete(pending, name)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				close(fileCh)
				return nil
			}
			log.Printf("ingest: watch error: %v", err)
		}
	}
}

package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// RotatingWriter writes log output to weekly files, starting a numbered
// continuation file when the active one exceeds the size limit. Files older
// than the retention period are removed by a background sweep.
type RotatingWriter struct {
	logDir      string
	currentFile *os.File
	currentWeek string
	retention   time.Duration
	maxFileSize int64
	currentSize atomic.Int64
	mu          sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	cleanupDone chan struct{}
}

var numberedFileRegex = regexp.MustCompile(`api-\d{4}-W\d{2}_(\d{2})\.log$`)

// NewRotatingWriter creates a writer for logDir keeping retentionWeeks of
// history and capping each file at maxFileSize bytes.
func NewRotatingWriter(logDir string, retentionWeeks int, maxFileSize int64) *RotatingWriter {
	ctx, cancel := context.WithCancel(context.Background())
	return &RotatingWriter{
		logDir:      logDir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		ctx:         ctx,
		cancel:      cancel,
		cleanupDone: make(chan struct{}),
	}
}

// weekKey returns the ISO week key in YYYY-Www format
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Write appends to the active log file, rotating first when the week changed
// or the size limit is hit.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	currentWeek := weekKey(time.Now())
	needsRotation := w.currentWeek != currentWeek

	if w.maxFileSize > 0 && !needsRotation {
		size := w.currentSize.Load()
		if size >= w.maxFileSize || size+int64(len(p)) > w.maxFileSize {
			needsRotation = true
			w.currentSize.Store(w.maxFileSize)
		}
	}

	if needsRotation {
		if err := w.rotate(currentWeek); err != nil {
			return 0, err
		}
	}

	if w.currentFile == nil {
		return 0, fmt.Errorf("no log file available")
	}

	n, err := w.currentFile.Write(p)
	w.currentSize.Add(int64(n))
	return n, err
}

// rotate switches to the file for targetWeek (caller must hold the lock)
func (w *RotatingWriter) rotate(targetWeek string) error {
	if w.currentFile != nil {
		if err := w.currentFile.Close(); err != nil {
			slog.Warn("Failed to close log file during rotation", "error", err)
		}
	}

	sizeRotation := w.maxFileSize > 0 && w.currentSize.Load() >= w.maxFileSize
	fileName, resetSize := w.pickLogFile(targetWeek, sizeRotation)

	logPath := filepath.Join(w.logDir, fileName)
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	w.currentFile = file
	w.currentWeek = targetWeek

	if resetSize {
		w.currentSize.Store(0)
	} else if info, err := os.Stat(logPath); err == nil {
		w.currentSize.Store(info.Size())
	}

	return nil
}

// pickLogFile decides which file the week's output goes to: the base weekly
// file while it has room, otherwise the next numbered continuation.
func (w *RotatingWriter) pickLogFile(targetWeek string, sizeRotation bool) (string, bool) {
	baseName := fmt.Sprintf("api-%s.log", targetWeek)
	basePath := filepath.Join(w.logDir, baseName)

	if !sizeRotation {
		info, err := os.Stat(basePath)
		if err != nil || w.maxFileSize == 0 || info.Size() < w.maxFileSize {
			return baseName, false
		}
	}

	highest, lastPath, lastSize := w.highestNumberedFile(targetWeek)
	if lastPath != "" && lastSize < w.maxFileSize {
		return filepath.Base(lastPath), false
	}

	return fmt.Sprintf("api-%s_%02d.log", targetWeek, highest+1), true
}

// highestNumberedFile finds the continuation file with the highest sequence
// number for the week.
func (w *RotatingWriter) highestNumberedFile(targetWeek string) (int, string, int64) {
	pattern := fmt.Sprintf("api-%s_??.log", targetWeek)
	matches, _ := filepath.Glob(filepath.Join(w.logDir, pattern))

	highest := 0
	var lastPath string
	var lastSize int64

	for _, match := range matches {
		sub := numberedFileRegex.FindStringSubmatch(filepath.Base(match))
		if len(sub) < 2 {
			continue
		}
		num, _ := strconv.Atoi(sub[1])
		if num > highest {
			highest = num
			lastPath = match
			if info, err := os.Stat(match); err == nil {
				lastSize = info.Size()
			} else {
				lastSize = 0
			}
		}
	}

	return highest, lastPath, lastSize
}

// cleanupOldLogs removes log files older than the retention period
func (w *RotatingWriter) cleanupOldLogs() error {
	entries, err := os.ReadDir(w.logDir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := time.Now().Add(-w.retention)
	deleted := 0

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".log" || !numberedFileRegex.MatchString(name) && !weeklyFile(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(w.logDir, name)); err == nil {
				deleted++
			}
		}
	}

	if deleted > 0 {
		// Console only, to avoid recursing into the writer being cleaned
		fmt.Printf("Cleaned up %d old log files\n", deleted)
	}

	return nil
}

var weeklyFileRegex = regexp.MustCompile(`^api-\d{4}-W\d{2}\.log$`)

func weeklyFile(name string) bool {
	return weeklyFileRegex.MatchString(name)
}

// startCleanup runs the retention sweep once a day until Close
func (w *RotatingWriter) startCleanup() {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		defer close(w.cleanupDone)

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				if err := w.cleanupOldLogs(); err != nil {
					slog.Warn("Failed to cleanup old logs", "error", err)
				}
			}
		}
	}()
}

// Close stops the cleanup goroutine and closes the active file
func (w *RotatingWriter) Close() error {
	w.cancel()

	select {
	case <-w.cleanupDone:
	case <-time.After(time.Second):
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentFile != nil {
		return w.currentFile.Close()
	}
	return nil
}

package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultOutputDir = "./mail_output"

// File writes each message to its own .eml file in the output directory
// instead of delivering it. Intended for local development.
type File struct {
	outputDir string
	now       func() time.Time
}

// NewFile creates a File provider writing to cfg.OutputDir,
// or "./mail_output" when unset.
func NewFile(cfg ProviderConfig) *File {
	dir := cfg.OutputDir
	if dir == "" {
		dir = defaultOutputDir
	}
	return &File{outputDir: dir, now: time.Now}
}

func (f *File) GetName() string { return "file" }

// Send writes the message to <timestamp>_<message-id>.eml.
func (f *File) Send(_ context.Context, msg *Message) error {
	if err := os.MkdirAll(f.outputDir, 0o750); err != nil {
		return fmt.Errorf("file: create output dir: %w", err)
	}

	ts := f.now()
	safeID := strings.NewReplacer("/", "_", `\`, "_").Replace(msg.ID)
	path := filepath.Join(f.outputDir, fmt.Sprintf("%s_%s.eml", ts.Format("20060102_150405"), safeID))

	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", ts.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "From: %s\n", msg.From)
	fmt.Fprintf(&b, "To: %s\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\n")
	b.WriteString("\n")
	b.WriteString(msg.Text)

	if err := os.WriteFile(path, []byte(b.String()), 0o640); err != nil {
		return fmt.Errorf("file: write %s: %w", path, err)
	}
	return nil
}

// HealthCheck verifies the output directory can be created.
func (f *File) HealthCheck(_ context.Context) error {
	if err := os.MkdirAll(f.outputDir, 0o750); err != nil {
		return fmt.Errorf("file: output dir not writable: %w", err)
	}
	return nil
}

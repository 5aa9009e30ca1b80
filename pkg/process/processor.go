// Package process runs the post-processing pipeline: it resolves the
// enabled scripts from a profile, feeds them the job's buffer list in
// order, and writes the result. It also provides the directory watch
// mode that post-processes files as a slicer drops them.
package process

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/Kreyren/Krura/pkg/config"
	"github.com/Kreyren/Krura/pkg/gcode"
	"github.com/Kreyren/Krura/pkg/script"
)

// Processor applies a loaded script pipeline to G-code jobs.
type Processor struct {
	scripts []script.Script
	opts    Options
}

// New builds a Processor from the profile and registry. Sections in
// the profile that name no registered script are logged as unused;
// misspelled setting names inside used sections are a hard error.
func New(cfg *config.Config, reg *script.Registry, opts Options) (*Processor, error) {
	scripts, err := reg.LoadScripts(cfg)
	if err != nil {
		return nil, err
	}
	if len(scripts) == 0 {
		return nil, fmt.Errorf("process: profile enables no registered script (registered: %v)", reg.RegisteredNames())
	}
	if unused := cfg.GetUnusedSections(); len(unused) > 0 {
		log.Warnf("profile sections with no registered script: %v", unused)
	}
	if err := cfg.CheckUnusedOptions(); err != nil {
		return nil, err
	}
	return &Processor{scripts: scripts, opts: opts}, nil
}

// Scripts returns the loaded pipeline in execution order.
func (p *Processor) Scripts() []script.Script {
	return p.scripts
}

// Run executes every script over the buffer list in order.
func (p *Processor) Run(buffers []string) ([]string, error) {
	var err error
	for _, s := range p.scripts {
		n := len(buffers)
		buffers, err = s.Execute(buffers)
		if err != nil {
			return nil, fmt.Errorf("process: script %s: %w", s.Name(), err)
		}
		if len(buffers) != n {
			return nil, fmt.Errorf("process: script %s changed buffer count from %d to %d", s.Name(), n, len(buffers))
		}
	}
	return buffers, nil
}

// OutputPath derives the output file name for an input path using the
// configured suffix: model.gcode -> model_post.gcode.
func (p *Processor) OutputPath(inPath string) string {
	ext := filepath.Ext(inPath)
	return strings.TrimSuffix(inPath, ext) + p.opts.Output.Suffix + ext
}

// IsOutputPath reports whether path looks like one of our own output
// files, so watch mode never reprocesses what it just wrote.
func (p *Processor) IsOutputPath(path string) bool {
	ext := filepath.Ext(path)
	return strings.HasSuffix(strings.TrimSuffix(path, ext), p.opts.Output.Suffix)
}

// ProcessFile reads inPath, runs the pipeline, and writes outPath.
// An empty outPath derives the name via OutputPath.
func (p *Processor) ProcessFile(inPath, outPath string) error {
	jobID := newJobID()
	logger := log.WithField("job_id", jobID)

	buffers, err := gcode.ReadFile(inPath)
	if err != nil {
		return err
	}
	logger.WithFields(log.Fields{"file": inPath, "buffers": len(buffers)}).Debug("job loaded")

	buffers, err = p.Run(buffers)
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = p.OutputPath(inPath)
	}
	if err := gcode.WriteFile(outPath, buffers, 0o644); err != nil {
		return err
	}
	logger.WithFields(log.Fields{"file": inPath, "output": outPath}).Info("post-processing complete")
	return nil
}

// ProcessStream reads a whole job from r, runs the pipeline, and
// writes the result to w. Used for stdin/stdout operation.
func (p *Processor) ProcessStream(r io.Reader, w io.Writer) error {
	jobID := newJobID()
	logger := log.WithField("job_id", jobID)

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("process: read input: %w", err)
	}
	buffers := gcode.Split(string(data))
	logger.WithField("buffers", len(buffers)).Debug("job loaded")

	buffers, err = p.Run(buffers)
	if err != nil {
		return err
	}
	out := gcode.Join(buffers)
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("process: write output: %w", err)
	}
	logger.WithField("bytes", len(out)).Info("post-processing complete")
	return nil
}

// newJobID returns a short per-run identifier for log correlation.
func newJobID() string {
	return uuid.NewString()[:8]
}

// statSize returns the file size, or -1 if it cannot be read. Watch
// mode uses it to detect files still being written.
func statSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return -1
	}
	return info.Size()
}

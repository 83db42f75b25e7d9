package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nguyentantai21042004/lecture-flow/internal/cache"
	"github.com/nguyentantai21042004/lecture-flow/internal/stageerr"
	"github.com/nguyentantai21042004/lecture-flow/internal/ui"
)

var bannerRule = strings.Repeat("=", 20)

// artifacts holds the fixed file layout inside an output directory.
type artifacts struct {
	dir         string
	audio       string
	transcript  string
	framesDir   string
	frameList   string
	ocr         string
	summary     string
	cleaned     string
	quiz        string
	summaryDocx string
	quizDocx    string
}

func newArtifacts(dir string) artifacts {
	return artifacts{
		dir:         dir,
		audio:       filepath.Join(dir, "audio.wav"),
		transcript:  filepath.Join(dir, "transcription.txt"),
		framesDir:   filepath.Join(dir, "frames"),
		frameList:   filepath.Join(dir, "frames.txt"),
		ocr:         filepath.Join(dir, "ocr_results.txt"),
		summary:     filepath.Join(dir, "summary.txt"),
		cleaned:     filepath.Join(dir, "cleaned.txt"),
		quiz:        filepath.Join(dir, "quiz.txt"),
		summaryDocx: filepath.Join(dir, "summary.docx"),
		quizDocx:    filepath.Join(dir, "quiz.docx"),
	}
}

type step struct {
	name string
	fn   func(context.Context) error
}

// Process orchestrates the entire lecture pipeline
func (p *implProcessor) Process(ctx context.Context, videoPath, outputDir string) error {
	startTime := time.Now()

	if _, err := os.Stat(videoPath); err != nil {
		return stageerr.NewFatal("input", fmt.Errorf("video file %s: %w", videoPath, err))
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return stageerr.NewFatal("input", fmt.Errorf("create output dir: %w", err))
	}

	c, err := cache.New(filepath.Join(outputDir, p.cfg.Cache.DBName), cache.Mode(p.cfg.Cache.Mode), p.logger)
	if err != nil {
		return stageerr.NewFatal("cache", err)
	}
	defer c.Close()

	r := &run{p: p, cache: c, video: videoPath, out: newArtifacts(outputDir)}

	p.logger.Info(ctx, "Processing lecture: %s -> %s", videoPath, outputDir)

	steps := []step{
		{"Audio Extraction", r.extractAudio},
		{"Transcription", r.transcribe},
	}
	if p.cfg.Frames.Skip {
		p.logger.Info(ctx, "Frame extraction and OCR skipped")
	} else {
		steps = append(steps,
			step{"Frame Extraction", r.extractFrames},
			step{"OCR", r.recognize},
		)
	}
	steps = append(steps,
		step{"Summarization", r.summarize},
		step{"Cleaning", r.clean},
		step{"Quiz Generation", r.generateQuiz},
	)

	for _, s := range steps {
		p.banner(ctx, "Starting", s.name)
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", strings.ToLower(s.name), err)
		}
		p.banner(ctx, "Completed", s.name)
	}

	duration := time.Since(startTime)
	p.logger.Info(ctx, "Processing completed in %s", ui.FormatDuration(duration))
	p.report(r.out, duration)
	return nil
}

func (p *implProcessor) banner(ctx context.Context, verb, name string) {
	p.logger.Info(ctx, "%s %s: %s %s", bannerRule, verb, name, bannerRule)
}

// report prints the output paths that exist after the run.
func (p *implProcessor) report(out artifacts, duration time.Duration) {
	if p.progress == nil {
		return
	}
	exists := func(path string) string {
		if _, err := os.Stat(path); err != nil {
			return ""
		}
		return path
	}
	rows := []ui.Row{
		{Label: "Audio", Value: exists(out.audio)},
		{Label: "Transcript", Value: exists(out.transcript)},
		{Label: "Frames", Value: exists(out.frameList)},
		{Label: "OCR", Value: exists(out.ocr)},
		{Label: "Summary", Value: exists(out.summary)},
		{Label: "Cleaned", Value: exists(out.cleaned)},
		{Label: "Quiz", Value: exists(out.quiz)},
	}
	if p.cfg.Export.Docx {
		rows = append(rows,
			ui.Row{Label: "Summary (docx)", Value: exists(out.summaryDocx)},
			ui.Row{Label: "Quiz (docx)", Value: exists(out.quizDocx)},
		)
	}
	rows = append(rows, ui.Row{Label: "Elapsed", Value: ui.FormatDuration(duration)})
	fmt.Fprintln(p.progress, ui.Report("Lecture processed", rows))
}

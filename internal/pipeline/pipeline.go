// Package pipeline wires the full novel → narrated audio run: normalize,
// correct, chunk, synthesize, transcribe, compare, propose, merge.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"novelcast/internal/chunker"
	"novelcast/internal/config"
	"novelcast/internal/dictionary"
	"novelcast/internal/diff"
	"novelcast/internal/helper"
	"novelcast/internal/models"
	"novelcast/internal/report"
	"novelcast/internal/source"
	"novelcast/internal/synthesizer"
	"novelcast/internal/textnorm"

	"github.com/rs/zerolog/log"
)

// ErrMissingChunks is returned when final assembly is attempted with one
// or more chunk audios absent. Assembly is the one step that needs every
// chunk; everything before it degrades per chunk.
var ErrMissingChunks = errors.New("cannot assemble audio, one or more chunks missing")

// SpeechService is the external speech boundary: text in, audio out, and
// audio back to text.
type SpeechService interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Options adjusts one run.
type Options struct {
	Voice  string
	DryRun bool // skip dictionary write-back and final artifact
}

// Summary is the user-visible outcome of a run: counts plus the artifacts
// that partial success produced.
type Summary struct {
	RunID          string
	Chunks         int
	FailedChunks   []int
	Differences    int
	MajorDiffs     int
	Accepted       int
	Rejected       []models.Rejection
	AudioPath      string
	ReportPath     string
	ReportHTMLPath string
	DictionaryPath string
}

type Pipeline struct {
	cfg      *config.Config
	speech   SpeechService
	analyzer synthesizer.Analyzer
}

func New(cfg *config.Config, speech SpeechService, analyzer synthesizer.Analyzer) *Pipeline {
	return &Pipeline{cfg: cfg, speech: speech, analyzer: analyzer}
}

// Run processes one novel file end to end.
func (p *Pipeline) Run(ctx context.Context, path string, opts Options) (*Summary, error) {
	runID, err := helper.GenerateUUID()
	if err != nil {
		return nil, err
	}
	summary := &Summary{RunID: runID}

	raw, err := source.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	text := textnorm.Normalize(raw)
	log.Info().Int("chars", len([]rune(text))).Str("file", filepath.Base(path)).Msg("novel loaded")

	// dictionary snapshot: global tier + per-novel tier, loaded once
	yamlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".yaml"
	doc, err := dictionary.LoadDocument(yamlPath)
	if err != nil {
		return nil, fmt.Errorf("loading dictionary %s: %w", yamlPath, err)
	}
	snapshot := dictionary.Snapshot(p.cfg.ReadingCorrections, doc)
	summary.DictionaryPath = yamlPath

	voice := opts.Voice
	if voice == "" {
		voice = doc.Voice
	}

	corrected := dictionary.Apply(text, snapshot)
	chunks := chunker.Split(corrected, p.cfg.Pipeline.MaxChunkSize)
	summary.Chunks = len(chunks)
	if len(chunks) == 0 {
		log.Warn().Msg("empty input, nothing to do")
		return summary, nil
	}
	log.Info().Int("chunks", len(chunks)).Int("max_size", p.cfg.Pipeline.MaxChunkSize).Msg("text split")

	audio := p.synthesizeAll(ctx, chunks, voice)
	for i, a := range audio {
		if a == nil {
			summary.FailedChunks = append(summary.FailedChunks, i)
		}
	}

	transcripts := p.transcribeAll(ctx, audio)

	originals := make([]string, len(chunks))
	for i, c := range chunks {
		originals[i] = c.Content
	}
	records := diff.Compare(originals, transcripts, p.cfg.Pipeline.DiffThreshold)
	summary.Differences = len(records)

	rep := &report.Report{
		InputFile:   filepath.Base(path),
		Voice:       voice,
		Model:       p.cfg.TTS.Model,
		GeneratedAt: time.Now(),
		Records:     records,
	}
	summary.MajorDiffs = len(rep.Major(p.cfg.Pipeline.MajorThreshold))
	if err := p.writeReports(rep, summary); err != nil {
		log.Error().Err(err).Msg("report write failed, continuing")
	}

	if p.analyzer != nil {
		// flagged sentences carry corrected readings, so context lookup
		// runs against the corrected text; validation stays on the source
		proposals, spoken := synthesizer.New(p.analyzer).Propose(ctx, corrected, records, snapshot)
		for _, d := range spoken {
			ev := log.Info()
			switch d.Type {
			case models.DiffTypeMisread:
				ev = log.Warn()
			case models.DiffTypeSkipped, models.DiffTypeAdded:
			default:
				// outside the documented schema, drop it
				continue
			}
			ev.Str("original", d.Original).Str("spoken", d.Spoken).Str("type", d.Type).Str("note", d.Note).Msg("spoken difference")
		}
		accepted, rejected := dictionary.Validate(proposals, text, snapshot)
		summary.Accepted = len(accepted)
		summary.Rejected = rejected
		for _, r := range rejected {
			log.Debug().Str("surface", r.Surface).Str("reason", r.Reason).Msg("proposal rejected")
		}
		if len(accepted) > 0 && !opts.DryRun {
			doc.Corrections = dictionary.Merge(doc.Corrections, accepted)
			if err := doc.Save(yamlPath); err != nil {
				return summary, fmt.Errorf("saving dictionary: %w", err)
			}
			log.Info().Int("entries", len(accepted)).Str("path", yamlPath).Msg("dictionary updated")
		}
	}

	if opts.DryRun {
		return summary, nil
	}

	audioPath, err := p.assemble(path, runID, audio)
	if err != nil {
		return summary, err
	}
	summary.AudioPath = audioPath
	return summary, nil
}

// synthesizeAll fans chunks out to a bounded worker pool. Results land in
// an index-addressed slice so chunk order survives concurrent dispatch; a
// failed chunk leaves a nil slot and its siblings proceed.
func (p *Pipeline) synthesizeAll(ctx context.Context, chunks []models.Chunk, voice string) [][]byte {
	audio := make([][]byte, len(chunks))

	var wg sync.WaitGroup
	work := make(chan models.Chunk)
	for w := 0; w < p.cfg.Pipeline.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range work {
				data, err := p.speech.Synthesize(ctx, c.Content, voice)
				if err != nil {
					log.Error().Err(err).Int("chunk", c.Index).Msg("synthesis failed")
					continue
				}
				audio[c.Index] = data
				log.Info().Int("chunk", c.Index).Int("bytes", len(data)).Msg("synthesized")
			}
		}()
	}
	for _, c := range chunks {
		work <- c
	}
	close(work)
	wg.Wait()
	return audio
}

// transcribeAll mirrors synthesizeAll; a missing or failed transcript
// becomes an empty string (best-effort degradation).
func (p *Pipeline) transcribeAll(ctx context.Context, audio [][]byte) []string {
	transcripts := make([]string, len(audio))

	var wg sync.WaitGroup
	work := make(chan int)
	for w := 0; w < p.cfg.Pipeline.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				text, err := p.speech.Transcribe(ctx, audio[i])
				if err != nil {
					log.Warn().Err(err).Int("chunk", i).Msg("transcription failed, skipping chunk")
					continue
				}
				transcripts[i] = text
			}
		}()
	}
	for i := range audio {
		if audio[i] != nil {
			work <- i
		}
	}
	close(work)
	wg.Wait()
	return transcripts
}

func (p *Pipeline) writeReports(rep *report.Report, summary *Summary) error {
	if err := os.MkdirAll(p.cfg.Pipeline.OutputDir, 0o755); err != nil {
		return err
	}

	textPath := filepath.Join(p.cfg.Pipeline.OutputDir, "reading_errors_report.txt")
	f, err := os.Create(textPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := rep.WriteText(f); err != nil {
		return err
	}
	summary.ReportPath = textPath

	htmlPath := filepath.Join(p.cfg.Pipeline.OutputDir, "reading_errors_report.html")
	hf, err := os.Create(htmlPath)
	if err != nil {
		return err
	}
	defer hf.Close()
	if err := rep.WriteHTML(hf); err != nil {
		return err
	}
	summary.ReportHTMLPath = htmlPath
	return nil
}

// assemble concatenates chunk audio in index order into the final mp3.
// Every chunk is required here; a hole means the run failed.
func (p *Pipeline) assemble(path, runID string, audio [][]byte) (string, error) {
	var missing []int
	total := 0
	for i, a := range audio {
		if a == nil {
			missing = append(missing, i)
			continue
		}
		total += len(a)
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: chunks %v", ErrMissingChunks, missing)
	}

	if err := os.MkdirAll(p.cfg.Pipeline.OutputDir, 0o755); err != nil {
		return "", err
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(p.cfg.Pipeline.OutputDir, fmt.Sprintf("%s_%s.mp3", stem, runID[:8]))

	out := make([]byte, 0, total)
	for _, a := range audio {
		out = append(out, a...)
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return "", err
	}
	log.Info().Str("path", outPath).Int("bytes", total).Msg("audio assembled")
	return outPath, nil
}

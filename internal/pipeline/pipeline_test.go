package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"novelcast/internal/config"
	"novelcast/internal/dictionary"
	"novelcast/internal/synthesizer"
)

// fakeSpeech echoes text back through a deterministic audio encoding so
// transcription returns exactly what synthesis was given.
type fakeSpeech struct {
	mu         sync.Mutex
	synthCalls int
	lastVoice  string
	failChunks map[string]bool   // synthesis fails when the text contains this key
	misread    map[string]string // transcription substitutes these, simulating misreadings
}

func (f *fakeSpeech) Synthesize(_ context.Context, text, voice string) ([]byte, error) {
	f.mu.Lock()
	f.synthCalls++
	f.lastVoice = voice
	f.mu.Unlock()
	for marker := range f.failChunks {
		if strings.Contains(text, marker) {
			return nil, errors.New("synthesis rejected")
		}
	}
	return []byte("MP3:" + text), nil
}

func (f *fakeSpeech) Transcribe(_ context.Context, audio []byte) (string, error) {
	text := strings.TrimPrefix(string(audio), "MP3:")
	for from, to := range f.misread {
		text = strings.ReplaceAll(text, from, to)
	}
	return text, nil
}

type fakeAnalyzer struct {
	proposals map[string]any
	requests  []synthesizer.AnalysisRequest
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req synthesizer.AnalysisRequest) (*synthesizer.AnalysisResult, error) {
	f.requests = append(f.requests, req)
	return &synthesizer.AnalysisResult{Proposals: f.proposals}, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		TTS: config.TTSConfig{Model: "tts-1", Voice: "fable"},
		Pipeline: config.PipelineConfig{
			MaxChunkSize:   4000,
			Workers:        2,
			DiffThreshold:  0.95,
			MajorThreshold: 0.9,
			OutputDir:      t.TempDir(),
		},
	}
}

func writeNovel(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	speech := &fakeSpeech{}
	p := New(cfg, speech, nil)

	novel := "彼は静かに頷いた。\n\nそれから窓の外を見た。"
	path := writeNovel(t, t.TempDir(), "novel.txt", novel)

	summary, err := p.Run(context.Background(), path, Options{Voice: "fable"})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Chunks != 1 {
		t.Errorf("Chunks = %d, want 1", summary.Chunks)
	}
	if len(summary.FailedChunks) != 0 {
		t.Errorf("FailedChunks = %v", summary.FailedChunks)
	}
	// transcription echoes the source so nothing should be flagged
	if summary.Differences != 0 {
		t.Errorf("Differences = %d, want 0", summary.Differences)
	}

	data, err := os.ReadFile(summary.AudioPath)
	if err != nil {
		t.Fatalf("assembled audio missing: %v", err)
	}
	if !strings.HasPrefix(string(data), "MP3:") {
		t.Errorf("unexpected audio content: %q", data[:10])
	}
	if !strings.HasPrefix(filepath.Base(summary.AudioPath), "novel_") {
		t.Errorf("AudioPath = %s", summary.AudioPath)
	}

	for _, reportPath := range []string{summary.ReportPath, summary.ReportHTMLPath} {
		if _, err := os.Stat(reportPath); err != nil {
			t.Errorf("report missing: %v", err)
		}
	}
}

func TestRunAppliesDictionaryBeforeSynthesis(t *testing.T) {
	cfg := testConfig(t)
	cfg.ReadingCorrections = map[string]string{"蒼真": "そうま"}
	speech := &fakeSpeech{}
	p := New(cfg, speech, nil)

	path := writeNovel(t, t.TempDir(), "novel.txt", "彼は蒼真と呼ばれた。")
	summary, err := p.Run(context.Background(), path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(summary.AudioPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "そうま") {
		t.Errorf("correction not applied before synthesis: %q", data)
	}
	if strings.Contains(string(data), "蒼真") {
		t.Errorf("original surface survived correction: %q", data)
	}
}

func TestRunFailedChunkBlocksAssembly(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pipeline.MaxChunkSize = 20
	speech := &fakeSpeech{failChunks: map[string]bool{"二段落目": true}}
	p := New(cfg, speech, nil)

	novel := "一段落目の本文がここにある。\n\n二段落目の本文がここにある。"
	path := writeNovel(t, t.TempDir(), "novel.txt", novel)

	summary, err := p.Run(context.Background(), path, Options{})
	if !errors.Is(err, ErrMissingChunks) {
		t.Fatalf("err = %v, want ErrMissingChunks", err)
	}
	if len(summary.FailedChunks) != 1 {
		t.Errorf("FailedChunks = %v, want one entry", summary.FailedChunks)
	}
	if summary.AudioPath != "" {
		t.Errorf("AudioPath should be empty on failed assembly, got %s", summary.AudioPath)
	}
	// reports still get written for the chunks that survived
	if _, statErr := os.Stat(summary.ReportPath); statErr != nil {
		t.Errorf("report missing: %v", statErr)
	}
}

func TestRunDryRunSkipsArtifacts(t *testing.T) {
	cfg := testConfig(t)
	speech := &fakeSpeech{}
	analyzer := &fakeAnalyzer{proposals: map[string]any{"蒼真": "そうま"}}
	p := New(cfg, speech, analyzer)

	dir := t.TempDir()
	path := writeNovel(t, dir, "novel.txt", "彼は蒼真と呼ばれた。")

	summary, err := p.Run(context.Background(), path, Options{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if summary.AudioPath != "" {
		t.Errorf("dry run should not assemble audio, got %s", summary.AudioPath)
	}
	if summary.Accepted != 1 {
		t.Errorf("Accepted = %d, want 1", summary.Accepted)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "novel.yaml")); !os.IsNotExist(statErr) {
		t.Error("dry run should not write the per-novel dictionary")
	}
}

func TestRunPersistsAcceptedProposals(t *testing.T) {
	cfg := testConfig(t)
	speech := &fakeSpeech{}
	analyzer := &fakeAnalyzer{proposals: map[string]any{"蒼真": "そうま"}}
	p := New(cfg, speech, analyzer)

	dir := t.TempDir()
	path := writeNovel(t, dir, "novel.txt", "彼は蒼真と呼ばれた。")

	summary, err := p.Run(context.Background(), path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Accepted != 1 {
		t.Fatalf("Accepted = %d, want 1; rejected: %+v", summary.Accepted, summary.Rejected)
	}

	doc, err := dictionary.LoadDocument(summary.DictionaryPath)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Corrections["蒼真"] != "そうま" {
		t.Errorf("accepted proposal not persisted: %v", doc.Corrections)
	}
}

func TestRunAnalysisContextUsesCorrectedText(t *testing.T) {
	cfg := testConfig(t)
	cfg.ReadingCorrections = map[string]string{"蒼真": "そうま"}
	// the flagged sentence carries the applied reading, so its context
	// must be located in the corrected text, not the raw source
	speech := &fakeSpeech{misread: map[string]string{"そうま": "あおま"}}
	analyzer := &fakeAnalyzer{}
	p := New(cfg, speech, analyzer)

	path := writeNovel(t, t.TempDir(), "novel.txt", "第一章の始まりである。彼は蒼真と呼ばれた。")
	summary, err := p.Run(context.Background(), path, Options{DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Differences == 0 {
		t.Fatal("misread transcription should be flagged")
	}
	if len(analyzer.requests) != 1 {
		t.Fatalf("want one analysis call, got %d", len(analyzer.requests))
	}
	req := analyzer.requests[0]
	if !strings.Contains(req.Context, "彼はそうまと呼ばれた") {
		t.Errorf("context missing the corrected sentence: %q", req.Context)
	}
	if !strings.Contains(req.Context, "第一章の始まり") {
		t.Errorf("context lookup fell back to the bare sentence: %q", req.Context)
	}
}

func TestRunEmptyInput(t *testing.T) {
	cfg := testConfig(t)
	p := New(cfg, &fakeSpeech{}, nil)

	path := writeNovel(t, t.TempDir(), "empty.txt", "")
	summary, err := p.Run(context.Background(), path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Chunks != 0 {
		t.Errorf("Chunks = %d, want 0", summary.Chunks)
	}
}

func TestRunUsesDocumentVoice(t *testing.T) {
	cfg := testConfig(t)
	speech := &fakeSpeech{}
	p := New(cfg, speech, nil)

	dir := t.TempDir()
	path := writeNovel(t, dir, "novel.txt", "彼は静かに頷いた。")
	doc := &dictionary.Document{Voice: "nova"}
	if err := doc.Save(filepath.Join(dir, "novel.yaml")); err != nil {
		t.Fatal(err)
	}

	if _, err := p.Run(context.Background(), path, Options{}); err != nil {
		t.Fatal(err)
	}
	if speech.lastVoice != "nova" {
		t.Errorf("voice = %q, want per-novel voice", speech.lastVoice)
	}
}

// Package report renders difference records for human review. The text
// form is write-only; nothing in the pipeline parses it back.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"novelcast/internal/models"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

type Report struct {
	InputFile   string
	Voice       string
	Model       string
	GeneratedAt time.Time
	Records     []models.DifferenceRecord
}

// WriteText renders the plain reading-errors report.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	rule := strings.Repeat("=", 80)

	b.WriteString(rule + "\n")
	b.WriteString("TTS読み間違い検出レポート\n")
	fmt.Fprintf(&b, "入力ファイル: %s\n", r.InputFile)
	fmt.Fprintf(&b, "音声: %s / モデル: %s\n", r.Voice, r.Model)
	fmt.Fprintf(&b, "検出日時: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	b.WriteString(rule + "\n\n")

	fmt.Fprintf(&b, "検出された差異: %d 箇所\n\n", len(r.Records))
	b.WriteString(strings.Repeat("-", 80) + "\n\n")

	for i, rec := range r.Records {
		fmt.Fprintf(&b, "【%d】チャンク %d (一致率: %.1f%%)\n", i+1, rec.ChunkIndex+1, rec.Ratio*100)
		fmt.Fprintf(&b, "  原文: %s\n", rec.Original)
		fmt.Fprintf(&b, "  認識: %s\n\n", rec.Transcribed)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Markdown renders the report for the published docs directory.
func (r *Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# TTS読み間違い検出レポート\n\n")
	fmt.Fprintf(&b, "- 入力ファイル: %s\n", r.InputFile)
	fmt.Fprintf(&b, "- 音声: %s / モデル: %s\n", r.Voice, r.Model)
	fmt.Fprintf(&b, "- 検出日時: %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "検出された差異: %d 箇所\n\n", len(r.Records))

	for i, rec := range r.Records {
		fmt.Fprintf(&b, "## %d. チャンク %d (一致率 %.1f%%)\n\n", i+1, rec.ChunkIndex+1, rec.Ratio*100)
		fmt.Fprintf(&b, "- 原文: %s\n", rec.Original)
		fmt.Fprintf(&b, "- 認識: %s\n\n", rec.Transcribed)
	}
	return b.String()
}

// WriteHTML converts the markdown form to HTML.
func (r *Report) WriteHTML(w io.Writer) error {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
	var buf bytes.Buffer
	if err := md.Convert([]byte(r.Markdown()), &buf); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Major filters records whose ratio falls below the display threshold.
func (r *Report) Major(threshold float64) []models.DifferenceRecord {
	var major []models.DifferenceRecord
	for _, rec := range r.Records {
		if rec.Ratio < threshold {
			major = append(major, rec)
		}
	}
	return major
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"novelcast/internal/config"
	"novelcast/internal/helper"
	"novelcast/internal/pipeline"
	"novelcast/internal/reading"
	"novelcast/internal/source"
	"novelcast/internal/synthesizer"
	"novelcast/internal/textnorm"
	"novelcast/internal/tts"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	filePath := flag.String("file", "", "Path to the novel file")
	check := flag.Bool("check", false, "Offline reading check only (no API calls)")
	dryRun := flag.Bool("dry-run", false, "Run without saving dictionary or final audio")
	voice := flag.String("voice", "", "Voice identifier override")
	threshold := flag.Float64("threshold", 0, "Difference acceptance threshold override")
	flag.Parse()

	if *filePath == "" {
		log.Fatal().Msg("Please provide a novel file using the -file flag")
	}

	if *check {
		checkNovel(*filePath)
		return
	}

	runPipeline(context.Background(), *filePath, *voice, *threshold, *dryRun)
}

func runPipeline(ctx context.Context, filePath, voice string, threshold float64, dryRun bool) {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if threshold > 0 {
		cfg.Pipeline.DiffThreshold = threshold
	}

	speech := tts.NewClient(&cfg.TTS)
	analyzer := synthesizer.NewLLMAnalyzer(&cfg.LLM)

	p := pipeline.New(cfg, speech, analyzer)
	summary, err := p.Run(ctx, filePath, pipeline.Options{Voice: voice, DryRun: dryRun})
	if summary != nil {
		log.Info().Msg("Run summary:")
		helper.PrettyPrint(summary)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Pipeline failed")
	}
}

// checkNovel lists likely misreadings without touching any API.
func checkNovel(filePath string) {
	raw, err := source.Load(filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading novel")
	}

	result, err := reading.Check(textnorm.Normalize(raw))
	if err != nil {
		log.Fatal().Err(err).Msg("Error running reading check")
	}

	log.Info().Int("words", len(result.Words)).Int("unknown", len(result.Unknown)).Msg("Reading check complete")
	for _, w := range result.Words {
		marker := "  "
		if w.Proper {
			marker = "★ "
		}
		fmt.Printf("%s%s -> %s (x%d)\n", marker, w.Surface, w.Reading, w.Count)
	}
	if len(result.Unknown) > 0 {
		fmt.Println("\n未知語（読み推定不可）:")
		for _, w := range result.Unknown {
			fmt.Printf("  %s\n", w)
		}
	}
}

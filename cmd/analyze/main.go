package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"efficiency_optimizer/pkg/core/export"
	"efficiency_optimizer/pkg/core/kpi"
	"efficiency_optimizer/pkg/core/llm"
	"efficiency_optimizer/pkg/core/memory"
	"efficiency_optimizer/pkg/core/pipeline"
	"efficiency_optimizer/pkg/models"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	var (
		inputPath     = flag.String("input", "", "path to the source document (xlsx, csv, pdf, html, json)")
		company       = flag.String("company", "", "company name")
		industry      = flag.String("industry", "", "industry for benchmark lookup (optional)")
		language      = flag.String("language", "", "document language hint, ISO 639-1 (optional)")
		providerName  = flag.String("provider", "gemini", "llm provider: gemini, deepseek, qwen, or none")
		intakePath    = flag.String("questionnaire", "", "intake questionnaire JSON (optional)")
		benchmarkFile = flag.String("benchmarks", "config/benchmarks.yaml", "yaml benchmark overrides")
		outDir        = flag.String("out", ".", "directory for exported results")
		journalPath   = flag.String("memory-journal", "analysis_memory.jsonl", "local memory journal file")
		verbose       = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *inputPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	data, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("Error: cannot read input file: %v", err)
	}

	var provider llm.Provider
	if *providerName != "none" {
		provider, err = llm.NewProvider(*providerName)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
	}

	table, err := kpi.LoadBenchmarkTable(*benchmarkFile)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	ctx := context.Background()
	store := buildStore(ctx, *journalPath)

	orch := pipeline.NewOrchestrator(provider, table, store)
	if provider != nil && os.Getenv("GEMINI_API_KEY") != "" {
		orch.SetEmbedder(&memory.GeminiEmbedder{})
	}

	var questionnaire *models.Questionnaire
	if *intakePath != "" {
		raw, err := os.ReadFile(*intakePath)
		if err != nil {
			log.Fatalf("Error: cannot read questionnaire: %v", err)
		}
		questionnaire = &models.Questionnaire{}
		if err := json.Unmarshal(raw, questionnaire); err != nil {
			log.Fatalf("Error: cannot parse questionnaire: %v", err)
		}
	}

	result, err := orch.Run(ctx, pipeline.Request{
		Filename:      filepath.Base(*inputPath),
		Data:          data,
		CompanyName:   *company,
		Industry:      *industry,
		Language:      *language,
		Questionnaire: questionnaire,
	})
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	jsonOut, err := export.ToJSON(result)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	csvOut, err := export.ToCSV(result)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	htmlOut, err := export.NarrativeHTML(result)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	jsonPath := filepath.Join(*outDir, result.AnalysisID+".json")
	csvPath := filepath.Join(*outDir, result.AnalysisID+".csv")
	htmlPath := filepath.Join(*outDir, result.AnalysisID+".html")
	if err := os.WriteFile(jsonPath, jsonOut, 0o644); err != nil {
		log.Fatalf("Error: %v", err)
	}
	if err := os.WriteFile(csvPath, csvOut, 0o644); err != nil {
		log.Fatalf("Error: %v", err)
	}
	if err := os.WriteFile(htmlPath, htmlOut, 0o644); err != nil {
		log.Fatalf("Error: %v", err)
	}

	fmt.Printf("Analysis %s complete.\n", result.AnalysisID)
	fmt.Printf("Efficiency score: %.1f / 100\n", result.EfficiencyScore)
	fmt.Printf("Inefficiencies: %d\n", len(result.Inefficiencies))
	fmt.Printf("Results written to %s, %s and %s\n", jsonPath, csvPath, htmlPath)
	fmt.Println()
	fmt.Println(result.NarrativeSummary)
}

// buildStore prefers Postgres when DATABASE_URL is configured and falls
// back to the local journal otherwise.
func buildStore(ctx context.Context, journalPath string) memory.Store {
	local, err := memory.NewLocalStoreWithJournal(journalPath)
	if err != nil {
		log.Printf("Warning: cannot open memory journal: %v", err)
		local = memory.NewLocalStore()
	}
	if os.Getenv("DATABASE_URL") == "" {
		return memory.NewFallbackStore(nil, local)
	}
	if err := memory.InitDB(ctx); err != nil {
		log.Printf("Warning: database unavailable, using local memory only: %v", err)
		return memory.NewFallbackStore(nil, local)
	}
	pg := memory.NewPGStore()
	if err := pg.EnsureSchema(ctx); err != nil {
		log.Printf("Warning: schema setup failed, using local memory only: %v", err)
		return memory.NewFallbackStore(nil, local)
	}
	return memory.NewFallbackStore(pg, local)
}

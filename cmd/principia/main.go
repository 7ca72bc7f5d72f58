package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"principia/internal/config"
	"principia/internal/llmclient"
	"principia/internal/model"
	"principia/internal/narrative"
	"principia/internal/pipeline"
	"principia/internal/util/jsonutil"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "principia",
		Short:         "First-principles concept analysis",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newAnalyzeCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	var (
		domain     string
		depth      string
		audience   string
		complexity string
		outDir     string
	)
	cmd := &cobra.Command{
		Use:   "analyze <concept>",
		Short: "Run the four-stage analysis pipeline for one concept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if os.Getenv("GEMINI_API_KEY") == "" {
				return fmt.Errorf("GEMINI_API_KEY is not set")
			}

			in, err := model.NewConceptInput(args[0], domain, depth)
			if err != nil {
				return err
			}
			aud, err := narrative.ParseAudience(audience)
			if err != nil {
				return err
			}
			cx, err := narrative.ParseComplexity(complexity)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := context.Background()
			gemini, err := llmclient.NewGeminiClient(ctx, cfg.Model, cfg.Temperature, cfg.MaxOutputTokens)
			if err != nil {
				return err
			}
			llm := llmclient.Wrap(gemini,
				llmclient.WithLogging(logger),
				llmclient.WithTimeout(cfg.StageTimeout),
			)
			defer func() { _ = llm.Close() }()

			orch := pipeline.New(llm,
				pipeline.WithLogger(logger),
				pipeline.WithMaxRetries(cfg.MaxRetries),
			)
			m, err := orch.Run(ctx, in)
			if err != nil {
				return err
			}
			vm, err := narrative.Render(&m, aud, cx)
			if err != nil {
				return err
			}

			if err := writeJSON(outDir, "model.json", m); err != nil {
				return err
			}
			if err := writeJSON(outDir, "narrative.json", vm); err != nil {
				return err
			}
			log.Printf("wrote model.json and narrative.json to %s", outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "general", "knowledge domain")
	cmd.Flags().StringVar(&depth, "depth", "short", "analysis depth: short or exhaustive")
	cmd.Flags().StringVar(&audience, "audience", "general", "narrative audience: students, professionals or general")
	cmd.Flags().StringVar(&complexity, "complexity", "intermediate", "narrative complexity level")
	cmd.Flags().StringVar(&outDir, "out", "out", "output directory")
	return cmd
}

func writeJSON(dir, name string, v any) error {
	b, err := jsonutil.MarshalNoEscapeIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), append(b, '\n'), 0o644)
}

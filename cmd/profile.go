package cmd

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/resume"
	"github.com/spigell/resume-matcher/internal/search"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Extract the resume profile and search terms without searching",
	Run: func(cmd *cobra.Command, _ []string) {
		profile(cmd)
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)

	profileCmd.Flags().StringP("resume", "r", "", "path to a plain text resume")
}

type profileOutput struct {
	Profile *resume.Profile `json:"profile"`
	Terms   []string        `json:"terms"`
}

func profile(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := bindFlags(cmd); err != nil {
		log.Fatalf("binding flags: %s", err)
	}

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	text, err := readResume(config.Resume)
	if err != nil {
		logger.Fatal("reading the resume", zap.Error(err))
	}

	analyzer, err := newAnalyzer(ctx, &config.AI, logger)
	if err != nil {
		logger.Fatal("creating the semantic analyzer", zap.Error(err))
	}

	extractor := resume.NewExtractor(analyzer, logger, resume.Options{
		Insights:     config.Insights,
		MaxLogLength: config.AI.Gemini.MaxLogLength,
	})

	p, err := extractor.Extract(ctx, text)
	if err != nil {
		logger.Fatal("extracting the resume profile", zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(profileOutput{
		Profile: p,
		Terms:   search.GenerateTerms(p.JobHistory, p.Attributes, p.Domain),
	}); err != nil {
		logger.Fatal("printing the profile", zap.Error(err))
	}
}

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/ai/gemini"
	"github.com/spigell/resume-matcher/internal/filtering"
	"github.com/spigell/resume-matcher/internal/listing"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/matching"
	"github.com/spigell/resume-matcher/internal/pipeline"
	"github.com/spigell/resume-matcher/internal/resume"
	"github.com/spigell/resume-matcher/internal/secrets"
)

const (
	PromptShowReport          = "Show ranked postings"
	PromptReportByCompany     = "Report by company"
	PromptPostingsToFile      = "Dump ranked postings to file"
	PromptAppendToExcludeFile = "Append all postings to exclude file"
	PromptExit                = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowReport, PromptReportByCompany, PromptPostingsToFile, PromptAppendToExcludeFile, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Match a resume against job postings and rank them",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume", "r", "", "path to a plain text resume")
	runCmd.Flags().StringP("location", "l", "", "location to search postings in")
	runCmd.Flags().BoolP("auto-approve", "y", false, "print the ranked postings and exit without prompting")
	runCmd.Flags().StringP("exclude-file", "e", "", "special file with postings to exclude. Default is unset.")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
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
		logger.Fatal("getting a config", zap.Error(err), zap.String("hint", "set resume via --resume or the 'resume' key"))
	}

	logger.Info("starting the resume-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	autoApprove := viper.GetBool("auto-approve")

	text, err := readResume(config.Resume)
	if err != nil {
		logger.Fatal("reading the resume", zap.Error(err))
	}

	location := strings.TrimSpace(config.Location)
	if location == "" && !autoApprove {
		location, err = askLocation()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	analyzer, err := newAnalyzer(ctx, &config.AI, logger)
	if err != nil {
		logger.Fatal("creating the semantic analyzer", zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE, GEMINI_API_KEY or the 'ai.gemini.api-key-file' key"))
	}

	p := newPipeline(config, analyzer, logger)
	result := p.Run(ctx, text, location)

	if result.Status != pipeline.StatusOK {
		logger.Info("exiting", zap.String("reason", string(result.Status)))
		fmt.Println(result.Message)
		return
	}

	if autoApprove {
		printReport(os.Stdout, result)
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		logger.Info("current list of postings", zap.Int("count", result.Ranked.Len()))

		if err := handleAction(action, logger, config, result); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, config *Config, result *pipeline.Result) error {
	switch action {
	case PromptShowReport:
		printReport(os.Stdout, result)
	case PromptReportByCompany:
		pretty, err := json.MarshalIndent(result.Ranked.Postings().ReportByCompany(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(pretty))
	case PromptPostingsToFile:
		file, err := result.Ranked.Postings().DumpToTmpFile()
		if err != nil {
			return err
		}
		logger.Info("postings dumped to file", zap.String("filename", file))
	case PromptAppendToExcludeFile:
		if config.ExcludeFile == "" {
			logger.Warn("exclude file is not set", zap.String("hint", "use --exclude-file or the 'exclude-file' key"))
			return nil
		}
		if err := appendToExcludeFile(config.ExcludeFile, result.Ranked.Postings()); err != nil {
			return err
		}
		logger.Info("appended to exclude file", zap.String("filename", config.ExcludeFile))
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	}
	return nil
}

func appendToExcludeFile(path string, postings *listing.Postings) error {
	excluded, err := listing.ReadExcludedFile(path)
	if err != nil {
		return err
	}

	excluded.Append(postings.ToExcluded(time.Now()))

	return excluded.ToFile(path)
}

func readResume(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func askLocation() (string, error) {
	p := promptui.Prompt{
		Label:   "Location",
		Default: "United States",
	}
	location, err := p.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(location), nil
}

func newAnalyzer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Analyzer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  []string{"GEMINI_API_KEY"},
	})
	if err != nil {
		return nil, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, gemini.Options{
		Model:        cfg.Gemini.Model,
		Timeout:      cfg.Gemini.Timeout,
		MaxRetries:   cfg.Gemini.MaxRetries,
		MaxLogLength: cfg.Gemini.MaxLogLength,
	}, logger.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries)))
	if err != nil {
		return nil, err
	}

	return gemini.NewAnalyzer(generator), nil
}

func newPipeline(config *Config, analyzer ai.Analyzer, log *zap.Logger) *pipeline.Pipeline {
	extractor := resume.NewExtractor(analyzer, log, resume.Options{
		Insights:     config.Insights,
		MaxLogLength: config.AI.Gemini.MaxLogLength,
	})

	source := listing.NewLinkedIn(logger.WithStage(log, "retrieve"), config.UserAgent, config.Search.Timeout)
	retriever := listing.NewRetriever(source, source, log, listing.RetrieverOptions{
		Pacing:     config.Search.Pacing,
		DetailRate: config.Search.DetailRate,
	})

	ranker := matching.NewRanker(matching.NewScorer(analyzer, log), log, matching.RankerOptions{
		Concurrency: config.AI.Concurrency,
		Progress: func(done, total int) {
			log.Info("scoring postings", zap.String("progress", fmt.Sprintf("%d/%d", done, total)))
		},
	})

	return pipeline.New(extractor, retriever, ranker, log, pipeline.Options{
		MaxPerTerm:   config.Search.MaxPerTerm,
		MinimumScore: config.AI.MinimumScore,
		Filters:      filtering.Default(),
		FilterConfig: &filtering.Config{
			Companies:   config.Exclude.Companies,
			ExcludeFile: config.ExcludeFile,
		},
	})
}

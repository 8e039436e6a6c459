package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"manomitra/internal/app"
	"manomitra/internal/config"
	"manomitra/internal/domain"
	"manomitra/internal/infra/gemini"
)

// NewAnalyzeCmd runs the client-direct analysis from the command line.
func NewAnalyzeCmd(configPath *string) *cobra.Command {
	var (
		concerns string
		filePath string
		childAge int
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a parent's concerns with the AI model",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			defer logger.Sync()

			cfg, err := config.Load(loadConfigFile(*configPath))
			if err != nil {
				return err
			}

			req := app.AnalysisRequest{Concerns: concerns, ChildAgeMonths: childAge}
			if filePath != "" {
				att, err := readAttachmentFile(filePath)
				if err != nil {
					return err
				}
				req.Attachment = att
			}

			// Only the client key is used here; the server key stays with the function endpoint.
			key := cfg.Client.AIAPIKey
			model, err := gemini.NewModel(cmd.Context(), gemini.Config{APIKey: key, Model: cfg.AI.Model, BaseURL: cfg.AI.BaseURL})
			if err != nil {
				return err
			}
			analyzer, err := app.NewAnalyzer(app.AnalyzerConfig{
				AIAPIKey: key,
				Timeout:  config.TTLDuration(cfg.AI.Timeout, 0),
			}, model, app.WithLogger(logger))
			if err != nil {
				return err
			}

			summary, err := analyzer.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}
			logger.Debug("analysis complete", zap.String("model", model.Name()))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), summary.Summary)
			return err
		},
	}
	cmd.Flags().StringVar(&concerns, "concerns", "", "the parent's concerns in free text")
	cmd.Flags().StringVar(&filePath, "file", "", "optional image or video to attach")
	cmd.Flags().IntVar(&childAge, "child-age", 0, "child's age in months")
	return cmd
}

func readAttachmentFile(path string) (*domain.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &domain.Attachment{Bytes: data, MIMEType: app.DetectMIMEType(data)}, nil
}

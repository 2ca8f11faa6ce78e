// services/report-svc/cmd/render/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"taskflow/pkg/config"
	"taskflow/pkg/logger"
	"taskflow/services/report-svc/internal/builder"
	"taskflow/services/report-svc/internal/generator"
	"taskflow/services/report-svc/internal/service"
)

// options флаги, общие для всех подкоманд
type options struct {
	input  string
	output string
	format string
	config string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "render",
		Short:        "Render TaskFlow reports without running the HTTP service.",
		Long:         `Reads a report request as JSON (file or stdin) and writes the PDF or XLSX document into the output directory.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.input, "input", "i", "-", "Path to the JSON request, - for stdin.")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", ".", "Directory for the rendered document.")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", "pdf", "Output format: pdf, xlsx.")
	root.PersistentFlags().StringVarP(&opts.config, "config", "c", "", "YAML config file; defaults to the service search paths.")

	root.AddCommand(
		&cobra.Command{
			Use:   "tasks",
			Short: "Task listing with title, filters and summary.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runListing(cmd, opts, false)
			},
		},
		&cobra.Command{
			Use:   "export",
			Short: "Flat task export without title rows.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runListing(cmd, opts, true)
			},
		},
		&cobra.Command{
			Use:   "summary",
			Short: "User productivity summary.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runSummary(cmd, opts)
			},
		},
	)

	return root
}

// setup загружает конфигурацию и собирает сервис. Логи идут в stderr,
// чтобы stdout оставался пригодным для скриптов.
func setup(cmd *cobra.Command, opts *options) (*config.Config, *service.ReportService, generator.Format, error) {
	format, err := generator.ParseFormat(opts.format)
	if err != nil {
		return nil, nil, "", err
	}

	var loaderOpts []config.LoaderOption
	if opts.config != "" {
		loaderOpts = append(loaderOpts, config.WithFile(opts.config))
	}
	cfg, err := config.NewLoader(loaderOpts...).Load()
	if err != nil {
		return nil, nil, "", fmt.Errorf("load config: %w", err)
	}

	logger.InitWithConfig(logger.Config{
		Writer: cmd.ErrOrStderr(),
		Level:  cfg.Log.Level,
		Format: "text",
	})

	return cfg, service.NewReportService(service.ConfigFrom(cfg, nil)), format, nil
}

func runListing(cmd *cobra.Command, opts *options, export bool) error {
	cfg, svc, format, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	var req builder.TaskListingRequest
	if err := readRequest(cmd.InOrStdin(), opts.input, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Title) == "" {
		req.Title = cfg.Report.DefaultTitle
	}
	if err := validate(req); err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd.Context(), cfg)
	defer cancel()

	var payload *service.Payload
	if export {
		payload, err = svc.TaskExport(ctx, req, format)
	} else {
		payload, err = svc.TaskListing(ctx, req, format)
	}
	if err != nil {
		return err
	}
	return writePayload(cmd, opts.output, payload)
}

func runSummary(cmd *cobra.Command, opts *options) error {
	cfg, svc, format, err := setup(cmd, opts)
	if err != nil {
		return err
	}

	var req builder.UserSummaryRequest
	if err := readRequest(cmd.InOrStdin(), opts.input, &req); err != nil {
		return err
	}
	if err := validate(req); err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd.Context(), cfg)
	defer cancel()

	payload, err := svc.UserSummary(ctx, req, format)
	if err != nil {
		return err
	}
	return writePayload(cmd, opts.output, payload)
}

func readRequest(stdin io.Reader, path string, dst any) error {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("could not open request '%s': %w", path, err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request is empty")
		}
		return fmt.Errorf("could not parse request: %w", err)
	}
	return nil
}

func validate(req any) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

func withTimeout(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Report.Timeout > 0 {
		return context.WithTimeout(ctx, cfg.Report.Timeout)
	}
	return context.WithCancel(ctx)
}

func writePayload(cmd *cobra.Command, dir string, p *service.Payload) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, p.Filename)
	if err := os.WriteFile(path, p.Data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
	return err
}

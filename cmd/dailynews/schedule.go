package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dailynews/internal/config"
	"dailynews/internal/mailer"
	"dailynews/internal/pipeline"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Deliver the digest by email on a cron schedule",
	Long: `Runs the pipeline on the configured cron expression and emails the
result to the configured recipients. Topics, hours, recipients and the
schedule itself come from the schedule section of the config file.`,
	RunE: runSchedule,
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if len(cfg.Schedule.Recipients) == 0 {
		return fmt.Errorf("schedule: no recipients configured (set schedule.recipients)")
	}
	if len(cfg.Schedule.Topics) == 0 {
		return fmt.Errorf("schedule: no topics configured (set schedule.topics)")
	}

	orch, err := buildOrchestrator(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := mailer.New(ctx, cfg)
	if err != nil {
		return err
	}

	job := func() {
		if err := runScheduledDigest(ctx, cfg, orch, m); err != nil {
			logger.Error("scheduled digest failed", zap.Error(err))
		}
	}

	if cfg.Schedule.RunOnStart {
		logger.Info("running initial digest")
		job()
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule.Cron, job); err != nil {
		return fmt.Errorf("schedule: invalid cron expression %q: %w", cfg.Schedule.Cron, err)
	}
	c.Start()
	logger.Info("digest scheduled", zap.String("cron", cfg.Schedule.Cron))

	<-ctx.Done()
	logger.Info("shutting down")
	<-c.Stop().Done()
	return nil
}

func runScheduledDigest(ctx context.Context, cfg *config.Config, orch *pipeline.Orchestrator, m mailer.Mailer) error {
	result, err := orch.ProduceSummary(ctx, pipeline.SummaryRequest{
		Topics: cfg.Schedule.Topics,
		Hours:  cfg.Schedule.Hours,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("DailyNews summary for %s", strings.Join(result.Topics, ", "))
	return m.Send(ctx, cfg.Schedule.Recipients, subject, formatResult(result))
}

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"municipal-updates/internal/browser"
	"municipal-updates/internal/config"
	"municipal-updates/internal/observability"
	"municipal-updates/internal/scraper"
	"municipal-updates/internal/sources"
)

// GenericNotice показывается пользователю при любом отказе; детали остаются в логах
const GenericNotice = "Възникна грешка при извличането на новините. Моля, опитайте отново по-късно."

// Отметки прогресса задания
const (
	ProgressStart         = 0
	ProgressSessionReady  = 40
	ProgressSourcesDone   = 70
	ProgressSessionClosed = 80
	ProgressDone          = 100
)

// SessionFactory открывает одну сессию на задание
type SessionFactory func(ctx context.Context) (browser.Session, error)

// ProgressFunc получает проценты 0..100
type ProgressFunc func(percent int)

type Result struct {
	RunID         string
	Table         *scraper.UpdateTable
	Failed        bool
	Notice        string
	RetryDisabled bool
}

// Job соответствует одному нажатию «Извлечи»: сессия, институции подряд, общая таблица
type Job struct {
	cfg        *config.Config
	logger     *observability.Logger
	metrics    *observability.Metrics
	scraper    *scraper.Scraper
	newSession SessionFactory
	progress   ProgressFunc
}

func NewJob(
	cfg *config.Config,
	logger *observability.Logger,
	metrics *observability.Metrics,
	s *scraper.Scraper,
	newSession SessionFactory,
	progress ProgressFunc,
) *Job {
	if progress == nil {
		progress = func(int) {}
	}
	return &Job{
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
		scraper:    s,
		newSession: newSession,
		progress:   progress,
	}
}

// Scrape запускает институции kinds (по умолчанию из конфига) в одной сессии.
// Результат всегда не nil; при отказе таблица пустая, а пользователь видит GenericNotice.
func (j *Job) Scrape(ctx context.Context, kinds ...string) *Result {
	runID := uuid.NewString()
	log := j.logger.With("run_id", runID)
	start := time.Now()

	j.progress(ProgressStart)

	srcs, err := sources.Resolve(j.cfg, kinds...)
	if err != nil {
		return j.fail(log, runID, "resolve sources", err)
	}

	log.Info("Starting job", "sources", len(srcs))

	sess, err := j.newSession(ctx)
	if err != nil {
		return j.fail(log, runID, "open session", err)
	}
	j.progress(ProgressSessionReady)

	tables := make([]*scraper.UpdateTable, 0, len(srcs))
	for i, src := range srcs {
		table, err := j.runSource(ctx, log, sess, src)
		if err != nil {
			j.closeSession(log, sess)
			return j.fail(log, runID, "extract "+src.Descriptor().Kind(), err)
		}
		tables = append(tables, table)

		step := (ProgressSourcesDone - ProgressSessionReady) * (i + 1) / len(srcs)
		j.progress(ProgressSessionReady + step)
	}

	j.closeSession(log, sess)
	j.progress(ProgressSessionClosed)

	combined := scraper.Concat(tables...)
	j.flushMetrics(log)
	j.progress(ProgressDone)

	log.Info("Job completed",
		"records", combined.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return &Result{RunID: runID, Table: combined}
}

func (j *Job) runSource(ctx context.Context, log *observability.Logger, sess browser.Session, src scraper.Source) (*scraper.UpdateTable, error) {
	started := time.Now()
	table, err := j.scraper.Run(ctx, sess, src)
	if j.metrics != nil {
		j.metrics.ObserveRun(src.Descriptor().Institution(), table.Len(), time.Since(started), err)
	}
	if err != nil {
		return nil, err
	}
	log.Info("Source completed",
		"institution", src.Descriptor().Institution(),
		"records", table.Len(),
	)
	return table, nil
}

func (j *Job) closeSession(log *observability.Logger, sess browser.Session) {
	if err := sess.Close(); err != nil {
		log.Warn("Failed to close session", "error", err.Error())
	}
}

func (j *Job) flushMetrics(log *observability.Logger) {
	if j.metrics == nil {
		return
	}
	if err := j.metrics.WriteTextfile(j.cfg.Observability.MetricsPath); err != nil {
		log.Warn("Failed to write metrics", "path", j.cfg.Observability.MetricsPath, "error", err.Error())
	}
}

// fail пишет полную диагностику в лог и возвращает обезличенный результат
func (j *Job) fail(log *observability.Logger, runID, stage string, err error) *Result {
	fields := []interface{}{"stage", stage, "error", err.Error()}
	if e, ok := scraper.AsError(err); ok {
		fields = append(fields, e.LogFields()...)
	}
	log.Error("Job failed", fields...)

	j.flushMetrics(log)

	return &Result{
		RunID:         runID,
		Table:         &scraper.UpdateTable{},
		Failed:        true,
		Notice:        GenericNotice,
		RetryDisabled: true,
	}
}

// Err восстанавливает ошибку для CLI: текст без внутренних деталей
func (r *Result) Err() error {
	if !r.Failed {
		return nil
	}
	return fmt.Errorf("%s (run %s)", r.Notice, r.RunID)
}

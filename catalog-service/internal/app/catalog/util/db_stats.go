package util

import (
	"database/sql"
	"fmt"

	"apicatalogo/pkg/logger"
	"apicatalogo/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// StatsSource отдает статистику пула соединений; *sql.DB подходит напрямую
type StatsSource interface {
	Stats() sql.DBStats
}

// DBStatsCollector периодически выгружает состояние пула соединений в метрики
type DBStatsCollector struct {
	cron    *cron.Cron
	source  StatsSource
	service string
}

func NewDBStatsCollector(service string, source StatsSource) *DBStatsCollector {
	return &DBStatsCollector{
		cron:    cron.New(cron.WithSeconds()),
		source:  source,
		service: service,
	}
}

// Collect снимает статистику один раз
func (c *DBStatsCollector) Collect() {
	stats := c.source.Stats()
	metrics.RecordDbPoolStats(c.service, stats.Idle, stats.InUse)

	logger.Debug().
		Int("open", stats.OpenConnections).
		Int("idle", stats.Idle).
		Int("in_use", stats.InUse).
		Int64("wait_count", stats.WaitCount).
		Msg("DB pool stats collected")
}

// Start регистрирует задачу по расписанию (формат cron с секундами) и сразу снимает первое значение
func (c *DBStatsCollector) Start(schedule string) error {
	if _, err := c.cron.AddFunc(schedule, c.Collect); err != nil {
		return fmt.Errorf("invalid db stats schedule %q: %w", schedule, err)
	}

	c.cron.Start()
	c.Collect()

	logger.Info().Str("schedule", schedule).Msg("DB stats collector started")
	return nil
}

// Stop останавливает планировщик и ждет завершения текущего запуска
func (c *DBStatsCollector) Stop() {
	<-c.cron.Stop().Done()
	logger.Info().Msg("DB stats collector stopped")
}

func (c *DBStatsCollector) Entries() []cron.Entry {
	return c.cron.Entries()
}

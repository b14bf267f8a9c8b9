package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pratik-mahalle/upscaler/internal/domain/image"
	"github.com/pratik-mahalle/upscaler/internal/domain/profile"
	"github.com/pratik-mahalle/upscaler/internal/pkg/logger"
	"github.com/pratik-mahalle/upscaler/internal/pkg/metrics"
)

// Snapshot is the result of one collection run
type Snapshot struct {
	FreeProfiles       int64
	PremiumProfiles    int64
	CreditsOutstanding int64
	ImageRecords       int64
	CollectedAt        time.Time
}

// StatsCollector periodically refreshes the profile and image gauges
type StatsCollector struct {
	profiles profile.Repository
	images   image.Repository
	schedule string
	logger   *logger.Logger

	scheduler    *cron.Cron
	runningMutex sync.Mutex
	isRunning    bool

	lastMutex sync.RWMutex
	last      *Snapshot
}

// NewStatsCollector creates a new stats collector. schedule is a standard
// cron expression or a descriptor such as "@every 5m".
func NewStatsCollector(
	profiles profile.Repository,
	images image.Repository,
	schedule string,
	log *logger.Logger,
) *StatsCollector {
	return &StatsCollector{
		profiles: profiles,
		images:   images,
		schedule: schedule,
		logger:   log,
	}
}

// Start runs one collection and schedules the rest
func (c *StatsCollector) Start(ctx context.Context) error {
	c.runningMutex.Lock()
	defer c.runningMutex.Unlock()

	if c.isRunning {
		return fmt.Errorf("stats collector is already running")
	}

	if _, err := cron.ParseStandard(c.schedule); err != nil {
		return fmt.Errorf("invalid stats schedule %q: %w", c.schedule, err)
	}

	c.scheduler = cron.New()
	if _, err := c.scheduler.AddFunc(c.schedule, func() { c.run(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule stats collection: %w", err)
	}

	c.run(ctx)

	c.scheduler.Start()
	c.isRunning = true

	c.logger.WithFields(map[string]interface{}{
		"schedule": c.schedule,
	}).Info("Stats collector started")

	return nil
}

// Stop stops the scheduler and waits for a running collection to finish
func (c *StatsCollector) Stop() {
	c.runningMutex.Lock()
	defer c.runningMutex.Unlock()

	if !c.isRunning {
		return
	}

	<-c.scheduler.Stop().Done()
	c.isRunning = false

	c.logger.Info("Stats collector stopped")
}

// Last returns the most recent snapshot, or nil before the first run
func (c *StatsCollector) Last() *Snapshot {
	c.lastMutex.RLock()
	defer c.lastMutex.RUnlock()
	return c.last
}

func (c *StatsCollector) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := c.Collect(ctx); err != nil {
		c.logger.ErrorWithErr(err, "Stats collection failed")
	}
}

// Collect reads the aggregate counters and publishes them as gauges
func (c *StatsCollector) Collect(ctx context.Context) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	stats, err := c.profiles.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile stats: %w", err)
	}

	count, err := c.images.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count image records: %w", err)
	}

	snap := &Snapshot{
		FreeProfiles:       stats.Profiles - stats.PremiumProfiles,
		PremiumProfiles:    stats.PremiumProfiles,
		CreditsOutstanding: stats.CreditsOutstanding,
		ImageRecords:       count,
		CollectedAt:        time.Now().UTC(),
	}

	metrics.SetProfileCounts(float64(snap.FreeProfiles), float64(snap.PremiumProfiles), float64(snap.CreditsOutstanding))
	metrics.SetImageRecords(float64(snap.ImageRecords))

	c.lastMutex.Lock()
	c.last = snap
	c.lastMutex.Unlock()

	c.logger.WithFields(map[string]interface{}{
		"free_profiles":    snap.FreeProfiles,
		"premium_profiles": snap.PremiumProfiles,
		"image_records":    snap.ImageRecords,
	}).Debug("Stats collected")

	return snap, nil
}

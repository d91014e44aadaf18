package scheduler

import (
	"fmt"
	"sync"
	"time"

	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/utils"

	"github.com/robfig/cron/v3"
)

// Daily runs at most one job once per day at a wall-clock time.
type Daily struct {
	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	at      string
	log     *logger.Logger
}

// NewDaily creates a scheduler evaluating times in loc.
func NewDaily(loc *time.Location, log *logger.Logger) *Daily {
	return &Daily{
		cron: cron.New(cron.WithLocation(loc)),
		log:  log,
	}
}

// RunDaily replaces any previously registered job with job at "HH:MM".
func (d *Daily) RunDaily(at string, job func()) error {
	hour, minute, err := utils.ParseClock(at)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	id, err := d.cron.AddFunc(spec, func() {
		d.log.Info("Daily job triggered", logger.StringField("at", at))
		job()
	})
	if err != nil {
		return fmt.Errorf("failed to register daily job: %w", err)
	}

	if d.entryID != 0 {
		d.cron.Remove(d.entryID)
	}
	d.entryID = id
	d.at = at

	d.log.Info("Daily job scheduled", logger.StringField("at", at), logger.Field("next_run", d.cron.Entry(id).Next))
	return nil
}

// At returns the currently scheduled time, or "" when nothing is scheduled.
func (d *Daily) At() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.at
}

// Next returns the next activation after t.
func (d *Daily) Next(t time.Time) (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.entryID == 0 {
		return time.Time{}, false
	}
	return d.cron.Entry(d.entryID).Schedule.Next(t), true
}

func (d *Daily) Start() {
	d.cron.Start()
}

// Stop waits for a running job to finish.
func (d *Daily) Stop() {
	<-d.cron.Stop().Done()
}

// Package housekeeping wires up the cron job that garbage-collects vacancies
// which stopped appearing in searches. Postings with recorded applications
// are never removed.
package housekeeping

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"hhagent-engine/internal/store"
)

type Janitor struct {
	cron      *cron.Cron
	vacancies store.Vacancies
	retention time.Duration
	spec      string
}

// New creates a Janitor firing on the given cron spec (e.g. "@daily") and
// deleting vacancies unseen for longer than retention.
func New(vacancies store.Vacancies, spec string, retention time.Duration) *Janitor {
	return &Janitor{
		cron:      cron.New(),
		vacancies: vacancies,
		retention: retention,
		spec:      spec,
	}
}

func (j *Janitor) Start(ctx context.Context) error {
	_, err := j.cron.AddFunc(j.spec, func() {
		j.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	j.cron.Start()
	log.Printf("[housekeeping] cron started — spec: %s retention: %s", j.spec, j.retention)
	return nil
}

func (j *Janitor) Stop() {
	j.cron.Stop()
	log.Println("[housekeeping] cron stopped")
}

func (j *Janitor) runOnce(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-j.retention)
	n, err := j.vacancies.DeleteUnseen(cctx, cutoff)
	if err != nil {
		log.Printf("[housekeeping] cleanup error: %v", err)
		return
	}
	if n > 0 {
		log.Printf("[housekeeping] removed %d vacancies unseen since %s", n, cutoff.Format(time.RFC3339))
	}
}

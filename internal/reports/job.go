package reports

import (
	"context"
	"fmt"
	"time"
)

const dailyReportJobName = "daily-sales-report"

// DailyReportJob finalizes the previous day's sales reports. It runs inside
// the cron worker behind the shared redis lock.
type DailyReportJob struct {
	svc Service
	now func() time.Time
}

// NewDailyReportJob builds the finalization job.
func NewDailyReportJob(svc Service) (*DailyReportJob, error) {
	if svc == nil {
		return nil, fmt.Errorf("reports service required")
	}
	return &DailyReportJob{svc: svc, now: time.Now}, nil
}

// Name implements cron.Job.
func (j *DailyReportJob) Name() string {
	return dailyReportJobName
}

// Run finalizes yesterday's reports.
func (j *DailyReportJob) Run(ctx context.Context) error {
	yesterday := DateOf(j.now()).Add(-24 * time.Hour)
	_, err := j.svc.Finalize(ctx, yesterday)
	return err
}

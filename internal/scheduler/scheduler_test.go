package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"promo_watch/internal/domain"
)

type stubRunner struct {
	err       error
	errFor    map[int64]error
	calls     int
	siteCalls map[int64]int
}

func (r *stubRunner) CrawlSite(_ context.Context, site *domain.Site) (*domain.CrawlStats, error) {
	r.calls++
	if r.siteCalls == nil {
		r.siteCalls = make(map[int64]int)
	}
	r.siteCalls[site.ID]++

	if err := r.errFor[site.ID]; err != nil {
		return nil, err
	}
	if r.err != nil {
		return nil, r.err
	}
	return &domain.CrawlStats{}, nil
}

type stubLister struct {
	sites []domain.Site
	err   error
}

func (l *stubLister) ListActive(_ context.Context) ([]domain.Site, error) {
	return l.sites, l.err
}

type SchedulerTestSuite struct {
	suite.Suite
	runner *stubRunner
	lister *stubLister
	sched  *Scheduler
}

func (s *SchedulerTestSuite) SetupTest() {
	s.runner = &stubRunner{}
	s.lister = &stubLister{}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	sched, err := New(s.runner, s.lister, Config{
		Timezone:     "America/Sao_Paulo",
		CrawlTimeout: time.Minute,
	}, logger)
	s.Require().NoError(err)
	s.sched = sched
}

func (s *SchedulerTestSuite) TearDownTest() {
	s.sched.Stop()
}

func TestSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}

func activeSite(id int64, interval float64) domain.Site {
	return domain.Site{
		ID:            id,
		Name:          "site",
		URL:           "https://example.com",
		IntervalHours: interval,
		IsActive:      true,
	}
}

func (s *SchedulerTestSuite) TestNew_InvalidTimezone() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	_, err := New(s.runner, s.lister, Config{Timezone: "Not/AZone"}, logger)
	s.Error(err)
}

func (s *SchedulerTestSuite) TestScheduleSite_CreatesJob() {
	s.sched.ScheduleSite(activeSite(1, 6))

	s.True(s.sched.HasJob(1))
	s.Equal(1, s.sched.JobCount())
}

func (s *SchedulerTestSuite) TestScheduleSite_ReplacesPriorTrigger() {
	s.sched.ScheduleSite(activeSite(1, 6))
	s.sched.ScheduleSite(activeSite(1, 24))

	s.True(s.sched.HasJob(1))
	s.Equal(1, s.sched.JobCount())
}

func (s *SchedulerTestSuite) TestScheduleSite_InactiveRemovesTrigger() {
	s.sched.ScheduleSite(activeSite(1, 6))
	s.Require().True(s.sched.HasJob(1))

	site := activeSite(1, 6)
	site.IsActive = false
	s.sched.ScheduleSite(site)

	s.False(s.sched.HasJob(1))
	s.Equal(0, s.sched.JobCount())
}

func (s *SchedulerTestSuite) TestStopSite_UnknownIDIsNoOp() {
	s.sched.StopSite(99)
	s.Equal(0, s.sched.JobCount())
}

func (s *SchedulerTestSuite) TestStopSite_RemovesJob() {
	s.sched.ScheduleSite(activeSite(1, 6))
	s.sched.StopSite(1)
	s.False(s.sched.HasJob(1))
}

func (s *SchedulerTestSuite) TestLoadActiveSites_RebuildsTable() {
	s.sched.ScheduleSite(activeSite(1, 6))
	s.sched.ScheduleSite(activeSite(2, 6))

	s.lister.sites = []domain.Site{activeSite(3, 12)}
	s.Require().NoError(s.sched.LoadActiveSites(context.Background()))

	s.False(s.sched.HasJob(1))
	s.False(s.sched.HasJob(2))
	s.True(s.sched.HasJob(3))
	s.Equal(1, s.sched.JobCount())
}

func (s *SchedulerTestSuite) TestLoadActiveSites_StoreError() {
	s.lister.err = errors.New("db down")
	s.Error(s.sched.LoadActiveSites(context.Background()))
}

func (s *SchedulerTestSuite) TestStart_LoadsActiveSites() {
	s.lister.sites = []domain.Site{activeSite(1, 6), activeSite(2, 24)}
	s.Require().NoError(s.sched.Start(context.Background()))
	s.Equal(2, s.sched.JobCount())
}

func (s *SchedulerTestSuite) TestStop_Idempotent() {
	s.sched.ScheduleSite(activeSite(1, 6))
	s.sched.Stop()
	s.sched.Stop()
	s.Equal(0, s.sched.JobCount())
}

func (s *SchedulerTestSuite) TestScheduleSite_AfterStopIsNoOp() {
	s.sched.Stop()
	s.sched.ScheduleSite(activeSite(1, 6))
	s.False(s.sched.HasJob(1))
}

func (s *SchedulerTestSuite) TestRunSite_FailureContained() {
	s.runner.err = errors.New("fetch blew up")
	site := activeSite(1, 6)

	// Must not panic or propagate.
	s.sched.runSite(&site)
	s.Equal(1, s.runner.calls)
}

func (s *SchedulerTestSuite) TestRunSite_FailingSiteDoesNotAffectOthers() {
	// Site 1's cycle blows up; site 2's independently scheduled cycle still
	// runs and completes.
	s.runner.errFor = map[int64]error{1: errors.New("site 1 is broken")}

	siteA := activeSite(1, 6)
	siteB := activeSite(2, 6)
	s.sched.ScheduleSite(siteA)
	s.sched.ScheduleSite(siteB)

	s.sched.runSite(&siteA)
	s.sched.runSite(&siteB)

	s.Equal(1, s.runner.siteCalls[1])
	s.Equal(1, s.runner.siteCalls[2])

	// Both triggers stay live after the failure.
	s.True(s.sched.HasJob(1))
	s.True(s.sched.HasJob(2))
}

func (s *SchedulerTestSuite) TestRunSite_InFlightSkipLogged() {
	s.runner.err = domain.ErrCrawlInFlight
	site := activeSite(1, 6)

	s.sched.runSite(&site)
	s.Equal(1, s.runner.calls)
}

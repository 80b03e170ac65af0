package cron

import (
	"Motorway/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine        *cron.Cron
	eventRelayJob *job.EventRelayJob
	relaySpec     string
}

func NewCronManager(eventRelayJob *job.EventRelayJob, relaySpec string) *Manager {
	if relaySpec == "" {
		relaySpec = "@every 5s"
	}
	return &Manager{
		engine:        cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		eventRelayJob: eventRelayJob,
		relaySpec:     relaySpec,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(s.relaySpec, s.eventRelayJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}

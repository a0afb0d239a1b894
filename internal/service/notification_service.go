package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
	appErrors "github.com/sravanmaichrla/campus-placement-hub/pkg/errors"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/jobs"
	"github.com/sravanmaichrla/campus-placement-hub/pkg/mail"
)

// TaskTypeDispatch is the queue task type carrying a models.DispatchTask payload.
const TaskTypeDispatch = "notification:dispatch"

type dispatchState string

const (
	stateIdle      dispatchState = "idle"
	stateSelecting dispatchState = "selecting"
	stateRendering dispatchState = "rendering"
	stateSending   dispatchState = "sending"
)

type dispatchJobReader interface {
	FindByID(ctx context.Context, id int64) (*models.Job, error)
}

type dispatchCompanyReader interface {
	FindByID(ctx context.Context, id int64) (*models.Company, error)
}

// NotificationConfig tunes the send loop.
type NotificationConfig struct {
	From string
	// BatchSize messages are sent between pauses of BatchDelay.
	BatchSize     int
	BatchDelay    time.Duration
	MaxConcurrent int
	PortalURL     string
}

// NotificationService renders and sends job notices to selected students.
type NotificationService struct {
	jobs      dispatchJobReader
	companies dispatchCompanyReader
	selector  *CandidateSelector
	sender    mail.Sender
	cfg       NotificationConfig
	sem       *semaphore.Weighted
	metrics   *MetricsService
	logger    *zap.Logger
	pause     func(ctx context.Context, d time.Duration) error
}

// NewNotificationService wires the dispatcher.
func NewNotificationService(
	jobReader dispatchJobReader,
	companies dispatchCompanyReader,
	selector *CandidateSelector,
	sender mail.Sender,
	cfg NotificationConfig,
	metrics *MetricsService,
	logger *zap.Logger,
) *NotificationService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = 0
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		jobs:      jobReader,
		companies: companies,
		selector:  selector,
		sender:    sender,
		cfg:       cfg,
		sem:       semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		metrics:   metrics,
		logger:    logger,
		pause:     sleepContext,
	}
}

// HandleTask decodes a queued dispatch task and runs it.
func (s *NotificationService) HandleTask(ctx context.Context, task jobs.Task) error {
	var payload models.DispatchTask
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return fmt.Errorf("decode dispatch task %s: %w", task.ID, err)
	}
	_, err := s.Dispatch(ctx, payload)
	return err
}

// Dispatch loads the job event's current rows, picks the audience and notifies it.
// A nil report with a nil error means the task was dropped.
func (s *NotificationService) Dispatch(ctx context.Context, task models.DispatchTask) (*models.DispatchReport, error) {
	logger := s.logger.With(zap.Int64("job_id", task.JobID), zap.String("trigger", string(task.Trigger.Kind)))

	job, err := s.jobs.FindByID(ctx, task.JobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Warn("dispatch dropped: job no longer exists")
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	company, err := s.companies.FindByID(ctx, job.CompanyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Warn("dispatch dropped: company no longer exists", zap.Int64("company_id", job.CompanyID))
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company")
	}

	var pages StudentPager
	switch task.Trigger.Kind {
	case models.TriggerNewPosting:
		pages = s.selector.SelectCandidates(*job)
	case models.TriggerReschedule:
		if !RescheduleRequired(task.Trigger.OldDate, task.Trigger.NewDate) {
			logger.Info("dispatch skipped: interview date unchanged")
			return &models.DispatchReport{JobID: job.ID, Trigger: task.Trigger.Kind}, nil
		}
		pages = s.selector.SelectApplicants(job.ID)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown dispatch trigger %q", task.Trigger.Kind))
	}

	return s.Notify(ctx, *job, *company, task.Trigger, pages)
}

// Notify sends one message per student yielded by pages. Send failures are recorded and do not stop the run.
func (s *NotificationService) Notify(ctx context.Context, job models.Job, company models.Company, trigger models.DispatchTrigger, pages StudentPager) (*models.DispatchReport, error) {
	report := &models.DispatchReport{JobID: job.ID, Trigger: trigger.Kind}
	logger := s.logger.With(zap.Int64("job_id", job.ID), zap.String("trigger", string(trigger.Kind)))

	if s.cfg.From == "" {
		logger.Error("notification run aborted: sender address not configured")
		return report, appErrors.Wrap(mail.ErrNoSender, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "mail sender not configured")
	}

	renderer, err := newNoticeRenderer(job, company, trigger, s.cfg.PortalURL)
	if err != nil {
		return report, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid dispatch trigger")
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return report, err
	}
	defer s.sem.Release(1)

	start := time.Now()
	defer func() {
		s.metrics.ObserveDispatch(trigger.Kind, time.Since(start))
		s.transition(logger, stateIdle,
			zap.Int("sent", report.Sent),
			zap.Int("failed", report.Failed),
			zap.Int("skipped", report.Skipped),
			zap.Duration("elapsed", time.Since(start)),
		)
	}()

	inBatch := 0
	for page := 1; ; page++ {
		s.transition(logger, stateSelecting, zap.Int("page", page))
		students, more, err := pages.Next(ctx)
		if err != nil {
			return report, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to select recipients")
		}

		if len(students) > 0 {
			s.transition(logger, stateRendering, zap.Int("page", page), zap.Int("recipients", len(students)))
		}
		for _, student := range students {
			if strings.TrimSpace(student.Email) == "" {
				s.record(report, models.DeliveryOutcome{StudentID: student.ID, Status: models.DeliverySkipped, Reason: "missing email"})
				continue
			}
			notice, err := renderer.render(student)
			if err != nil {
				s.record(report, models.DeliveryOutcome{StudentID: student.ID, Email: student.Email, Status: models.DeliveryFailed, Reason: err.Error()})
				continue
			}

			if inBatch >= s.cfg.BatchSize {
				if err := s.pause(ctx, s.cfg.BatchDelay); err != nil {
					return report, err
				}
				inBatch = 0
			}
			if inBatch == 0 {
				s.transition(logger, stateSending, zap.Int("page", page))
			}

			inBatch++
			outcome := models.DeliveryOutcome{StudentID: student.ID, Email: student.Email, Status: models.DeliverySent}
			msg := mail.Message{From: s.cfg.From, To: student.Email, Subject: notice.Subject, Body: notice.Body}
			if err := s.sender.Send(ctx, msg); err != nil {
				sendErr := appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, appErrors.ErrTransport.Message)
				outcome.Status = models.DeliveryFailed
				outcome.Reason = sendErr.Error()
				logger.Error("notification send failed", zap.String("email", student.Email), zap.Error(err))
			} else {
				logger.Debug("notification sent", zap.String("email", student.Email))
			}
			s.record(report, outcome)
		}

		if !more {
			return report, nil
		}
	}
}

func (s *NotificationService) record(report *models.DispatchReport, outcome models.DeliveryOutcome) {
	report.Record(outcome)
	s.metrics.RecordDelivery(report.Trigger, outcome.Status)
}

func (s *NotificationService) transition(logger *zap.Logger, state dispatchState, fields ...zap.Field) {
	logger.Info("dispatch state", append([]zap.Field{zap.String("state", string(state))}, fields...)...)
}

// RescheduleRequired reports whether the interview date changed value.
func RescheduleRequired(oldDate, newDate *time.Time) bool {
	if oldDate == nil || newDate == nil {
		return false
	}
	return !sameDay(*oldDate, *newDate)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

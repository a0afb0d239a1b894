package models

import "time"

// TriggerKind names the job event that starts a notification run.
type TriggerKind string

const (
	TriggerNewPosting TriggerKind = "new_posting"
	TriggerReschedule TriggerKind = "reschedule"
)

// DispatchTrigger carries the event kind and, for reschedules, both interview dates.
type DispatchTrigger struct {
	Kind    TriggerKind `json:"kind"`
	OldDate *time.Time  `json:"old_date,omitempty"`
	NewDate *time.Time  `json:"new_date,omitempty"`
}

// NewPostingTrigger returns the trigger for a freshly created job.
func NewPostingTrigger() DispatchTrigger {
	return DispatchTrigger{Kind: TriggerNewPosting}
}

// RescheduleTrigger returns the trigger for an interview date change.
func RescheduleTrigger(oldDate, newDate time.Time) DispatchTrigger {
	return DispatchTrigger{Kind: TriggerReschedule, OldDate: &oldDate, NewDate: &newDate}
}

// DispatchTask is the queued unit of work for one notification run.
type DispatchTask struct {
	JobID   int64           `json:"job_id"`
	Trigger DispatchTrigger `json:"trigger"`
}

// DeliveryStatus is the outcome of a single send attempt.
type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
	DeliverySkipped DeliveryStatus = "skipped"
)

// DeliveryOutcome records what happened for one recipient.
type DeliveryOutcome struct {
	StudentID int64          `json:"student_id"`
	Email     string         `json:"email"`
	Status    DeliveryStatus `json:"status"`
	Reason    string         `json:"reason,omitempty"`
}

// DispatchReport aggregates the outcomes of a run.
type DispatchReport struct {
	JobID    int64             `json:"job_id"`
	Trigger  TriggerKind       `json:"trigger"`
	Sent     int               `json:"sent"`
	Failed   int               `json:"failed"`
	Skipped  int               `json:"skipped"`
	Outcomes []DeliveryOutcome `json:"outcomes"`
}

// Record appends an outcome and updates the counters.
func (r *DispatchReport) Record(o DeliveryOutcome) {
	switch o.Status {
	case DeliverySent:
		r.Sent++
	case DeliveryFailed:
		r.Failed++
	case DeliverySkipped:
		r.Skipped++
	}
	r.Outcomes = append(r.Outcomes, o)
}

package service

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
)

const noticeDateLayout = "02 January, 2006"

var noticeFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "TBD"
		}
		return t.Format(noticeDateLayout)
	},
}

var newPostingBody = template.Must(template.New("new_posting").Funcs(noticeFuncs).Parse(`Dear {{.Student.FirstName}},

We are pleased to inform you about a new job opportunity that matches your profile.

Job Role: {{.Job.Role}}
Company: {{.Company.Name}}
Location: {{.Job.Location}}
Package: {{.Job.Package.StringFixed 2}}
Interview Date: {{date .Job.InterviewDate}}
Last Date to Apply: {{date .Job.LastDateToApply}}
Eligible Criteria:
{{- range .Criteria}}
        {{.}}
{{- end}}
{{if .FemaleOnly}}
Note: This opportunity is for female students only.
{{end}}
Job Description:
{{.Job.Description}}

Apply now by logging into the portal before the deadline!
{{- if .Job.RegistrationLink}}

Register here: {{.Job.RegistrationLink}}
{{- end}}
{{- if .PortalURL}}

Portal: {{.PortalURL}}
{{- end}}

Please ensure your resume is up-to-date in the portal.
`))

var rescheduleBody = template.Must(template.New("reschedule").Funcs(noticeFuncs).Parse(`Dear {{.Student.FirstName}},

We are writing to inform you about an important update regarding your job application.

Job Role: {{.Job.Role}}
Company: {{.Company.Name}}
Updated Interview Date: {{date .NewDate}}
Previous Interview Date: {{date .OldDate}}
Location: {{.Job.Location}}
Last Date to Apply: {{date .Job.LastDateToApply}}

Important: The interview date for this job has been rescheduled.
Please review the updated details and make necessary arrangements.

Job Description:
{{.Job.Description}}

If you have any questions, please contact the Training and Placement Office.
{{- if .Job.RegistrationLink}}

Registration Link: {{.Job.RegistrationLink}}
{{- end}}

Please ensure you are prepared for the rescheduled interview date.
`))

type noticeData struct {
	Student    models.Student
	Job        models.Job
	Company    models.Company
	Criteria   []string
	FemaleOnly bool
	OldDate    time.Time
	NewDate    time.Time
	PortalURL  string
}

// renderedNotice is the subject and body for one recipient.
type renderedNotice struct {
	Subject string
	Body    string
}

// noticeRenderer produces deterministic messages for a single job event.
type noticeRenderer struct {
	job       models.Job
	company   models.Company
	trigger   models.DispatchTrigger
	criteria  []string
	portalURL string
}

func newNoticeRenderer(job models.Job, company models.Company, trigger models.DispatchTrigger, portalURL string) (*noticeRenderer, error) {
	switch trigger.Kind {
	case models.TriggerNewPosting:
	case models.TriggerReschedule:
		if trigger.OldDate == nil || trigger.NewDate == nil {
			return nil, fmt.Errorf("reschedule trigger for job %d is missing a date", job.ID)
		}
	default:
		return nil, fmt.Errorf("unknown trigger %q", trigger.Kind)
	}
	return &noticeRenderer{
		job:       job,
		company:   company,
		trigger:   trigger,
		criteria:  eligibilitySummary(job),
		portalURL: portalURL,
	}, nil
}

func (r *noticeRenderer) subject() string {
	if r.trigger.Kind == models.TriggerReschedule {
		return fmt.Sprintf("Interview Date Rescheduled: %s at %s", r.job.Role, r.company.Name)
	}
	return fmt.Sprintf("New Job Opportunity: %s at %s", r.job.Role, r.company.Name)
}

func (r *noticeRenderer) render(student models.Student) (renderedNotice, error) {
	data := noticeData{
		Student:    student,
		Job:        r.job,
		Company:    r.company,
		Criteria:   r.criteria,
		FemaleOnly: strings.EqualFold(r.job.GenderEligibility, models.GenderFemale),
		PortalURL:  r.portalURL,
	}
	tmpl := newPostingBody
	if r.trigger.Kind == models.TriggerReschedule {
		tmpl = rescheduleBody
		data.OldDate = *r.trigger.OldDate
		data.NewDate = *r.trigger.NewDate
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return renderedNotice{}, fmt.Errorf("render %s notice: %w", r.trigger.Kind, err)
	}
	return renderedNotice{Subject: r.subject(), Body: buf.String()}, nil
}

// eligibilitySummary lists a job's rules as human-readable lines.
func eligibilitySummary(job models.Job) []string {
	lines := make([]string, 0, 3)
	if job.MinGPA > 0 {
		lines = append(lines, fmt.Sprintf("B.Tech CGPA %.2f or more.", job.MinGPA))
	} else {
		lines = append(lines, "No minimum CGPA.")
	}
	switch {
	case job.MaxBacklogs == nil:
		lines = append(lines, "No backlog restriction.")
	case *job.MaxBacklogs == 0:
		lines = append(lines, "No backlogs.")
	default:
		lines = append(lines, fmt.Sprintf("No more than %d backlogs.", *job.MaxBacklogs))
	}
	if job.EligibleBranches != nil && strings.TrimSpace(*job.EligibleBranches) != "" {
		lines = append(lines, "Branches: "+strings.TrimSpace(*job.EligibleBranches)+".")
	}
	return lines
}

package service

import (
	"strings"

	"github.com/sravanmaichrla/campus-placement-hub/internal/models"
)

// Names of the eligibility rules reported by Evaluate.
const (
	RuleGender   = "gender"
	RuleMinGPA   = "min_gpa"
	RuleBacklogs = "max_backlogs"
	RuleBranch   = "branch"
)

// EligibilityResult lists the rules a student failed for a job.
type EligibilityResult struct {
	Eligible    bool     `json:"eligible"`
	FailedRules []string `json:"failed_rules,omitempty"`
}

// IsEligible reports whether student satisfies every rule of job.
func IsEligible(student models.Student, job models.Job) bool {
	return Evaluate(student, job).Eligible
}

// Evaluate checks each rule independently. It only reads its arguments.
func Evaluate(student models.Student, job models.Job) EligibilityResult {
	var failed []string

	gender := strings.ToLower(strings.TrimSpace(job.GenderEligibility))
	if gender != "" && gender != models.GenderAll && gender != strings.ToLower(strings.TrimSpace(student.Gender)) {
		failed = append(failed, RuleGender)
	}

	if job.MinGPA > 0 && (student.CurrentGPA == nil || *student.CurrentGPA < job.MinGPA) {
		failed = append(failed, RuleMinGPA)
	}

	if job.MaxBacklogs != nil && student.Backlogs > *job.MaxBacklogs {
		failed = append(failed, RuleBacklogs)
	}

	if branches := branchSet(job.EligibleBranches); len(branches) > 0 {
		if _, ok := branches[strings.ToLower(strings.TrimSpace(student.Specialization))]; !ok {
			failed = append(failed, RuleBranch)
		}
	}

	return EligibilityResult{Eligible: len(failed) == 0, FailedRules: failed}
}

func branchSet(raw *string) map[string]struct{} {
	if raw == nil {
		return nil
	}
	set := make(map[string]struct{})
	for _, b := range strings.Split(*raw, ",") {
		if b = strings.ToLower(strings.TrimSpace(b)); b != "" {
			set[b] = struct{}{}
		}
	}
	return set
}

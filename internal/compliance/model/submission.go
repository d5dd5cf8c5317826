package model

import (
	"fmt"
	"time"
)

// MaterialType classifies the kind of marketing material submitted.
type MaterialType string

const (
	MaterialWhitepaper   MaterialType = "Whitepaper"
	MaterialBlogPost     MaterialType = "Blog Post"
	MaterialEmail        MaterialType = "Email"
	MaterialSocialPost   MaterialType = "Social Post"
	MaterialWebpage      MaterialType = "Webpage"
	MaterialVideo        MaterialType = "Video"
	MaterialPodcast      MaterialType = "Podcast"
	MaterialPresentation MaterialType = "Presentation"
	MaterialPRArticle    MaterialType = "PR Article"
)

// MaterialTypes lists all valid material types in display order.
var MaterialTypes = []MaterialType{
	MaterialWhitepaper,
	MaterialBlogPost,
	MaterialEmail,
	MaterialSocialPost,
	MaterialWebpage,
	MaterialVideo,
	MaterialPodcast,
	MaterialPresentation,
	MaterialPRArticle,
}

// Valid reports whether t is a known material type.
func (t MaterialType) Valid() bool {
	for _, v := range MaterialTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Source identifies where a piece of material originated.
type Source string

const (
	SourceCorporateMarketing Source = "Corporate Marketing"
	SourceThirdParty         Source = "Third Party"
	SourceRFPResponse        Source = "RFP/RFI Response"
)

// Sources lists all valid sources in display order.
var Sources = []Source{
	SourceCorporateMarketing,
	SourceThirdParty,
	SourceRFPResponse,
}

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	for _, v := range Sources {
		if s == v {
			return true
		}
	}
	return false
}

// Status is the review lifecycle state of a submission.
type Status string

const (
	StatusPending       Status = "Pending"
	StatusInReview      Status = "In Review"
	StatusApproved      Status = "Approved"
	StatusRejected      Status = "Rejected"
	StatusNeedsRevision Status = "Needs Revision"
)

// Statuses lists all lifecycle states in display order.
var Statuses = []Status{
	StatusPending,
	StatusInReview,
	StatusApproved,
	StatusRejected,
	StatusNeedsRevision,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Reviewed reports whether the status represents a completed review round.
func (s Status) Reviewed() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusNeedsRevision
}

// Page count bounds accepted at intake.
const (
	MinPageCount = 1
	MaxPageCount = 100
)

// ComplianceThreshold is the minimum score counted as compliant.
const ComplianceThreshold = 80.0

// SubmissionID formats a submission identifier from its year and per-year
// sequence number, e.g. SUB-2026-0042.
func SubmissionID(year, seq int) string {
	return fmt.Sprintf("SUB-%d-%04d", year, seq)
}

// ParseSubmissionID extracts the year and sequence from a submission ID.
func ParseSubmissionID(id string) (year, seq int, err error) {
	n, err := fmt.Sscanf(id, "SUB-%d-%d", &year, &seq)
	if err != nil || n != 2 {
		return 0, 0, fmt.Errorf("invalid submission id %q", id)
	}
	return year, seq, nil
}

// Submission is a piece of marketing material tracked through compliance
// review. Review fields are nil until the corresponding review data exists.
type Submission struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	SubmissionDate time.Time    `json:"submission_date"`
	MaterialType   MaterialType `json:"material_type"`
	Source         Source       `json:"source"`
	Status         Status       `json:"status"`
	PageCount      int          `json:"page_count"`
	AssignedTo     string       `json:"assigned_to,omitempty"`
	ContentKey     string       `json:"content_key,omitempty"`

	ReviewDate      *time.Time `json:"review_date,omitempty"`
	ComplianceScore *float64   `json:"compliance_score,omitempty"`
	Flags           int        `json:"flags"`
	ReviewTimeHours *float64   `json:"review_time_hours,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Compliant reports whether the submission has a score at or above the
// compliance threshold.
func (s *Submission) Compliant() bool {
	return s.ComplianceScore != nil && *s.ComplianceScore >= ComplianceThreshold
}

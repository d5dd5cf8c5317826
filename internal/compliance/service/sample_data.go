package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"compliflow/internal/compliance/model"
	"compliflow/internal/compliance/repository"
)

// Reviewers is the demo reviewer roster used by seeded sample data.
var Reviewers = []string{"Amanda H.", "Michael T.", "Sarah L.", "David R.", "Jessica W."}

var sourceWeights = map[model.Source]float64{
	model.SourceCorporateMarketing: 0.4,
	model.SourceThirdParty:         0.4,
	model.SourceRFPResponse:        0.2,
}

var statusWeights = map[model.Status]float64{
	model.StatusPending:       0.1,
	model.StatusInReview:      0.2,
	model.StatusApproved:      0.5,
	model.StatusRejected:      0.1,
	model.StatusNeedsRevision: 0.1,
}

// SampleDataGenerator seeds a repository with realistic demo submissions.
// The same seed always produces the same data.
type SampleDataGenerator struct {
	rng *rand.Rand
	now time.Time
}

// NewSampleDataGenerator creates a generator anchored at now.
func NewSampleDataGenerator(seed int64, now time.Time) *SampleDataGenerator {
	return &SampleDataGenerator{
		rng: rand.New(rand.NewSource(seed)),
		now: now,
	}
}

// Generate builds n sample submissions spread over the trailing 120 days.
// A reviewer is assigned exactly when the status is past Pending.
func (g *SampleDataGenerator) Generate(n int) []*model.Submission {
	subs := make([]*model.Submission, 0, n)
	for i := 1; i <= n; i++ {
		date := g.now.AddDate(0, 0, -g.rng.Intn(121))
		status := g.pickStatus()

		sub := &model.Submission{
			ID:             model.SubmissionID(g.now.Year(), i),
			Title:          fmt.Sprintf("Marketing Material %d", i),
			SubmissionDate: date,
			MaterialType:   model.MaterialTypes[g.rng.Intn(len(model.MaterialTypes))],
			Source:         g.pickSource(),
			Status:         status,
			PageCount:      1 + g.rng.Intn(60),
			Flags:          g.rng.Intn(6),
			CreatedAt:      date,
		}
		if status != model.StatusPending {
			sub.AssignedTo = Reviewers[g.rng.Intn(len(Reviewers))]
		}
		if g.rng.Float64() > 0.3 {
			rd := date.AddDate(0, 0, 1+g.rng.Intn(7))
			sub.ReviewDate = &rd
		}
		var score float64
		if g.rng.Float64() > 0.2 {
			score = float64(70 + g.rng.Intn(31))
		} else {
			score = float64(40 + g.rng.Intn(30))
		}
		sub.ComplianceScore = &score
		if g.rng.Float64() > 0.3 {
			hours := math.Round((0.5+g.rng.Float64()*7.5)*10) / 10
			sub.ReviewTimeHours = &hours
		}
		subs = append(subs, sub)
	}
	return subs
}

// Seed loads n generated submissions into the repository.
func (g *SampleDataGenerator) Seed(ctx context.Context, repo repository.SubmissionRepository, n int) error {
	for _, sub := range g.Generate(n) {
		if err := repo.Create(ctx, sub); err != nil {
			return fmt.Errorf("failed to seed %s: %w", sub.ID, err)
		}
	}
	return nil
}

func (g *SampleDataGenerator) pickSource() model.Source {
	r := g.rng.Float64()
	acc := 0.0
	for _, src := range model.Sources {
		acc += sourceWeights[src]
		if r < acc {
			return src
		}
	}
	return model.Sources[len(model.Sources)-1]
}

func (g *SampleDataGenerator) pickStatus() model.Status {
	r := g.rng.Float64()
	acc := 0.0
	for _, st := range model.Statuses {
		acc += statusWeights[st]
		if r < acc {
			return st
		}
	}
	return model.Statuses[len(model.Statuses)-1]
}

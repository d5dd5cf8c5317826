package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"compliflow/internal/common/cache"
	"compliflow/internal/common/db"
	"compliflow/internal/compliance/model"
)

const (
	submissionColumns = `submission_id, title, submission_date, material_type, source,
		status, page_count, assigned_to, content_key, review_date,
		compliance_score, flags, review_time_hours, created_at`

	submissionCacheTTL = 5 * time.Minute
	submissionEmptyTTL = 30 * time.Second
	submissionCachePfx = "submission:"
)

// MySQLRepository is the MySQL-backed SubmissionRepository with a cache-aside
// layer for single-record reads.
type MySQLRepository struct {
	db    db.Database
	cache cache.Cache
}

// NewMySQLRepository creates a MySQL repository. cache may be nil, in which
// case reads always hit the database.
func NewMySQLRepository(database db.Database, c cache.Cache) (*MySQLRepository, error) {
	if database == nil {
		return nil, fmt.Errorf("database is required")
	}
	return &MySQLRepository{db: database, cache: c}, nil
}

func (r *MySQLRepository) Create(ctx context.Context, sub *model.Submission) error {
	year, seq, err := model.ParseSubmissionID(sub.ID)
	if err != nil {
		return err
	}

	query := `INSERT INTO submissions (
		submission_id, seq_year, sequence, title, submission_date, material_type,
		source, status, page_count, assigned_to, content_key, review_date,
		compliance_score, flags, review_time_hours, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.Exec(ctx, query,
		sub.ID, year, seq, sub.Title, sub.SubmissionDate, string(sub.MaterialType),
		string(sub.Source), string(sub.Status), sub.PageCount,
		nullString(sub.AssignedTo), nullString(sub.ContentKey), nullTime(sub.ReviewDate),
		nullFloat(sub.ComplianceScore), sub.Flags, nullFloat(sub.ReviewTimeHours), sub.CreatedAt,
	)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return ErrDuplicateSubmission
		}
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

func (r *MySQLRepository) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	if r.cache == nil {
		return r.getByID(ctx, id)
	}

	sub, err := cache.GetWithCached(ctx, r.cache, submissionCachePfx+id,
		cache.JitterTTL(submissionCacheTTL), submissionEmptyTTL,
		func(s *model.Submission) bool { return s == nil },
		func(s *model.Submission) string {
			data, _ := json.Marshal(s)
			return string(data)
		},
		func(data string) (*model.Submission, error) {
			var s model.Submission
			if err := json.Unmarshal([]byte(data), &s); err != nil {
				return nil, err
			}
			return &s, nil
		},
		func(ctx context.Context) (*model.Submission, error) {
			s, err := r.getByID(ctx, id)
			if err == ErrSubmissionNotFound {
				return nil, nil
			}
			return s, err
		},
	)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}
	return sub, nil
}

func (r *MySQLRepository) getByID(ctx context.Context, id string) (*model.Submission, error) {
	query := fmt.Sprintf("SELECT %s FROM submissions WHERE submission_id = ?", submissionColumns)
	sub, err := scanSubmission(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to query submission: %w", err)
	}
	return sub, nil
}

func (r *MySQLRepository) List(ctx context.Context, statuses []model.Status) ([]*model.Submission, error) {
	query := fmt.Sprintf("SELECT %s FROM submissions", submissionColumns)
	args := make([]interface{}, 0, len(statuses))
	if len(statuses) > 0 {
		query += " WHERE status IN ("
		for i, s := range statuses {
			if i > 0 {
				query += ", "
			}
			query += "?"
			args = append(args, string(s))
		}
		query += ")"
	}
	query += " ORDER BY created_at, submission_id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var result []*model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}
	return result, nil
}

func (r *MySQLRepository) Assign(ctx context.Context, id, reviewer string) (*model.Submission, error) {
	var assigned *model.Submission
	err := r.db.Transaction(ctx, func(tx db.Transaction) error {
		result, err := tx.Exec(ctx,
			"UPDATE submissions SET status = ?, assigned_to = ? WHERE submission_id = ? AND status = ?",
			string(model.StatusInReview), reviewer, id, string(model.StatusPending),
		)
		if err != nil {
			return fmt.Errorf("failed to assign submission: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			// Distinguish missing from already-assigned.
			var status string
			err := tx.QueryRow(ctx, "SELECT status FROM submissions WHERE submission_id = ?", id).Scan(&status)
			if db.IsNoRows(err) {
				return ErrSubmissionNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to check submission status: %w", err)
			}
			return ErrSubmissionNotPending
		}

		query := fmt.Sprintf("SELECT %s FROM submissions WHERE submission_id = ?", submissionColumns)
		assigned, err = scanSubmission(tx.QueryRow(ctx, query, id))
		if err != nil {
			return fmt.Errorf("failed to reload submission: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		_ = r.cache.Del(ctx, submissionCachePfx+id)
	}
	return assigned, nil
}

func (r *MySQLRepository) NextSequence(ctx context.Context, year int) (int, error) {
	result, err := r.db.Exec(ctx,
		`INSERT INTO submission_sequences (seq_year, next_seq) VALUES (?, 1)
		 ON DUPLICATE KEY UPDATE next_seq = LAST_INSERT_ID(next_seq + 1)`,
		year,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reserve sequence: %w", err)
	}
	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read sequence: %w", err)
	}
	if seq == 0 {
		// Fresh year row: LAST_INSERT_ID is not set by the INSERT branch.
		seq = 1
	}
	return int(seq), nil
}

func (r *MySQLRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM submissions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

func scanSubmission(row db.Row) (*model.Submission, error) {
	var (
		sub             model.Submission
		materialType    string
		source          string
		status          string
		assignedTo      sql.NullString
		contentKey      sql.NullString
		reviewDate      sql.NullTime
		complianceScore sql.NullFloat64
		reviewTime      sql.NullFloat64
	)
	err := row.Scan(
		&sub.ID, &sub.Title, &sub.SubmissionDate, &materialType, &source,
		&status, &sub.PageCount, &assignedTo, &contentKey, &reviewDate,
		&complianceScore, &sub.Flags, &reviewTime, &sub.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	sub.MaterialType = model.MaterialType(materialType)
	sub.Source = model.Source(source)
	sub.Status = model.Status(status)
	sub.AssignedTo = assignedTo.String
	sub.ContentKey = contentKey.String
	if reviewDate.Valid {
		t := reviewDate.Time
		sub.ReviewDate = &t
	}
	if complianceScore.Valid {
		v := complianceScore.Float64
		sub.ComplianceScore = &v
	}
	if reviewTime.Valid {
		v := reviewTime.Float64
		sub.ReviewTimeHours = &v
	}
	return &sub, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

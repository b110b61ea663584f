package pgrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contestlab/backend/logger"
	"github.com/contestlab/backend/subm/domain"
)

const pgUniqueViolation = "23505"

type pgSubmRepo struct {
	pool *pgxpool.Pool
}

func NewPgSubmRepo(pool *pgxpool.Pool) *pgSubmRepo {
	return &pgSubmRepo{pool: pool}
}

// InsertSubmission writes a submission in one statement. The unique index
// on (contest_id, student_id) is the authoritative duplicate guard; a
// violation surfaces as domain.ErrDuplicateSubmission.
func (r *pgSubmRepo) InsertSubmission(ctx context.Context, subm *domain.Submission) error {
	log := logger.FromContext(ctx)
	log.Debug("inserting submission", "subm_id", subm.ID, "contest_id", subm.ContestID)

	answers, err := json.Marshal(subm.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}
	problemScores, err := json.Marshal(subm.ProblemScores)
	if err != nil {
		return fmt.Errorf("failed to marshal problem scores: %w", err)
	}

	insertQuery := `
		INSERT INTO submissions (
			id, contest_id, student_id, answers, total_score,
			max_possible_score, problem_scores, submitted_at,
			time_taken_seconds, is_auto_submitted
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.pool.Exec(ctx, insertQuery,
		subm.ID,
		subm.ContestID,
		subm.StudentID,
		answers,
		subm.TotalScore,
		subm.MaxPossibleScore,
		problemScores,
		subm.SubmittedAt,
		subm.TimeTakenSeconds,
		subm.IsAutoSubmitted,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrDuplicateSubmission
		}
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

func (r *pgSubmRepo) FindSubmission(ctx context.Context, contestID, studentID uuid.UUID) (*domain.Submission, error) {
	row := r.pool.QueryRow(ctx, selectQuery+` WHERE contest_id = $1 AND student_id = $2`, contestID, studentID)
	subm, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return subm, nil
}

func (r *pgSubmRepo) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	row := r.pool.QueryRow(ctx, selectQuery+` WHERE id = $1`, id)
	subm, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubmissionNotFound
		}
		return nil, err
	}
	return subm, nil
}

func (r *pgSubmRepo) ListSubmissions(ctx context.Context, contestID uuid.UUID) ([]*domain.Submission, error) {
	rows, err := r.pool.Query(ctx, selectQuery+` WHERE contest_id = $1 ORDER BY submitted_at`, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var subms []*domain.Submission
	for rows.Next() {
		subm, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subms = append(subms, subm)
	}
	return subms, rows.Err()
}

// UpdateSubmission persists review-ledger mutations: total score and the
// per-problem score records. Everything else on the row is immutable after
// insert.
func (r *pgSubmRepo) UpdateSubmission(ctx context.Context, subm *domain.Submission) error {
	problemScores, err := json.Marshal(subm.ProblemScores)
	if err != nil {
		return fmt.Errorf("failed to marshal problem scores: %w", err)
	}
	updateQuery := `
		UPDATE submissions
		SET total_score = $2, problem_scores = $3
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, updateQuery, subm.ID, subm.TotalScore, problemScores)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubmissionNotFound
	}
	return nil
}

const selectQuery = `
	SELECT id, contest_id, student_id, answers, total_score,
		max_possible_score, problem_scores, submitted_at,
		time_taken_seconds, is_auto_submitted
	FROM submissions
`

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var subm domain.Submission
	var answers, problemScores []byte
	err := row.Scan(
		&subm.ID,
		&subm.ContestID,
		&subm.StudentID,
		&answers,
		&subm.TotalScore,
		&subm.MaxPossibleScore,
		&problemScores,
		&subm.SubmittedAt,
		&subm.TimeTakenSeconds,
		&subm.IsAutoSubmitted,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &subm.Answers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal answers: %w", err)
	}
	if err := json.Unmarshal(problemScores, &subm.ProblemScores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal problem scores: %w", err)
	}
	subm.SubmittedAt = subm.SubmittedAt.UTC()
	return &subm, nil
}

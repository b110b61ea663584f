package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contestlab/backend/contest/domain"
	"github.com/contestlab/backend/logger"
)

type pgContestRepo struct {
	pool *pgxpool.Pool
}

func NewPgContestRepo(pool *pgxpool.Pool) *pgContestRepo {
	return &pgContestRepo{pool: pool}
}

// CreateContest inserts the contest and its problem snapshots in one
// transaction so a half-cloned contest can never be observed.
func (r *pgContestRepo) CreateContest(ctx context.Context, contest domain.Contest, problems []domain.ContestProblem) error {
	log := logger.FromContext(ctx)
	log.Debug("creating contest", "contest_id", contest.ID, "problems", len(problems))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	contestInsertQuery := `
		INSERT INTO contests (
			id, course_id, owner_id, name, is_active,
			start_time, end_time, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.Exec(ctx, contestInsertQuery,
		contest.ID,
		contest.CourseID,
		contest.OwnerID,
		contest.Name,
		contest.IsActive,
		contest.StartTime,
		contest.EndTime,
		contest.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contest: %w", err)
	}

	for _, p := range problems {
		problemInsertQuery := `
			INSERT INTO contest_problems (
				id, contest_id, question_type, statement,
				option_a, option_b, option_c, option_d, correct_options,
				max_word_count, sample_answer, scoring_type, keyword_config,
				marks, order_index
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`
		_, err = tx.Exec(ctx, problemInsertQuery,
			p.ID,
			p.ContestID,
			p.QuestionType,
			p.Statement,
			p.OptionA,
			p.OptionB,
			p.OptionC,
			p.OptionD,
			nilIfEmpty(p.CorrectJSON),
			p.MaxWordCount,
			p.SampleAnswer,
			nilIfEmpty(string(p.ScoringType)),
			nilIfEmpty(p.KeywordConfig),
			p.Marks,
			p.OrderIndex,
		)
		if err != nil {
			return fmt.Errorf("failed to insert contest problem: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *pgContestRepo) GetContest(ctx context.Context, id uuid.UUID) (domain.Contest, error) {
	row := r.pool.QueryRow(ctx, contestSelectQuery+` WHERE id = $1`, id)
	contest, err := scanContest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Contest{}, domain.ErrContestNotFound
		}
		return domain.Contest{}, err
	}
	return contest, nil
}

func (r *pgContestRepo) ListContests(ctx context.Context, courseID uuid.UUID) ([]domain.Contest, error) {
	rows, err := r.pool.Query(ctx, contestSelectQuery+` WHERE course_id = $1 ORDER BY start_time`, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contests: %w", err)
	}
	defer rows.Close()

	var contests []domain.Contest
	for rows.Next() {
		contest, err := scanContest(rows)
		if err != nil {
			return nil, err
		}
		contests = append(contests, contest)
	}
	return contests, rows.Err()
}

func (r *pgContestRepo) UpdateContest(ctx context.Context, contest domain.Contest) error {
	updateQuery := `
		UPDATE contests
		SET name = $2, is_active = $3, start_time = $4, end_time = $5
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, updateQuery,
		contest.ID,
		contest.Name,
		contest.IsActive,
		contest.StartTime,
		contest.EndTime,
	)
	if err != nil {
		return fmt.Errorf("failed to update contest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContestNotFound
	}
	return nil
}

func (r *pgContestRepo) SetContestActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE contests SET is_active = $2 WHERE id = $1`, id, isActive)
	if err != nil {
		return fmt.Errorf("failed to toggle contest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContestNotFound
	}
	return nil
}

func (r *pgContestRepo) DeleteContest(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM contest_problems WHERE contest_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete contest problems: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM contests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContestNotFound
	}
	return tx.Commit(ctx)
}

func (r *pgContestRepo) ListProblems(ctx context.Context, contestID uuid.UUID) ([]domain.ContestProblem, error) {
	problemSelectQuery := `
		SELECT id, contest_id, question_type, statement,
			option_a, option_b, option_c, option_d, correct_options,
			max_word_count, sample_answer, scoring_type, keyword_config,
			marks, order_index
		FROM contest_problems
		WHERE contest_id = $1
		ORDER BY order_index
	`
	rows, err := r.pool.Query(ctx, problemSelectQuery, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contest problems: %w", err)
	}
	defer rows.Close()

	var problems []domain.ContestProblem
	for rows.Next() {
		var p domain.ContestProblem
		var correctOptions, scoringType, keywordConfig *string
		err := rows.Scan(
			&p.ID,
			&p.ContestID,
			&p.QuestionType,
			&p.Statement,
			&p.OptionA,
			&p.OptionB,
			&p.OptionC,
			&p.OptionD,
			&correctOptions,
			&p.MaxWordCount,
			&p.SampleAnswer,
			&scoringType,
			&keywordConfig,
			&p.Marks,
			&p.OrderIndex,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contest problem: %w", err)
		}
		if correctOptions != nil {
			p.CorrectJSON = *correctOptions
		}
		if scoringType != nil {
			p.ScoringType = domain.ScoringType(*scoringType)
		}
		if keywordConfig != nil {
			p.KeywordConfig = *keywordConfig
		}
		problems = append(problems, p)
	}
	return problems, rows.Err()
}

func (r *pgContestRepo) CountSubmissions(ctx context.Context, contestID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM submissions WHERE contest_id = $1`, contestID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

const contestSelectQuery = `
	SELECT id, course_id, owner_id, name, is_active,
		start_time, end_time, created_at
	FROM contests
`

func scanContest(row pgx.Row) (domain.Contest, error) {
	var c domain.Contest
	err := row.Scan(
		&c.ID,
		&c.CourseID,
		&c.OwnerID,
		&c.Name,
		&c.IsActive,
		&c.StartTime,
		&c.EndTime,
		&c.CreatedAt,
	)
	if err != nil {
		return domain.Contest{}, err
	}
	c.StartTime = c.StartTime.UTC()
	c.EndTime = c.EndTime.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

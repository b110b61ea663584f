// Package quesbank is the read facade over the course question bank. The
// contest core only ever reads from it, at contest-creation time, to take
// problem snapshots. Authoring and editing of bank questions live elsewhere.
package quesbank

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	contestdomain "github.com/contestlab/backend/contest/domain"
)

type Question struct {
	ID           uuid.UUID
	CourseID     uuid.UUID
	QuestionType contestdomain.QuestionType
	Statement    string

	OptionA     *string
	OptionB     *string
	OptionC     *string
	OptionD     *string
	CorrectJSON string

	MaxWordCount  *int
	SampleAnswer  *string
	ScoringType   contestdomain.ScoringType
	KeywordConfig string

	DefaultMarks float64
}

type pgQuestionBank struct {
	pool *pgxpool.Pool
}

func NewPgQuestionBank(pool *pgxpool.Pool) *pgQuestionBank {
	return &pgQuestionBank{pool: pool}
}

// GetQuestions fetches bank questions by id, preserving the order of ids as
// given (that order becomes the contest problem order).
func (b *pgQuestionBank) GetQuestions(ctx context.Context, ids []uuid.UUID) ([]Question, error) {
	selectQuery := `
		SELECT id, course_id, question_type, statement,
			option_a, option_b, option_c, option_d, correct_options,
			max_word_count, sample_answer, scoring_type, keyword_config,
			default_marks
		FROM bank_questions
		WHERE id = ANY($1)
	`
	rows, err := b.pool.Query(ctx, selectQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank questions: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]Question, len(ids))
	for rows.Next() {
		var q Question
		var correctOptions, scoringType, keywordConfig *string
		err := rows.Scan(
			&q.ID,
			&q.CourseID,
			&q.QuestionType,
			&q.Statement,
			&q.OptionA,
			&q.OptionB,
			&q.OptionC,
			&q.OptionD,
			&correctOptions,
			&q.MaxWordCount,
			&q.SampleAnswer,
			&scoringType,
			&keywordConfig,
			&q.DefaultMarks,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank question: %w", err)
		}
		if correctOptions != nil {
			q.CorrectJSON = *correctOptions
		}
		if scoringType != nil {
			q.ScoringType = contestdomain.ScoringType(*scoringType)
		}
		if keywordConfig != nil {
			q.KeywordConfig = *keywordConfig
		}
		byID[q.ID] = q
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	questions := make([]Question, 0, len(ids))
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("bank question %s not found", id)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

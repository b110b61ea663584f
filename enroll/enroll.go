// Package enroll is the narrow enrollment-check facade the submission
// protocol gates on. Enrollment management itself is out of this service.
package enroll

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgEnrollChecker struct {
	pool *pgxpool.Pool
}

func NewPgEnrollChecker(pool *pgxpool.Pool) *pgEnrollChecker {
	return &pgEnrollChecker{pool: pool}
}

// IsEnrolled reports whether the student holds an active enrollment in the
// course. Inactive (dropped, suspended) enrollments do not count.
func (c *pgEnrollChecker) IsEnrolled(ctx context.Context, studentID, courseID uuid.UUID) (bool, error) {
	var enrolled bool
	err := c.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM enrollments
			WHERE student_id = $1 AND course_id = $2 AND is_active
		)
	`, studentID, courseID).Scan(&enrolled)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return enrolled, nil
}

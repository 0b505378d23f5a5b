package testutil

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/medify/internal/models"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Insert doctor availability. The API has no way to edit them, so tests seed them directly
func AddAvailability(t *testing.T, db querier, a models.Availability) models.Availability {
	t.Helper()

	rows, _ := db.Query(t.Context(),
		`INSERT INTO availabilities (doctor_id, weekday, start_time, end_time)
		VALUES ($1, $2, $3, $4)
		RETURNING id, doctor_id, weekday, start_time, end_time`,
		a.DoctorID, a.Weekday, a.StartTime, a.EndTime,
	)
	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByPos[models.Availability])
	require.NoError(t, err, "availability should be created")

	return created
}

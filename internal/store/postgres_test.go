package store

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-geo/lulc-cli/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock), mock
}

func TestPostgres_CreateRun(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO runs`)).
		WithArgs(pgxmock.AnyArg(), "duhok", "queued", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), "duhok")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateRunStatus(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE runs SET status`)).
		WithArgs("training", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.UpdateRunStatus(context.Background(), "run-1", model.RunStatusTraining))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateRunStatus_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE runs SET status`)).
		WithArgs("complete", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateRunStatus(context.Background(), "missing", model.RunStatusComplete)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPostgres_UpdateRunResult_FailedStatus(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE runs SET result`)).
		WithArgs(pgxmock.AnyArg(), "failed", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateRunResult(context.Background(), "run-1", &model.RunResult{Error: "engine returned 503"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetRun(t *testing.T) {
	s, mock := newMockStore(t)

	now := time.Now().UTC()
	resultJSON, err := json.Marshal(&model.RunResult{Accuracy: 0.91, Kappa: 0.87})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, region, status, result, created_at, updated_at FROM runs WHERE id`)).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "region", "status", "result", "created_at", "updated_at"}).
			AddRow("run-1", "duhok", model.RunStatusComplete, resultJSON, now, now))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "duhok", run.Region)
	require.NotNil(t, run.Result)
	assert.Equal(t, 0.91, run.Result.Accuracy)
}

func TestPostgres_ListRuns_Filtered(t *testing.T) {
	s, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .+ FROM runs WHERE 1=1 AND status = \$1 AND region = \$2 ORDER BY created_at DESC LIMIT \$3`).
		WithArgs("complete", "duhok", 5).
		WillReturnRows(pgxmock.NewRows([]string{"id", "region", "status", "result", "created_at", "updated_at"}).
			AddRow("run-1", "duhok", model.RunStatusComplete, []byte(nil), now, now))

	runs, err := s.ListRuns(context.Background(), RunFilter{
		Status: model.RunStatusComplete,
		Region: "duhok",
		Limit:  5,
	})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Nil(t, runs[0].Result)
}

func TestPostgres_InsertAreaRecords_CopyFrom(t *testing.T) {
	s, mock := newMockStore(t)

	records := []model.AreaRecord{
		{Year: 2014, ClassCode: 1, ClassName: "Water", AreaHectares: 42},
		{Year: 2024, ClassCode: 2, ClassName: "Trees", AreaHectares: 120.5},
	}

	mock.ExpectCopyFrom(
		pgx.Identifier{"area_records"},
		[]string{"run_id", "year", "class_code", "class_name", "area_hectares"},
	).WillReturnResult(2)

	require.NoError(t, s.InsertAreaRecords(context.Background(), "run-1", records))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_InsertAreaRecords_Empty(t *testing.T) {
	s, mock := newMockStore(t)
	require.NoError(t, s.InsertAreaRecords(context.Background(), "run-1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CompletePhase(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE run_phases SET status`)).
		WithArgs("complete", pgxmock.AnyArg(), "phase-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, s.CompletePhase(context.Background(), "phase-1", &model.PhaseResult{
		Name:   "sample",
		Status: model.PhaseStatusComplete,
	}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

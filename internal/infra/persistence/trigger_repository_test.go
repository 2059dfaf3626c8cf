package persistence

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/capture"
	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerRepository_ListCaptureTriggers(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`FROM information_schema.triggers WHERE trigger_schema = current_schema\(\) AND trigger_name LIKE \$1`).
		WithArgs(`trigger\_log\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"trigger_name", "table_name", "action_timing", "event_manipulation"}).
			AddRow("trigger_log_news_delete", "news", "BEFORE", "DELETE").
			AddRow("trigger_log_news_insert", "news", "AFTER", "INSERT"))

	triggers, err := NewTriggerRepository(db).ListCaptureTriggers(context.Background())
	require.NoError(t, err)
	require.Len(t, triggers, 2)
	assert.Equal(t, "news", triggers[0].Table)
	assert.Equal(t, "BEFORE", triggers[0].Timing)
	assert.Equal(t, "INSERT", triggers[1].Operation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTriggerRepository_InstallRunsInOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	tables := capture.Tables[:2]

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT set_config\('audit.actor_id', \$1, true\)`).
		WithArgs("1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	for _, tbl := range tables {
		for _, stmt := range capture.InstallStatements(tbl) {
			mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
		}
	}
	mock.ExpectCommit()

	ctx := actor.WithID(context.Background(), 1)
	require.NoError(t, NewTriggerRepository(db).Install(ctx, tables))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTriggerRepository_InstallRollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	stmts := capture.InstallStatements(capture.Tables[0])

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(stmts[0])).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(stmts[1])).WillReturnError(errors.New("relation does not exist"))
	mock.ExpectRollback()

	err := NewTriggerRepository(db).Install(context.Background(), capture.Tables[:1])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "install triggers on conferences")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTriggerRepository_RejectsInvalidTables(t *testing.T) {
	db, mock := newMockDB(t)

	err := NewTriggerRepository(db).Uninstall(context.Background(), []capture.Table{{Name: "users; --", KeyColumn: "id"}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTriggerRepository_Uninstall(t *testing.T) {
	db, mock := newMockDB(t)
	tbl := capture.Tables[2]

	mock.ExpectBegin()
	for _, stmt := range capture.UninstallStatements(tbl) {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	require.NoError(t, NewTriggerRepository(db).Uninstall(context.Background(), []capture.Table{tbl}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `trigger\_log\_`, escapeLike("trigger_log_"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
}

package capture

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var conferences = Table{
	Name:        "conferences",
	KeyColumn:   "id",
	OwnerColumn: "creator_id",
	Create:      []string{"title", "speaker"},
	Update:      []string{"title"},
	Delete:      []string{"title"},
}

func TestInstallStatementsDropBeforeCreate(t *testing.T) {
	stmts := InstallStatements(conferences)
	require.Len(t, stmts, 12)

	for i := 0; i < 3; i++ {
		assert.True(t, strings.HasPrefix(stmts[i], "DROP TRIGGER IF EXISTS"), stmts[i])
	}
	for i := 3; i < 6; i++ {
		assert.True(t, strings.HasPrefix(stmts[i], "DROP FUNCTION IF EXISTS"), stmts[i])
	}
	assert.Equal(t, `DROP TRIGGER IF EXISTS "trigger_log_conferences_insert" ON "conferences"`, stmts[0])
	assert.Equal(t, `DROP FUNCTION IF EXISTS "log_conferences_delete"()`, stmts[5])
}

func TestTriggerTiming(t *testing.T) {
	stmts := InstallStatements(conferences)
	assert.Equal(t, `CREATE TRIGGER "trigger_log_conferences_insert" AFTER INSERT ON "conferences" FOR EACH ROW EXECUTE FUNCTION "log_conferences_insert"()`, stmts[7])
	assert.Equal(t, `CREATE TRIGGER "trigger_log_conferences_update" AFTER UPDATE ON "conferences" FOR EACH ROW EXECUTE FUNCTION "log_conferences_update"()`, stmts[9])
	assert.Equal(t, `CREATE TRIGGER "trigger_log_conferences_delete" BEFORE DELETE ON "conferences" FOR EACH ROW EXECUTE FUNCTION "log_conferences_delete"()`, stmts[11])
}

func TestFunctionBodies(t *testing.T) {
	insert := functionSQL(conferences, Insert)
	assert.Contains(t, insert, `audit_resolve_actor(NEW."creator_id")`)
	assert.Contains(t, insert, `'conferences', 'CREATE', NEW."id"::bigint`)
	assert.Contains(t, insert, `jsonb_build_object('title', NEW."title", 'speaker', NEW."speaker")`)
	assert.Contains(t, insert, "RETURN NEW;")

	del := functionSQL(conferences, Delete)
	assert.Contains(t, del, `audit_resolve_actor(OLD."creator_id")`)
	assert.Contains(t, del, `'DELETE', OLD."id"::bigint`)
	assert.Contains(t, del, "RETURN OLD;")
}

func TestPayloadExpr(t *testing.T) {
	assert.Equal(t,
		`jsonb_build_object('old_title', OLD."title", 'new_title', NEW."title")`,
		PayloadExpr(conferences, Update))

	empty := Table{Name: "x", KeyColumn: "id"}
	assert.Equal(t, "'{}'::jsonb", PayloadExpr(empty, Insert))
}

func TestActorWithoutOwnerColumn(t *testing.T) {
	tbl := Table{Name: "tags", KeyColumn: "id", Create: []string{"label"}}
	assert.Contains(t, functionSQL(tbl, Insert), "audit_resolve_actor(NULL)")
}

func TestUninstallStatements(t *testing.T) {
	stmts := UninstallStatements(conferences)
	require.Len(t, stmts, 6)
	for _, s := range stmts {
		assert.True(t, strings.HasPrefix(s, "DROP "), s)
	}
}

func TestLiteralEscapesQuotes(t *testing.T) {
	assert.Equal(t, `'it''s'`, literal("it's"))
}

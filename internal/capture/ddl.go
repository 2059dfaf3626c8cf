package capture

import (
	"strings"

	"github.com/jackc/pgx/v5"
)

const (
	// TriggerPrefix marks every capture trigger; the coverage verifier
	// discovers installed triggers by it.
	TriggerPrefix  = "trigger_log_"
	FunctionPrefix = "log_"

	// ActorFunction resolves the acting user inside a trigger. It is created by
	// the audit_logs migration.
	ActorFunction = "audit_resolve_actor"
	AuditTable    = "audit_logs"
)

func TriggerName(table string, op Operation) string {
	return TriggerPrefix + table + "_" + op.Name
}

func FunctionName(table string, op Operation) string {
	return FunctionPrefix + table + "_" + op.Name
}

// InstallStatements drops and recreates the three capture functions and
// triggers of t. Running them twice leaves exactly one trigger per operation.
func InstallStatements(t Table) []string {
	stmts := UninstallStatements(t)
	for _, op := range Operations {
		stmts = append(stmts, functionSQL(t, op), triggerSQL(t, op))
	}
	return stmts
}

// UninstallStatements removes the capture triggers and functions of t.
// Triggers go first since they depend on the functions.
func UninstallStatements(t Table) []string {
	stmts := make([]string, 0, 2*len(Operations))
	for _, op := range Operations {
		stmts = append(stmts, "DROP TRIGGER IF EXISTS "+ident(TriggerName(t.Name, op))+" ON "+ident(t.Name))
	}
	for _, op := range Operations {
		stmts = append(stmts, "DROP FUNCTION IF EXISTS "+ident(FunctionName(t.Name, op))+"()")
	}
	return stmts
}

func functionSQL(t Table, op Operation) string {
	var b strings.Builder
	b.WriteString("CREATE OR REPLACE FUNCTION ")
	b.WriteString(ident(FunctionName(t.Name, op)))
	b.WriteString("() RETURNS trigger LANGUAGE plpgsql AS $capture$\nBEGIN\n")
	b.WriteString("    INSERT INTO ")
	b.WriteString(ident(AuditTable))
	b.WriteString(" (actor_id, table_name, change_type, affected_record_id, payload)\n")
	b.WriteString("    VALUES (")
	b.WriteString(actorExpr(t, op))
	b.WriteString(", ")
	b.WriteString(literal(t.Name))
	b.WriteString(", ")
	b.WriteString(literal(string(op.Change)))
	b.WriteString(", ")
	b.WriteString(op.Row + "." + ident(t.KeyColumn) + "::bigint")
	b.WriteString(", ")
	b.WriteString(PayloadExpr(t, op))
	b.WriteString(");\n")
	b.WriteString("    RETURN " + op.Row + ";\nEND;\n$capture$")
	return b.String()
}

func triggerSQL(t Table, op Operation) string {
	return "CREATE TRIGGER " + ident(TriggerName(t.Name, op)) +
		" " + op.Timing + " " + op.Event + " ON " + ident(t.Name) +
		" FOR EACH ROW EXECUTE FUNCTION " + ident(FunctionName(t.Name, op)) + "()"
}

func actorExpr(t Table, op Operation) string {
	if t.OwnerColumn == "" {
		return ActorFunction + "(NULL)"
	}
	return ActorFunction + "(" + op.Row + "." + ident(t.OwnerColumn) + ")"
}

// PayloadExpr renders the jsonb expression recorded for op on t.
func PayloadExpr(t Table, op Operation) string {
	fields := t.Fields(op)
	if len(fields) == 0 {
		return "'{}'::jsonb"
	}
	args := make([]string, 0, 4*len(fields))
	for _, f := range fields {
		col := ident(f)
		if op.Change == Update.Change {
			args = append(args,
				literal("old_"+f), "OLD."+col,
				literal("new_"+f), "NEW."+col,
			)
			continue
		}
		args = append(args, literal(f), op.Row+"."+col)
	}
	return "jsonb_build_object(" + strings.Join(args, ", ") + ")"
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func literal(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

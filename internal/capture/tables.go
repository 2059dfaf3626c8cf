// Package capture describes which business tables are audited, which fields
// each operation records, and renders the PL/pgSQL that records them.
package capture

import (
	"fmt"
	"regexp"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/entity"
)

// Operation is one row-level mutation kind a trigger is attached to.
type Operation struct {
	Name   string
	Event  string
	Timing string
	Row    string
	Change entity.ChangeType
}

var (
	// Insert and update capture after the row is visible so the generated key
	// and new values can be read.
	Insert = Operation{Name: "insert", Event: "INSERT", Timing: "AFTER", Row: "NEW", Change: entity.ChangeCreate}
	Update = Operation{Name: "update", Event: "UPDATE", Timing: "AFTER", Row: "NEW", Change: entity.ChangeUpdate}
	// Delete captures before the row disappears.
	Delete = Operation{Name: "delete", Event: "DELETE", Timing: "BEFORE", Row: "OLD", Change: entity.ChangeDelete}
)

var Operations = []Operation{Insert, Update, Delete}

// OperationForEvent maps a catalog event (INSERT/UPDATE/DELETE) to its Operation.
func OperationForEvent(event string) (Operation, bool) {
	for _, op := range Operations {
		if op.Event == event {
			return op, true
		}
	}
	return Operation{}, false
}

// Table is the capture configuration of one business table. Fields lists the
// columns each operation records; UPDATE records old/new pairs for its list.
type Table struct {
	Name        string
	KeyColumn   string
	OwnerColumn string
	Create      []string
	Update      []string
	Delete      []string
}

func (t Table) Fields(op Operation) []string {
	switch op.Change {
	case entity.ChangeCreate:
		return t.Create
	case entity.ChangeUpdate:
		return t.Update
	case entity.ChangeDelete:
		return t.Delete
	}
	return nil
}

// Tables is the fixed set of audited tables. UPDATE lists track the fields a
// reader needs to recognise the record and its schedule; long free-text
// bodies and images are recorded on CREATE only.
var Tables = []Table{
	{
		Name:        "conferences",
		KeyColumn:   "id",
		OwnerColumn: "creator_id",
		Create:      []string{"title", "speaker", "scheduled_at", "description", "image", "link"},
		Update:      []string{"title", "speaker", "scheduled_at", "link"},
		Delete:      []string{"title", "speaker", "scheduled_at"},
	},
	{
		Name:        "members",
		KeyColumn:   "id",
		OwnerColumn: "creator_id",
		Create:      []string{"full_name", "semester", "email", "git_url", "active", "image"},
		Update:      []string{"full_name", "semester", "email", "git_url", "active"},
		Delete:      []string{"full_name", "email", "active"},
	},
	{
		Name:        "news",
		KeyColumn:   "id",
		OwnerColumn: "creator_id",
		Create:      []string{"title", "published_at", "link", "source", "image"},
		Update:      []string{"title", "published_at", "link", "source"},
		Delete:      []string{"title", "published_at", "source"},
	},
	{
		Name:        "courses",
		KeyColumn:   "id",
		OwnerColumn: "creator_id",
		Create:      []string{"name", "starts_at", "ends_at", "link"},
		Update:      []string{"name", "starts_at", "ends_at", "link"},
		Delete:      []string{"name", "starts_at", "ends_at"},
	},
	{
		Name:        "job_postings",
		KeyColumn:   "id",
		OwnerColumn: "creator_id",
		Create:      []string{"title", "company", "published_at", "expires_at", "image", "link"},
		Update:      []string{"title", "company", "published_at", "expires_at", "link"},
		Delete:      []string{"title", "company", "published_at", "expires_at"},
	},
	{
		Name:        "projects",
		KeyColumn:   "id",
		OwnerColumn: "creator_id",
		Create:      []string{"name", "project_date", "link"},
		Update:      []string{"name", "project_date", "link"},
		Delete:      []string{"name", "project_date", "link"},
	},
}

// ExpectedTables returns the audited table names in configuration order.
func ExpectedTables() []string {
	names := make([]string, 0, len(Tables))
	for _, t := range Tables {
		names = append(names, t.Name)
	}
	return names
}

func Lookup(name string) (Table, bool) {
	for _, t := range Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// maxFuncArgs is Postgres' limit on arguments to one function call, which
// bounds the jsonb_build_object payload.
const maxFuncArgs = 100

// MaxFields is how many fields op can capture: UPDATE records an old and a
// new value per field, the others one value.
func MaxFields(op Operation) int {
	if op.Change == Update.Change {
		return maxFuncArgs / 4
	}
	return maxFuncArgs / 2
}

// Validate rejects configurations that would render invalid or ambiguous SQL.
func Validate(tables []Table) error {
	seen := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		if !identifierPattern.MatchString(t.Name) {
			return fmt.Errorf("capture: invalid table name %q", t.Name)
		}
		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("capture: duplicate table %q", t.Name)
		}
		seen[t.Name] = struct{}{}
		if !identifierPattern.MatchString(t.KeyColumn) {
			return fmt.Errorf("capture: %s: invalid key column %q", t.Name, t.KeyColumn)
		}
		if t.OwnerColumn != "" && !identifierPattern.MatchString(t.OwnerColumn) {
			return fmt.Errorf("capture: %s: invalid owner column %q", t.Name, t.OwnerColumn)
		}
		for _, op := range Operations {
			if n := len(t.Fields(op)); n > MaxFields(op) {
				return fmt.Errorf("capture: %s %s: %d fields exceeds the limit of %d", t.Name, op.Name, n, MaxFields(op))
			}
			fields := make(map[string]struct{})
			for _, f := range t.Fields(op) {
				if !identifierPattern.MatchString(f) {
					return fmt.Errorf("capture: %s %s: invalid field %q", t.Name, op.Name, f)
				}
				if _, dup := fields[f]; dup {
					return fmt.Errorf("capture: %s %s: duplicate field %q", t.Name, op.Name, f)
				}
				fields[f] = struct{}{}
			}
		}
	}
	return nil
}

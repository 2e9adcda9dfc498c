package audit

import (
	"strings"
	"time"
)

// Filter narrows audit queries. Set fields compose conjunctively.
type Filter struct {
	UserID    *string
	Action    string
	TableName string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// whereBuilder assembles a WHERE clause from placeholder fragments. It only
// ever emits `?` placeholders; values travel separately as bind arguments.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (b *whereBuilder) add(clause string, arg any) {
	b.clauses = append(b.clauses, clause)
	b.args = append(b.args, arg)
}

// SQL returns the assembled WHERE clause (with leading " WHERE ") and its
// bind arguments; an empty builder yields an empty clause.
func (b *whereBuilder) SQL() (string, []any) {
	if len(b.clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(b.clauses, " AND "), b.args
}

func (f Filter) where() *whereBuilder {
	b := &whereBuilder{}
	if f.UserID != nil {
		b.add("user_id = ?", *f.UserID)
	}
	if f.Action != "" {
		b.add("action = ?", f.Action)
	}
	if f.TableName != "" {
		b.add("table_name = ?", f.TableName)
	}
	if f.From != nil {
		b.add("created_at >= ?", f.From.UTC().Format(time.DateTime))
	}
	if f.To != nil {
		b.add("created_at <= ?", f.To.UTC().Format(time.DateTime))
	}
	return b
}

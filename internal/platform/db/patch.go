package db

import (
	"fmt"
	"strings"
)

// Patch accumulates the columns of a partial UPDATE. Column names always come
// from repository code, values are always bound.
type Patch struct {
	cols  []string
	sets  []string
	args  []interface{}
	conds []string
}

// Set adds column = value.
func (p *Patch) Set(column string, value interface{}) {
	p.cols = append(p.cols, column)
	p.args = append(p.args, value)
	p.sets = append(p.sets, fmt.Sprintf("%s = $%d", column, len(p.args)))
}

// And adds a literal WHERE condition, such as "status = 1".
func (p *Patch) And(cond string) {
	p.conds = append(p.conds, cond)
}

// Fields returns the columns set so far with their values.
func (p *Patch) Fields() map[string]interface{} {
	fields := make(map[string]interface{}, len(p.cols))
	for i, col := range p.cols {
		fields[col] = p.args[i]
	}
	return fields
}

// Empty reports whether no column was set.
func (p *Patch) Empty() bool { return len(p.sets) == 0 }

// Build renders UPDATE table SET ... WHERE id = ? AND tenant_id = ?
// RETURNING returning. extra holds raw assignments without arguments, such
// as "updated_at = NOW()".
func (p *Patch) Build(table string, id int64, tenantID, returning string, extra ...string) (string, []interface{}) {
	sets := append(append([]string{}, p.sets...), extra...)
	args := append(append([]interface{}{}, p.args...), id, tenantID)

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d AND tenant_id = $%d",
		table, strings.Join(sets, ", "), len(p.args)+1, len(p.args)+2)
	for _, c := range p.conds {
		sql += " AND " + c
	}
	if returning != "" {
		sql += " RETURNING " + returning
	}
	return sql, args
}

// Package query is a small fluent builder for the SQL shared by the MySQL
// and SQLite stores: backtick identifiers and "?" placeholders.
package query

import (
	"fmt"
	"sort"
	"strings"
)

type kind int

const (
	kindSelect kind = iota
	kindInsert
	kindUpdate
	kindDelete
)

// Soft delete column shared by tables that never hard-delete rows
const (
	ColumnDeleted = "deleted"
	DeletedFalse  = 0
	DeletedTrue   = 1
)

// Statement is a rendered query and its positional arguments
type Statement struct {
	SQL    string
	Params []interface{}
}

// Row is one set of column values for an INSERT
type Row map[string]interface{}

// Builder accumulates the clauses of one statement. Clauses that do not
// apply to the statement kind are ignored.
type Builder struct {
	kind    kind
	table   string
	columns []string
	joins   []string
	where   []string
	args    []interface{}
	order   []string
	limit   int
	set     map[string]interface{}
	rows    []Row
}

func newBuilder(k kind, table string) *Builder {
	return &Builder{kind: k, table: table, args: []interface{}{}, limit: -1}
}

// From starts a SELECT on table
func From(table string) *Builder {
	return newBuilder(kindSelect, table)
}

// Insert starts a single-row INSERT
func Insert(table string, data map[string]interface{}) *Builder {
	return BulkInsert(table, []Row{data})
}

// BulkInsert starts a multi-row INSERT. Every row must carry the same
// columns as the first one.
func BulkInsert(table string, rows []Row) *Builder {
	b := newBuilder(kindInsert, table)
	b.rows = rows
	return b
}

// Update starts an UPDATE on table
func Update(table string) *Builder {
	return newBuilder(kindUpdate, table)
}

// Delete starts a DELETE on table
func Delete(table string) *Builder {
	return newBuilder(kindDelete, table)
}

// Select adds columns; bare names are qualified with the table
func (b *Builder) Select(columns []string) *Builder {
	for _, c := range columns {
		b.columns = append(b.columns, b.qualify(c))
	}
	return b
}

// AddSelectRaw adds an expression to the select list, optionally aliased
func (b *Builder) AddSelectRaw(expression string, alias ...string) *Builder {
	if len(alias) > 0 && alias[0] != "" {
		expression = fmt.Sprintf("%s AS `%s`", expression, alias[0])
	}
	b.columns = append(b.columns, expression)
	return b
}

// Join adds "<joinType> JOIN `table` ON on"
func (b *Builder) Join(joinType, table, on string) *Builder {
	b.joins = append(b.joins, fmt.Sprintf("%s JOIN `%s` ON %s", joinType, table, on))
	return b
}

// Where ANDs a condition with its arguments
func (b *Builder) Where(condition string, args ...interface{}) *Builder {
	b.where = append(b.where, condition)
	b.args = append(b.args, args...)
	return b
}

// WhereIn adds "<column> IN (?, ...)". An empty list matches nothing.
func (b *Builder) WhereIn(column string, values []interface{}) *Builder {
	if len(values) == 0 {
		return b.Where("1 = 0")
	}
	return b.Where(fmt.Sprintf("%s IN %s", b.qualify(column), tuple(len(values))), values...)
}

// ExcludeDeleted keeps rows whose soft-delete flag is clear
func (b *Builder) ExcludeDeleted() *Builder {
	return b.Where(fmt.Sprintf("`%s`.`%s` = %d", b.table, ColumnDeleted, DeletedFalse))
}

// Set assigns the columns an UPDATE writes
func (b *Builder) Set(data map[string]interface{}) *Builder {
	b.set = data
	return b
}

// OrderBy appends an ORDER BY term
func (b *Builder) OrderBy(column, direction string) *Builder {
	b.order = append(b.order, b.qualify(column)+" "+direction)
	return b
}

// Limit caps the number of selected rows
func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

// Build renders the statement
func (b *Builder) Build() Statement {
	var sb strings.Builder
	var params []interface{}

	switch b.kind {
	case kindSelect:
		cols := "*"
		if len(b.columns) > 0 {
			cols = strings.Join(b.columns, ", ")
		}
		fmt.Fprintf(&sb, "SELECT %s FROM `%s`", cols, b.table)
		for _, j := range b.joins {
			sb.WriteString(" " + j)
		}
		b.writeWhere(&sb)
		if len(b.order) > 0 {
			sb.WriteString(" ORDER BY " + strings.Join(b.order, ", "))
		}
		if b.limit >= 0 {
			fmt.Fprintf(&sb, " LIMIT %d", b.limit)
		}
		params = b.args

	case kindInsert:
		if len(b.rows) == 0 {
			return Statement{}
		}
		keys := sortedKeys(b.rows[0])
		tuples := make([]string, len(b.rows))
		params = make([]interface{}, 0, len(keys)*len(b.rows))
		for i, row := range b.rows {
			tuples[i] = tuple(len(keys))
			for _, k := range keys {
				params = append(params, row[k])
			}
		}
		fmt.Fprintf(&sb, "INSERT INTO `%s` (%s) VALUES %s", b.table, quoteAll(keys), strings.Join(tuples, ", "))

	case kindUpdate:
		keys := sortedKeys(b.set)
		assignments := make([]string, len(keys))
		for i, k := range keys {
			assignments[i] = fmt.Sprintf("`%s` = ?", k)
			params = append(params, b.set[k])
		}
		fmt.Fprintf(&sb, "UPDATE `%s` SET %s", b.table, strings.Join(assignments, ", "))
		b.writeWhere(&sb)
		params = append(params, b.args...)

	case kindDelete:
		fmt.Fprintf(&sb, "DELETE FROM `%s`", b.table)
		b.writeWhere(&sb)
		params = b.args
	}

	return Statement{SQL: sb.String(), Params: params}
}

func (b *Builder) writeWhere(sb *strings.Builder) {
	if len(b.where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(b.where, " AND "))
	}
}

// qualify prefixes bare column names with the builder's table
func (b *Builder) qualify(column string) string {
	if column == "*" || strings.ContainsAny(column, ".`(") {
		return column
	}
	return fmt.Sprintf("`%s`.`%s`", b.table, column)
}

// tuple renders "(?, ?, ...)" with n placeholders
func tuple(n int) string {
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + ")"
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return strings.Join(quoted, ", ")
}

// sortedKeys keeps generated column lists stable so statements are testable
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

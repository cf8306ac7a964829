package db

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dentix/dentix/internal/platform/apperr"
)

// FilterOp is how a list filter compares its column with the query value.
type FilterOp int

const (
	FilterExact    FilterOp = iota // text equality
	FilterInt                      // integer equality
	FilterBool                     // true/false equality
	FilterContains                 // case-insensitive substring (ILIKE)
	FilterMin                      // numeric >=
	FilterMax                      // numeric <=
	FilterDateFrom                 // column >= date
	FilterDateTo                   // column < day after date
)

// Filter maps one query parameter onto SQL. Columns lets a contains filter
// match any of several columns.
type Filter struct {
	Op      FilterOp
	Column  string
	Columns []string
}

// FilterSet is the allow-list of query parameters an endpoint accepts.
type FilterSet map[string]Filter

// reservedParams are consumed by pagination and never treated as filters.
var reservedParams = map[string]bool{"page": true, "limit": true}

// SearchQuery builds a tenant-scoped SELECT plus its matching COUNT.
type SearchQuery struct {
	from    string
	cols    string
	where   string
	args    []interface{}
	idx     int
	orderBy string
}

// NewSearchQuery starts a query over from (a table, optionally with joins)
// projecting cols.
func NewSearchQuery(from, cols string) *SearchQuery {
	return &SearchQuery{
		from: from,
		cols: cols,
		idx:  1,
	}
}

// Add appends a raw WHERE clause fragment (without leading "AND").
func (q *SearchQuery) Add(clause string, args ...interface{}) {
	q.where += " AND " + clause
	q.args = append(q.args, args...)
	q.idx += len(args)
}

// Eq appends column = value.
func (q *SearchQuery) Eq(column string, value interface{}) {
	q.Add(fmt.Sprintf("%s = $%d", column, q.idx), value)
}

// ApplyParams applies every non-reserved parameter through filters. A
// parameter that is not declared, or whose value does not parse, is a
// BadRequest. Empty values are ignored.
func (q *SearchQuery) ApplyParams(params map[string]string, filters FilterSet) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if reservedParams[name] {
			continue
		}
		f, ok := filters[name]
		if !ok {
			return apperr.BadRequestf("unknown filter parameter: %s", name)
		}
		value := params[name]
		if value == "" {
			continue
		}
		if err := q.apply(name, f, value); err != nil {
			return err
		}
	}
	return nil
}

func (q *SearchQuery) apply(name string, f Filter, value string) error {
	switch f.Op {
	case FilterExact:
		q.Eq(f.Column, value)
	case FilterInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return apperr.BadRequestf("%s must be an integer", name)
		}
		q.Eq(f.Column, n)
	case FilterBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return apperr.BadRequestf("%s must be true or false", name)
		}
		q.Eq(f.Column, b)
	case FilterContains:
		cols := f.Columns
		if len(cols) == 0 {
			cols = []string{f.Column}
		}
		parts := make([]string, len(cols))
		for i, col := range cols {
			parts[i] = fmt.Sprintf("%s ILIKE $%d", col, q.idx)
		}
		clause := strings.Join(parts, " OR ")
		if len(parts) > 1 {
			clause = "(" + clause + ")"
		}
		q.Add(clause, "%"+value+"%")
	case FilterMin, FilterMax:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return apperr.BadRequestf("%s must be a number", name)
		}
		op := ">="
		if f.Op == FilterMax {
			op = "<="
		}
		q.Add(fmt.Sprintf("%s %s $%d", f.Column, op, q.idx), n)
	case FilterDateFrom, FilterDateTo:
		d, err := ParseDate(value)
		if err != nil {
			return apperr.BadRequestf("%s must be a date (YYYY-MM-DD)", name)
		}
		switch {
		case f.Op == FilterDateFrom:
			q.Add(fmt.Sprintf("%s >= $%d", f.Column, q.idx), d)
		case len(value) == len(dateLayout):
			// a bare date covers the whole day
			q.Add(fmt.Sprintf("%s < $%d", f.Column, q.idx), d.AddDate(0, 0, 1))
		default:
			q.Add(fmt.Sprintf("%s <= $%d", f.Column, q.idx), d)
		}
	default:
		return apperr.BadRequestf("unsupported filter: %s", name)
	}
	return nil
}

// OrderBy sets the ORDER BY clause (without the "ORDER BY" keyword).
func (q *SearchQuery) OrderBy(orderBy string) {
	q.orderBy = orderBy
}

// CountSQL returns the count query SQL. It shares the data query's predicate.
func (q *SearchQuery) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE 1=1%s", q.from, q.where)
}

// CountArgs returns the arguments for the count query.
func (q *SearchQuery) CountArgs() []interface{} {
	return q.args
}

// SelectSQL returns the unpaginated query SQL. Its arguments are CountArgs.
func (q *SearchQuery) SelectSQL() string {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1%s", q.cols, q.from, q.where)
	if q.orderBy != "" {
		sql += " ORDER BY " + q.orderBy
	}
	return sql
}

// DataSQL returns the data query SQL with ORDER BY and LIMIT/OFFSET.
func (q *SearchQuery) DataSQL() string {
	return q.SelectSQL() + fmt.Sprintf(" LIMIT $%d OFFSET $%d", q.idx, q.idx+1)
}

// DataArgs returns the arguments for the data query (search args + limit + offset).
func (q *SearchQuery) DataArgs(limit, offset int) []interface{} {
	result := make([]interface{}, len(q.args)+2)
	copy(result, q.args)
	result[len(q.args)] = limit
	result[len(q.args)+1] = offset
	return result
}

const dateLayout = "2006-01-02"

// ParseDate accepts a calendar date or an RFC 3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// ParamsFromQuery flattens a query string to its first value per key.
func ParamsFromQuery(values url.Values) map[string]string {
	params := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	return params
}

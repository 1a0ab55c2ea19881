package query

import (
	"fmt"
	"strings"
)

// postgresColumns maps fields to transactions table columns
var postgresColumns = map[Field]string{
	FieldID:              "id",
	FieldUserID:          "user_id",
	FieldDescription:     "description",
	FieldAmount:          "amount",
	FieldTransactionDate: "transaction_date",
	FieldType:            "type",
	FieldCategory:        "category",
	FieldMonth:           "month",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SQL is a compiled WHERE, ORDER BY and LIMIT with positional arguments
type SQL struct {
	Where   string
	OrderBy string
	Limit   string
	Args    []any
}

// CompilePostgres renders q for PostgreSQL using $1..$n placeholders
func CompilePostgres(q Query) (SQL, error) {
	c := &pgCompiler{}
	where := "TRUE"
	if q.Where != nil {
		w, err := c.compile(q.Where)
		if err != nil {
			return SQL{}, err
		}
		where = w
	}

	col, ok := postgresColumns[q.Sort.Field]
	if !ok || !IsSortable(q.Sort.Field) {
		col = postgresColumns[DefaultSortField]
	}
	dir := "DESC"
	if q.Sort.Direction == Asc {
		dir = "ASC"
	}
	orderBy := col + " " + dir
	if col != "id" {
		orderBy += ", id DESC"
	}

	out := SQL{Where: where, OrderBy: orderBy}
	if q.Limit > 0 {
		out.Limit = "LIMIT " + c.bind(q.Limit)
	}
	out.Args = c.args
	return out, nil
}

type pgCompiler struct {
	args []any
}

func (c *pgCompiler) bind(v any) string {
	c.args = append(c.args, v)
	return fmt.Sprintf("$%d", len(c.args))
}

func (c *pgCompiler) column(f Field) (string, error) {
	col, ok := postgresColumns[f]
	if !ok {
		return "", fmt.Errorf("unknown field %q", f)
	}
	return col, nil
}

func (c *pgCompiler) compile(p Predicate) (string, error) {
	switch t := p.(type) {
	case And:
		if len(t.Terms) == 0 {
			return "TRUE", nil
		}
		parts := make([]string, 0, len(t.Terms))
		for _, term := range t.Terms {
			s, err := c.compile(term)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "(" + strings.Join(parts, " AND ") + ")", nil
	case Equals:
		col, err := c.column(t.Field)
		if err != nil {
			return "", err
		}
		if t.Fold {
			return fmt.Sprintf("LOWER(%s) = LOWER(%s)", col, c.bind(t.Value)), nil
		}
		return fmt.Sprintf("%s = %s", col, c.bind(t.Value)), nil
	case ILike:
		col, err := c.column(t.Field)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s ILIKE %s", col, c.bind("%"+likeEscaper.Replace(t.Substring)+"%")), nil
	case Range:
		col, err := c.column(t.Field)
		if err != nil {
			return "", err
		}
		var parts []string
		if t.Min != nil {
			parts = append(parts, fmt.Sprintf("%s >= %s", col, c.bind(t.Min)))
		}
		if t.Max != nil {
			parts = append(parts, fmt.Sprintf("%s <= %s", col, c.bind(t.Max)))
		}
		if len(parts) == 0 {
			return "TRUE", nil
		}
		return strings.Join(parts, " AND "), nil
	}
	return "", fmt.Errorf("unsupported predicate %T", p)
}

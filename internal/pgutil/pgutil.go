// AngelaMos | 2026
// pgutil.go

package pgutil

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/angelamos/studio-portal/internal/core"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func IsDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}

// RequireRows maps a zero-row update or delete to core.ErrNotFound.
func RequireRows(op string, result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}

// Contains builds an ILIKE substring pattern with wildcards escaped.
func Contains(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return "%" + s + "%"
}

// Where accumulates AND-ed conditions with numbered placeholders.
// Every "$?" in a condition refers to that condition's single argument.
type Where struct {
	conds []string
	args  []any
}

func NewWhere(conds ...string) *Where {
	return &Where{conds: conds}
}

func (w *Where) Add(cond string, arg any) {
	w.args = append(w.args, arg)
	n := "$" + strconv.Itoa(len(w.args))
	w.conds = append(w.conds, strings.ReplaceAll(cond, "$?", n))
}

func (w *Where) SQL() string {
	if len(w.conds) == 0 {
		return "TRUE"
	}
	return strings.Join(w.conds, " AND ")
}

func (w *Where) Args() []any {
	return w.args
}

// Page appends limit and offset arguments and returns their placeholders.
func (w *Where) Page(limit, offset int) (string, string) {
	w.args = append(w.args, limit, offset)
	n := len(w.args)
	return "$" + strconv.Itoa(n-1), "$" + strconv.Itoa(n)
}

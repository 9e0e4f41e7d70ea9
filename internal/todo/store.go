package todo

import (
	"context"
	"errors"
	"strings"
)

// ErrTodoNotFound はTODOが見つからない場合のエラーです。
var ErrTodoNotFound = errors.New("todo not found")

// Store は ToDo の永続化を抽象化したインターフェースです。
// MySQL 用の Repository と PostgreSQL 用の PGRepository が実装します。
type Store interface {
	Create(ctx context.Context, t *Todo) (*Todo, error)
	FindAll(ctx context.Context, f Filter) ([]*Todo, error)
	FindByID(ctx context.Context, id int64) (*Todo, error)
	// Update はトランザクション内で行をロックし、fn で変更した内容を保存します。
	// fn がエラーを返した場合は何も保存しません。
	Update(ctx context.Context, id int64, fn func(*Todo) error) (*Todo, error)
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context) (map[Status]int, error)
	Ping(ctx context.Context) error
}

// Filter は一覧取得時の絞り込み条件です。ゼロ値は全件を意味します。
type Filter struct {
	Status Status
	Search string
}

// Matches はメモリ上で絞り込みを行う場合の判定です。
// Search はタイトルまたは説明に対する大文字小文字を区別しない部分一致です。
func (f Filter) Matches(t *Todo) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}

// whereClause は Filter を SQL の WHERE 句に変換します。
// placeholder は n 番目 (1始まり) の引数プレースホルダを返し、likeOp は LIKE / ILIKE です。
func (f Filter) whereClause(placeholder func(n int) string, likeOp string) (string, []any) {
	var conds []string
	var args []any
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, "status = "+placeholder(len(args)))
	}
	if f.Search != "" {
		pattern := "%" + escapeLike(f.Search) + "%"
		args = append(args, pattern)
		titleArg := placeholder(len(args))
		args = append(args, pattern)
		descArg := placeholder(len(args))
		conds = append(conds, "(title "+likeOp+" "+titleArg+" OR description "+likeOp+" "+descArg+")")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

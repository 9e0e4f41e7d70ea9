// Package todo は ToDo エンティティと、その永続化 (MySQL / PostgreSQL) を提供します。
package todo

import (
	"fmt"
	"time"
)

// Status は ToDo の状態を表す列挙型です。
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusArchived   Status = "archived"
)

// Statuses は定義済みの状態を表示順に並べたものです。
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone, StatusArchived}

var statusLabels = map[Status]string{
	StatusTodo:       "Todo",
	StatusInProgress: "In Progress",
	StatusDone:       "Done",
	StatusArchived:   "Archived",
}

// Valid は s が定義済みの状態かどうかを返します。
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Display は画面表示用のラベルを返します (例: "In Progress")。
// 未定義の値はそのまま返します。
func (s Status) Display() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Todo は ToDo タスクのデータベース構造体を表します。
type Todo struct {
	ID          int64
	Title       string
	Description string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// String は "タイトル (状態ラベル)" 形式の文字列を返します。
func (t *Todo) String() string {
	return fmt.Sprintf("%s (%s)", t.Title, t.Status.Display())
}

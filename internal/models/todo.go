// Package models はTodoのリクエスト/レスポンス表現 (シリアライザ) を定義します。
package models

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"todoapp/backend/internal/todo"
)

// TitleMaxLength はタイトルの最大文字数です。
const TitleMaxLength = 200

// TodoResponse はクライアントに返すTodoの表現です。
type TodoResponse struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Status        todo.Status `json:"status"`
	StatusDisplay string      `json:"status_display"` // 読み取り専用 (status から導出)
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// NewTodoResponse は todo.Todo をレスポンス表現に変換します。
func NewTodoResponse(t *todo.Todo) TodoResponse {
	return TodoResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        t.Status,
		StatusDisplay: t.Status.Display(),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// NewTodoResponses は一覧を変換します。空の場合も null ではなく [] になります。
func NewTodoResponses(todos []*todo.Todo) []TodoResponse {
	out := make([]TodoResponse, 0, len(todos))
	for _, t := range todos {
		out = append(out, NewTodoResponse(t))
	}
	return out
}

// ToInput は書き込み可能なフィールドだけを取り出します。
func (r TodoResponse) ToInput() TodoInput {
	title, description, status := r.Title, r.Description, r.Status
	return TodoInput{Title: &title, Description: &description, Status: &status}
}

// TodoInput は作成・更新リクエストのペイロードです。
// id / created_at / updated_at / status_display は受け付けず、送られても無視されます。
// nil のフィールドは「指定なし」を表します。
type TodoInput struct {
	Title       *string      `json:"title" validate:"omitempty,max=200"`
	Description *string      `json:"description"`
	Status      *todo.Status `json:"status" validate:"omitempty,oneof=todo in_progress done archived"`
}

// Normalize はタイトル前後の空白を取り除きます。
func (in *TodoInput) Normalize() {
	if in.Title != nil {
		trimmed := strings.TrimSpace(*in.Title)
		in.Title = &trimmed
	}
}

// Validate はペイロードを検証します。partial が false (作成・PUT) の場合 title は必須です。
func (in *TodoInput) Validate(partial bool) error {
	verr := &ValidationError{Fields: map[string][]string{}}

	if err := validate.Struct(in); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range fieldErrs {
			verr.add(fe.Field(), fieldMessage(fe))
		}
	}

	if in.Status != nil && !in.Status.Valid() && len(verr.Fields["status"]) == 0 {
		verr.add("status", InvalidChoiceMessage(string(*in.Status)))
	}

	switch {
	case in.Title == nil && !partial:
		verr.add("title", "This field is required.")
	case in.Title != nil && *in.Title == "":
		verr.add("title", "This field may not be blank.")
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// ApplyTo は指定されたフィールドだけを t に反映します。
func (in *TodoInput) ApplyTo(t *todo.Todo) {
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
}

// TodoStatsResponse は状態ごとの件数です。
type TodoStatsResponse struct {
	Total    int                 `json:"total"`
	ByStatus map[todo.Status]int `json:"by_status"`
}

// NewTodoStatsResponse は件数の集計結果をレスポンスに変換します。
func NewTodoStatsResponse(counts map[todo.Status]int) TodoStatsResponse {
	resp := TodoStatsResponse{ByStatus: make(map[todo.Status]int, len(todo.Statuses))}
	for _, s := range todo.Statuses {
		resp.ByStatus[s] = counts[s]
	}
	for _, n := range counts {
		resp.Total += n
	}
	return resp
}

// ValidationError はフィールド単位の検証エラーです。
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e.Fields[f], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewFieldError は単一フィールドの検証エラーを作成します。
func NewFieldError(field, msg string) *ValidationError {
	e := &ValidationError{Fields: map[string][]string{}}
	e.add(field, msg)
	return e
}

// InvalidChoiceMessage は選択肢にない値に対するメッセージです。
func InvalidChoiceMessage(v string) string {
	return fmt.Sprintf("%q is not a valid choice.", v)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// エラーのフィールド名を JSON 名にする
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "oneof":
		return InvalidChoiceMessage(fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}

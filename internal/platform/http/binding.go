package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"imi_backend/internal/api"
)

var registerOnce sync.Once

// ErrMalformedJSON はボディ全体が単一の正しいJSON値でない場合に返されます。
var ErrMalformedJSON = errors.New("malformed JSON")

// BindJSON はボディ全体を読み込み、単一のJSON値であることを確認してから obj にバインドします。
// 先頭の値の後ろに余分なデータがあるボディも ErrMalformedJSON として拒否します。
func BindJSON(c *gin.Context, obj any) error {
	raw, err := c.GetRawData()
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return io.EOF
	}
	if !json.Valid(raw) {
		return ErrMalformedJSON
	}
	return binding.JSON.BindBody(raw, obj)
}

// RegisterJSONTagNames はバリデーションエラーのフィールド名をjsonタグ名で報告するよう
// Ginのバリデーターを設定します。複数回呼び出しても一度だけ登録されます。
func RegisterJSONTagNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// FieldErrors はBindJSONが返したエラーをフィールド単位の説明に変換します。
func FieldErrors(err error) []api.FieldError {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make([]api.FieldError, 0, len(ve))
		for _, fe := range ve {
			out = append(out, api.FieldError{Field: fe.Field(), Message: describe(fe)})
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		// フィールド名が無いのはボディ自体がオブジェクトでない場合
		if typeErr.Field == "" {
			return []api.FieldError{{Field: "body", Message: "must be a JSON object"}}
		}
		return []api.FieldError{{
			Field:   typeErr.Field,
			Message: "must be " + jsonKind(typeErr.Type),
		}}
	}

	var syntaxErr *json.SyntaxError
	if errors.Is(err, ErrMalformedJSON) || errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []api.FieldError{{Field: "body", Message: "malformed JSON"}}
	}
	if errors.Is(err, io.EOF) {
		return []api.FieldError{{Field: "body", Message: "request body is empty"}}
	}

	return []api.FieldError{{Field: "body", Message: "invalid request body"}}
}

// describe はバリデーションタグを短いメッセージに変換します。
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	default:
		return "failed on " + fe.Tag()
	}
}

// jsonKind はGoの型を対応するJSONの種類で表します。
func jsonKind(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Struct:
		if t.ConvertibleTo(reflect.TypeOf(time.Time{})) {
			return "an RFC 3339 date-time string"
		}
		return "an object"
	case reflect.Map:
		return "an object"
	default:
		return "a valid value"
	}
}

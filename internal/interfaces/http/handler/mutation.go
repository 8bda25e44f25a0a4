package handler

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// IdempotencyHeaderKey carries the client-supplied dedup key. A
// request_id field in the body works too; the header wins when both are
// present.
const IdempotencyHeaderKey = "X-Idempotency-Key"

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("posting_date", func(fl validator.FieldLevel) bool {
			_, err := parsePostingDate(fl.Field().String())
			return err == nil
		})
	}
}

func clientRequestID(c *gin.Context, bodyID string) string {
	if id := c.GetHeader(IdempotencyHeaderKey); id != "" {
		return id
	}
	return bodyID
}

// bindMutationBody binds the already-read raw body so the same bytes
// feed both the DTO and the idempotency fingerprint. Clients send keys
// in either snake_case or camelCase (requestId, posProfile,
// postingDate); camel keys are folded to snake_case at every nesting
// level, with an explicit snake_case key winning over its alias. The
// folded bytes are returned so the fingerprint is casing-insensitive.
func bindMutationBody(body []byte, obj any) ([]byte, error) {
	normalized, err := foldAliasKeys(body)
	if err != nil {
		return nil, err
	}
	if err := binding.JSON.BindBody(normalized, obj); err != nil {
		return nil, err
	}
	return normalized, nil
}

func foldAliasKeys(body []byte) ([]byte, error) {
	if len(body) == 0 {
		return body, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return json.Marshal(foldValue(value))
}

func foldValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		folded := make(map[string]any, len(v))
		for key, item := range v {
			name := snakeKey(key)
			if name != key {
				if _, exists := v[name]; exists {
					continue
				}
			}
			folded[name] = foldValue(item)
		}
		return folded
	case []any:
		for i, item := range v {
			v[i] = foldValue(item)
		}
		return v
	default:
		return value
	}
}

// snakeKey lowers a camelCase key to snake_case; keys already in
// snake_case pass through unchanged.
func snakeKey(key string) string {
	var b strings.Builder
	runes := []rune(key)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// parsePostingDate accepts both date-only and RFC3339 timestamps. The
// zero time is returned for an empty value; services substitute the
// shift's posting date.
func parsePostingDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

package handler

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/growlify/growlify-api/internal/domain"
	"github.com/growlify/growlify-api/internal/util"
)

var jsonNull = []byte("null")

// patchFields is a decoded partial-update body. Keys that are absent are left
// untouched; keys set to null clear nullable columns.
type patchFields map[string]json.RawMessage

func bindPatch(c echo.Context) (patchFields, error) {
	fields := patchFields{}
	if err := new(echo.DefaultBinder).BindBody(c, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// value decodes key into v. It reports false when the key is absent or null.
func (p patchFields) value(key string, v any) (bool, error) {
	raw, ok := p[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

// null reports whether key is present and explicitly null
func (p patchFields) null(key string) bool {
	raw, ok := p[key]
	return ok && bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

// optionalText trims s and turns empty strings into nil
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// parseOptionalInstant reads an optional RFC 3339 or YYYY-MM-DD value
func parseOptionalInstant(s, field string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := util.ParseInstant(s)
	if err != nil {
		return nil, domain.NewFieldError(field, "Data inválida.")
	}
	return &t, nil
}

// parseOptionalUUID reads an optional id. Empty strings count as absent.
func parseOptionalUUID(s, field, message string) (*uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, domain.NewFieldError(field, message)
	}
	return &id, nil
}

// reportRangeQuery reads the from/to query parameters shared by the report endpoints
func reportRangeQuery(c echo.Context) (from, to *time.Time, err error) {
	if from, err = parseOptionalInstant(c.QueryParam("from"), "from"); err != nil {
		return nil, nil, err
	}
	if to, err = parseOptionalInstant(c.QueryParam("to"), "to"); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

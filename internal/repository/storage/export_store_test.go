package storage

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestExportObjectPath(t *testing.T) {
	userID := uuid.MustParse("3f2504e0-4f89-11d3-9a0c-0305e82c3301")
	at := time.Date(2026, 2, 16, 9, 5, 7, 0, time.FixedZone("BRT", -3*3600))

	assert.Equal(t,
		"exports/3f2504e0-4f89-11d3-9a0c-0305e82c3301/20260216T120507Z.csv",
		ExportObjectPath(userID, at))
}

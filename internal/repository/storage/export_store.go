package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// ExportURLExpiry is how long an archived export link stays valid
const ExportURLExpiry = 15 * time.Minute

// ExportStore archives generated report files and hands out temporary links
type ExportStore interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}

// ExportObjectPath returns exports/<userID>/<UTC timestamp>.csv
func ExportObjectPath(userID uuid.UUID, at time.Time) string {
	return path.Join("exports", userID.String(), fmt.Sprintf("%s.csv", at.UTC().Format("20060102T150405Z")))
}

package ports

import (
	"context"

	"medvis/domain/exam"
)

// ExaminationSource loads the examination table
type ExaminationSource interface {
	Read(ctx context.Context) (*exam.RawTable, error)
	Path() string
}

package report

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"medvis/adapters/render"
	apperrors "medvis/internal/errors"
)

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.IOError("failed to create output directory", err)
	}
	return nil
}

// savePNG writes fig to path, replacing an existing file.
func savePNG(ctx context.Context, fig *render.Figure, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := fig.SavePNG(path); err != nil {
		return apperrors.IOError("failed to write "+path, err)
	}
	return nil
}

// writeFile creates path and streams write into it.
func writeFile(path string, write func(io.Writer) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return apperrors.IOError("failed to create "+path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return apperrors.IOError("failed to write "+path, err)
	}
	return nil
}

package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/uyouii/welllog/common"
	"github.com/uyouii/welllog/las"
	"github.com/uyouii/welllog/model"
	"github.com/uyouii/welllog/utils"
)

type Format string

const (
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
	FormatLAS    Format = "las"
	FormatSQLite Format = "sqlite"
)

var extensions = map[string]Format{
	".csv":     FormatCSV,
	".xlsx":    FormatXLSX,
	".las":     FormatLAS,
	".sqlite":  FormatSQLite,
	".sqlite3": FormatSQLite,
	".db":      FormatSQLite,
}

// ParseFormat accepts a format name as given on the command line.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCSV, FormatXLSX, FormatLAS, FormatSQLite:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q: %w", name, common.ErrorConfig)
}

// FormatOf infers the format from the destination extension.
func FormatOf(dest string) (Format, error) {
	if f, ok := extensions[strings.ToLower(filepath.Ext(dest))]; ok {
		return f, nil
	}
	return "", fmt.Errorf("cannot infer export format of %q: %w", dest, common.ErrorConfig)
}

// Export writes ds to dest. An empty format is inferred from the extension. dest is
// replaced only once the whole file is written, a failed export leaves it untouched.
func Export(ctx context.Context, ds *model.LogDataset, dest string, format Format) error {
	logger := utils.GetLogger(ctx)

	var err error
	if format == "" {
		format, err = FormatOf(dest)
	} else {
		format, err = ParseFormat(string(format))
	}
	if err != nil {
		return err
	}
	table, err := ds.DerivedTable()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		logger.Error("create export file failed", zap.String("dest", dest), zap.Error(err))
		return fmt.Errorf("export %s: %v: %w", dest, err, common.ErrorIO)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	// CreateTemp opens with 0600
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("export %s: %v: %w", dest, err, common.ErrorIO)
	}

	switch format {
	case FormatSQLite:
		// the driver opens the file itself
		tmp.Close()
		err = writeSQLite(ctx, tmpName, ds, table)
	default:
		err = writeTo(tmp, format, ds, table)
		if cerr := tmp.Close(); err == nil {
			err = cerr
		}
	}
	if err == nil {
		err = os.Rename(tmpName, dest)
	}
	if err != nil {
		logger.Error("export failed", zap.String("dest", dest), zap.String("format", string(format)), zap.Error(err))
		return fmt.Errorf("export %s: %v: %w", dest, err, common.ErrorIO)
	}

	logger.Info("dataset exported", zap.String("dest", dest), zap.String("format", string(format)),
		zap.Int("rows", table.Len()), zap.Int("curves", len(table.Curves())))
	return nil
}

func writeTo(w io.Writer, format Format, ds *model.LogDataset, table *model.DerivedTable) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, table)
	case FormatXLSX:
		return WriteXLSX(w, ds, table)
	case FormatLAS:
		return las.Write(w, ds)
	}
	return fmt.Errorf("unknown export format %q: %w", format, common.ErrorConfig)
}

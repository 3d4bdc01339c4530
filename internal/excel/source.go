// Package excel reads .xlsx workbooks into the row maps the auto-fill
// resolver consumes. Missing files and sheets degrade to an empty row set;
// auto-fill must never block form completion.
package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// Source resolves file locators beneath a base directory. A non-empty
// siteLocator overrides the base, mirroring the cross-site file references
// form authors can configure.
type Source struct {
	baseDir string
}

// NewSource creates a workbook source rooted at baseDir.
func NewSource(baseDir string) *Source {
	return &Source{baseDir: baseDir}
}

// Rows reads the named sheet (or the first sheet when sheetName is empty) and
// returns one map per data row keyed by the header row, in stored order.
// A missing file or sheet logs a warning and returns an empty row set with a
// nil error; only unreadable or corrupt workbooks surface an error.
func (s *Source) Rows(ctx context.Context, fileLocator, sheetName, siteLocator string) ([]map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.resolve(fileLocator, siteLocator)
	file, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.WithField("file", path).Warn("excel: workbook not found")
			return nil, nil
		}
		return nil, fmt.Errorf("excel: open %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	sheet := sheetName
	if strings.TrimSpace(sheet) == "" {
		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			log.WithField("file", path).Warn("excel: workbook has no sheets")
			return nil, nil
		}
		sheet = sheets[0]
	} else if idx, errIdx := file.GetSheetIndex(sheet); errIdx != nil || idx < 0 {
		log.WithFields(log.Fields{"file": path, "sheet": sheet}).Warn("excel: sheet not found")
		return nil, nil
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("excel: read %s!%s: %w", path, sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	header := rows[0]
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(header))
		for i, column := range header {
			if column == "" {
				continue
			}
			if i < len(row) {
				record[column] = row[i]
			}
		}
		out = append(out, record)
	}
	return out, nil
}

// resolve joins a locator with the active base directory. Absolute locators
// are kept as given so configs can point anywhere the process can read.
func (s *Source) resolve(fileLocator, siteLocator string) string {
	if filepath.IsAbs(fileLocator) {
		return filepath.Clean(fileLocator)
	}
	cleaned := filepath.FromSlash(strings.TrimPrefix(fileLocator, "/"))
	base := s.baseDir
	if strings.TrimSpace(siteLocator) != "" {
		base = siteLocator
	}
	if base == "" {
		return cleaned
	}
	return filepath.Join(base, cleaned)
}

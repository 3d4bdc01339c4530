package engine

import (
	"context"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/formbridge/formbridge/internal/schema"
)

// TabularSource supplies workbook rows as column-name-to-value maps, in the
// source's natural top-to-bottom order. Implementations resolve an empty
// sheet name to the first sheet and degrade to an empty row set on a missing
// file or sheet instead of failing.
type TabularSource interface {
	Rows(ctx context.Context, fileLocator, sheetName, siteLocator string) ([]map[string]string, error)
}

// Resolve looks up the trigger value in the configured workbook and returns
// the answers to merge: one entry per mapping whose row value is defined and
// differs from the current answer. Auto-fill is best effort; any fetch
// failure degrades to an empty result and is never returned to the caller.
func Resolve(ctx context.Context, cfg *schema.AutoFillConfig, trigger any, current schema.AnswerSet, source TabularSource) map[string]any {
	if cfg == nil || !cfg.Enabled || source == nil {
		return nil
	}
	triggerStr := coerceString(trigger)
	if strings.TrimSpace(triggerStr) == "" {
		return nil
	}

	rows, err := source.Rows(ctx, cfg.ExcelFilePath, cfg.SheetName, cfg.ExcelSiteURL)
	if err != nil {
		log.WithError(err).WithField("file", cfg.ExcelFilePath).Warn("autofill: fetch failed, skipping")
		return nil
	}

	keyColumn := cfg.LookupColumn()
	row := findRow(rows, keyColumn, triggerStr)
	if row == nil {
		return nil
	}

	updates := make(map[string]any)
	for column, targetQuestionID := range cfg.Mappings {
		value, ok := row[column]
		if !ok {
			continue
		}
		if existing, answered := current[targetQuestionID]; answered && coerceString(existing) == value {
			continue
		}
		updates[targetQuestionID] = value
	}
	if len(updates) == 0 {
		return nil
	}
	return updates
}

// findRow returns the first row whose key column loosely equals the trigger.
func findRow(rows []map[string]string, keyColumn, trigger string) map[string]string {
	for _, row := range rows {
		if looseEqual(row[keyColumn], trigger) {
			return row
		}
	}
	return nil
}

// looseEqual compares two cell values the way a respondent expects: "5" and 5
// match. When both sides parse numerically the comparison is numeric,
// otherwise it is an exact string comparison.
func looseEqual(a, b string) bool {
	if a == b {
		return true
	}
	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA != nil || errB != nil {
		return false
	}
	return fa == fb
}

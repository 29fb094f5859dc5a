// Package records loads, filters and partitions play records.
package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/playlog/internal/model"
)

// DateLayout is the calendar date format used in record files.
const DateLayout = "2006-01-02"

// MaxHeroes is the largest hero count the form accepts.
const MaxHeroes = 4

// ErrInvalidRecord reports a record that breaks the file invariants.
var ErrInvalidRecord = errors.New("invalid record")

type rawRecord struct {
	model.Record `yaml:",inline"`
	Date         string `json:"date" yaml:"date"`
}

// LoadRecords reads records from a JSON or YAML file, chosen by extension.
func LoadRecords(path string) ([]model.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raws []rawRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raws)
	default:
		err = json.Unmarshal(data, &raws)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	if len(raws) == 0 {
		return nil, fmt.Errorf("record file is empty")
	}

	recs := make([]model.Record, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for i, raw := range raws {
		rec, err := raw.toRecord()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("record %d: %w: duplicate id %q", i+1, ErrInvalidRecord, rec.ID)
		}
		seen[rec.ID] = struct{}{}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (r rawRecord) toRecord() (model.Record, error) {
	rec := r.Record
	if strings.TrimSpace(rec.ID) == "" {
		return model.Record{}, fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	date, err := time.ParseInLocation(DateLayout, strings.TrimSpace(r.Date), time.Local)
	if err != nil {
		return model.Record{}, fmt.Errorf("%w %q: bad date: %v", ErrInvalidRecord, rec.ID, err)
	}
	rec.Date = date
	if len(rec.Heroes) == 0 || len(rec.Heroes) > MaxHeroes {
		return model.Record{}, fmt.Errorf("%w %q: expected 1-%d heroes, got %d", ErrInvalidRecord, rec.ID, MaxHeroes, len(rec.Heroes))
	}
	for _, h := range rec.Heroes {
		if h.Win != 0 && h.Win != 1 {
			return model.Record{}, fmt.Errorf("%w %q: win must be 0 or 1, got %d", ErrInvalidRecord, rec.ID, h.Win)
		}
	}
	return rec, nil
}

package price_history

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// fileRecord is one line of the JSON lines dataset.
type fileRecord struct {
	MonthStart string  `json:"monthStart"`
	UsdBtc     float64 `json:"usdBtc"`
}

// FileRepository keeps the price history in an append-only JSON lines file.
type FileRepository struct {
	mu   sync.Mutex
	path string
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Append(ctx context.Context, record Record) error {
	if err := record.validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.readAll()
	if err != nil {
		return err
	}
	for _, existing := range records {
		if existing.MonthStart.Equal(record.MonthStart) {
			return ErrMonthAlreadyRecorded
		}
	}

	line, err := json.Marshal(fileRecord{
		MonthStart: record.MonthStart.Format(DateLayout),
		UsdBtc:     record.UsdBtc,
	})
	if err != nil {
		return fmt.Errorf("could not encode price record: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("could not create price history directory: %w", err)
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		err := fmt.Errorf("could not open price history file: %w", err)
		log.Error(err)
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		err := fmt.Errorf("could not append price record: %w", err)
		log.Error(err)
		return err
	}
	return f.Close()
}

func (r *FileRepository) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readAll()
}

func (r *FileRepository) Latest(ctx context.Context) (Record, error) {
	records, err := r.List(ctx)
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, ErrNoRecords
	}
	return records[len(records)-1], nil
}

// readAll must be called with mu held. A missing file is an empty history.
func (r *FileRepository) readAll() ([]Record, error) {
	content, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("could not read price history file: %w", err)
	}

	records := make([]Record, 0)
	scanner := bufio.NewScanner(bytes.NewReader(content))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var stored fileRecord
		if err := json.Unmarshal(line, &stored); err != nil {
			return nil, fmt.Errorf("price history line %d: %w", lineNo, err)
		}
		monthStart, err := time.Parse(DateLayout, stored.MonthStart)
		if err != nil {
			return nil, fmt.Errorf("price history line %d: %w", lineNo, err)
		}
		records = append(records, Record{MonthStart: monthStart, UsdBtc: stored.UsdBtc})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not scan price history file: %w", err)
	}
	// hand-edited or seeded files may be out of order
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].MonthStart.Before(records[j].MonthStart)
	})
	return records, nil
}

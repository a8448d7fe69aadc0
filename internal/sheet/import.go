// Package sheet moves quiz questions and progress data in and out of
// spreadsheets.
package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/codepet/codepet/internal/store"
	"github.com/xuri/excelize/v2"
)

// QuestionColumns is the header row of a question sheet.
var QuestionColumns = []string{
	"stack", "title", "content", "difficulty",
	"option1", "option2", "option3", "option4",
	"answer", "reward", "explanation",
}

// ImportConfig controls ImportQuestions.
type ImportConfig struct {
	// SheetName defaults to the workbook's first sheet.
	SheetName string

	// StartRow is the first 1-based data row. Default 2 skips the header.
	StartRow int

	// DefaultStack is used for rows with an empty stack column.
	DefaultStack string
}

// DefaultImportConfig skips one header row.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{StartRow: 2}
}

// ImportResult counts what happened to each data row.
type ImportResult struct {
	Processed int
	Created   int
	Skipped   int
	Errors    []RowError
}

// RowError is a rejected row.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

// Importer receives imported questions. *quiz.Service satisfies it.
type Importer interface {
	Titles(ctx context.Context, stackID string) ([]string, error)
	Create(ctx context.Context, q *store.Question) error
}

// ImportQuestions reads an .xlsx or .csv file and creates one question per
// data row. Rows whose title already exists in the stack are skipped. Bad
// rows are reported in the result; only unreadable files return an error.
func ImportQuestions(ctx context.Context, path string, cfg ImportConfig, dst Importer) (*ImportResult, error) {
	if cfg.StartRow < 1 {
		cfg.StartRow = 1
	}
	var (
		rows [][]string
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		rows, err = readCSV(path)
	} else {
		rows, err = readXLSX(path, cfg.SheetName)
	}
	if err != nil {
		return nil, err
	}

	res := &ImportResult{}
	known := map[string]map[string]bool{}
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow || blank(row) {
			continue
		}
		res.Processed++

		q, err := parseRow(row, cfg.DefaultStack)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: rowNum, Err: err})
			continue
		}

		titles, ok := known[q.TechStackID]
		if !ok {
			list, err := dst.Titles(ctx, q.TechStackID)
			if err != nil {
				return res, err
			}
			titles = make(map[string]bool, len(list))
			for _, t := range list {
				titles[strings.ToLower(t)] = true
			}
			known[q.TechStackID] = titles
		}
		if titles[strings.ToLower(q.Title)] {
			res.Skipped++
			continue
		}

		q.Source = store.SourceImport
		if err := dst.Create(ctx, q); err != nil {
			res.Errors = append(res.Errors, RowError{Row: rowNum, Err: err})
			continue
		}
		titles[strings.ToLower(q.Title)] = true
		res.Created++
	}
	return res, nil
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
	}
}

func parseRow(row []string, defaultStack string) (*store.Question, error) {
	col := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	q := &store.Question{
		TechStackID: strings.ToLower(col(0)),
		Title:       col(1),
		Content:     col(2),
		Difficulty:  col(3),
		Options:     []string{col(4), col(5), col(6), col(7)},
		Explanation: col(10),
	}
	if q.TechStackID == "" {
		q.TechStackID = defaultStack
	}

	answer, err := strconv.Atoi(col(8))
	if err != nil {
		return nil, fmt.Errorf("answer %q is not a number", col(8))
	}
	q.Answer = answer
	if r := col(9); r != "" {
		reward, err := strconv.Atoi(r)
		if err != nil {
			return nil, fmt.Errorf("reward %q is not a number", r)
		}
		q.RewardExp = reward
	}
	return q, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

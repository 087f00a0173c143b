package rag

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/natanel567/newsrag/rag/types"
)

// LoadArticles reads the prepared news table CSV. The file must carry the
// columns text, category, date and link; extra columns are ignored.
func LoadArticles(path string) ([]types.Article, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open news table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := map[string]int{}
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"text", "category", "date", "link"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("news table is missing required column %q", required)
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV rows: %w", err)
	}

	articles := make([]types.Article, 0, len(records))
	for _, row := range records {
		articles = append(articles, types.Article{
			Text:     row[columns["text"]],
			Category: row[columns["category"]],
			Date:     row[columns["date"]],
			Link:     row[columns["link"]],
		})
	}

	return articles, nil
}

// datasetRecord is one line of the raw News Category JSONL dump.
type datasetRecord struct {
	Headline         string `json:"headline"`
	ShortDescription string `json:"short_description"`
	Category         string `json:"category"`
	Date             string `json:"date"`
	Link             string `json:"link"`
}

// ConvertDataset turns the raw JSONL news dump into the prepared CSV table
// that the index builder consumes. Each row's text is the headline plus the
// short description, with category and date folded into the embedded text;
// the link is kept as metadata only. Records without a short description
// are skipped, and at most limit rows are written (0 means no cap).
func ConvertDataset(jsonlPath, csvPath string, limit int) (int, error) {
	in, err := os.Open(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer in.Close()

	out, err := os.Create(csvPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create news table: %w", err)
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.Write([]string{"text", "category", "date", "link"}); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}

	written := 0
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var record datasetRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			return written, fmt.Errorf("failed to parse dataset line: %w", err)
		}
		if strings.TrimSpace(record.ShortDescription) == "" {
			continue
		}

		text := fmt.Sprintf("%s. %s [Category: %s, Date: %s]",
			strings.TrimSpace(record.Headline),
			strings.TrimSpace(record.ShortDescription),
			record.Category,
			record.Date,
		)

		if err := writer.Write([]string{text, record.Category, record.Date, record.Link}); err != nil {
			return written, fmt.Errorf("failed to write CSV row: %w", err)
		}
		written++
		if limit > 0 && written >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return written, fmt.Errorf("failed to read dataset: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return written, fmt.Errorf("failed to flush news table: %w", err)
	}

	return written, nil
}

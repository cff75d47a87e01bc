package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dkovalev/transactions-api/internal/models"
)

type csvRow struct {
	title    string
	txType   string
	value    float64
	category string
}

// ImportTransactions parses the named CSV file into transactions, reconciles
// their categories in bulk and persists everything in a single operation.
// The file must carry a header row with the columns title, type, value and
// category; incidental leading whitespace in fields is trimmed. Rows with a
// malformed value or type reject the whole import before anything is deleted
// or persisted. After a successful parse the source file is removed; a
// failed removal fails the import. The returned transactions follow the
// input-row order.
func (s *Service) ImportTransactions(name string) ([]models.Transaction, error) {
	rows, err := s.parseFile(name)
	if err != nil {
		return nil, err
	}

	if err := s.files.Remove(name); err != nil {
		return nil, fmt.Errorf("failed to remove import file: %w", err)
	}

	titles := make([]string, len(rows))
	for i, row := range rows {
		titles[i] = row.category
	}
	categories, err := s.resolveCategories(titles)
	if err != nil {
		return nil, err
	}

	transactions := make([]models.Transaction, len(rows))
	for i, row := range rows {
		transactions[i] = models.Transaction{
			Title:      row.title,
			Value:      row.value,
			Type:       row.txType,
			CategoryID: categories[row.category].ID,
		}
	}

	if err := s.transactions.CreateTransactions(transactions); err != nil {
		return nil, err
	}

	s.log.Infof("Imported %d transactions from %s", len(transactions), name)
	s.sendImportSummary(len(transactions))
	return transactions, nil
}

func (s *Service) parseFile(name string) ([]csvRow, error) {
	file, err := s.files.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", ErrMalformedCSV, err)
	}
	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []csvRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedCSV, line, err)
		}

		value, err := strconv.ParseFloat(record[columns["value"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: malformed value %q: %w", line, record[columns["value"]], ErrInvalidValue)
		}
		if value <= 0 {
			return nil, fmt.Errorf("line %d: %w", line, ErrInvalidValue)
		}
		txType := record[columns["type"]]
		if txType != models.TypeIncome && txType != models.TypeOutcome {
			return nil, fmt.Errorf("line %d: %w", line, ErrInvalidType)
		}

		rows = append(rows, csvRow{
			title:    record[columns["title"]],
			txType:   txType,
			value:    value,
			category: record[columns["category"]],
		})
	}
	return rows, nil
}

// mapColumns locates the required columns in the header row
func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"title", "type", "value", "category"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformedCSV, required)
		}
	}
	return columns, nil
}

// sendImportSummary mails the import result when a notifier and a recipient
// are configured. Send failures are logged, never surfaced.
func (s *Service) sendImportSummary(imported int) {
	if s.notifier == nil || s.config.SummaryEmail == "" {
		return
	}
	balance, err := s.transactions.AggregateBalance()
	if err != nil {
		s.log.Errorf("Failed to aggregate balance for import summary: %v", err)
		return
	}
	if err := s.notifier.SendImportSummary(s.config.SummaryEmail, imported, balance); err != nil {
		s.log.Errorf("Failed to send import summary: %v", err)
	}
}

package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"eps-procurement/internal/apperr"
	"eps-procurement/internal/repository"

	"github.com/shopspring/decimal"
)

// StatRow is a flat field-name to value mapping, the shape the export
// contract works on. Decimal values serialize as fixed-point strings and
// parse back to the identical decimal value.
type StatRow map[string]interface{}

// Integer columns recognized on import.
var statIntFields = map[string]bool{
	"order_count":    true,
	"total_quantity": true,
}

type StatisticsService interface {
	SupplierStatistics(startDate, endDate *time.Time) ([]repository.SupplierStat, error)
	BudgetStatistics(budgetCode string, startDate, endDate *time.Time) ([]repository.BudgetStat, error)
	SKUStatistics(startDate, endDate *time.Time) ([]repository.SKUStat, error)

	ExportCSV(data []StatRow, fieldnames []string) (string, error)
	ImportCSV(content string, decimalFields []string) ([]StatRow, error)
}

type statisticsService struct {
	statsRepo repository.StatisticsRepository
}

func NewStatisticsService(statsRepo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{statsRepo: statsRepo}
}

func (s *statisticsService) SupplierStatistics(startDate, endDate *time.Time) ([]repository.SupplierStat, error) {
	stats, err := s.statsRepo.SupplierStatistics(startDate, endDate)
	if err != nil {
		return nil, apperr.Internal(err, "supplier statistics query failed")
	}
	return stats, nil
}

func (s *statisticsService) BudgetStatistics(budgetCode string, startDate, endDate *time.Time) ([]repository.BudgetStat, error) {
	stats, err := s.statsRepo.BudgetStatistics(budgetCode, startDate, endDate)
	if err != nil {
		return nil, apperr.Internal(err, "budget statistics query failed")
	}
	return stats, nil
}

func (s *statisticsService) SKUStatistics(startDate, endDate *time.Time) ([]repository.SKUStat, error) {
	stats, err := s.statsRepo.SKUStatistics(startDate, endDate)
	if err != nil {
		return nil, apperr.Internal(err, "SKU statistics query failed")
	}
	return stats, nil
}

// ExportCSV serializes rows under the given header. Decimals are written
// with Decimal.String() so no precision is lost to binary floats.
func (s *statisticsService) ExportCSV(data []StatRow, fieldnames []string) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	if err := writer.Write(fieldnames); err != nil {
		return "", apperr.Internal(err, "failed to write CSV header")
	}

	record := make([]string, len(fieldnames))
	for _, row := range data {
		for i, field := range fieldnames {
			record[i] = statValueString(row[field])
		}
		if err := writer.Write(record); err != nil {
			return "", apperr.Internal(err, "failed to write CSV row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", apperr.Internal(err, "failed to flush CSV output")
	}
	return sb.String(), nil
}

// ImportCSV parses previously exported rows. Fields listed in
// decimalFields come back as decimal.Decimal equal to the exported value;
// known count columns come back as int64; everything else stays a string.
func (s *statisticsService) ImportCSV(content string, decimalFields []string) ([]StatRow, error) {
	decimals := make(map[string]bool, len(decimalFields))
	for _, f := range decimalFields {
		decimals[f] = true
	}

	reader := csv.NewReader(strings.NewReader(content))
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Validation("csv", "failed to read CSV header: %v", err)
	}

	var rows []StatRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.Validation("csv", "failed to read CSV row: %v", err)
		}

		row := make(StatRow, len(header))
		for i, field := range header {
			if i >= len(record) {
				break
			}
			value := record[i]
			switch {
			case decimals[field]:
				d, err := decimal.NewFromString(value)
				if err != nil {
					return nil, apperr.Validation(field, "invalid decimal value %q", value)
				}
				row[field] = d
			case statIntFields[field]:
				n, err := strconv.ParseInt(value, 10, 64)
				if err != nil {
					return nil, apperr.Validation(field, "invalid integer value %q", value)
				}
				row[field] = n
			default:
				row[field] = value
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func statValueString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case decimal.Decimal:
		return val.String()
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprint(val)
	}
}

// SupplierStatRows flattens supplier stats into the export row shape.
func SupplierStatRows(stats []repository.SupplierStat) ([]StatRow, []string) {
	rows := make([]StatRow, len(stats))
	for i, stat := range stats {
		rows[i] = StatRow{
			"supplier":     stat.Supplier,
			"total_amount": stat.TotalAmount,
			"order_count":  stat.OrderCount,
		}
	}
	return rows, []string{"supplier", "total_amount", "order_count"}
}

// BudgetStatRows flattens budget stats into the export row shape.
func BudgetStatRows(stats []repository.BudgetStat) ([]StatRow, []string) {
	rows := make([]StatRow, len(stats))
	for i, stat := range stats {
		rows[i] = StatRow{
			"budget_code":  stat.BudgetCode,
			"total_amount": stat.TotalAmount,
			"order_count":  stat.OrderCount,
		}
	}
	return rows, []string{"budget_code", "total_amount", "order_count"}
}

// SKUStatRows flattens SKU stats into the export row shape.
func SKUStatRows(stats []repository.SKUStat) ([]StatRow, []string) {
	rows := make([]StatRow, len(stats))
	for i, stat := range stats {
		rows[i] = StatRow{
			"sku_id":         stat.SKUID.String(),
			"sku_code":       stat.SKUCode,
			"sku_name":       stat.SKUName,
			"total_quantity": stat.TotalQuantity,
			"total_amount":   stat.TotalAmount,
		}
	}
	return rows, []string{"sku_id", "sku_code", "sku_name", "total_quantity", "total_amount"}
}

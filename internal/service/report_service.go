package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go-resto-ops/internal/model"
	"go-resto-ops/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ReportType string

const (
	ReportInventory    ReportType = "inventory"
	ReportSales        ReportType = "sales"
	ReportFulfillment  ReportType = "fulfillment"
	ReportLowStock     ReportType = "low_stock"
	ReportTransactions ReportType = "transactions"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"

	reportDateLayout   = "2006-01-02"
	defaultReportRange = 30 * 24 * time.Hour
)

// ErrNoReportData is reported as a validation failure: the filters matched nothing.
var ErrNoReportData = &ValidationError{Reason: "no data available for the selected criteria"}

type ReportRequest struct {
	Type   ReportType `query:"type" json:"type" validate:"required,oneof=inventory sales fulfillment low_stock transactions"`
	Format string     `query:"format" json:"format" validate:"omitempty,oneof=csv json"`
	Start  string     `query:"start" json:"start"`
	End    string     `query:"end" json:"end"`
}

// Report is a rendered file ready to be sent as an attachment.
type Report struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

type ReportService interface {
	Generate(ctx context.Context, actor model.Actor, req ReportRequest) (*Report, error)
}

type reportService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	txRepo      repository.StockTransactionRepository
	log         *zap.Logger
	now         func() time.Time
}

func NewReportService(pRepo repository.ProductRepository, oRepo repository.OrderRepository, tRepo repository.StockTransactionRepository, log *zap.Logger) ReportService {
	return &reportService{
		productRepo: pRepo,
		orderRepo:   oRepo,
		txRepo:      tRepo,
		log:         log.Named("report"),
		now:         time.Now,
	}
}

// table keeps column order for CSV output; JSON output uses the row maps.
type table struct {
	columns []string
	rows    []map[string]interface{}
}

func (t *table) add(values ...interface{}) {
	row := make(map[string]interface{}, len(t.columns))
	for i, col := range t.columns {
		row[col] = values[i]
	}
	t.rows = append(t.rows, row)
}

func (s *reportService) Generate(ctx context.Context, actor model.Actor, req ReportRequest) (*Report, error) {
	if !actor.Can(model.ActionReportGenerate) {
		return nil, ErrForbidden
	}
	if req.Format == "" {
		req.Format = FormatCSV
	}
	if err := validate(&req); err != nil {
		return nil, err
	}
	start, end, err := s.dateRange(req.Start, req.End)
	if err != nil {
		return nil, err
	}

	var t *table
	switch req.Type {
	case ReportInventory:
		t, err = s.inventory(ctx)
	case ReportSales:
		t, err = s.sales(ctx, start, end)
	case ReportFulfillment:
		t, err = s.fulfillment(ctx, start, end)
	case ReportLowStock:
		t, err = s.lowStock(ctx)
	case ReportTransactions:
		t, err = s.transactions(ctx, start, end)
	}
	if err != nil {
		return nil, backend("generate report", err)
	}
	if len(t.rows) == 0 {
		return nil, ErrNoReportData
	}

	report := &Report{
		Filename: fmt.Sprintf("%s_report_%s.%s", req.Type, s.now().Format(reportDateLayout), req.Format),
		Rows:     len(t.rows),
	}
	if req.Format == FormatJSON {
		report.ContentType = "application/json"
		report.Body, err = json.MarshalIndent(t.rows, "", "  ")
	} else {
		report.ContentType = "text/csv; charset=utf-8"
		report.Body, err = renderCSV(t)
	}
	if err != nil {
		return nil, &BackendError{Op: "render report", Err: err}
	}

	s.log.Info("report generated",
		zap.String("type", string(req.Type)),
		zap.String("format", req.Format),
		zap.Int("rows", report.Rows),
		zap.String("actor", actor.ID.String()))
	return report, nil
}

// dateRange parses inclusive YYYY-MM-DD bounds, defaulting to the last 30 days.
func (s *reportService) dateRange(startStr, endStr string) (time.Time, time.Time, error) {
	end := s.now()
	if endStr != "" {
		d, err := time.ParseInLocation(reportDateLayout, endStr, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, invalid("end", "must be a date in YYYY-MM-DD format")
		}
		end = d.Add(24*time.Hour - time.Nanosecond)
	}
	start := end.Add(-defaultReportRange)
	if startStr != "" {
		d, err := time.ParseInLocation(reportDateLayout, startStr, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, invalid("start", "must be a date in YYYY-MM-DD format")
		}
		start = d
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, invalid("start", "must not be after end")
	}
	return start, end, nil
}

func (s *reportService) inventory(ctx context.Context) (*table, error) {
	products, err := s.productRepo.FindAll(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	t := &table{columns: []string{"name", "sku", "category", "current_stock", "min_stock_level", "max_stock_level", "unit_price", "is_active", "stock_status"}}
	for _, p := range products {
		t.add(p.Name, p.SKU, p.Category, p.CurrentStock, p.MinStockLevel, p.MaxStockLevel, p.UnitPrice, p.IsActive, p.StockStatus())
	}
	return t, nil
}

func (s *reportService) lowStock(ctx context.Context) (*table, error) {
	products, err := s.productRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	t := &table{columns: []string{"name", "sku", "current_stock", "min_stock_level", "category"}}
	for _, p := range products {
		t.add(p.Name, p.SKU, p.CurrentStock, p.MinStockLevel, p.Category)
	}
	return t, nil
}

func (s *reportService) sales(ctx context.Context, start, end time.Time) (*table, error) {
	orders, err := s.orderRepo.FindBetween(ctx, start, end, "")
	if err != nil {
		return nil, err
	}
	t := &table{columns: []string{"order_number", "customer_name", "customer_email", "status", "total_amount", "created_at", "order_items"}}
	for _, o := range orders {
		items := make([]map[string]interface{}, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, map[string]interface{}{
				"quantity":    it.Quantity,
				"unit_price":  it.UnitPrice,
				"total_price": it.TotalPrice,
				"product":     summarize(it.Product),
			})
		}
		t.add(o.OrderNumber, o.CustomerName, o.CustomerEmail, o.Status, o.TotalAmount, o.CreatedAt, items)
	}
	return t, nil
}

func (s *reportService) fulfillment(ctx context.Context, start, end time.Time) (*table, error) {
	orders, err := s.orderRepo.FindBetween(ctx, start, end, "")
	if err != nil {
		return nil, err
	}
	t := &table{columns: []string{"order_number", "status", "created_at", "updated_at", "assigned_to", "assignee"}}
	for _, o := range orders {
		var assignedTo, assignee interface{}
		if o.AssignedToID != nil {
			assignedTo = o.AssignedToID.String()
		}
		if o.AssignedTo != nil {
			assignee = map[string]string{"first_name": o.AssignedTo.FirstName, "last_name": o.AssignedTo.LastName}
		}
		t.add(o.OrderNumber, o.Status, o.CreatedAt, o.UpdatedAt, assignedTo, assignee)
	}
	return t, nil
}

func (s *reportService) transactions(ctx context.Context, start, end time.Time) (*table, error) {
	entries, err := s.txRepo.FindBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	t := &table{columns: []string{"transaction_type", "quantity_change", "previous_stock", "new_stock", "notes", "created_at", "product", "creator"}}
	for _, e := range entries {
		var creator interface{}
		if e.Creator != nil {
			creator = map[string]string{"first_name": e.Creator.FirstName, "last_name": e.Creator.LastName}
		}
		t.add(e.TransactionType, e.QuantityChange, e.PreviousStock, e.NewStock, e.Notes, e.CreatedAt, summarize(e.Product), creator)
	}
	return t, nil
}

func summarize(p *model.Product) interface{} {
	if p == nil {
		return nil
	}
	return model.ProductSummary{Name: p.Name, SKU: p.SKU}
}

func renderCSV(t *table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.columns); err != nil {
		return nil, err
	}
	record := make([]string, len(t.columns))
	for _, row := range t.rows {
		for i, col := range t.columns {
			cell, err := csvCell(row[col])
			if err != nil {
				return nil, err
			}
			record[i] = cell
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// csvCell renders scalars as text and nested values as JSON.
func csvCell(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case int:
		return strconv.Itoa(val), nil
	case bool:
		return strconv.FormatBool(val), nil
	case decimal.Decimal:
		return val.StringFixed(2), nil
	case time.Time:
		return val.UTC().Format(time.RFC3339), nil
	case fmt.Stringer:
		return val.String(), nil
	case model.OrderStatus, model.TransactionType, model.StockStatus:
		return fmt.Sprint(val), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

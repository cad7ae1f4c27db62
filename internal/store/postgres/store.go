// Package postgres implements store.PrimaryStore on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"fmt"
	"net"
	"strings"

	"business-assistant/internal/common/errors"
	"business-assistant/internal/common/logger"
	"business-assistant/internal/models"
	"business-assistant/internal/store"
)

var (
	ErrQueryExecutionFailed = stderrors.New("QUERY_EXECUTION_FAILED")
	ErrQueryTimeout         = stderrors.New("QUERY_TIMEOUT")
)

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.Component(log, "postgres-store"),
	}
}

var _ store.PrimaryStore = (*Store)(nil)

// where accumulates conditions with sequential $n placeholders.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(format string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(format, len(w.args)))
}

func (w *where) addRaw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func customerWhere(f store.CustomerFilter) *where {
	w := &where{}
	if f.Name != "" {
		w.add("name ILIKE $%d", "%"+f.Name+"%")
	}
	if f.Email != "" {
		w.add("email ILIKE $%d", "%"+f.Email+"%")
	}
	if f.Company != "" {
		w.add("company ILIKE $%d", "%"+f.Company+"%")
	}
	return w
}

func productWhere(f store.ProductFilter) *where {
	w := &where{}
	if f.Category != "" {
		w.add("category = $%d", f.Category)
	}
	if f.LowStock {
		w.addRaw(fmt.Sprintf("stock <= COALESCE(NULLIF(min_stock, 0), %d)", models.DefaultMinStock))
	}
	return w
}

func rangeWhere(column string, r store.DateRange) *where {
	w := &where{}
	if !r.Start.IsZero() {
		w.add(column+" >= $%d", r.Start)
	}
	if !r.End.IsZero() {
		w.add(column+" <= $%d", r.End)
	}
	return w
}

func (s *Store) FindCustomers(ctx context.Context, filter store.CustomerFilter, limit int) ([]models.Customer, error) {
	w := customerWhere(filter)
	w.args = append(w.args, limit)
	query := `SELECT id, name, email, COALESCE(phone, ''), COALESCE(company, ''), created_at FROM customers` +
		w.String() + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(w.args))

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, s.wrap(ctx, "customers", err)
	}
	defer rows.Close()

	var out []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.CreatedAt); err != nil {
			return nil, s.wrap(ctx, "customers", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(ctx, "customers", err)
	}
	return out, nil
}

func (s *Store) CountCustomers(ctx context.Context, filter store.CustomerFilter) (int, error) {
	w := customerWhere(filter)
	return s.count(ctx, "customers", `SELECT COUNT(*) FROM customers`+w.String(), w.args)
}

func (s *Store) FindProducts(ctx context.Context, filter store.ProductFilter, limit int) ([]models.Product, error) {
	w := productWhere(filter)
	w.args = append(w.args, limit)
	query := `SELECT id, name, category, price, stock, min_stock FROM products` +
		w.String() + fmt.Sprintf(" ORDER BY name LIMIT $%d", len(w.args))

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, s.wrap(ctx, "products", err)
	}
	defer rows.Close()

	var out []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock, &p.MinStock); err != nil {
			return nil, s.wrap(ctx, "products", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(ctx, "products", err)
	}
	return out, nil
}

func (s *Store) CountProducts(ctx context.Context, filter store.ProductFilter) (int, error) {
	w := productWhere(filter)
	return s.count(ctx, "products", `SELECT COUNT(*) FROM products`+w.String(), w.args)
}

func (s *Store) FindSales(ctx context.Context, r store.DateRange) ([]models.Sale, error) {
	w := rangeWhere("sale_date", r)
	query := `SELECT id, COALESCE(customer_id, ''), COALESCE(product_id, ''), quantity, total, payment_method, sale_date FROM sales` +
		w.String() + " ORDER BY sale_date"

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, s.wrap(ctx, "sales", err)
	}
	defer rows.Close()

	var out []models.Sale
	for rows.Next() {
		var sale models.Sale
		if err := rows.Scan(&sale.ID, &sale.CustomerID, &sale.ProductID, &sale.Quantity, &sale.Total, &sale.PaymentMethod, &sale.Date); err != nil {
			return nil, s.wrap(ctx, "sales", err)
		}
		out = append(out, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(ctx, "sales", err)
	}
	return out, nil
}

func (s *Store) FindExpenses(ctx context.Context, r store.DateRange) ([]models.Expense, error) {
	w := rangeWhere("expense_date", r)
	query := `SELECT id, description, category, amount, expense_date FROM expenses` +
		w.String() + " ORDER BY expense_date"

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, s.wrap(ctx, "expenses", err)
	}
	defer rows.Close()

	var out []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.Description, &e.Category, &e.Amount, &e.Date); err != nil {
			return nil, s.wrap(ctx, "expenses", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(ctx, "expenses", err)
	}
	return out, nil
}

func (s *Store) AggregateExpenses(ctx context.Context, r store.DateRange) ([]models.CategoryTotal, error) {
	w := rangeWhere("expense_date", r)
	query := `SELECT category, SUM(amount), COUNT(*) FROM expenses` +
		w.String() + " GROUP BY category ORDER BY SUM(amount) DESC, category"

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, s.wrap(ctx, "expenses", err)
	}
	defer rows.Close()

	var out []models.CategoryTotal
	for rows.Next() {
		var ct models.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total, &ct.Count); err != nil {
			return nil, s.wrap(ctx, "expenses", err)
		}
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, s.wrap(ctx, "expenses", err)
	}
	return out, nil
}

func (s *Store) count(ctx context.Context, entity, query string, args []interface{}) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, s.wrap(ctx, entity, err)
	}
	return n, nil
}

// wrap classifies a driver error as a StandardError: deadline, lost
// connection, or failed statement.
func (s *Store) wrap(ctx context.Context, entity string, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.NewQueryTimeoutError(entity, fmt.Errorf("%w: %s", ErrQueryTimeout, entity))
	}
	s.logger.Debug("query failed", map[string]interface{}{"entity": entity, "error": err})

	var netErr net.Error
	if stderrors.Is(err, driver.ErrBadConn) || stderrors.As(err, &netErr) {
		return errors.NewPrimaryStoreUnavailableError(entity, err)
	}
	return errors.NewQueryExecutionFailedError(entity, fmt.Errorf("%w: %v", ErrQueryExecutionFailed, err))
}

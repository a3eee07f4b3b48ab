package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gofinances/internal/cache"
	"gofinances/internal/core"
	"gofinances/internal/events"
	"gofinances/internal/format"
	applog "gofinances/internal/log"
	"gofinances/internal/transactions"
)

// ErrMissingUser is returned when an operation is called without a user id.
var ErrMissingUser = errors.New("user id is required")

// NewTransaction is the user input for CreateTransaction. Amount accepts
// "12.34" or "12,34"; Date is YYYY-MM-DD and defaults to today.
type NewTransaction struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Date     string `json:"date,omitempty"`
}

// TransactionView is a transaction ready for the listing screen.
type TransactionView struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Amount      string        `json:"amount"`
	AmountCents int64         `json:"amount_cents"`
	Type        string        `json:"type"`
	Category    core.Category `json:"category"`
	Date        string        `json:"date"`
	ISODate     string        `json:"iso_date"`
}

type HighlightCard struct {
	Amount          string `json:"amount"`
	AmountCents     int64  `json:"amount_cents"`
	LastTransaction string `json:"last_transaction"`
}

type Highlights struct {
	Income  HighlightCard `json:"income"`
	Expense HighlightCard `json:"expense"`
	Total   HighlightCard `json:"total"`
}

type Dashboard struct {
	Highlights   Highlights        `json:"highlights"`
	Transactions []TransactionView `json:"transactions"`
}

type CategorySummary struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	Total        string `json:"total"`
	TotalCents   int64  `json:"total_cents"`
	Percent      string `json:"percent"`
	PercentValue string `json:"percent_value"`
}

type Resume struct {
	Title        string            `json:"title"`
	Year         int               `json:"year"`
	Month        int               `json:"month"`
	ExpenseTotal string            `json:"expense_total"`
	Categories   []CategorySummary `json:"categories"`
}

// FinanceService reads and records a user's transactions and derives the
// dashboard and monthly resume from them.
type FinanceService struct {
	repo      *transactions.Repository
	table     core.CategoryTable
	cache     *cache.LRUCache[[]core.Transaction]
	publisher events.Publisher
	logger    *applog.Logger
	now       func() time.Time

	// serializes read-modify-write of stored lists
	writeMu sync.Mutex

	// fillMu guards gen. Writers bump gen when they invalidate; a reader
	// caches its list only if gen did not move while it was loading.
	fillMu sync.Mutex
	gen    uint64
}

func NewFinanceService(repo *transactions.Repository, table core.CategoryTable, listCache *cache.LRUCache[[]core.Transaction], publisher events.Publisher, logger *applog.Logger) *FinanceService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &FinanceService{
		repo:      repo,
		table:     table,
		cache:     listCache,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentTransactions),
		now:       time.Now,
	}
}

func (s *FinanceService) Categories() core.CategoryTable {
	return s.table
}

// load returns the decoded list of userID, served from cache when present.
func (s *FinanceService) load(ctx context.Context, userID string) ([]core.Transaction, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUser
	}
	if s.cache != nil {
		if txs, ok := s.cache.Get(userID); ok {
			return txs, nil
		}
	}
	s.fillMu.Lock()
	gen := s.gen
	s.fillMu.Unlock()

	txs, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.fillMu.Lock()
		if s.gen == gen {
			s.cache.Set(userID, txs)
		}
		s.fillMu.Unlock()
	}
	return txs, nil
}

// invalidate drops the cached list of userID and stops in-flight loads
// from caching what they read before the write.
func (s *FinanceService) invalidate(userID string) {
	if s.cache == nil {
		return
	}
	s.fillMu.Lock()
	s.gen++
	s.cache.Delete(userID)
	s.fillMu.Unlock()
}

// Transactions returns the formatted listing in stored order.
func (s *FinanceService) Transactions(ctx context.Context, userID string) ([]TransactionView, error) {
	txs, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]TransactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, s.view(tx))
	}
	return views, nil
}

// Dashboard aggregates every transaction of userID into the highlight cards.
func (s *FinanceService) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	txs, err := s.load(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	res := core.Aggregate(txs, s.table, core.AllTime())

	views := make([]TransactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, s.view(tx))
	}

	return Dashboard{
		Highlights: Highlights{
			Income: HighlightCard{
				Amount:          format.BRL(res.IncomeTotal),
				AmountCents:     res.IncomeTotal.Cents,
				LastTransaction: format.LastIncomeLabel(res.LastIncomeDate),
			},
			Expense: HighlightCard{
				Amount:          format.BRL(res.ExpenseTotal),
				AmountCents:     res.ExpenseTotal.Cents,
				LastTransaction: format.LastExpenseLabel(res.LastExpenseDate),
			},
			Total: HighlightCard{
				Amount:          format.BRL(res.NetTotal),
				AmountCents:     res.NetTotal.Cents,
				LastTransaction: format.IntervalLabel(res.LastExpenseDate),
			},
		},
		Transactions: views,
	}, nil
}

// Resume returns the per-category expense breakdown of one month.
func (s *FinanceService) Resume(ctx context.Context, userID string, year, month int) (Resume, error) {
	if month < 1 || month > 12 {
		return Resume{}, core.ErrInvalidMonth
	}
	txs, err := s.load(ctx, userID)
	if err != nil {
		return Resume{}, err
	}
	res := core.AggregateMonth(txs, s.table, year, month)

	cats := make([]CategorySummary, 0, len(res.PerCategory))
	for _, c := range res.PerCategory {
		cats = append(cats, CategorySummary{
			Key:          c.Category.Key,
			Name:         c.Category.Name,
			Color:        c.Category.Color,
			Total:        format.BRL(c.Sum),
			TotalCents:   c.Sum.Cents,
			Percent:      format.Percent(c.Percent),
			PercentValue: c.Percent.StringFixed(2),
		})
	}

	return Resume{
		Title:        format.MonthTitle(year, month),
		Year:         year,
		Month:        month,
		ExpenseTotal: format.BRL(res.ExpenseTotal),
		Categories:   cats,
	}, nil
}

// CreateTransaction validates in, stores it under a fresh id and announces it.
// A failed publish is logged; the transaction stays recorded.
func (s *FinanceService) CreateTransaction(ctx context.Context, userID string, in NewTransaction) (TransactionView, error) {
	if strings.TrimSpace(userID) == "" {
		return TransactionView{}, ErrMissingUser
	}
	tx, err := s.build(in)
	if err != nil {
		return TransactionView{}, err
	}

	s.writeMu.Lock()
	err = s.repo.Add(ctx, userID, tx)
	s.invalidate(userID)
	s.writeMu.Unlock()
	if err != nil {
		return TransactionView{}, fmt.Errorf("save transaction: %w", err)
	}

	applog.NewStructuredLogger(s.logger).LogTransactionCreated(ctx, userID, tx.ID, tx.Name, string(tx.Type), tx.Amount.Cents, tx.Category)

	if err := s.publisher.PublishTransactionRecorded(ctx, events.NewTransactionRecorded(userID, tx)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			applog.FieldTransactionID, tx.ID,
			applog.FieldUserID, userID,
			applog.FieldOperation, applog.OpPublish,
			applog.FieldError, err.Error())
	}

	return s.view(tx), nil
}

// ClearTransactions removes every stored transaction of userID.
func (s *FinanceService) ClearTransactions(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUser
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	defer s.invalidate(userID)
	return s.repo.Clear(ctx, userID)
}

func (s *FinanceService) build(in NewTransaction) (core.Transaction, error) {
	typ, err := core.ParseTransactionType(in.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	if !s.table.Has(in.Category) {
		return core.Transaction{}, core.ErrUnknownCategory
	}
	cents, err := core.ParseDecimalToCents(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}

	now := s.now()
	date := core.NewDate(now.Year(), int(now.Month()), now.Day())
	if d := strings.TrimSpace(in.Date); d != "" {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return core.Transaction{}, core.ErrInvalidDate
		}
		date = core.Date{Time: t}
	}

	tx := core.Transaction{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(in.Name),
		Amount:   core.Money{Cents: cents},
		Date:     date,
		Type:     typ,
		Category: in.Category,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

func (s *FinanceService) view(tx core.Transaction) TransactionView {
	cat, ok := s.table.Lookup(tx.Category)
	if !ok {
		cat = core.Category{Key: tx.Category, Name: tx.Category}
	}
	amount := format.BRL(tx.Amount)
	if tx.Type == core.Expense {
		amount = "- " + amount
	}
	return TransactionView{
		ID:          tx.ID,
		Name:        tx.Name,
		Amount:      amount,
		AmountCents: tx.Amount.Cents,
		Type:        string(tx.Type),
		Category:    cat,
		Date:        format.ShortDate(tx.Date),
		ISODate:     tx.Date.Format("2006-01-02"),
	}
}

// IsValidationError reports whether err stems from rejected user input.
func IsValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidAmount, core.ErrInvalidType, core.ErrInvalidDate, core.ErrInvalidDay,
		core.ErrInvalidMonth, core.ErrEmptyName, core.ErrEmptyCategory, core.ErrUnknownCategory,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

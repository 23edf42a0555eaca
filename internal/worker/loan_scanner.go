package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/librarylend/internal/domain"
	"github.com/yourorg/librarylend/internal/observability/metrics"
)

// LoanScanner periodically walks the open loans, refreshes the loan gauges,
// and logs loans held past the configured period. It never mutates records:
// an overdue loan stays open until a librarian records the return.
type LoanScanner struct {
	borrowingRepo domain.BorrowingRepository
	bookRepo      domain.BookRepository
	logger        *slog.Logger
	interval      time.Duration
	loanPeriod    time.Duration
}

// NewLoanScanner creates a new loan scanner worker
func NewLoanScanner(
	borrowingRepo domain.BorrowingRepository,
	bookRepo domain.BookRepository,
	logger *slog.Logger,
	interval time.Duration,
	loanPeriod time.Duration,
) *LoanScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoanScanner{
		borrowingRepo: borrowingRepo,
		bookRepo:      bookRepo,
		logger:        logger,
		interval:      interval,
		loanPeriod:    loanPeriod,
	}
}

// Start begins the scan loop and blocks until the context is cancelled
func (w *LoanScanner) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("loan scanner started",
		slog.Duration("interval", w.interval),
		slog.Duration("loan_period", w.loanPeriod),
	)

	// First scan immediately so the gauges are populated at startup
	w.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("loan scanner stopped")
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

// scan refreshes the open/overdue gauges and logs each overdue loan
func (w *LoanScanner) scan(ctx context.Context) {
	open, err := w.borrowingRepo.ListOpen(ctx)
	if err != nil {
		w.logger.Error("failed to list open loans", slog.String("error", err.Error()))
		return
	}

	metrics.SetOpenLoans(len(open))

	deadline := time.Now().Add(-w.loanPeriod)
	overdue := 0
	for _, b := range open {
		if !b.BorrowDate.Before(deadline) {
			continue
		}
		overdue++

		logger := w.logger.With(
			slog.Int64("borrowing_id", b.ID),
			slog.Int64("book_id", b.BookID),
			slog.Int64("borrower_id", b.BorrowerID),
			slog.Time("borrowed_at", b.BorrowDate),
		)
		if book, err := w.bookRepo.GetByID(ctx, b.BookID); err == nil {
			logger = logger.With(slog.String("title", book.Title))
		}
		logger.Warn("loan overdue")
	}

	metrics.SetOverdueLoans(overdue)

	w.logger.Info("loan scan complete",
		slog.Int("open", len(open)),
		slog.Int("overdue", overdue),
	)
}

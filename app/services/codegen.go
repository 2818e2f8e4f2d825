package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/saristore/saristore/app/models"
	"github.com/saristore/saristore/pkg/metrics"
	"gorm.io/gorm"
)

// ErrCodeSpaceExhausted is returned when a series has no free code left
// that fits the code column.
var ErrCodeSpaceExhausted = errors.New("code space exhausted")

// maxCodeLen matches the size of every *_code column.
const maxCodeLen = 20

// Sequence describes one human-readable code series: a prefix over a table
// column, scoped per store. Numbers start at 1 and are zero-padded to Width
// digits, rolling wider once the padded space is used up (SLS999 → SLS1000).
type Sequence struct {
	Table  string
	Column string
	Prefix string
	Width  int
}

// The fixed code series. Stock-ledger and product series have dynamic
// prefixes and are built by SeqStock / SeqProduct / SeqCategory.
var (
	SeqSales    = Sequence{Table: "sales_logs", Column: "log_code", Prefix: "SLS", Width: 3}
	SeqCustomer = Sequence{Table: "customers", Column: "customer_code", Prefix: "CSM", Width: 3}
	SeqUser     = Sequence{Table: "users", Column: "user_code", Prefix: "USR", Width: 3}
)

// SeqStock returns the stock-ledger series for a change type. Each change
// type numbers independently (LNEW001, LSLD001, ...).
func SeqStock(changeType string) Sequence {
	return Sequence{Table: "stock_logs", Column: "log_code", Prefix: models.StockLogPrefix(changeType), Width: 3}
}

// SeqProduct returns the product series for a category: "P" plus a
// two-letter category abbreviation (PSN001 for Snacks).
func SeqProduct(categoryName string) Sequence {
	return Sequence{Table: "products", Column: "product_code", Prefix: "P" + letterPrefix(categoryName, 2), Width: 3}
}

// SeqCategory returns the category series for a name: "C" plus the first
// four letters of the name (CSNAC001 for Snacks).
func SeqCategory(categoryName string) Sequence {
	return Sequence{Table: "categories", Column: "category_code", Prefix: "C" + letterPrefix(categoryName, 4), Width: 3}
}

// letterPrefix takes the first n letters of s, uppercased, padding with 'X'
// when the name is too short. Letters count as runes, not bytes.
func letterPrefix(s string, n int) string {
	letters := make([]rune, 0, n)
	for _, r := range s {
		if len(letters) == n {
			break
		}
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
		}
	}
	for len(letters) < n {
		letters = append(letters, 'X')
	}
	return string(letters)
}

// CodeGenerator allocates codes by scanning a series for its lowest unused
// number. Deleted records free their number for reuse, so the series fills
// gaps instead of growing forever. Allocation alone is racy by construction;
// InsertWithRetry closes the race at the unique index.
type CodeGenerator struct {
	db *gorm.DB
}

func NewCodeGenerator(db *gorm.DB) *CodeGenerator {
	return &CodeGenerator{db: db}
}

// WithTx returns a generator bound to the given transaction.
func (g *CodeGenerator) WithTx(tx *gorm.DB) *CodeGenerator {
	return &CodeGenerator{db: tx}
}

// Next returns the lowest unused code in the series for the store.
func (g *CodeGenerator) Next(seq Sequence, storeID uint) (string, error) {
	code, _, err := g.next(seq, storeID, 1)
	return code, err
}

// next scans the series and returns the lowest unused number that is at
// least floor, with its formatted code.
func (g *CodeGenerator) next(seq Sequence, storeID uint, floor int) (string, int, error) {
	var codes []string
	err := g.db.Table(seq.Table).
		Where("store_id = ? AND "+seq.Column+" LIKE ?", storeID, seq.Prefix+"%").
		Pluck(seq.Column, &codes).Error
	if err != nil {
		return "", 0, fmt.Errorf("codegen: scan %s series %s: %w", seq.Table, seq.Prefix, err)
	}

	used := make(map[int]bool, len(codes))
	for _, code := range codes {
		suffix := strings.TrimPrefix(code, seq.Prefix)
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 1 {
			continue // foreign code that happens to share the prefix
		}
		used[n] = true
	}

	n := floor
	for used[n] {
		n++
	}

	code, err := formatCode(seq, n)
	return code, n, err
}

func formatCode(seq Sequence, n int) (string, error) {
	code := fmt.Sprintf("%s%0*d", seq.Prefix, seq.Width, n)
	if len(code) > maxCodeLen {
		return "", fmt.Errorf("%w: %s series", ErrCodeSpaceExhausted, seq.Prefix)
	}
	return code, nil
}

// InsertWithRetry allocates a code and calls insert with it. When the insert
// loses a race on the code's unique index it retries with the next free
// number. Under snapshot isolation the rescan may not see the winner's row,
// so a number that lost once is never offered again within the call. Inside
// a transaction each attempt runs under a savepoint; a duplicate-key failure
// would otherwise abort the whole transaction on Postgres. The record being
// inserted must have no other unique constraint that could collide, or the
// retry would spin on the wrong conflict.
func (g *CodeGenerator) InsertWithRetry(seq Sequence, storeID uint, insert func(code string) error) (string, error) {
	_, inTx := g.db.Statement.ConnPool.(gorm.TxCommitter)

	floor := 1
	for {
		code, n, err := g.next(seq, storeID, floor)
		if err != nil {
			return "", err
		}

		if inTx {
			if err := g.db.SavePoint("codegen").Error; err != nil {
				return "", err
			}
		}

		err = insert(code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", err
		}
		if inTx {
			if err := g.db.RollbackTo("codegen").Error; err != nil {
				return "", err
			}
		}

		floor = n + 1
		metrics.CodeRetries.WithLabelValues(seq.Prefix).Inc()
	}
}

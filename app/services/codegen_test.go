package services

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/saristore/saristore/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func salesLine(storeID, userID uint, code string) models.SalesLog {
	return models.SalesLog{
		LogCode:         code,
		ProductID:       1,
		ProductName:     "Instant Coffee",
		ProductCode:     "PIN001",
		CustomerName:    models.WalkInName,
		QuantitySold:    1,
		UnitPrice:       decimal.New(10, 0),
		TotalAmount:     decimal.New(10, 0),
		RemainingAmount: decimal.Zero,
		PaymentStatus:   models.PaymentStatusPaid,
		PaymentMethod:   models.PaymentMethodCash,
		UserID:          userID,
		StoreID:         storeID,
		SaleDate:        time.Now(),
	}
}

func TestNextStartsAtOne(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)

	code, err := NewCodeGenerator(db).Next(SeqSales, store.ID)
	require.NoError(t, err)
	assert.Equal(t, "SLS001", code)
}

func TestNextFillsGaps(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)

	for _, code := range []string{"SLS001", "SLS002", "SLS003"} {
		line := salesLine(store.ID, user.ID, code)
		require.NoError(t, db.Create(&line).Error)
	}
	require.NoError(t, db.Unscoped().
		Where("store_id = ? AND log_code = ?", store.ID, "SLS002").
		Delete(&models.SalesLog{}).Error)

	code, err := NewCodeGenerator(db).Next(SeqSales, store.ID)
	require.NoError(t, err)
	assert.Equal(t, "SLS002", code, "freed number is reused before extending the series")
}

func TestNextIgnoresForeignPrefixes(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)

	// A code that shares the prefix but has a non-numeric suffix must not
	// derail the scan.
	line := salesLine(store.ID, user.ID, "SLSX01")
	require.NoError(t, db.Create(&line).Error)

	code, err := NewCodeGenerator(db).Next(SeqSales, store.ID)
	require.NoError(t, err)
	assert.Equal(t, "SLS001", code)
}

func TestNextScopedPerStore(t *testing.T) {
	db := newTestDB(t)
	storeA := seedStore(t, db)
	userA := seedUser(t, db, storeA.ID)

	storeB := models.Store{StoreCode: "ST002", StoreName: "Corner Store"}
	require.NoError(t, db.Create(&storeB).Error)

	line := salesLine(storeA.ID, userA.ID, "SLS001")
	require.NoError(t, db.Create(&line).Error)

	code, err := NewCodeGenerator(db).Next(SeqSales, storeB.ID)
	require.NoError(t, err)
	assert.Equal(t, "SLS001", code, "series number independently per store")
}

func TestNextWidthRollsOver(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)

	lines := make([]models.SalesLog, 0, 999)
	for n := 1; n <= 999; n++ {
		lines = append(lines, salesLine(store.ID, user.ID, fmt.Sprintf("SLS%03d", n)))
	}
	require.NoError(t, db.CreateInBatches(&lines, 200).Error)

	code, err := NewCodeGenerator(db).Next(SeqSales, store.ID)
	require.NoError(t, err)
	assert.Equal(t, "SLS1000", code, "width grows once the padded space is full")
}

func TestInsertWithRetryRecoversFromLostRace(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)

	attempts := 0
	code, err := NewCodeGenerator(db).InsertWithRetry(SeqSales, store.ID, func(code string) error {
		attempts++
		if attempts == 1 {
			// Simulate a concurrent writer grabbing the code first.
			line := salesLine(store.ID, user.ID, code)
			require.NoError(t, db.Create(&line).Error)
			return gorm.ErrDuplicatedKey
		}
		line := salesLine(store.ID, user.ID, code)
		return db.Create(&line).Error
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, "SLS002", code, "retry rescans and lands on the next free number")
}

func TestInsertWithRetryAdvancesWhenRescanSeesNothing(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)

	// Under repeatable-read isolation the rescan runs against the
	// transaction's snapshot and may never see the competing row. The loop
	// must still move to a fresh candidate on every conflict.
	var offered []string
	code, err := NewCodeGenerator(db).InsertWithRetry(SeqSales, store.ID, func(code string) error {
		offered = append(offered, code)
		if len(offered) < 4 {
			return gorm.ErrDuplicatedKey
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "SLS004", code)
	assert.Equal(t, []string{"SLS001", "SLS002", "SLS003", "SLS004"}, offered,
		"every attempt offers a number past the one that lost")
}

func TestInsertWithRetryRollsBackFailedAttempt(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)

	err := db.Transaction(func(tx *gorm.DB) error {
		attempts := 0
		_, err := NewCodeGenerator(tx).InsertWithRetry(SeqSales, store.ID, func(code string) error {
			attempts++
			line := salesLine(store.ID, user.ID, code)
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
			if attempts == 1 {
				// The unique index rejects the write on the real database.
				return gorm.ErrDuplicatedKey
			}
			return nil
		})
		return err
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.SalesLog{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "the losing attempt leaves no row behind")
}

func TestConcurrentAllocationsYieldDistinctCodes(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "codes.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Store{}, &models.User{}, &models.SalesLog{}))

	store := seedStore(t, db)
	user := seedUser(t, db, store.ID)

	const writers = 8
	codes := make(chan string, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, err := NewCodeGenerator(db).InsertWithRetry(SeqSales, store.ID, func(code string) error {
				line := salesLine(store.ID, user.ID, code)
				return db.Create(&line).Error
			})
			if assert.NoError(t, err) {
				codes <- code
			}
		}()
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool, writers)
	for code := range codes {
		assert.False(t, seen[code], "code %s allocated twice", code)
		seen[code] = true
	}
	assert.Len(t, seen, writers)

	var count int64
	require.NoError(t, db.Model(&models.SalesLog{}).Count(&count).Error)
	assert.EqualValues(t, writers, count)
}

func TestInsertWithRetryPropagatesOtherErrors(t *testing.T) {
	db := newTestDB(t)
	store := seedStore(t, db)

	wantErr := fmt.Errorf("disk on fire")
	_, err := NewCodeGenerator(db).InsertWithRetry(SeqSales, store.ID, func(string) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestSequencePrefixes(t *testing.T) {
	assert.Equal(t, "PSN", SeqProduct("Snacks").Prefix)
	assert.Equal(t, "PIN", SeqProduct("instant noodles").Prefix)
	assert.Equal(t, "PXX", SeqProduct("").Prefix, "short names pad with X")
	assert.Equal(t, "CSNAC", SeqCategory("Snacks").Prefix)
	assert.Equal(t, "CTEAX", SeqCategory("Tea").Prefix)
	assert.Equal(t, "PÑO", SeqProduct("Ñoño").Prefix, "letters count as runes, not bytes")
	assert.Equal(t, "CÑOÑO", SeqCategory("Ñoño").Prefix)
	assert.Equal(t, "LBRW", SeqStock(models.StockChangeBorrowed).Prefix)
	assert.Equal(t, "LSLD", SeqStock(models.StockChangeSold).Prefix)
}

func TestFormatCodeExhaustion(t *testing.T) {
	seq := Sequence{Table: "sales_logs", Column: "log_code", Prefix: "SLS", Width: 3}
	_, err := formatCode(seq, 100_000_000_000_000_000)
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
}

package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anandgupta07/coach-sub000/internal/promotions/domain"
	sharedApplication "github.com/anandgupta07/coach-sub000/internal/shared/application"
	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/database"
	"github.com/anandgupta07/coach-sub000/internal/shared/infrastructure/database/dbtest"
)

var now = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func setupPromoRepo(t *testing.T) *SQLitePromoRepository {
	t.Helper()
	return NewSQLitePromoRepository(dbtest.NewSQLite(t))
}

func createPromo(t *testing.T, repo *SQLitePromoRepository, code string, limit, used int) *domain.PromoCode {
	t.Helper()
	promo, err := domain.NewPromoCode(domain.NewPromoCodeParams{
		Code:          code,
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		UsageLimit:    limit,
	}, now)
	require.NoError(t, err)
	promo.UsageCount = used
	require.NoError(t, repo.Create(context.Background(), promo))
	return promo
}

func TestSQLitePromoRepository_CreateAndFind(t *testing.T) {
	repo := setupPromoRepo(t)
	ctx := context.Background()

	minCart := decimal.RequireFromString("1500.50")
	expires := now.Add(72 * time.Hour)
	promo, err := domain.NewPromoCode(domain.NewPromoCodeParams{
		Code:          "SPRING",
		DiscountType:  domain.DiscountFixed,
		DiscountValue: decimal.NewFromInt(300),
		UsageLimit:    20,
		MinCartValue:  &minCart,
		ExpiresAt:     &expires,
	}, now)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, promo))

	found, err := repo.FindByCode(ctx, "spring")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, promo.ID, found.ID)
	assert.Equal(t, "SPRING", found.Code)
	assert.Equal(t, domain.DiscountFixed, found.DiscountType)
	assert.True(t, found.DiscountValue.Equal(decimal.NewFromInt(300)))
	require.NotNil(t, found.MinCartValue)
	assert.True(t, found.MinCartValue.Equal(minCart))
	require.NotNil(t, found.ExpiresAt)
	assert.True(t, found.ExpiresAt.Equal(expires))

	missing, err := repo.FindByCode(ctx, "AUTUMN")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLitePromoRepository_OptionalFieldsAreNull(t *testing.T) {
	repo := setupPromoRepo(t)
	createPromo(t, repo, "PLAIN", 5, 0)

	found, err := repo.FindByCode(context.Background(), "PLAIN")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Nil(t, found.MinCartValue)
	assert.Nil(t, found.ExpiresAt)
}

func TestSQLitePromoRepository_DuplicateCodeIgnoresCase(t *testing.T) {
	repo := setupPromoRepo(t)
	createPromo(t, repo, "SAVE10", 5, 0)

	dup, err := domain.NewPromoCode(domain.NewPromoCodeParams{
		Code:          "SAVE10",
		DiscountType:  domain.DiscountFixed,
		DiscountValue: decimal.NewFromInt(1),
		UsageLimit:    1,
	}, now)
	require.NoError(t, err)
	dup.Code = "save10"

	err = repo.Create(context.Background(), dup)
	assert.ErrorIs(t, err, domain.ErrCodeAlreadyExists)
}

func TestSQLitePromoRepository_IncrementUsage(t *testing.T) {
	repo := setupPromoRepo(t)
	ctx := context.Background()
	createPromo(t, repo, "TWICE", 2, 0)

	for i := 0; i < 2; i++ {
		ok, err := repo.IncrementUsage(ctx, "twice")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := repo.IncrementUsage(ctx, "TWICE")
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := repo.FindByCode(ctx, "TWICE")
	require.NoError(t, err)
	assert.Equal(t, 2, found.UsageCount)

	ok, err = repo.IncrementUsage(ctx, "NOSUCH")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLitePromoRepository_IncrementRolledBackWithPurchase(t *testing.T) {
	conn := dbtest.NewSQLite(t)
	repo := NewSQLitePromoRepository(conn)
	ctx := context.Background()
	createPromo(t, repo, "SAVE10", 1, 0)

	activationErr := errors.New("subscription insert failed")
	err := sharedApplication.WithUnitOfWork(ctx, database.NewUnitOfWork(conn), func(txCtx context.Context) error {
		ok, err := repo.IncrementUsage(txCtx, "save10")
		require.NoError(t, err)
		require.True(t, ok)
		return activationErr
	})
	require.ErrorIs(t, err, activationErr)

	found, err := repo.FindByCode(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 0, found.UsageCount, "the use is returned with the failed purchase")

	ok, err := repo.IncrementUsage(ctx, "SAVE10")
	require.NoError(t, err)
	assert.True(t, ok, "the last use is still available")
}

func TestSQLitePromoRepository_ConcurrentLastUse(t *testing.T) {
	repo := setupPromoRepo(t)
	ctx := context.Background()
	createPromo(t, repo, "LASTONE", 5, 4)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.IncrementUsage(ctx, "LASTONE")
			assert.NoError(t, err)

			mu.Lock()
			defer mu.Unlock()
			if ok {
				successes++
			} else {
				failures++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, failures)

	found, err := repo.FindByCode(ctx, "LASTONE")
	require.NoError(t, err)
	assert.Equal(t, 5, found.UsageCount)
}

func TestSQLitePromoRepository_List(t *testing.T) {
	repo := setupPromoRepo(t)
	createPromo(t, repo, "AAA", 1, 0)
	createPromo(t, repo, "BBB", 1, 0)

	promos, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, promos, 2)
	assert.Equal(t, "AAA", promos[0].Code)
	assert.Equal(t, "BBB", promos[1].Code)
}

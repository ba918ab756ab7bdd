package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/anandgupta07/coach-sub000/internal/shared/domain"
)

type txKey struct{}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// purchase records the writes a confirmed checkout makes: one promo use,
// then one subscription per plan. Each write must see the transaction.
type purchase struct {
	t             *testing.T
	txCtx         context.Context
	applyErr      error
	activateErr   error
	promoApplied  bool
	subscriptions int
}

func (p *purchase) run(ctx context.Context, plans int) error {
	assert.Equal(p.t, p.txCtx, ctx, "writes run on the transaction context")
	if p.applyErr != nil {
		return p.applyErr
	}
	p.promoApplied = true
	for i := 0; i < plans; i++ {
		if p.activateErr != nil {
			return p.activateErr
		}
		p.subscriptions++
	}
	return nil
}

func TestWithUnitOfWork_Purchase(t *testing.T) {
	usageLimitReached := domain.NewError(domain.KindUsageLimitReached, "promo code usage limit reached")
	activationFailed := domain.StorageError(errors.New("database is locked"))

	tests := []struct {
		name        string
		applyErr    error
		activateErr error
		commitErr   error
		wantErr     error
		wantCommit  bool
	}{
		{name: "promo and subscriptions commit together", wantCommit: true},
		{name: "exhausted code activates nothing", applyErr: usageLimitReached, wantErr: usageLimitReached},
		{name: "failed activation returns the promo use", activateErr: activationFailed, wantErr: activationFailed},
		{name: "commit failure is reported", commitErr: errors.New("disk I/O error"), wantErr: errors.New("disk I/O error"), wantCommit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			txCtx := context.WithValue(ctx, txKey{}, "checkout")
			uow := new(mockUnitOfWork)
			uow.On("Begin", ctx).Return(txCtx, nil)
			if tt.wantCommit {
				uow.On("Commit", txCtx).Return(tt.commitErr)
			} else {
				uow.On("Rollback", txCtx).Return(nil)
			}

			p := &purchase{t: t, txCtx: txCtx, applyErr: tt.applyErr, activateErr: tt.activateErr}
			err := WithUnitOfWork(ctx, uow, func(ctx context.Context) error {
				return p.run(ctx, 2)
			})

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.True(t, p.promoApplied)
				assert.Equal(t, 2, p.subscriptions)
			} else {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Equal(t, domain.KindOf(tt.wantErr), domain.KindOf(err))
			}
			if tt.applyErr != nil {
				assert.Zero(t, p.subscriptions)
			}

			uow.AssertExpectations(t)
			if tt.wantCommit {
				uow.AssertNotCalled(t, "Rollback", mock.Anything)
			} else {
				uow.AssertNotCalled(t, "Commit", mock.Anything)
			}
		})
	}
}

func TestWithUnitOfWork_BeginFails(t *testing.T) {
	uow := new(mockUnitOfWork)
	ctx := context.Background()
	beginErr := errors.New("connection refused")
	uow.On("Begin", ctx).Return(ctx, beginErr)

	ran := false
	err := WithUnitOfWork(ctx, uow, func(context.Context) error {
		ran = true
		return nil
	})

	assert.ErrorIs(t, err, beginErr)
	assert.False(t, ran, "nothing is written without a transaction")
	uow.AssertExpectations(t)
}

func TestWithUnitOfWork_RollbackErrorKeepsCause(t *testing.T) {
	uow := new(mockUnitOfWork)
	ctx := context.Background()
	txCtx := context.WithValue(ctx, txKey{}, "checkout")
	uow.On("Begin", ctx).Return(txCtx, nil)
	uow.On("Rollback", txCtx).Return(errors.New("sql: transaction has already been committed or rolled back"))

	cause := domain.NewError(domain.KindNotFound, "plan not found")
	err := WithUnitOfWork(ctx, uow, func(context.Context) error { return cause })

	assert.ErrorIs(t, err, cause)
	uow.AssertExpectations(t)
}

func TestWithUnitOfWork_PanicRollsBack(t *testing.T) {
	uow := new(mockUnitOfWork)
	ctx := context.Background()
	txCtx := context.WithValue(ctx, txKey{}, "checkout")
	uow.On("Begin", ctx).Return(txCtx, nil)
	uow.On("Rollback", txCtx).Return(nil)

	assert.PanicsWithValue(t, "boom", func() {
		_ = WithUnitOfWork(ctx, uow, func(context.Context) error {
			panic("boom")
		})
	})

	uow.AssertExpectations(t)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

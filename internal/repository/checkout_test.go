package repository_test

import (
	"context"
	"sync"
	"testing"

	"shoe-store/internal/domain"
	"shoe-store/internal/repository"
	"shoe-store/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newCheckoutService(t *testing.T) service.OrderService {
	db := repository.SharedTestDB()
	return service.NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewTxManager(db),
		domain.ShippingPolicy{FlatFee: decimal.NewFromInt(30000)},
		zaptest.NewLogger(t),
	)
}

func checkoutOne(variantID uuid.UUID, quantity int) service.PlaceOrderInput {
	return service.PlaceOrderInput{
		Items:           []service.OrderLineInput{{VariantID: variantID, Quantity: quantity}},
		PaymentMethod:   domain.PaymentCOD,
		ShippingName:    "Ann Lee",
		ShippingPhone:   "0900000000",
		ShippingAddress: "1 Main St",
	}
}

func TestPlaceOrder_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	const (
		stock  = 3
		buyers = 10
	)
	ctx := context.Background()
	orders := newCheckoutService(t)
	variant := repository.NewTestVariant(t, 100000, stock)

	users := make([]*domain.User, buyers)
	for i := range users {
		users[i] = repository.NewTestUser(t)
	}

	var (
		wg   sync.WaitGroup
		errs = make([]error, buyers)
	)
	start := make(chan struct{})
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = orders.PlaceOrder(ctx, users[i].ID, checkoutOne(variant.ID, 1))
		}(i)
	}
	close(start)
	wg.Wait()

	placed := 0
	for _, err := range errs {
		if err == nil {
			placed++
			continue
		}
		assert.ErrorIs(t, err, service.ErrInsufficientStock)
	}
	assert.Equal(t, stock, placed)

	got, err := repository.NewVariantRepository(repository.SharedTestDB()).FindByID(ctx, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
	assert.Equal(t, domain.VariantOutOfStock, got.Status)
}

func TestPlaceOrder_ConcurrentVoucherUseRespectsLimit(t *testing.T) {
	const buyers = 6
	ctx := context.Background()
	orders := newCheckoutService(t)
	variant := repository.NewTestVariant(t, 100000, buyers)
	voucher := repository.NewTestVoucher(t, 2)

	var (
		wg   sync.WaitGroup
		errs = make([]error, buyers)
	)
	for i := 0; i < buyers; i++ {
		user := repository.NewTestUser(t)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			input := checkoutOne(variant.ID, 1)
			input.VoucherCode = voucher.Code
			_, errs[i] = orders.PlaceOrder(ctx, user.ID, input)
		}(i)
	}
	wg.Wait()

	placed := 0
	for _, err := range errs {
		if err == nil {
			placed++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrVoucherExhausted)
	}
	assert.Equal(t, 2, placed)

	got, err := repository.NewVoucherRepository(repository.SharedTestDB()).FindByID(ctx, voucher.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UsedCount)

	left, err := repository.NewVariantRepository(repository.SharedTestDB()).FindByID(ctx, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, buyers-2, left.Stock, "refused checkouts roll their stock back")
}

func TestCancel_RestoresStockAndVoucherUse(t *testing.T) {
	ctx := context.Background()
	db := repository.SharedTestDB()
	orders := newCheckoutService(t)
	variants := repository.NewVariantRepository(db)
	vouchers := repository.NewVoucherRepository(db)

	user := repository.NewTestUser(t)
	variant := repository.NewTestVariant(t, 100000, 2)
	voucher := repository.NewTestVoucher(t, 5)

	input := checkoutOne(variant.ID, 2)
	input.VoucherCode = voucher.Code
	order, err := orders.PlaceOrder(ctx, user.ID, input)
	require.NoError(t, err)

	stored, err := repository.NewOrderRepository(db).FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.VoucherID)
	assert.Equal(t, voucher.ID, *stored.VoucherID)

	sold, err := variants.FindByID(ctx, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sold.Stock)
	assert.Equal(t, domain.VariantOutOfStock, sold.Status)

	// an admin renames the code while the order is still pending
	renamed, err := vouchers.FindByID(ctx, voucher.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, renamed.UsedCount)
	renamed.Code = domain.NormalizeVoucherCode("renamed" + uuid.NewString()[:6])
	require.NoError(t, vouchers.Update(ctx, renamed))

	cancelled, err := orders.Cancel(ctx, user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, cancelled.Status)

	restored, err := variants.FindByID(ctx, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, restored.Stock)
	assert.Equal(t, domain.VariantAvailable, restored.Status)

	got, err := vouchers.FindByID(ctx, voucher.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.UsedCount)

	_, err = orders.Cancel(ctx, user.ID, order.ID)
	assert.ErrorIs(t, err, service.ErrOrderNotCancellable)
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"shoe-store/internal/domain"
	"shoe-store/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mock repositories for testing
type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users: make(map[string]*domain.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	stored := *user
	m.users[user.Email] = &stored
	return nil
}

// Finders hand out copies, as rows scanned from SQL would be.
func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[strings.ToLower(email)]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	found := *user
	return &found, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := m.stored(id)
	if err != nil {
		return nil, err
	}
	found := *user
	return &found, nil
}

func (m *mockUserRepository) stored(id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	stored, err := m.stored(user.ID)
	if err != nil {
		return err
	}
	stored.FullName, stored.Phone, stored.Address = user.FullName, user.Phone, user.Address
	return nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	user, err := m.stored(id)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	return nil
}

func (m *mockUserRepository) SetAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	user, err := m.stored(id)
	if err != nil {
		return err
	}
	user.AvatarURL = avatarURL
	return nil
}

func (m *mockUserRepository) SetLocked(ctx context.Context, id uuid.UUID, locked bool) error {
	user, err := m.stored(id)
	if err != nil {
		return err
	}
	user.IsLocked = locked
	return nil
}

func (m *mockUserRepository) List(ctx context.Context, query string, page repository.Page) ([]*domain.User, int, error) {
	var users []*domain.User
	for _, user := range m.users {
		if query == "" || strings.Contains(user.Email, strings.ToLower(query)) {
			users = append(users, user)
		}
	}
	return users, len(users), nil
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{
		tokens: make(map[string]*domain.RefreshToken),
	}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func (m *mockRefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	for _, token := range m.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

// mockStore is the in-memory state behind the catalog, cart, order and voucher mocks.
// mockTxManager snapshots it so a failed transaction leaves it untouched.
type mockStore struct {
	products map[uuid.UUID]*domain.Product
	variants map[uuid.UUID]*domain.ProductVariant
	vouchers map[uuid.UUID]*domain.Voucher
	orders   map[uuid.UUID]*domain.Order
	cart     map[uuid.UUID][]*domain.CartItem
}

func newMockStore() *mockStore {
	return &mockStore{
		products: make(map[uuid.UUID]*domain.Product),
		variants: make(map[uuid.UUID]*domain.ProductVariant),
		vouchers: make(map[uuid.UUID]*domain.Voucher),
		orders:   make(map[uuid.UUID]*domain.Order),
		cart:     make(map[uuid.UUID][]*domain.CartItem),
	}
}

func (s *mockStore) addProduct(name string, active bool) *domain.Product {
	product := &domain.Product{
		ID:       uuid.New(),
		Name:     name,
		Brand:    "Acme",
		IsActive: active,
	}
	s.products[product.ID] = product
	return product
}

func (s *mockStore) addVariant(product *domain.Product, size string, price int64, stock int) *domain.ProductVariant {
	variant := &domain.ProductVariant{
		ID:            uuid.New(),
		ProductID:     product.ID,
		Color:         "black",
		Size:          size,
		OriginalPrice: decimal.NewFromInt(price),
		CurrentPrice:  decimal.NewFromInt(price),
		Stock:         stock,
	}
	variant.NormalizeStatus()
	s.variants[variant.ID] = variant
	return variant
}

func (s *mockStore) addVoucher(code string, discountType domain.DiscountType, value int64, limit int) *domain.Voucher {
	now := time.Now()
	voucher := &domain.Voucher{
		ID:            uuid.New(),
		Code:          code,
		DiscountType:  discountType,
		DiscountValue: decimal.NewFromInt(value),
		StartDate:     now.Add(-24 * time.Hour),
		EndDate:       now.Add(24 * time.Hour),
		UsageLimit:    limit,
		IsActive:      true,
	}
	s.vouchers[voucher.ID] = voucher
	return voucher
}

type mockSnapshot struct {
	products map[uuid.UUID]bool
	variants map[uuid.UUID]domain.ProductVariant
	used     map[uuid.UUID]int
	orders   map[uuid.UUID]*domain.Order
	statuses map[uuid.UUID]domain.OrderStatus
	cart     map[uuid.UUID][]*domain.CartItem
}

func (s *mockStore) snapshot() mockSnapshot {
	snap := mockSnapshot{
		products: make(map[uuid.UUID]bool),
		variants: make(map[uuid.UUID]domain.ProductVariant),
		used:     make(map[uuid.UUID]int),
		orders:   make(map[uuid.UUID]*domain.Order),
		statuses: make(map[uuid.UUID]domain.OrderStatus),
		cart:     make(map[uuid.UUID][]*domain.CartItem),
	}
	for id := range s.products {
		snap.products[id] = true
	}
	for id, v := range s.variants {
		snap.variants[id] = *v
	}
	for id, v := range s.vouchers {
		snap.used[id] = v.UsedCount
	}
	for id, o := range s.orders {
		snap.orders[id] = o
		snap.statuses[id] = o.Status
	}
	for id, items := range s.cart {
		copied := make([]*domain.CartItem, len(items))
		for i, item := range items {
			c := *item
			copied[i] = &c
		}
		snap.cart[id] = copied
	}
	return snap
}

func (s *mockStore) restore(snap mockSnapshot) {
	for id := range s.products {
		if !snap.products[id] {
			delete(s.products, id)
		}
	}
	for id := range s.variants {
		if v, ok := snap.variants[id]; ok {
			*s.variants[id] = v
		} else {
			delete(s.variants, id)
		}
	}
	for id, used := range snap.used {
		if v, ok := s.vouchers[id]; ok {
			v.UsedCount = used
		}
	}
	s.orders = snap.orders
	for id, status := range snap.statuses {
		s.orders[id].Status = status
	}
	s.cart = snap.cart
}

type mockTxManager struct {
	store *mockStore
}

func (m *mockTxManager) WithinTx(ctx context.Context, fn func(r repository.TxRepositories) error) error {
	snap := m.store.snapshot()
	if err := fn(&mockTxRepositories{store: m.store}); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type mockTxRepositories struct {
	store *mockStore
}

func (r *mockTxRepositories) Products() repository.ProductRepository {
	return &mockProductRepository{store: r.store}
}
func (r *mockTxRepositories) Variants() repository.VariantRepository {
	return &mockVariantRepository{store: r.store}
}
func (r *mockTxRepositories) Orders() repository.OrderRepository {
	return &mockOrderRepository{store: r.store}
}
func (r *mockTxRepositories) Vouchers() repository.VoucherRepository {
	return &mockVoucherRepository{store: r.store}
}
func (r *mockTxRepositories) Cart() repository.CartRepository {
	return &mockCartRepository{store: r.store}
}

type mockProductRepository struct {
	store *mockStore
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.store.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := m.store.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	m.store.products[product.ID] = product
	return nil
}

func (m *mockProductRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	product, ok := m.store.products[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	product.IsActive = active
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.store.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.store.products, id)
	for vid, v := range m.store.variants {
		if v.ProductID == id {
			delete(m.store.variants, vid)
		}
	}
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := m.store.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.ProductSummary, int, error) {
	var list []*domain.ProductSummary
	for _, p := range m.store.products {
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		list = append(list, &domain.ProductSummary{Product: *p})
	}
	return list, len(list), nil
}

func (m *mockProductRepository) Brands(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var brands []string
	for _, p := range m.store.products {
		if !seen[p.Brand] {
			seen[p.Brand] = true
			brands = append(brands, p.Brand)
		}
	}
	sort.Strings(brands)
	return brands, nil
}

type mockCategoryRepository struct {
	categories map[uuid.UUID]*domain.Category
}

func newMockCategoryRepository(names ...string) *mockCategoryRepository {
	m := &mockCategoryRepository{categories: make(map[uuid.UUID]*domain.Category)}
	for _, name := range names {
		c := &domain.Category{ID: uuid.New(), Name: name}
		m.categories[c.ID] = c
	}
	return m
}

func (m *mockCategoryRepository) first() *domain.Category {
	for _, c := range m.categories {
		return c
	}
	return nil
}

func (m *mockCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	for _, c := range m.categories {
		if strings.EqualFold(c.Name, category.Name) {
			return repository.ErrCategoryAlreadyExists
		}
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	if _, ok := m.categories[category.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *mockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	list := []*domain.Category{}
	for _, c := range m.categories {
		list = append(list, c)
	}
	return list, nil
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return c, nil
}

type mockVariantRepository struct {
	store *mockStore
}

func (m *mockVariantRepository) Create(ctx context.Context, variant *domain.ProductVariant) error {
	for _, v := range m.store.variants {
		if v.ProductID == variant.ProductID && v.Color == variant.Color && v.Size == variant.Size {
			return repository.ErrVariantAlreadyExists
		}
	}
	m.store.variants[variant.ID] = variant
	return nil
}

func (m *mockVariantRepository) Update(ctx context.Context, variant *domain.ProductVariant) error {
	if _, ok := m.store.variants[variant.ID]; !ok {
		return repository.ErrVariantNotFound
	}
	m.store.variants[variant.ID] = variant
	return nil
}

func (m *mockVariantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.store.variants[id]; !ok {
		return repository.ErrVariantNotFound
	}
	delete(m.store.variants, id)
	return nil
}

func (m *mockVariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductVariant, error) {
	variant, ok := m.store.variants[id]
	if !ok {
		return nil, repository.ErrVariantNotFound
	}
	copied := *variant
	return &copied, nil
}

func (m *mockVariantRepository) FindWithProduct(ctx context.Context, id uuid.UUID) (*repository.VariantWithProduct, error) {
	variant, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product := m.store.products[variant.ProductID]
	return &repository.VariantWithProduct{
		Variant:       variant,
		ProductName:   product.Name,
		Brand:         product.Brand,
		ProductActive: product.IsActive,
	}, nil
}

func (m *mockVariantRepository) LockWithProduct(ctx context.Context, id uuid.UUID) (*repository.VariantWithProduct, error) {
	return m.FindWithProduct(ctx, id)
}

func (m *mockVariantRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductVariant, error) {
	variants := []*domain.ProductVariant{}
	for _, v := range m.store.variants {
		if v.ProductID == productID {
			variants = append(variants, v)
		}
	}
	return variants, nil
}

func (m *mockVariantRepository) SetStock(ctx context.Context, id uuid.UUID, stock int) (*domain.ProductVariant, error) {
	variant, ok := m.store.variants[id]
	if !ok {
		return nil, repository.ErrVariantNotFound
	}
	variant.Stock = stock
	variant.NormalizeStatus()
	return variant, nil
}

func (m *mockVariantRepository) SetImage(ctx context.Context, id uuid.UUID, imageURL string) error {
	variant, ok := m.store.variants[id]
	if !ok {
		return repository.ErrVariantNotFound
	}
	variant.ImageURL = imageURL
	return nil
}

func (m *mockVariantRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	variant, ok := m.store.variants[id]
	if !ok {
		return false, repository.ErrVariantNotFound
	}
	if variant.Stock < quantity {
		return false, nil
	}
	variant.Stock -= quantity
	variant.NormalizeStatus()
	return true, nil
}

func (m *mockVariantRepository) ImageReferencedByOrders(ctx context.Context, imageURL string) (bool, error) {
	for _, order := range m.store.orders {
		for _, item := range order.Items {
			if item.ImageURL == imageURL {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockVariantRepository) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	variant, ok := m.store.variants[id]
	if !ok {
		return repository.ErrVariantNotFound
	}
	variant.Stock += quantity
	variant.NormalizeStatus()
	return nil
}

type mockCartRepository struct {
	store *mockStore
}

func (m *mockCartRepository) ListLines(ctx context.Context, userID uuid.UUID) ([]*domain.CartLine, error) {
	lines := []*domain.CartLine{}
	for _, item := range m.store.cart[userID] {
		variant, ok := m.store.variants[item.VariantID]
		if !ok {
			continue
		}
		product := m.store.products[variant.ProductID]
		lines = append(lines, &domain.CartLine{
			VariantID:   variant.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Brand:       product.Brand,
			Color:       variant.Color,
			Size:        variant.Size,
			UnitPrice:   variant.CurrentPrice,
			Quantity:    item.Quantity,
			Stock:       variant.Stock,
			Purchasable: product.IsActive && variant.Purchasable(),
			LineTotal:   variant.CurrentPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return lines, nil
}

func (m *mockCartRepository) FindItem(ctx context.Context, userID, variantID uuid.UUID) (*domain.CartItem, error) {
	for _, item := range m.store.cart[userID] {
		if item.VariantID == variantID {
			return item, nil
		}
	}
	return nil, repository.ErrCartItemNotFound
}

func (m *mockCartRepository) SetQuantity(ctx context.Context, userID, variantID uuid.UUID, quantity int) error {
	if _, ok := m.store.variants[variantID]; !ok {
		return repository.ErrVariantNotFound
	}
	if item, err := m.FindItem(ctx, userID, variantID); err == nil {
		item.Quantity = quantity
		return nil
	}
	m.store.cart[userID] = append(m.store.cart[userID], &domain.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		VariantID: variantID,
		Quantity:  quantity,
	})
	return nil
}

func (m *mockCartRepository) Remove(ctx context.Context, userID, variantID uuid.UUID) error {
	return m.RemoveVariants(ctx, userID, []uuid.UUID{variantID})
}

func (m *mockCartRepository) RemoveVariants(ctx context.Context, userID uuid.UUID, variantIDs []uuid.UUID) error {
	drop := make(map[uuid.UUID]bool)
	for _, id := range variantIDs {
		drop[id] = true
	}
	kept := []*domain.CartItem{}
	for _, item := range m.store.cart[userID] {
		if !drop[item.VariantID] {
			kept = append(kept, item)
		}
	}
	m.store.cart[userID] = kept
	return nil
}

func (m *mockCartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	delete(m.store.cart, userID)
	return nil
}

type mockVoucherRepository struct {
	store *mockStore
}

func (m *mockVoucherRepository) Create(ctx context.Context, voucher *domain.Voucher) error {
	if _, err := m.FindByCode(ctx, voucher.Code); err == nil {
		return repository.ErrVoucherCodeExists
	}
	m.store.vouchers[voucher.ID] = voucher
	return nil
}

func (m *mockVoucherRepository) Update(ctx context.Context, voucher *domain.Voucher) error {
	if _, ok := m.store.vouchers[voucher.ID]; !ok {
		return repository.ErrVoucherNotFound
	}
	m.store.vouchers[voucher.ID] = voucher
	return nil
}

func (m *mockVoucherRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.store.vouchers[id]; !ok {
		return repository.ErrVoucherNotFound
	}
	delete(m.store.vouchers, id)
	return nil
}

func (m *mockVoucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Voucher, error) {
	voucher, ok := m.store.vouchers[id]
	if !ok {
		return nil, repository.ErrVoucherNotFound
	}
	return voucher, nil
}

func (m *mockVoucherRepository) FindByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	code = domain.NormalizeVoucherCode(code)
	for _, v := range m.store.vouchers {
		if v.Code == code {
			return v, nil
		}
	}
	return nil, repository.ErrVoucherNotFound
}

func (m *mockVoucherRepository) FindByCodeForUpdate(ctx context.Context, code string) (*domain.Voucher, error) {
	return m.FindByCode(ctx, code)
}

func (m *mockVoucherRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Voucher, error) {
	vouchers := []*domain.Voucher{}
	for _, v := range m.store.vouchers {
		if !activeOnly || v.IsActive {
			vouchers = append(vouchers, v)
		}
	}
	return vouchers, nil
}

func (m *mockVoucherRepository) IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error) {
	voucher, ok := m.store.vouchers[id]
	if !ok {
		return false, repository.ErrVoucherNotFound
	}
	if voucher.UsageLimit > 0 && voucher.UsedCount >= voucher.UsageLimit {
		return false, nil
	}
	voucher.UsedCount++
	return true, nil
}

func (m *mockVoucherRepository) DecrementUsage(ctx context.Context, id uuid.UUID) error {
	voucher, ok := m.store.vouchers[id]
	if !ok {
		return nil
	}
	if voucher.UsedCount > 0 {
		voucher.UsedCount--
	}
	return nil
}

type mockOrderRepository struct {
	store *mockStore
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	m.store.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := m.store.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

func (m *mockOrderRepository) FindForUpdate(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return m.FindByID(ctx, id)
}

func (m *mockOrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, int, error) {
	orders := []*domain.Order{}
	for _, o := range m.store.orders {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		orders = append(orders, o)
	}
	return orders, len(orders), nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, updatedAt time.Time) error {
	order, ok := m.store.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	order.Status = status
	order.UpdatedAt = updatedAt
	return nil
}

type mockReviewRepository struct {
	reviews map[uuid.UUID]*domain.Review
}

func newMockReviewRepository() *mockReviewRepository {
	return &mockReviewRepository{reviews: make(map[uuid.UUID]*domain.Review)}
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	for _, r := range m.reviews {
		if r.OrderID == review.OrderID && r.UserID == review.UserID && r.VariantID == review.VariantID {
			return repository.ErrReviewAlreadyExists
		}
	}
	m.reviews[review.ID] = review
	return nil
}

func (m *mockReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	if _, ok := m.reviews[review.ID]; !ok {
		return repository.ErrReviewNotFound
	}
	m.reviews[review.ID] = review
	return nil
}

func (m *mockReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.reviews[id]; !ok {
		return repository.ErrReviewNotFound
	}
	delete(m.reviews, id)
	return nil
}

func (m *mockReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	review, ok := m.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	return review, nil
}

func (m *mockReviewRepository) filter(keep func(*domain.Review) bool) []*domain.Review {
	reviews := []*domain.Review{}
	for _, r := range m.reviews {
		if keep(r) {
			reviews = append(reviews, r)
		}
	}
	return reviews
}

func (m *mockReviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID, page repository.Page) ([]*domain.Review, int, error) {
	reviews := m.filter(func(r *domain.Review) bool { return r.ProductID == productID })
	return reviews, len(reviews), nil
}

func (m *mockReviewRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Review, error) {
	return m.filter(func(r *domain.Review) bool { return r.UserID == userID }), nil
}

func (m *mockReviewRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.Review, error) {
	return m.filter(func(r *domain.Review) bool { return r.OrderID == orderID }), nil
}

func (m *mockReviewRepository) Summary(ctx context.Context, productID uuid.UUID) (domain.RatingSummary, error) {
	reviews := m.filter(func(r *domain.Review) bool { return r.ProductID == productID })
	if len(reviews) == 0 {
		return domain.RatingSummary{}, nil
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return domain.RatingSummary{Average: float64(sum) / float64(len(reviews)), Count: len(reviews)}, nil
}

type mockMessageRepository struct {
	messages []*domain.Message
}

func (m *mockMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	m.messages = append(m.messages, message)
	return nil
}

func (m *mockMessageRepository) Conversation(ctx context.Context, a, b uuid.UUID, before time.Time, limit int) ([]*domain.Message, error) {
	var matched []*domain.Message
	for i := len(m.messages) - 1; i >= 0 && len(matched) < limit; i-- {
		msg := m.messages[i]
		between := (msg.SenderID == a && msg.ReceiverID == b) || (msg.SenderID == b && msg.ReceiverID == a)
		if between && msg.CreatedAt.Before(before) {
			matched = append(matched, msg)
		}
	}
	for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
		matched[i], matched[j] = matched[j], matched[i]
	}
	return matched, nil
}

func (m *mockMessageRepository) MarkRead(ctx context.Context, from, to uuid.UUID) (int, error) {
	n := 0
	for _, msg := range m.messages {
		if msg.SenderID == from && msg.ReceiverID == to && !msg.IsRead {
			msg.IsRead = true
			n++
		}
	}
	return n, nil
}

func (m *mockMessageRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, msg := range m.messages {
		if msg.ReceiverID == userID && !msg.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *mockMessageRepository) Conversations(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	return []*domain.Conversation{}, nil
}

type mockAnalyticsRepository struct {
	from, to  time.Time
	limit     int
	threshold int
}

func (m *mockAnalyticsRepository) Summary(ctx context.Context, from, to time.Time) (*domain.SalesSummary, error) {
	m.from, m.to = from, to
	return &domain.SalesSummary{From: from, To: to}, nil
}

func (m *mockAnalyticsRepository) RevenueByDay(ctx context.Context, from, to time.Time) ([]*domain.DailyRevenue, error) {
	m.from, m.to = from, to
	return []*domain.DailyRevenue{}, nil
}

func (m *mockAnalyticsRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]*domain.ProductSales, error) {
	m.from, m.to, m.limit = from, to, limit
	return []*domain.ProductSales{}, nil
}

func (m *mockAnalyticsRepository) LowStock(ctx context.Context, threshold int) ([]*domain.LowStockVariant, error) {
	m.threshold = threshold
	return []*domain.LowStockVariant{}, nil
}

// mockImageStore keeps saved images in memory
type mockImageStore struct {
	saved   map[string][]byte
	deleted []string
}

func newMockImageStore() *mockImageStore {
	return &mockImageStore{saved: make(map[string][]byte)}
}

func (m *mockImageStore) Save(ctx context.Context, folder string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	url := fmt.Sprintf("/uploads/%s/%s.png", folder, uuid.NewString())
	m.saved[url] = buf.Bytes()
	return url, nil
}

func (m *mockImageStore) Delete(ctx context.Context, url string) error {
	delete(m.saved, url)
	m.deleted = append(m.deleted, url)
	return nil
}

type mockBannerRepository struct {
	banners map[uuid.UUID]*domain.Banner
}

func newMockBannerRepository() *mockBannerRepository {
	return &mockBannerRepository{banners: make(map[uuid.UUID]*domain.Banner)}
}

func (m *mockBannerRepository) Create(ctx context.Context, banner *domain.Banner) error {
	m.banners[banner.ID] = banner
	return nil
}

func (m *mockBannerRepository) Update(ctx context.Context, banner *domain.Banner) error {
	if _, ok := m.banners[banner.ID]; !ok {
		return repository.ErrBannerNotFound
	}
	m.banners[banner.ID] = banner
	return nil
}

func (m *mockBannerRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	banner, ok := m.banners[id]
	if !ok {
		return repository.ErrBannerNotFound
	}
	banner.IsActive = active
	return nil
}

func (m *mockBannerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.banners[id]; !ok {
		return repository.ErrBannerNotFound
	}
	delete(m.banners, id)
	return nil
}

func (m *mockBannerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Banner, error) {
	banner, ok := m.banners[id]
	if !ok {
		return nil, repository.ErrBannerNotFound
	}
	return banner, nil
}

func (m *mockBannerRepository) List(ctx context.Context, activeOnly bool) ([]*domain.Banner, error) {
	banners := []*domain.Banner{}
	for _, b := range m.banners {
		if !activeOnly || b.IsActive {
			banners = append(banners, b)
		}
	}
	sort.Slice(banners, func(i, j int) bool { return banners[i].Position < banners[j].Position })
	return banners, nil
}

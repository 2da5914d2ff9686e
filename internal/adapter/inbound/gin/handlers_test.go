package gin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ariachat/server/internal/adapter/outbound/aiprovider"
	"github.com/ariachat/server/internal/domain/chat"
	"github.com/ariachat/server/internal/domain/payment"
	"github.com/ariachat/server/internal/domain/usage"
	"github.com/ariachat/server/internal/model"
	"github.com/ariachat/server/internal/port/outbound"
	apperrors "github.com/ariachat/server/internal/utils/errors"
	"github.com/ariachat/server/internal/utils/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ===== Mocks =====

type MockUsageDomain struct {
	mock.Mock
}

func (m *MockUsageDomain) RegisterAccount(ctx context.Context, username, email string) (*model.Account, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockUsageDomain) GetAccount(ctx context.Context, accountID uuid.UUID) (*model.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockUsageDomain) GetEntitlementStatus(ctx context.Context, accountID uuid.UUID) (*model.EntitlementStatus, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EntitlementStatus), args.Error(1)
}

func (m *MockUsageDomain) Admit(ctx context.Context, accountID uuid.UUID, estimateSeconds int64) (*model.Admission, error) {
	args := m.Called(ctx, accountID, estimateSeconds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Admission), args.Error(1)
}

func (m *MockUsageDomain) Settle(ctx context.Context, admission *model.Admission, secondsConsumed int64) (*model.EntitlementStatus, error) {
	args := m.Called(ctx, admission, secondsConsumed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EntitlementStatus), args.Error(1)
}

func (m *MockUsageDomain) Cancel(ctx context.Context, admission *model.Admission) error {
	return m.Called(ctx, admission).Error(0)
}

func (m *MockUsageDomain) RecordUsage(ctx context.Context, accountID uuid.UUID, secondsConsumed int64) (*model.EntitlementStatus, error) {
	args := m.Called(ctx, accountID, secondsConsumed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EntitlementStatus), args.Error(1)
}

func (m *MockUsageDomain) GetProfileStats(ctx context.Context, accountID uuid.UUID) (*model.ProfileStats, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProfileStats), args.Error(1)
}

func (m *MockUsageDomain) GetPricing(ctx context.Context) (*model.PricingInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PricingInfo), args.Error(1)
}

func (m *MockUsageDomain) AdminOverview(ctx context.Context) (*model.AdminOverview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminOverview), args.Error(1)
}

func (m *MockUsageDomain) AdminGrantPremium(ctx context.Context, accountID uuid.UUID, months int) (*model.EntitlementStatus, error) {
	args := m.Called(ctx, accountID, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EntitlementStatus), args.Error(1)
}

func (m *MockUsageDomain) AdminRevoke(ctx context.Context, accountID uuid.UUID) (*model.EntitlementStatus, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EntitlementStatus), args.Error(1)
}

type MockPaymentDomain struct {
	mock.Mock
}

func (m *MockPaymentDomain) CreateOrder(ctx context.Context, accountID uuid.UUID, provider string) (*model.CheckoutOrder, error) {
	args := m.Called(ctx, accountID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutOrder), args.Error(1)
}

func (m *MockPaymentDomain) ConfirmOrder(ctx context.Context, orderID string, proof *model.PaymentProof) (*model.ConfirmResult, error) {
	args := m.Called(ctx, orderID, proof)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConfirmResult), args.Error(1)
}

func (m *MockPaymentDomain) HandleNotification(ctx context.Context, provider string, payload []byte, headers map[string]string) (*model.ConfirmResult, error) {
	args := m.Called(ctx, provider, payload, headers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConfirmResult), args.Error(1)
}

func (m *MockPaymentDomain) GetOrder(ctx context.Context, accountID uuid.UUID, orderID string) (*model.Order, error) {
	args := m.Called(ctx, accountID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockPaymentDomain) ListOrders(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]*model.Order, int64, error) {
	args := m.Called(ctx, accountID, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.Order), args.Get(1).(int64), args.Error(2)
}

type MockChatDomain struct {
	mock.Mock
}

func (m *MockChatDomain) Chat(ctx context.Context, accountID uuid.UUID, message string) (*model.ChatReply, error) {
	args := m.Called(ctx, accountID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChatReply), args.Error(1)
}

func (m *MockChatDomain) History(ctx context.Context, accountID uuid.UUID, q model.PageQuery) (*model.ChatHistory, error) {
	args := m.Called(ctx, accountID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ChatHistory), args.Error(1)
}

func (m *MockChatDomain) DeleteMessage(ctx context.Context, accountID, messageID uuid.UUID) error {
	args := m.Called(ctx, accountID, messageID)
	return args.Error(0)
}

func (m *MockChatDomain) ClearHistory(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

type fakeTokens struct{}

func (fakeTokens) Issue(accountID uuid.UUID, _ string, admin bool) (string, time.Time, error) {
	return fmt.Sprintf("token-%s-%t", accountID, admin), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), nil
}

func (fakeTokens) Validate(string) (*outbound.TokenClaims, error) {
	return nil, errors.New("not used")
}

// ===== Harness =====

const testAccountHeader = "X-Test-Account"

type harness struct {
	usage    *MockUsageDomain
	payments *MockPaymentDomain
	chat     *MockChatDomain
	router   *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		usage:    new(MockUsageDomain),
		payments: new(MockPaymentDomain),
		chat:     new(MockChatDomain),
	}
	admins := middleware.NewAdminAuthorizer([]string{"ops@aria.chat"}, nil)
	handlers := NewHandlers(h.usage, h.payments, h.chat, fakeTokens{}, admins, zap.NewNop())

	fakeAuth := func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader(testAccountHeader))
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(middleware.AccountIDKey, id)
		c.Set(middleware.EmailKey, c.GetHeader("X-Test-Email"))
		c.Next()
	}

	h.router = gin.New()
	handlers.RegisterRoutes(h.router.Group("/api/v1"), RouteMiddleware{
		Auth:  fakeAuth,
		Admin: middleware.RequireAdmin(admins),
	})
	return h
}

func (h *harness) do(method, path, body string, account uuid.UUID) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if account != uuid.Nil {
		req.Header.Set(testAccountHeader, account.String())
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorDetail {
	t.Helper()
	var resp apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

// ===== Accounts =====

func TestRegister(t *testing.T) {
	t.Run("success issues token", func(t *testing.T) {
		h := newHarness(t)
		acc := &model.Account{ID: uuid.New(), Username: "meera", Email: "ops@aria.chat"}
		h.usage.On("RegisterAccount", mock.Anything, "meera", "ops@aria.chat").Return(acc, nil)

		w := h.do(http.MethodPost, "/api/v1/accounts", `{"username":"meera","email":"ops@aria.chat"}`, uuid.Nil)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp model.RegisterAccountResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, acc.ID, resp.Account.ID)
		assert.Equal(t, fmt.Sprintf("token-%s-true", acc.ID), resp.AccessToken)
		require.NotNil(t, resp.ExpiresAt)
	})

	t.Run("duplicate", func(t *testing.T) {
		h := newHarness(t)
		h.usage.On("RegisterAccount", mock.Anything, "meera", "m@example.com").Return(nil, usage.ErrAccountExists)

		w := h.do(http.MethodPost, "/api/v1/accounts", `{"username":"meera","email":"m@example.com"}`, uuid.Nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "ACCOUNT_EXISTS", decodeError(t, w).Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		h := newHarness(t)

		w := h.do(http.MethodPost, "/api/v1/accounts", `{"username":"m"}`, uuid.Nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		h.usage.AssertNotCalled(t, "RegisterAccount", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestEntitlement(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()
	h.usage.On("GetEntitlementStatus", mock.Anything, id).Return(&model.EntitlementStatus{
		AccountID:          id,
		RemainingSeconds:   600,
		FormattedRemaining: "10:00",
	}, nil)

	w := h.do(http.MethodGet, "/api/v1/entitlement", "", id)

	require.Equal(t, http.StatusOK, w.Code)
	var status model.EntitlementStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, int64(600), status.RemainingSeconds)
	assert.Equal(t, "10:00", status.FormattedRemaining)
}

func TestEntitlement_RequiresAuth(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodGet, "/api/v1/entitlement", "", uuid.Nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecordUsage(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()
	h.usage.On("RecordUsage", mock.Anything, id, int64(90)).Return(&model.EntitlementStatus{AccountID: id, RemainingSeconds: 1110}, nil)

	w := h.do(http.MethodPost, "/api/v1/usage", `{"seconds_consumed":90}`, id)

	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodPost, "/api/v1/usage", `{"seconds_consumed":-1}`, id)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAccountNotFound(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()
	h.usage.On("GetProfileStats", mock.Anything, id).Return(nil, usage.ErrAccountNotFound)

	w := h.do(http.MethodGet, "/api/v1/profile/stats", "", id)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Code)
}

func TestPricing_Public(t *testing.T) {
	h := newHarness(t)
	h.usage.On("GetPricing", mock.Anything).Return(&model.PricingInfo{
		Tier:     model.PriceTier{Amount: 89, IsEarlyBird: true, DurationMonths: 3},
		Currency: "INR",
	}, nil)

	w := h.do(http.MethodGet, "/api/v1/pricing", "", uuid.Nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"amount":89`)
}

// ===== Chat =====

func TestChat(t *testing.T) {
	id := uuid.New()

	t.Run("limit reached is a normal reply", func(t *testing.T) {
		h := newHarness(t)
		h.chat.On("Chat", mock.Anything, id, "hello").Return(&model.ChatReply{
			Reply:        "You've reached today's limit.",
			LimitReached: true,
		}, nil)

		w := h.do(http.MethodPost, "/api/v1/chat", `{"message":"hello"}`, id)

		require.Equal(t, http.StatusOK, w.Code)
		var reply model.ChatReply
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
		assert.True(t, reply.LimitReached)
	})

	t.Run("breaker open", func(t *testing.T) {
		h := newHarness(t)
		err := fmt.Errorf("%w: %w", chat.ErrCompletionFailed, aiprovider.ErrProviderUnavailable)
		h.chat.On("Chat", mock.Anything, id, "hello").Return(nil, err)

		w := h.do(http.MethodPost, "/api/v1/chat", `{"message":"hello"}`, id)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		h := newHarness(t)
		err := fmt.Errorf("%w: %w", chat.ErrCompletionFailed, errors.New("boom"))
		h.chat.On("Chat", mock.Anything, id, "hello").Return(nil, err)

		w := h.do(http.MethodPost, "/api/v1/chat", `{"message":"hello"}`, id)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.NotContains(t, w.Body.String(), "boom")
	})
}

func TestChatHistory(t *testing.T) {
	id := uuid.New()

	t.Run("list passes paging through", func(t *testing.T) {
		h := newHarness(t)
		h.chat.On("History", mock.Anything, id, model.PageQuery{Page: 2, PageSize: 5}).Return(&model.ChatHistory{
			Days: []model.HistoryDay{{
				Day:      "2026-04-10",
				Messages: []*model.Message{{ID: uuid.New(), Role: model.RoleUser, Content: "hello"}},
			}},
			TotalMessages: 6,
			Page:          2,
			PageSize:      5,
			TotalPages:    2,
		}, nil)

		w := h.do(http.MethodGet, "/api/v1/chat/history?page=2&page_size=5", "", id)

		require.Equal(t, http.StatusOK, w.Code)
		var got model.ChatHistory
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, int64(6), got.TotalMessages)
		require.Len(t, got.Days, 1)
		assert.Equal(t, "hello", got.Days[0].Messages[0].Content)
	})

	t.Run("delete", func(t *testing.T) {
		h := newHarness(t)
		msg := uuid.New()
		h.chat.On("DeleteMessage", mock.Anything, id, msg).Return(nil)

		w := h.do(http.MethodDelete, "/api/v1/chat/history/"+msg.String(), "", id)

		assert.Equal(t, http.StatusNoContent, w.Code)
		h.chat.AssertExpectations(t)
	})

	t.Run("delete someone else's message", func(t *testing.T) {
		h := newHarness(t)
		msg := uuid.New()
		h.chat.On("DeleteMessage", mock.Anything, id, msg).Return(chat.ErrMessageNotFound)

		w := h.do(http.MethodDelete, "/api/v1/chat/history/"+msg.String(), "", id)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete with bad id", func(t *testing.T) {
		h := newHarness(t)

		w := h.do(http.MethodDelete, "/api/v1/chat/history/42", "", id)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		h.chat.AssertNotCalled(t, "DeleteMessage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("clear", func(t *testing.T) {
		h := newHarness(t)
		h.chat.On("ClearHistory", mock.Anything, id).Return(int64(8), nil)

		w := h.do(http.MethodDelete, "/api/v1/chat/history", "", id)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"deleted":8}`, w.Body.String())
	})

	t.Run("requires auth", func(t *testing.T) {
		h := newHarness(t)

		w := h.do(http.MethodGet, "/api/v1/chat/history", "", uuid.Nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// ===== Orders =====

func TestCreateOrder(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()
	h.payments.On("CreateOrder", mock.Anything, id, "").Return(&model.CheckoutOrder{
		OrderID:  "order_1",
		Provider: model.ProviderRazorpay,
		Amount:   89,
		Currency: "INR",
	}, nil)

	w := h.do(http.MethodPost, "/api/v1/orders", "", id)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"order_id":"order_1"`)
}

func TestCreateOrder_UnknownProvider(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/api/v1/orders", `{"provider":"paypal"}`, uuid.New())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListOrders(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()
	orders := []*model.Order{{OrderID: "a"}, {OrderID: "b"}}
	h.payments.On("ListOrders", mock.Anything, id, 2, 2).Return(orders, int64(5), nil)

	w := h.do(http.MethodGet, "/api/v1/orders?page=2&page_size=2", "", id)

	require.Equal(t, http.StatusOK, w.Code)
	var resp model.Page[*model.Order]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, int64(5), resp.Total)
	assert.Equal(t, 3, resp.TotalPages)
}

func TestConfirmOrder(t *testing.T) {
	body := `{"order_id":"order_1","payment_id":"pay_1","signature":"sig"}`

	t.Run("owner", func(t *testing.T) {
		h := newHarness(t)
		id := uuid.New()
		h.payments.On("GetOrder", mock.Anything, id, "order_1").Return(&model.Order{OrderID: "order_1", AccountID: id}, nil)
		h.payments.On("ConfirmOrder", mock.Anything, "order_1", &model.PaymentProof{PaymentID: "pay_1", Signature: "sig"}).
			Return(&model.ConfirmResult{Success: true, OrderID: "order_1", Status: model.OrderStatusPaid}, nil)

		w := h.do(http.MethodPost, "/api/v1/orders/confirm", body, id)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"success":true`)
	})

	t.Run("someone else's order", func(t *testing.T) {
		h := newHarness(t)
		id := uuid.New()
		h.payments.On("GetOrder", mock.Anything, id, "order_1").Return(nil, payment.ErrForbidden)

		w := h.do(http.MethodPost, "/api/v1/orders/confirm", body, id)

		assert.Equal(t, http.StatusForbidden, w.Code)
		h.payments.AssertNotCalled(t, "ConfirmOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad signature", func(t *testing.T) {
		h := newHarness(t)
		id := uuid.New()
		h.payments.On("GetOrder", mock.Anything, id, "order_1").Return(&model.Order{OrderID: "order_1", AccountID: id}, nil)
		h.payments.On("ConfirmOrder", mock.Anything, "order_1", mock.Anything).Return(nil, payment.ErrInvalidPaymentProof)

		w := h.do(http.MethodPost, "/api/v1/orders/confirm", body, id)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_PAYMENT_PROOF", decodeError(t, w).Code)
	})

	t.Run("provider settles by notification", func(t *testing.T) {
		h := newHarness(t)
		id := uuid.New()
		h.payments.On("GetOrder", mock.Anything, id, "order_1").Return(&model.Order{OrderID: "order_1", AccountID: id}, nil)
		h.payments.On("ConfirmOrder", mock.Anything, "order_1", mock.Anything).Return(nil, payment.ErrConfirmViaNotification)

		w := h.do(http.MethodPost, "/api/v1/orders/confirm", body, id)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "CONFIRM_VIA_NOTIFICATION", decodeError(t, w).Code)
	})
}

// ===== Webhooks =====

func TestWebhook(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		h := newHarness(t)
		h.payments.On("HandleNotification", mock.Anything, "razorpay", []byte(`{"event":"payment.captured"}`), mock.Anything).
			Return(&model.ConfirmResult{Success: true, OrderID: "order_1"}, nil)

		w := h.do(http.MethodPost, "/api/v1/webhooks/razorpay", `{"event":"payment.captured"}`, uuid.Nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"order_id":"order_1"`)
	})

	t.Run("ignored event is acknowledged", func(t *testing.T) {
		h := newHarness(t)
		h.payments.On("HandleNotification", mock.Anything, "stripe", mock.Anything, mock.Anything).
			Return(nil, outbound.ErrNotificationIgnored)

		w := h.do(http.MethodPost, "/api/v1/webhooks/stripe", `{"type":"charge.refunded"}`, uuid.Nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"ignored":true`)
	})

	t.Run("alipay expects plain success", func(t *testing.T) {
		h := newHarness(t)
		h.payments.On("HandleNotification", mock.Anything, "alipay", mock.Anything, mock.Anything).
			Return(&model.ConfirmResult{Success: true}, nil)

		w := h.do(http.MethodPost, "/api/v1/webhooks/alipay", `trade_status=TRADE_SUCCESS`, uuid.Nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "success", w.Body.String())
	})

	t.Run("unknown provider", func(t *testing.T) {
		h := newHarness(t)
		h.payments.On("HandleNotification", mock.Anything, "paypal", mock.Anything, mock.Anything).
			Return(nil, payment.ErrProviderNotAvailable)

		w := h.do(http.MethodPost, "/api/v1/webhooks/paypal", `{}`, uuid.Nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// ===== Admin =====

func TestAdmin(t *testing.T) {
	t.Run("non-admin is rejected", func(t *testing.T) {
		h := newHarness(t)

		w := h.do(http.MethodGet, "/api/v1/admin/overview", "", uuid.New())

		assert.Equal(t, http.StatusForbidden, w.Code)
		h.usage.AssertNotCalled(t, "AdminOverview", mock.Anything)
	})

	t.Run("grant defaults months", func(t *testing.T) {
		h := newHarness(t)
		target := uuid.New()
		h.usage.On("AdminGrantPremium", mock.Anything, target, 0).Return(&model.EntitlementStatus{AccountID: target, IsUnlimited: true}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/accounts/"+target.String()+"/premium", nil)
		req.Header.Set(testAccountHeader, uuid.New().String())
		req.Header.Set("X-Test-Email", "ops@aria.chat")
		w := httptest.NewRecorder()
		h.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"is_unlimited":true`)
	})

	t.Run("bad id", func(t *testing.T) {
		h := newHarness(t)

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/accounts/not-a-uuid/premium", nil)
		req.Header.Set(testAccountHeader, uuid.New().String())
		req.Header.Set("X-Test-Email", "ops@aria.chat")
		w := httptest.NewRecorder()
		h.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestToAppError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{usage.ErrAccountNotFound, http.StatusNotFound},
		{payment.ErrOrderNotFound, http.StatusNotFound},
		{fmt.Errorf("update: %w", outbound.ErrConcurrentModification), http.StatusConflict},
		{payment.ErrInvalidTransition, http.StatusConflict},
		{payment.ErrConfirmViaNotification, http.StatusConflict},
		{chat.ErrEmptyMessage, http.StatusBadRequest},
		{usage.ErrQuotaExceeded, http.StatusPaymentRequired},
		{payment.ErrProviderFailure, http.StatusBadGateway},
		{fmt.Errorf("token: %w", apperrors.ErrUnauthorized), http.StatusUnauthorized},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, toAppError(tt.err).StatusCode)
		})
	}
}

//go:build unit

package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"storefront-checkout/internal/handler/api"
	resdto "storefront-checkout/internal/handler/dto/response"
	"storefront-checkout/internal/pkg/errs"
	"storefront-checkout/internal/usecase/commands"
	"storefront-checkout/internal/usecase/queries"
	"storefront-checkout/tests/common/httptest"
	commandsmock "storefront-checkout/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CheckoutHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockCheckoutCommands
	handler      *api.CheckoutHandler
}

func (s *CheckoutHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockCheckoutCommands(s.mockCtrl)
	s.handler = api.NewCheckoutHandler(s.mockCommands)
	s.router.POST("/api/checkout", s.handler.Checkout)
}

func (s *CheckoutHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestCheckoutHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CheckoutHandlerTestSuite))
}

func (s *CheckoutHandlerTestSuite) checkoutBody() map[string]any {
	return map[string]any{
		"items": []map[string]any{
			{
				"product_id":       uuid.New().String(),
				"sku":              "SKU-001",
				"name":             "Test Product",
				"unit_price_cents": 1000,
				"quantity":         2,
			},
		},
	}
}

func (s *CheckoutHandlerTestSuite) TestCheckout_Success() {
	view := &queries.OrderView{
		ID:            uuid.New(),
		Status:        "PENDING",
		SubtotalCents: 2000,
		DiscountCents: 0,
		TotalCents:    2000,
		Currency:      "INR",
		Items: []queries.OrderItemView{
			{ProductID: uuid.New(), SKU: "SKU-001", Name: "Test Product", UnitPriceCents: 1000, Quantity: 2},
		},
	}
	s.mockCommands.EXPECT().
		Checkout(gomock.Any(), gomock.Any()).
		Return(view, nil)

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/checkout", s.checkoutBody(), "")

	var resp resdto.OrderResponse
	httptest.AssertSuccessResponse(s.T(), w, http.StatusCreated, &resp)
	s.Equal(view.ID, resp.ID)
	s.Equal("PENDING", resp.Status)
	s.Equal(int64(2000), resp.TotalCents)
	s.Len(resp.Items, 1)
}

func (s *CheckoutHandlerTestSuite) TestCheckout_InvalidBody() {
	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/checkout", map[string]any{"items": []any{}}, "")
	httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid request format")
}

func (s *CheckoutHandlerTestSuite) TestCheckout_InsufficientStock() {
	productID := uuid.New()
	s.mockCommands.EXPECT().
		Checkout(gomock.Any(), gomock.Any()).
		Return(nil, errs.Mark(&commands.StockShortageError{ProductID: productID}, commands.ErrInsufficientStock))

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/checkout", s.checkoutBody(), "")
	httptest.AssertErrorResponse(s.T(), w, http.StatusConflict, "Insufficient stock")

	var resp struct {
		Detail struct {
			ProductID uuid.UUID `json:"product_id"`
		} `json:"detail"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(productID, resp.Detail.ProductID)
}

func (s *CheckoutHandlerTestSuite) TestCheckout_ProductNotFound() {
	s.mockCommands.EXPECT().
		Checkout(gomock.Any(), gomock.Any()).
		Return(nil, commands.ErrProductNotFound)

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/checkout", s.checkoutBody(), "")
	httptest.AssertErrorResponse(s.T(), w, http.StatusNotFound, "Product not found")
}

func (s *CheckoutHandlerTestSuite) TestCheckout_InvalidCoupon() {
	s.mockCommands.EXPECT().
		Checkout(gomock.Any(), gomock.Any()).
		Return(nil, commands.ErrInvalidCoupon)

	body := s.checkoutBody()
	body["coupon_code"] = "EXPIRED"

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/checkout", body, "")
	httptest.AssertErrorResponse(s.T(), w, http.StatusBadRequest, "Invalid or expired coupon")
}

func (s *CheckoutHandlerTestSuite) TestCheckout_TrimsCouponCode() {
	s.mockCommands.EXPECT().
		Checkout(gomock.Any(), gomock.Cond(func(params commands.CheckoutParams) bool {
			return params.CouponCode != nil && *params.CouponCode == "SAVE10"
		})).
		Return(&queries.OrderView{Status: "PENDING"}, nil)

	body := s.checkoutBody()
	body["coupon_code"] = "  SAVE10  "

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/checkout", body, "")
	s.Equal(http.StatusCreated, w.Code)
}

func (s *CheckoutHandlerTestSuite) TestCheckout_InternalError() {
	s.mockCommands.EXPECT().
		Checkout(gomock.Any(), gomock.Any()).
		Return(nil, errs.New("boom"))

	w := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/checkout", s.checkoutBody(), "")
	httptest.AssertErrorResponse(s.T(), w, http.StatusInternalServerError, "Internal server error")
}

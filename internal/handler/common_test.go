package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carvohq/carvo-backend/internal/config"
)

func testContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestGetUserID(t *testing.T) {
	cases := []struct {
		name  string
		value interface{}
		want  uint64
		ok    bool
	}{
		{"float64 from jwt claims", float64(42), 42, true},
		{"uint64", uint64(7), 7, true},
		{"int", 3, 3, true},
		{"numeric string", "99", 99, true},
		{"garbage string", "abc", 0, false},
		{"missing", nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := testContext(t, http.MethodGet, "/", "")
			if tc.value != nil {
				c.Set("user_id", tc.value)
			}
			got, err := getUserID(c)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPathID(t *testing.T) {
	c, _ := testContext(t, http.MethodGet, "/", "")
	c.SetParamNames("id")
	c.SetParamValues("15")
	id, err := pathID(c, "id")
	require.NoError(t, err)
	assert.Equal(t, uint64(15), id)

	for _, bad := range []string{"0", "-3", "abc", ""} {
		c, _ := testContext(t, http.MethodGet, "/", "")
		c.SetParamNames("id")
		c.SetParamValues(bad)
		_, err := pathID(c, "id")
		assert.Error(t, err, "value %q", bad)
	}
}

func TestUPIConfig(t *testing.T) {
	h := &PaymentHandler{Cfg: config.Config{UPIVPA: "carvo@upi", UPIPayeeName: "Carvo"}}
	c, rec := testContext(t, http.MethodGet, "/v1/payments/upi-config", "")
	require.NoError(t, h.UPIConfig(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "carvo@upi", body["vpa"])
	assert.Equal(t, "Carvo", body["payee_name"])
	assert.Equal(t, "INR", body["currency"])
}

func TestCheckoutValidation(t *testing.T) {
	h := &OrderHandler{}

	t.Run("unauthenticated", func(t *testing.T) {
		c, rec := testContext(t, http.MethodPost, "/v1/orders", `{}`)
		require.NoError(t, h.Checkout(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty items", func(t *testing.T) {
		c, rec := testContext(t, http.MethodPost, "/v1/orders", `{"items":[],"shipping_address":"x"}`)
		c.Set("user_id", float64(1))
		require.NoError(t, h.Checkout(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("zero quantity", func(t *testing.T) {
		c, rec := testContext(t, http.MethodPost, "/v1/orders",
			`{"items":[{"part_id":1,"quantity":0}],"shipping_address":"x"}`)
		c.Set("user_id", float64(1))
		require.NoError(t, h.Checkout(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate part", func(t *testing.T) {
		c, rec := testContext(t, http.MethodPost, "/v1/orders",
			`{"items":[{"part_id":1,"quantity":1},{"part_id":1,"quantity":2}],"shipping_address":"x"}`)
		c.Set("user_id", float64(1))
		require.NoError(t, h.Checkout(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing shipping address", func(t *testing.T) {
		c, rec := testContext(t, http.MethodPost, "/v1/orders",
			`{"items":[{"part_id":1,"quantity":1}]}`)
		c.Set("user_id", float64(1))
		require.NoError(t, h.Checkout(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeliveryVerifyValidation(t *testing.T) {
	h := &DeliveryHandler{}

	c, rec := testContext(t, http.MethodPost, "/v1/delivery/orders/9/verify", `{"otp":""}`)
	c.Set("user_id", float64(5))
	c.SetParamNames("id")
	c.SetParamValues("9")
	require.NoError(t, h.Verify(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentCreateValidation(t *testing.T) {
	h := &PaymentHandler{}

	t.Run("bad method", func(t *testing.T) {
		c, rec := testContext(t, http.MethodPost, "/v1/payments/create", `{"order_id":1,"method":"CARD"}`)
		c.Set("user_id", float64(1))
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("both targets", func(t *testing.T) {
		c, rec := testContext(t, http.MethodPost, "/v1/payments/create", `{"order_id":1,"booking_id":2,"method":"UPI"}`)
		c.Set("user_id", float64(1))
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("neither target", func(t *testing.T) {
		c, rec := testContext(t, http.MethodPost, "/v1/payments/create", `{"method":"COD"}`)
		c.Set("user_id", float64(1))
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

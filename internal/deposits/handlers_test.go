package deposits

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kahinlabs/kahinadmin/internal/audit"
	"github.com/kahinlabs/kahinadmin/internal/listing"
	"github.com/kahinlabs/kahinadmin/internal/querycache"
	"github.com/kahinlabs/kahinadmin/internal/upstream"
)

type fakeAPI struct {
	listCalls   int
	verifyCalls int
	rejectCalls int
	verifyNotes string
	created     upstream.CreateDepositRequest
	err         error
}

func (f *fakeAPI) ListDeposits(ctx context.Context, fl listing.Filters) (upstream.DepositPage, error) {
	f.listCalls++
	return upstream.DepositPage{
		Deposits:   []upstream.Deposit{{ID: "d-1", Amount: 1000, Status: "pending"}},
		TotalPages: 1,
	}, f.err
}

func (f *fakeAPI) CreateDeposit(ctx context.Context, req upstream.CreateDepositRequest) (upstream.Deposit, error) {
	f.created = req
	if f.err != nil {
		return upstream.Deposit{}, f.err
	}
	return upstream.Deposit{ID: "d-new", UserID: req.UserID, Amount: req.Amount}, nil
}

func (f *fakeAPI) VerifyDeposit(ctx context.Context, id, notes string) error {
	f.verifyCalls++
	f.verifyNotes = notes
	return f.err
}

func (f *fakeAPI) RejectDeposit(ctx context.Context, id, notes string) error {
	f.rejectCalls++
	return f.err
}

func setup(t *testing.T) (*fakeAPI, *querycache.Cache, *audit.Trail, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := &fakeAPI{}
	cache := querycache.New(time.Minute)
	trail := audit.NewTrail(audit.NewMemoryStore(), nil)
	h := NewHandler(api, cache, trail, listing.NewState())

	router := gin.New()
	router.GET("/console/deposits", h.List)
	router.POST("/console/deposits", h.Create)
	router.POST("/console/deposits/:id/verify", h.Verify)
	router.POST("/console/deposits/:id/reject", h.Reject)
	return api, cache, trail, router
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestCreateRequiresUserAndAmount(t *testing.T) {
	api, _, _, router := setup(t)

	for _, body := range []string{
		`{"amount":100}`,
		`{"userId":"u-1"}`,
		`{"userId":"u-1","amount":0}`,
		`{"userId":"u-1","amount":-5}`,
	} {
		w := post(router, "/console/deposits", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), "User ID and Amount are required")
	}
	assert.Empty(t, api.created.UserID)
}

func TestCreateManualDeposit(t *testing.T) {
	api, _, trail, router := setup(t)

	w := post(router, "/console/deposits", `{"userId":"u-1","amount":1500,"paymentMethod":"bank_transfer","referenceNumber":"TR-992"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "u-1", api.created.UserID)
	assert.Equal(t, "TR-992", api.created.ReferenceNumber)

	entries, err := trail.List(context.Background(), "deposit.create", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "d-new", entries[0].TargetID)
}

func TestVerifyRequiresNotes(t *testing.T) {
	api, _, _, router := setup(t)

	for _, body := range []string{`{}`, `{"notes":"  "}`} {
		w := post(router, "/console/deposits/d-1/verify", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Please provide review notes")
	}
	assert.Zero(t, api.verifyCalls)
}

func TestVerifyInvalidatesDepositCaches(t *testing.T) {
	api, cache, trail, router := setup(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/console/deposits?status=pending", nil))
	require.Equal(t, 1, cache.Len())

	resp := post(router, "/console/deposits/d-1/verify", `{"notes":"dekont eşleşti"}`)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 1, api.verifyCalls)
	assert.Equal(t, "dekont eşleşti", api.verifyNotes)
	assert.Equal(t, 0, cache.Len())

	entries, err := trail.List(context.Background(), "deposit.verify", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRejectDeposit(t *testing.T) {
	api, _, _, router := setup(t)

	w := post(router, "/console/deposits/d-1/reject", `{"notes":"dekont bulunamadı"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, api.rejectCalls)
}

func TestVerifyBackendConflictPassesThrough(t *testing.T) {
	api, _, _, router := setup(t)
	api.err = &upstream.APIError{Status: 409, Code: "already_verified", Message: "Yatırma zaten onaylanmış"}

	w := post(router, "/console/deposits/d-1/verify", `{"notes":"tekrar"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Yatırma zaten onaylanmış")
}

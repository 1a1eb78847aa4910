package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"stark_bridge/internal/models"
	credentials "stark_bridge/internal/modules/credentials/service"
	orders "stark_bridge/internal/modules/orders/service"
	"stark_bridge/pkg/logger"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	logger.InitNop()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const wallet = "0xAbCdEf0123456789aBcDeF0123456789AbCdEf01"

type fakeOnboarding struct {
	completeErr error
}

func (f *fakeOnboarding) Start(_ context.Context, req *models.OnboardingStartRequest) (*models.OnboardingStartResponse, error) {
	return &models.OnboardingStartResponse{RegistrationTime: "2024-07-30T16:01:02Z"}, nil
}

func (f *fakeOnboarding) Complete(_ context.Context, req *models.OnboardingCompleteRequest) (*models.OnboardingCompleteResponse, error) {
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return &models.OnboardingCompleteResponse{WalletAddress: req.WalletAddress}, nil
}

func (f *fakeOnboarding) ReferralCode() string { return "REF42" }

type fakeAPIKeys struct {
	issueErr error
}

func (f *fakeAPIKeys) Challenge(req *models.APIKeyChallengeRequest) (*models.APIKeyChallengeResponse, error) {
	return &models.APIKeyChallengeResponse{AccountsMessage: "/api/v1/user/accounts@t"}, nil
}

func (f *fakeAPIKeys) Issue(_ context.Context, req *models.APIKeyIssueRequest) (*models.APIKeyIssueResponse, error) {
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	return &models.APIKeyIssueResponse{WalletAddress: req.WalletAddress, HasAPIKey: true}, nil
}

type fakeOrders struct {
	err       error
	lastPath  string
	lastQuery url.Values
	lastBuild *orders.BuildRequest
}

func (f *fakeOrders) Build(_ context.Context, req *orders.BuildRequest) (*models.SignedOrder, error) {
	f.lastBuild = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.SignedOrder{ID: "123", Market: req.Intent.Market}, nil
}

func (f *fakeOrders) CreateAndPlace(_ context.Context, req *orders.BuildRequest) ([]byte, *models.SignedOrder, error) {
	f.lastBuild = req
	if f.err != nil {
		return nil, nil, f.err
	}
	return []byte(`{"status":"OK","data":{"id":1}}`), &models.SignedOrder{}, nil
}

func (f *fakeOrders) Place(_ context.Context, _ string, _ int64, _ any) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte(`{"status":"OK"}`), nil
}

func (f *fakeOrders) Private(_ context.Context, _ string, _ int64, path string, q url.Values) ([]byte, error) {
	f.lastPath, f.lastQuery = path, q
	if f.err != nil {
		return nil, f.err
	}
	return []byte(`{"status":"OK","data":[]}`), nil
}

type fakeSessions struct{}

func (fakeSessions) Start(req *models.SessionStartRequest) (*models.SessionStartResponse, error) {
	return &models.SessionStartResponse{Nonce: "n"}, nil
}

func (fakeSessions) Verify(req *models.SessionVerifyRequest) (*models.SessionVerifyResponse, error) {
	return nil, models.ErrSessionNonceInvalid
}

type env struct {
	router     *gin.Engine
	onboarding *fakeOnboarding
	apiKeys    *fakeAPIKeys
	orders     *fakeOrders
	store      *credentials.Memory
}

func newEnv() *env {
	e := &env{
		onboarding: &fakeOnboarding{},
		apiKeys:    &fakeAPIKeys{},
		orders:     &fakeOrders{},
		store:      credentials.NewMemory(),
	}
	e.router = NewRouter(NewHandler(e.onboarding, e.apiKeys, e.orders, fakeSessions{}, e.store), false)
	return e
}

func (e *env) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestReferralCode(t *testing.T) {
	w := newEnv().do(http.MethodGet, "/onboarding/referral-code", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "REF42") {
		t.Fatalf("%d %s", w.Code, w.Body)
	}
}

func TestBindingErrorIs400(t *testing.T) {
	w := newEnv().do(http.MethodPost, "/onboarding/complete", `{"account_index":0}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestIssueAPIKeyErrors(t *testing.T) {
	body := `{"wallet_address":"` + wallet + `","account_index":5,
		"accounts":{"signature":"0x1","time":"t"},"api_key":{"signature":"0x2","time":"t"}}`
	upstream := &models.UpstreamError{Op: "list_accounts", Status: 401, Body: "nope"}

	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: index 5", models.ErrAccountNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: %w", models.ErrAccountsFetchFailed, upstream), http.StatusBadGateway},
		{fmt.Errorf("%w: boom", models.ErrApiKeyIssuanceFailed), http.StatusBadGateway},
		{models.ErrApiKeyMissing, http.StatusBadGateway},
	}
	for _, c := range cases {
		e := newEnv()
		e.apiKeys.issueErr = c.err
		if w := e.do(http.MethodPost, "/accounts/api-key", body); w.Code != c.status {
			t.Fatalf("%v: expected %d, got %d %s", c.err, c.status, w.Code, w.Body)
		}
	}
}

func TestOnboardingRejectedIs400(t *testing.T) {
	e := newEnv()
	e.onboarding.completeErr = fmt.Errorf("%w: %w: %w", models.ErrOnboardingFailed, models.ErrOnboardingRejected,
		&models.UpstreamError{Op: "onboard", Status: 409, Body: `{"status":"ERROR"}`})

	body := `{"wallet_address":"` + wallet + `","l1_signature":"0x1","registration_signature":"0x2",
		"registration_time":"t","registration_host":"h"}`
	w := e.do(http.MethodPost, "/onboarding/complete", body)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "detail") {
		t.Fatalf("%d %s", w.Code, w.Body)
	}
}

func TestCreateAndPlaceUpstreamPassThrough(t *testing.T) {
	e := newEnv()
	e.orders.err = &models.UpstreamError{Op: "place_order", Status: 422, Body: `{"error":{"code":1140}}`}

	body := `{"wallet_address":"` + wallet + `","account_index":0,"use_mainnet":true,
		"market":"BTC-USD","side":"BUY","qty":"0.001","price":"43445"}`
	w := e.do(http.MethodPost, "/orders/create-and-place", body)
	if w.Code != 422 || w.Body.String() != `{"error":{"code":1140}}` {
		t.Fatalf("%d %s", w.Code, w.Body)
	}
	if !e.orders.lastBuild.UseMainnet || e.orders.lastBuild.Intent.Qty.String() != "0.001" {
		t.Fatalf("request not decoded: %+v", e.orders.lastBuild)
	}
}

func TestBuildOrderErrors(t *testing.T) {
	body := `{"wallet_address":"` + wallet + `","market":"BTC-USD","side":"SELL","qty":1,"price":"100",
		"stop_loss":{"trigger_price":"90"}}`
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: no l2Vault", models.ErrVaultUnresolved), http.StatusConflict},
		{models.ErrUnknownMarket, http.StatusNotFound},
		{models.ErrCredentialNotFound, http.StatusNotFound},
		{models.ErrOrderTooSmall, http.StatusBadRequest},
		{fmt.Errorf("%w: %w", models.ErrVaultUnresolved, models.ErrAPIKeyNotFound), http.StatusConflict},
	}
	for _, c := range cases {
		e := newEnv()
		e.orders.err = c.err
		if w := e.do(http.MethodPost, "/orders/build", body); w.Code != c.status {
			t.Fatalf("%v: expected %d, got %d", c.err, c.status, w.Code)
		}
	}

	e := newEnv()
	if w := e.do(http.MethodPost, "/orders/build", body); w.Code != http.StatusOK {
		t.Fatalf("build: %d %s", w.Code, w.Body)
	}
	if sl := e.orders.lastBuild.Intent.StopLoss; sl == nil || sl.TriggerPrice.String() != "90" {
		t.Fatalf("stop loss not decoded: %+v", sl)
	}
}

func TestPlaceOrderMissingAPIKeyIs401(t *testing.T) {
	e := newEnv()
	e.orders.err = models.ErrAPIKeyNotFound

	w := e.do(http.MethodPost, "/orders", `{"wallet_address":"`+wallet+`","account_index":0,"order":{"id":"1"}}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestUpsertAccountReturnsFlagsOnly(t *testing.T) {
	e := newEnv()
	w := e.do(http.MethodPost, "/accounts", `{"wallet_address":"`+wallet+`","account_index":1,"api_key":"secret","vault":0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("%d %s", w.Code, w.Body)
	}
	if strings.Contains(w.Body.String(), "secret") {
		t.Fatalf("secret leaked: %s", w.Body)
	}

	var resp models.AccountResponse
	if err := sonic.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.HasAPIKey || !resp.HasVault || resp.HasStarkKey || resp.WalletAddress != strings.ToLower(wallet) {
		t.Fatalf("flags %+v", resp)
	}
}

func TestPrivateProxy(t *testing.T) {
	e := newEnv()
	w := e.do(http.MethodGet, "/orders?wallet_address="+wallet+"&account_index=0&status=FILLED&junk=1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("%d %s", w.Code, w.Body)
	}
	if e.orders.lastPath != orders.PathOrders || e.orders.lastQuery.Get("status") != "FILLED" || e.orders.lastQuery.Has("junk") {
		t.Fatalf("path=%s query=%v", e.orders.lastPath, e.orders.lastQuery)
	}

	if w := e.do(http.MethodGet, "/balances?wallet_address="+wallet, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("missing account_index: %d", w.Code)
	}
}

func TestSessionVerifyInvalidNonceIs401(t *testing.T) {
	w := newEnv().do(http.MethodPost, "/session/verify", `{"wallet_address":"`+wallet+`","nonce":"x","signature":"0x1"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

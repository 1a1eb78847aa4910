package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"stark_bridge/internal/models"
	orders "stark_bridge/internal/modules/orders/service"

	"github.com/gin-gonic/gin"
)

type Onboarding interface {
	Start(ctx context.Context, req *models.OnboardingStartRequest) (*models.OnboardingStartResponse, error)
	Complete(ctx context.Context, req *models.OnboardingCompleteRequest) (*models.OnboardingCompleteResponse, error)
	ReferralCode() string
}

type APIKeys interface {
	Challenge(req *models.APIKeyChallengeRequest) (*models.APIKeyChallengeResponse, error)
	Issue(ctx context.Context, req *models.APIKeyIssueRequest) (*models.APIKeyIssueResponse, error)
}

type Orders interface {
	Build(ctx context.Context, req *orders.BuildRequest) (*models.SignedOrder, error)
	CreateAndPlace(ctx context.Context, req *orders.BuildRequest) ([]byte, *models.SignedOrder, error)
	Place(ctx context.Context, wallet string, index int64, order any) ([]byte, error)
	Private(ctx context.Context, wallet string, index int64, path string, query url.Values) ([]byte, error)
}

type Sessions interface {
	Start(req *models.SessionStartRequest) (*models.SessionStartResponse, error)
	Verify(req *models.SessionVerifyRequest) (*models.SessionVerifyResponse, error)
}

type Credentials interface {
	Upsert(ctx context.Context, wallet string, index int64, patch models.CredentialPatch) (*models.AccountCredential, error)
}

type Handler struct {
	onboarding  Onboarding
	apiKeys     APIKeys
	orders      Orders
	sessions    Sessions
	credentials Credentials
}

func NewHandler(onboarding Onboarding, apiKeys APIKeys, orders Orders, sessions Sessions, credentials Credentials) *Handler {
	return &Handler{
		onboarding:  onboarding,
		apiKeys:     apiKeys,
		orders:      orders,
		sessions:    sessions,
		credentials: credentials,
	}
}

func (h *Handler) referralCode(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"referral_code": h.onboarding.ReferralCode()})
}

func (h *Handler) onboardingStart(c *gin.Context) {
	var req models.OnboardingStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.onboarding.Start(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) onboardingComplete(c *gin.Context) {
	var req models.OnboardingCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.onboarding.Complete(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) upsertAccount(c *gin.Context) {
	var req models.AccountUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	rec, err := h.credentials.Upsert(c.Request.Context(), req.WalletAddress, req.AccountIndex, req.Patch())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewAccountResponse(rec))
}

func (h *Handler) apiKeyChallenge(c *gin.Context) {
	var req models.APIKeyChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.apiKeys.Challenge(&req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) issueAPIKey(c *gin.Context) {
	var req models.APIKeyIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.apiKeys.Issue(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) sessionStart(c *gin.Context) {
	var req models.SessionStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.sessions.Start(&req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) sessionVerify(c *gin.Context) {
	var req models.SessionVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	resp, err := h.sessions.Verify(&req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) placeOrder(c *gin.Context) {
	var req models.OrderPlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	body, err := h.orders.Place(c.Request.Context(), req.WalletAddress, req.AccountIndex, req.Order)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

func buildRequest(req *models.OrderBuildRequest) *orders.BuildRequest {
	return &orders.BuildRequest{
		WalletAddress: req.WalletAddress,
		AccountIndex:  req.AccountIndex,
		UseMainnet:    req.UseMainnet,
		Intent:        req.OrderIntent,
	}
}

func (h *Handler) buildOrder(c *gin.Context) {
	var req models.OrderBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := h.orders.Build(c.Request.Context(), buildRequest(&req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) createAndPlaceOrder(c *gin.Context) {
	var req models.OrderBuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	body, _, err := h.orders.CreateAndPlace(c.Request.Context(), buildRequest(&req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

// private: GET прокси: wallet_address и account_index в query, остальное уходит бирже.
func (h *Handler) private(path string, passthrough ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet := c.Query("wallet_address")
		index, err := strconv.ParseInt(c.Query("account_index"), 10, 64)
		if wallet == "" || err != nil {
			badRequest(c, models.ErrInvalidAccount)
			return
		}

		query := url.Values{}
		for _, k := range passthrough {
			if v := c.Query(k); v != "" {
				query.Set(k, v)
			}
		}

		body, err := h.orders.Private(c.Request.Context(), wallet, index, path, query)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json", body)
	}
}

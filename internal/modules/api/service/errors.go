package service

import (
	"errors"
	"net/http"

	"stark_bridge/internal/models"
	"stark_bridge/pkg/ethsig"
	"stark_bridge/pkg/logger"
	"stark_bridge/pkg/stark"

	"github.com/gin-gonic/gin"
)

// порядок важен: ErrOnboardingRejected завёрнут вместе с ErrOnboardingFailed,
// ошибки фаз выдачи ключа несут UpstreamError внутри.
var errorStatuses = []struct {
	err    error
	status int
}{
	{models.ErrInvalidSignatureFormat, http.StatusBadRequest},
	{stark.ErrInvalidSignatureFormat, http.StatusBadRequest},
	{ethsig.ErrBadSignature, http.StatusBadRequest},
	{models.ErrInvalidAccount, http.StatusBadRequest},
	{models.ErrOnboardingFailed, http.StatusBadRequest},
	{models.ErrAccountsFetchFailed, http.StatusBadGateway},
	{models.ErrAccountNotFound, http.StatusNotFound},
	{models.ErrApiKeyIssuanceFailed, http.StatusBadGateway},
	{models.ErrApiKeyMissing, http.StatusBadGateway},
	{models.ErrVaultUnresolved, http.StatusConflict},
	{models.ErrUnknownMarket, http.StatusNotFound},
	{models.ErrOrderTooSmall, http.StatusBadRequest},
	{models.ErrInvalidOrder, http.StatusBadRequest},
	{models.ErrCredentialNotFound, http.StatusNotFound},
	{models.ErrAPIKeyNotFound, http.StatusUnauthorized},
	{models.ErrStarkKeysMissing, http.StatusBadRequest},
	{models.ErrSessionNonceInvalid, http.StatusUnauthorized},
}

func statusFor(err error) int {
	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			return es.status
		}
	}
	return http.StatusInternalServerError
}

// writeError: известные ошибки, свой статус и detail, голый отказ биржи, её статус и тело как есть.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		if ue, ok := models.AsUpstream(err); ok {
			c.Data(ue.Status, "application/json", []byte(ue.Body))
			return
		}
		logger.Error("api %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"detail": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
}

package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"stark_bridge/internal/models"
	"stark_bridge/pkg/ethsig"
	"stark_bridge/pkg/logger"

	"github.com/google/uuid"
)

const DefaultTTL = 5 * time.Minute

type entry struct {
	nonce     string
	expiresAt time.Time
}

// Nonces: одноразовые nonce для логина, по одному на кошелёк. Новый старт вытесняет старый.
type Nonces struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewNonces(ttl time.Duration, now func() time.Time) *Nonces {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Nonces{entries: make(map[string]entry), ttl: ttl, now: now}
}

// LoginMessage: текст, который кошелёк подписывает через personal_sign.
func LoginMessage(nonce, wallet string) string {
	return fmt.Sprintf("Extended login\nNonce: %s\nWallet: %s", nonce, models.NormalizeWallet(wallet))
}

func (n *Nonces) Start(req *models.SessionStartRequest) (*models.SessionStartResponse, error) {
	wallet := models.NormalizeWallet(req.WalletAddress)
	if wallet == "" {
		return nil, fmt.Errorf("%w: empty wallet", models.ErrSessionNonceInvalid)
	}
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")
	now := n.now()

	n.mu.Lock()
	n.sweep(now)
	n.entries[wallet] = entry{nonce: nonce, expiresAt: now.Add(n.ttl)}
	n.mu.Unlock()

	return &models.SessionStartResponse{Nonce: nonce, Message: LoginMessage(nonce, wallet)}, nil
}

// Verify гасит nonce (даже при неверной подписи) и проверяет, что подписал сам кошелёк.
func (n *Nonces) Verify(req *models.SessionVerifyRequest) (*models.SessionVerifyResponse, error) {
	wallet := models.NormalizeWallet(req.WalletAddress)
	if !n.consume(wallet, req.Nonce) {
		return nil, models.ErrSessionNonceInvalid
	}

	signer, err := ethsig.RecoverPersonal(LoginMessage(req.Nonce, wallet), req.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidSignatureFormat, err)
	}
	if !ethsig.SameAddress(signer, wallet) {
		logger.Warn("[SESSION] wallet=%s signed by %s", wallet, signer.Hex())
		return nil, fmt.Errorf("%w: signer mismatch", models.ErrInvalidSignatureFormat)
	}
	return &models.SessionVerifyResponse{WalletAddress: wallet, Verified: true}, nil
}

func (n *Nonces) consume(wallet, nonce string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	e, ok := n.entries[wallet]
	if !ok {
		return false
	}
	delete(n.entries, wallet)
	return e.nonce == nonce && !n.now().After(e.expiresAt)
}

// sweep вызывается под мьютексом.
func (n *Nonces) sweep(now time.Time) {
	for k, e := range n.entries {
		if now.After(e.expiresAt) {
			delete(n.entries, k)
		}
	}
}

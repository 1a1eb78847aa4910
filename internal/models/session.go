package models

type SessionStartRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

type SessionStartResponse struct {
	Nonce   string `json:"nonce"`
	Message string `json:"message"`
}

// SessionVerifyRequest: подпись personal_sign над Message из старта.
type SessionVerifyRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
	Nonce         string `json:"nonce" binding:"required"`
	Signature     string `json:"signature" binding:"required"`
}

type SessionVerifyResponse struct {
	WalletAddress string `json:"wallet_address"`
	Verified      bool   `json:"verified"`
}

package models

// TypedField: поле EIP-712 типа.
type TypedField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TypedMessage: EIP-712 структура в том виде, в котором её подписывает кошелёк (eth_signTypedData_v4).
type TypedMessage struct {
	Types       map[string][]TypedField `json:"types"`
	Domain      map[string]any          `json:"domain"`
	PrimaryType string                  `json:"primaryType"`
	Message     map[string]any          `json:"message"`
}

type OnboardingStartRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
	AccountIndex  int64  `json:"account_index"`
}

type OnboardingStartResponse struct {
	TypedData             TypedMessage `json:"typed_data"`
	RegistrationTypedData TypedMessage `json:"registration_typed_data"`
	// CreationIssuedAt: когда выпущено AccountCreation, в само сообщение не входит
	CreationIssuedAt string `json:"creation_issued_at"`
	RegistrationTime string `json:"registration_time"`
	RegistrationHost string `json:"registration_host"`
}

type OnboardingCompleteRequest struct {
	WalletAddress         string `json:"wallet_address" binding:"required"`
	AccountIndex          int64  `json:"account_index"`
	L1Signature           string `json:"l1_signature" binding:"required"`
	RegistrationSignature string `json:"registration_signature" binding:"required"`
	RegistrationTime      string `json:"registration_time" binding:"required"`
	RegistrationHost      string `json:"registration_host" binding:"required"`
	ReferralCode          string `json:"referral_code"`
}

type OnboardingCompleteResponse struct {
	StarkPrivateKey string `json:"stark_private_key"`
	StarkPublicKey  string `json:"stark_public_key"`
	AccountIndex    int64  `json:"account_index"`
	WalletAddress   string `json:"wallet_address"`
	Vault           *int64 `json:"vault,omitempty"`
}

// AccountCreationPayload: accountCreation в теле /auth/onboard.
type AccountCreationPayload struct {
	AccountIndex int64  `json:"accountIndex"`
	Wallet       string `json:"wallet"`
	TosAccepted  bool   `json:"tosAccepted"`
	Time         string `json:"time"`
	Action       string `json:"action"`
	Host         string `json:"host"`
}

// OnboardingPayload: тело POST /auth/onboard.
type OnboardingPayload struct {
	L1Signature     string                 `json:"l1Signature"`
	L2Key           string                 `json:"l2Key"`
	L2Signature     StarkSignature         `json:"l2Signature"`
	AccountCreation AccountCreationPayload `json:"accountCreation"`
	ReferralCode    string                 `json:"referralCode"`
}

// ExchangeAccount: элемент списка /user/accounts.
type ExchangeAccount struct {
	ID           FlexInt `json:"id"`
	AccountID    FlexInt `json:"accountId"`
	AccountIdx   FlexInt `json:"accountIndex"`
	AccountIdxSn FlexInt `json:"account_index"`
	Description  string  `json:"description,omitempty"`
	L2Vault      FlexInt `json:"l2Vault"`
}

// Index: индекс субаккаунта, биржа присылает его в разных нотациях.
func (a ExchangeAccount) Index() (int64, bool) {
	if a.AccountIdx.Valid {
		return a.AccountIdx.Value, true
	}
	if a.AccountIdxSn.Valid {
		return a.AccountIdxSn.Value, true
	}
	return 0, false
}

func (a ExchangeAccount) NumericID() (int64, bool) {
	if a.ID.Valid {
		return a.ID.Value, true
	}
	if a.AccountID.Valid {
		return a.AccountID.Value, true
	}
	return 0, false
}

// L1Auth: подпись L1 и время, на котором её сделали ("<path>@<time>").
type L1Auth struct {
	Signature string `json:"signature" binding:"required"`
	Time      string `json:"time" binding:"required"`
}

type APIKeyChallengeRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
	AccountIndex  int64  `json:"account_index"`
}

type APIKeyChallengeResponse struct {
	AccountsMessage string `json:"accounts_message"`
	AccountsTime    string `json:"accounts_time"`
	APIKeyMessage   string `json:"api_key_message"`
	APIKeyTime      string `json:"api_key_time"`
}

type APIKeyIssueRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
	AccountIndex  int64  `json:"account_index"`
	Accounts      L1Auth `json:"accounts"`
	APIKey        L1Auth `json:"api_key"`
	Description   string `json:"description"`
}

type APIKeyIssueResponse struct {
	WalletAddress string `json:"wallet_address"`
	AccountIndex  int64  `json:"account_index"`
	AccountID     int64  `json:"account_id"`
	HasAPIKey     bool   `json:"has_api_key"`
}

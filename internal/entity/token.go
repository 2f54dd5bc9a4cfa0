package entity

const (
	TokenTypeNonFungibleUnique = "NON_FUNGIBLE_UNIQUE"
	TokenTypeFungibleCommon    = "FUNGIBLE_COMMON"
)

type Key struct {
	Type string `json:"_type"`
	Key  string `json:"key"`
}

type TokenInfo struct {
	TokenId           string `json:"token_id"`
	Name              string `json:"name"`
	Symbol            string `json:"symbol"`
	Type              string `json:"type"`
	Memo              string `json:"memo,omitempty"`
	TotalSupply       string `json:"total_supply"`
	MaxSupply         string `json:"max_supply,omitempty"`
	SupplyType        string `json:"supply_type,omitempty"`
	TreasuryAccountId string `json:"treasury_account_id,omitempty"`
	CreatedTimestamp  string `json:"created_timestamp,omitempty"`
	Deleted           bool   `json:"deleted"`

	AdminKey       *Key `json:"admin_key"`
	KycKey         *Key `json:"kyc_key"`
	FreezeKey      *Key `json:"freeze_key"`
	WipeKey        *Key `json:"wipe_key"`
	SupplyKey      *Key `json:"supply_key"`
	PauseKey       *Key `json:"pause_key"`
	FeeScheduleKey *Key `json:"fee_schedule_key"`
}

func (t TokenInfo) IsNft() bool {
	return t.Type == TokenTypeNonFungibleUnique
}

// Token is the summary returned by the token listing endpoint.
type Token struct {
	TokenId  string `json:"token_id"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name,omitempty"`
	Type     string `json:"type"`
	Decimals int    `json:"decimals"`
}

package entity

type Account struct {
	Account          string          `json:"account"`
	Alias            *string         `json:"alias"`
	EvmAddress       string          `json:"evm_address,omitempty"`
	Memo             string          `json:"memo,omitempty"`
	Deleted          bool            `json:"deleted"`
	CreatedTimestamp string          `json:"created_timestamp,omitempty"`
	Balance          *AccountBalance `json:"balance,omitempty"`
}

type AccountBalance struct {
	Balance   int64          `json:"balance"`
	Timestamp string         `json:"timestamp"`
	Tokens    []TokenBalance `json:"tokens"`
}

type TokenBalance struct {
	TokenId string `json:"token_id"`
	Balance int64  `json:"balance"`
}

type Holder struct {
	AccountId     string  `json:"account_id"`
	Count         int     `json:"count"`
	SerialNumbers []int64 `json:"serial_numbers"`
}

type DomainGroup struct {
	Tld     string   `json:"tld"`
	Domains []string `json:"domains"`
}

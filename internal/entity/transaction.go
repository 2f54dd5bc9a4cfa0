package entity

import (
	"fmt"

	"github.com/gosimple/slug"
)

const (
	TransactionTokenCreation  = "TOKENCREATION"
	TransactionTokenAssociate = "TOKENASSOCIATE"
	TransactionTokenMint      = "TOKENMINT"
	TransactionCryptoTransfer = "CRYPTOTRANSFER"
)

type Transaction struct {
	TransactionId       string        `json:"transaction_id"`
	Name                string        `json:"name"`
	Result              string        `json:"result"`
	ConsensusTimestamp  string        `json:"consensus_timestamp"`
	ValidStartTimestamp string        `json:"valid_start_timestamp"`
	EntityId            *string       `json:"entity_id"`
	ChargedTxFee        int64         `json:"charged_tx_fee"`
	NftTransfers        []NftTransfer `json:"nft_transfers"`
}

type NftTransfer struct {
	TokenId           string `json:"token_id"`
	SerialNumber      int64  `json:"serial_number"`
	SenderAccountId   string `json:"sender_account_id"`
	ReceiverAccountId string `json:"receiver_account_id"`
	IsApproval        bool   `json:"is_approval"`
}

func (tx Transaction) Slug() string {
	return slug.Make(fmt.Sprintf("tx-%s", tx.TransactionId))
}

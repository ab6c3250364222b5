package web

import (
	"crypto/ed25519"
	"encoding/base64"

	"github.com/mr-tron/base58"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	"github.com/metaverf/metaverf-ledger/pkg/solana/metaverf"
)

type accountView struct {
	Address  string `json:"address"`
	Owner    string `json:"owner"`
	Lamports uint64 `json:"lamports"`
	Data     string `json:"data"`
}

func newAccountView(acct *bank.Account) *accountView {
	return &accountView{
		Address:  encodeKey(acct.Address),
		Owner:    encodeKey(acct.Owner),
		Lamports: acct.Lamports,
		Data:     base64.StdEncoding.EncodeToString(acct.Data),
	}
}

type protocolView struct {
	Admin                string `json:"admin"`
	Mint                 string `json:"mint"`
	Treasury             string `json:"treasury"`
	AnnualFee            uint64 `json:"annual_fee"`
	SubscriptionDuration uint64 `json:"subscription_duration"`
	CollegeCount         uint16 `json:"college_count"`
}

func newProtocolView(protocol *metaverf.ProtocolAccount) *protocolView {
	return &protocolView{
		Admin:                encodeKey(protocol.Admin),
		Mint:                 encodeKey(protocol.Mint),
		Treasury:             encodeKey(protocol.Treasury),
		AnnualFee:            protocol.AnnualFee,
		SubscriptionDuration: protocol.SubscriptionDuration,
		CollegeCount:         protocol.CollegeCount,
	}
}

type collegeView struct {
	Id              uint16 `json:"id"`
	Authority       string `json:"authority"`
	Active          bool   `json:"active"`
	Expiry          int64  `json:"expiry"`
	LastPayment     int64  `json:"last_payment"`
	CollectionCount uint16 `json:"collection_count"`
}

func newCollegeView(college *metaverf.CollegeAccount) *collegeView {
	return &collegeView{
		Id:              college.Id,
		Authority:       encodeKey(college.Authority),
		Active:          college.Active,
		Expiry:          college.Expiry,
		LastPayment:     college.LastPayment,
		CollectionCount: college.CollectionCount,
	}
}

func encodeKey(key ed25519.PublicKey) string {
	return base58.Encode(key)
}

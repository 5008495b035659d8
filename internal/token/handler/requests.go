package handler

import (
	"context"

	"trellis/internal/token/state"
	"trellis/pkg/domain"
)

// Engine is the slice of the compliance engine the transport consumes.
type Engine interface {
	Init(ctx context.Context, caller domain.Address, name, symbol string, decimals uint8, maxSupply uint64) error
	Mint(ctx context.Context, caller, to domain.Address, amount uint64) error
	Burn(ctx context.Context, caller, from domain.Address, amount uint64) error
	Transfer(ctx context.Context, caller, to domain.Address, amount uint64) error
	BatchMint(ctx context.Context, caller domain.Address, addrs []domain.Address, amounts []uint64) error
	BatchTransfer(ctx context.Context, caller domain.Address, recipients []domain.Address, amounts []uint64) error
	FreezePartialTokens(ctx context.Context, caller, addr domain.Address, amount uint64) error
	UnfreezePartialTokens(ctx context.Context, caller, addr domain.Address, amount uint64) error
	SetAddressFrozen(ctx context.Context, caller, addr domain.Address, frozen bool) error
	Pause(ctx context.Context, caller domain.Address) error
	Unpause(ctx context.Context, caller domain.Address) error
	AddAgent(ctx context.Context, caller, addr domain.Address) error
	RemoveAgent(ctx context.Context, caller, addr domain.Address) error
	TransferOwnership(ctx context.Context, caller, newOwner domain.Address) error

	Initialized() bool
	Metadata() state.Metadata
	TotalSupply() uint64
	MaxTotalSupply() uint64
	BalanceOf(addr domain.Address) uint64
	FrozenTokens(addr domain.Address) uint64
	AvailableBalance(addr domain.Address) uint64
	IsAddressFrozen(addr domain.Address) bool
	Paused() bool
	Owner() domain.Address
}

type initRequest struct {
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	Decimals  uint8  `json:"decimals"`
	MaxSupply uint64 `json:"max_supply"`
}

type amountRequest struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

type transferRequest struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type batchRequest struct {
	Addresses []string `json:"addresses"`
	Amounts   []uint64 `json:"amounts"`
}

type freezeAddressRequest struct {
	Address string `json:"address"`
	Frozen  bool   `json:"frozen"`
}

type addressRequest struct {
	Address string `json:"address"`
}

type holdersRequest struct {
	Addresses []string `json:"addresses"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type tokenInfoResponse struct {
	Initialized bool   `json:"initialized"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	Paused      bool   `json:"paused"`
	Owner       string `json:"owner,omitempty"`
}

type supplyResponse struct {
	TotalSupply    uint64 `json:"total_supply"`
	MaxTotalSupply uint64 `json:"max_total_supply"`
}

type holderResponse struct {
	Address   string `json:"address"`
	Balance   uint64 `json:"balance"`
	Frozen    uint64 `json:"frozen"`
	Available uint64 `json:"available"`
	IsFrozen  bool   `json:"is_frozen"`
}

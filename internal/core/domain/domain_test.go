package domain_test

import (
	"github.com/compolabs/spark-miden-v1/internal/core/domain"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

var (
	faucetA = notes.AccountID(0x227bd163275aa1bf)
	faucetB = notes.AccountID(0x2540b08edc3b087d)
	faucetC = notes.AccountID(0x2a3c4d1f0b9e7c55)

	creator = notes.AccountID(0x9a5fc1d4e8b20003)
	filler  = notes.AccountID(0x9b61a2c0ff450001)
	other   = notes.AccountID(0x9c0d11aa37bc0007)

	baseSerial = notes.NewWord(
		0x0fd1c0a4a3b97e12, 0x51b8be0c3c8a91e4, 0x7e35b28a0fa4c3d9, 0x1d9b4e16c2a5f087,
	)
)

func asset(id notes.AccountID, amount uint64) domain.AssetAmount {
	return domain.AssetAmount{AssetID: id, Amount: amount}
}

func newOrder(offered, requested uint64) domain.SwapOrder {
	o, err := domain.NewSwapOrder(
		creator, asset(faucetA, offered), asset(faucetB, requested), baseSerial,
	)
	if err != nil {
		panic(err)
	}
	return *o
}

func clientOrder(source, target domain.AssetAmount) domain.ClientOrder {
	return domain.ClientOrder{
		Id:     notes.NewWord(source.Amount, target.Amount, uint64(source.AssetID), 1),
		Source: source,
		Target: target,
	}
}

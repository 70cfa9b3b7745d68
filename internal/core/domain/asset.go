package domain

import (
	"fmt"

	"github.com/compolabs/spark-miden-v1/pkg/mathutil"
	"github.com/compolabs/spark-miden-v1/pkg/notes"
)

// MaxAssetAmount is the greatest amount a fungible asset can carry.
const MaxAssetAmount = mathutil.MaxSafeAmount

// AssetAmount is an amount of the fungible asset issued by AssetID.
type AssetAmount struct {
	AssetID notes.AccountID
	Amount  uint64
}

// NewAssetAmount returns an AssetAmount after validating the amount.
func NewAssetAmount(assetID notes.AccountID, amount uint64) (AssetAmount, error) {
	a := AssetAmount{assetID, amount}
	if err := a.Validate(); err != nil {
		return AssetAmount{}, err
	}
	return a, nil
}

// Validate checks that the asset can be carried by a live note.
func (a AssetAmount) Validate() error {
	if a.Amount == 0 {
		return ErrZeroAmount
	}
	if a.Amount > MaxAssetAmount {
		return ErrAmountTooLarge
	}
	return nil
}

// Word returns the asset word encoding [amount, 0, 0, asset id].
func (a AssetAmount) Word() notes.Word {
	return notes.AssetWord(a.AssetID, a.Amount)
}

// SameAsset returns whether both amounts are of the same asset.
func (a AssetAmount) SameAsset(other AssetAmount) bool {
	return a.AssetID == other.AssetID
}

func (a AssetAmount) String() string {
	return fmt.Sprintf("%d %s", a.Amount, a.AssetID)
}

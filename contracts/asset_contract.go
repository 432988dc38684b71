package contracts

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/roudra323/ArtBlock-Foundry/models"
	"github.com/roudra323/ArtBlock-Foundry/utils"
)

// AssetProvider is the seam between the marketplace and whichever
// unique-asset implementation is wired in. Tests substitute fakes to exercise
// external-call failure handling.
type AssetProvider interface {
	MintAsset(ctx contractapi.TransactionContextInterface, ownerID, metadataURI, productID string) (string, error)
	TransferAsset(ctx contractapi.TransactionContextInterface, fromID, toID, assetID string) error
	AssetIDOf(ctx contractapi.TransactionContextInterface, productID string) (string, error)
}

// UniqueAssetContract manages the non-fungible assets bound to exclusive
// products. Metadata URIs are opaque.
type UniqueAssetContract struct {
	contractapi.Contract
}

// MintAsset creates the unique asset for an exclusive product. One asset per
// product, ever.
func (u *UniqueAssetContract) MintAsset(ctx contractapi.TransactionContextInterface, ownerID, metadataURI, productID string) (string, error) {
	existing, err := ctx.GetStub().GetState(utils.GetAssetIndexKey(productID))
	if err != nil {
		return "", fmt.Errorf("failed to read asset index: %v", err)
	}
	if existing != nil {
		return "", fmt.Errorf("%w: asset for product %s", models.ErrAlreadyExists, productID)
	}

	timestamp, err := utils.GetTxTimestamp(ctx)
	if err != nil {
		return "", err
	}

	asset := models.UniqueAsset{
		AssetID:     utils.DeriveAssetID(productID),
		ProductID:   productID,
		OwnerID:     ownerID,
		MetadataURI: metadataURI,
		MintedAt:    timestamp,
	}
	if err := u.saveAsset(ctx, &asset); err != nil {
		return "", err
	}
	if err := ctx.GetStub().PutState(utils.GetAssetIndexKey(productID), []byte(asset.AssetID)); err != nil {
		return "", fmt.Errorf("failed to write asset index: %v", err)
	}

	return asset.AssetID, nil
}

// TransferAsset moves a unique asset between owners.
func (u *UniqueAssetContract) TransferAsset(ctx contractapi.TransactionContextInterface, fromID, toID, assetID string) error {
	asset, err := u.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	if asset.OwnerID != fromID {
		return fmt.Errorf("%w: %s does not own asset %s", models.ErrUnauthorized, fromID, assetID)
	}

	asset.OwnerID = toID
	return u.saveAsset(ctx, asset)
}

// AssetIDOf returns the asset id bound to a product.
func (u *UniqueAssetContract) AssetIDOf(ctx contractapi.TransactionContextInterface, productID string) (string, error) {
	assetID, err := ctx.GetStub().GetState(utils.GetAssetIndexKey(productID))
	if err != nil {
		return "", fmt.Errorf("failed to read asset index: %v", err)
	}
	if assetID == nil {
		return "", fmt.Errorf("%w: no asset for product %s", models.ErrNotFound, productID)
	}
	return string(assetID), nil
}

// GetAsset retrieves a unique asset by id.
func (u *UniqueAssetContract) GetAsset(ctx contractapi.TransactionContextInterface, assetID string) (*models.UniqueAsset, error) {
	assetJSON, err := ctx.GetStub().GetState(utils.GetAssetKey(assetID))
	if err != nil {
		return nil, fmt.Errorf("failed to read asset: %v", err)
	}
	if assetJSON == nil {
		return nil, fmt.Errorf("%w: asset %s", models.ErrNotFound, assetID)
	}

	var asset models.UniqueAsset
	if err := json.Unmarshal(assetJSON, &asset); err != nil {
		return nil, fmt.Errorf("failed to unmarshal asset: %v", err)
	}
	return &asset, nil
}

func (u *UniqueAssetContract) saveAsset(ctx contractapi.TransactionContextInterface, asset *models.UniqueAsset) error {
	assetJSON, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("failed to marshal asset: %v", err)
	}
	return ctx.GetStub().PutState(utils.GetAssetKey(asset.AssetID), assetJSON)
}

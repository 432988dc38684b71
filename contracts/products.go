package contracts

import (
	"encoding/json"
	"fmt"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/roudra323/ArtBlock-Foundry/models"
	"github.com/roudra323/ArtBlock-Foundry/utils"
)

// Product records are created by the curation engine and have their
// ownership/listing fields mutated by the marketplace engine. Both go through
// these helpers.

func loadProduct(ctx contractapi.TransactionContextInterface, productID string) (*models.Product, error) {
	productJSON, err := ctx.GetStub().GetState(utils.GetProductKey(productID))
	if err != nil {
		return nil, fmt.Errorf("failed to read product: %v", err)
	}
	if productJSON == nil {
		return nil, fmt.Errorf("%w: product %s", models.ErrNotFound, productID)
	}

	var product models.Product
	if err := json.Unmarshal(productJSON, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %v", err)
	}
	return &product, nil
}

func saveProduct(ctx contractapi.TransactionContextInterface, product *models.Product) error {
	productJSON, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %v", err)
	}
	return ctx.GetStub().PutState(utils.GetProductKey(product.ProductID), productJSON)
}

func loadCuration(ctx contractapi.TransactionContextInterface, productID string) (*models.Curation, error) {
	curationJSON, err := ctx.GetStub().GetState(utils.GetCurationKey(productID))
	if err != nil {
		return nil, fmt.Errorf("failed to read curation record: %v", err)
	}
	if curationJSON == nil {
		return nil, fmt.Errorf("%w: curation record for product %s", models.ErrNotFound, productID)
	}

	var curation models.Curation
	if err := json.Unmarshal(curationJSON, &curation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal curation record: %v", err)
	}
	return &curation, nil
}

func saveCuration(ctx contractapi.TransactionContextInterface, curation *models.Curation) error {
	curationJSON, err := json.Marshal(curation)
	if err != nil {
		return fmt.Errorf("failed to marshal curation record: %v", err)
	}
	return ctx.GetStub().PutState(utils.GetCurationKey(curation.ProductID), curationJSON)
}

// listProductsByCommunity walks all product records and filters by community.
func listProductsByCommunity(ctx contractapi.TransactionContextInterface, communityID string) ([]*models.Product, error) {
	iterator, err := ctx.GetStub().GetStateByRange(utils.ProductPrefix, utils.ProductPrefix+"￿")
	if err != nil {
		return nil, fmt.Errorf("failed to get product iterator: %v", err)
	}
	defer iterator.Close()

	var products []*models.Product
	for iterator.HasNext() {
		queryResponse, err := iterator.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to iterate products: %v", err)
		}

		var product models.Product
		if err := json.Unmarshal(queryResponse.Value, &product); err != nil {
			return nil, fmt.Errorf("failed to unmarshal product: %v", err)
		}

		if product.CommunityID == communityID {
			products = append(products, &product)
		}
	}

	return products, nil
}

package main

import (
	"fmt"
	"log"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"

	"github.com/roudra323/ArtBlock-Foundry/contracts"
)

func main() {
	// Shared components
	ledger := new(contracts.Ledger)
	pricing := new(contracts.PricingEngine)

	// Engines are constructed first, then wired; contracts reject
	// transactional calls until every reference is set
	tokenContract := &contracts.TokenContract{
		Ledger:  ledger,
		Pricing: pricing,
	}

	communityContract := &contracts.CommunityContract{
		Ledger:  ledger,
		Pricing: pricing,
	}

	curationContract := &contracts.CurationContract{
		Ledger:    ledger,
		Pricing:   pricing,
		Community: communityContract,
	}

	assetContract := new(contracts.UniqueAssetContract)

	marketplaceContract := &contracts.MarketplaceContract{
		Ledger:    ledger,
		Community: communityContract,
		Assets:    assetContract,
	}

	governanceContract := &contracts.GovernanceContract{
		Ledger:    ledger,
		Pricing:   pricing,
		Community: communityContract,
	}

	// Create chaincode
	chaincode, err := contractapi.NewChaincode(
		tokenContract,
		communityContract,
		curationContract,
		marketplaceContract,
		governanceContract,
		assetContract,
	)
	if err != nil {
		log.Panicf("Error creating chaincode: %v", err)
	}

	fmt.Println("Starting ArtBlock Foundry chaincode...")

	// Start chaincode
	if err := chaincode.Start(); err != nil {
		log.Panicf("Error starting chaincode: %v", err)
	}
}

// Package seed holds the sample catalog loaded by the seed endpoint and the
// catalog CLI.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/example/ec-storefront/internal/domain/product"
)

//go:embed catalog.json
var catalogJSON []byte

// Products decodes a fresh copy of the sample catalog. Ids and creation times
// are left empty for the seeding command to assign.
func Products() ([]*product.Product, error) {
	var products []*product.Product
	if err := json.Unmarshal(catalogJSON, &products); err != nil {
		return nil, fmt.Errorf("decode sample catalog: %w", err)
	}
	return products, nil
}

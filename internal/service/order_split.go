package service

import (
	"fmt"
	"strings"

	"eps-procurement/internal/apperr"
	"eps-procurement/internal/model"

	"github.com/google/uuid"
)

// supplierBucket groups the configuration items resolved to one supplier.
// Items are never merged: one source configuration item becomes exactly
// one order item, even when the same SKU repeats inside a bucket.
type supplierBucket struct {
	Supplier string
	Items    []model.ConfigurationItem
}

// groupItemsBySupplier buckets every item of every configuration by its
// resolved supplier: the override for the item's configuration when
// present, the SKU's supplier otherwise. Buckets come back in first-seen
// supplier order so the per-call bucket index is deterministic.
func groupItemsBySupplier(
	configs []model.Configuration,
	itemsByConfig map[uuid.UUID][]model.ConfigurationItem,
	supplierBySKU map[uuid.UUID]string,
	overrides map[uuid.UUID]string,
) ([]supplierBucket, error) {
	index := make(map[string]int)
	var buckets []supplierBucket

	for _, config := range configs {
		for _, item := range itemsByConfig[config.ID] {
			supplier, ok := overrides[config.ID]
			if !ok {
				supplier, ok = supplierBySKU[item.SKUID]
				if !ok {
					return nil, apperr.ForeignKey("sku_id", item.SKUID.String(),
						"configuration item %s references missing SKU %s", item.ID, item.SKUID)
				}
			}

			i, seen := index[supplier]
			if !seen {
				i = len(buckets)
				index[supplier] = i
				buckets = append(buckets, supplierBucket{Supplier: supplier})
			}
			buckets[i].Items = append(buckets[i].Items, item)
		}
	}

	return buckets, nil
}

// supplierAbbrev is the first three characters of the supplier name,
// uppercased. Shorter names are used as-is.
func supplierAbbrev(supplier string) string {
	runes := []rune(supplier)
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return strings.ToUpper(string(runes))
}

// buildOrderCode generates the deterministic order code for one supplier
// bucket. The unique index on order_code is the backstop against
// collisions within the same second.
func buildOrderCode(requirementCode, supplier, timestamp string, idx int) string {
	return fmt.Sprintf("EPS-%s-%s-%s-%d", requirementCode, supplierAbbrev(supplier), timestamp, idx)
}

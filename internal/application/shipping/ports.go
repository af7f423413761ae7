package shipping

import (
	"context"

	"github.com/erp/shipping/internal/domain/shipping"
)

// RateCache caches fetched carrier rate quotes so repeated dialog opens do
// not hammer the carrier API. Implementations must treat a miss as
// (nil, false, nil), not as an error.
type RateCache interface {
	Get(ctx context.Context, key string) ([]shipping.CarrierRate, bool, error)
	Put(ctx context.Context, key string, rates []shipping.CarrierRate) error
	Delete(ctx context.Context, key string) error
}

// LabelArchiver stores a copy of the carrier's shipping label in durable
// storage and returns the stored object key.
type LabelArchiver interface {
	Archive(ctx context.Context, shipmentCode string, labelURL string) (string, error)
}

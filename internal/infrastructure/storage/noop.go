package storage

import (
	"context"
	"errors"

	appshipping "github.com/erp/shipping/internal/application/shipping"
)

// NoopLabelArchiver satisfies LabelArchiver without storing anything.
// Use it when object storage is disabled; the label then stays reachable
// only at the carrier URL.
type NoopLabelArchiver struct{}

// NewNoopLabelArchiver creates a new NoopLabelArchiver
func NewNoopLabelArchiver() *NoopLabelArchiver {
	return &NoopLabelArchiver{}
}

// Ensure NoopLabelArchiver implements LabelArchiver
var _ appshipping.LabelArchiver = (*NoopLabelArchiver)(nil)

// Archive validates its inputs and returns an empty key
func (a *NoopLabelArchiver) Archive(ctx context.Context, shipmentCode, labelURL string) (string, error) {
	if shipmentCode == "" {
		return "", errors.New("shipment code is required")
	}
	if labelURL == "" {
		return "", errors.New("label URL is required")
	}
	return "", nil
}

package journey

import "sort"

// ValidateLegSequence checks spec.md §8 property 1: sequence values are
// contiguous starting at 1, and leg_type follows PICKUP, (TRANSFER)?,
// DELIVERY, and adjacent legs chain on warehouse id.
func ValidateLegSequence(legs []*Leg) error {
	sorted := make([]*Leg, len(legs))
	copy(sorted, legs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sequence() < sorted[j].Sequence() })

	if len(sorted) != 2 && len(sorted) != 3 {
		return ErrEndpointInvariant
	}

	for i, l := range sorted {
		if l.Sequence() != i+1 {
			return ErrEndpointInvariant
		}
	}

	if sorted[0].Type() != LegTypePickup {
		return ErrEndpointInvariant
	}
	if sorted[len(sorted)-1].Type() != LegTypeDelivery {
		return ErrEndpointInvariant
	}
	if len(sorted) == 3 && sorted[1].Type() != LegTypeTransfer {
		return ErrEndpointInvariant
	}

	// First leg's origin must be the SME; last leg's destination must be
	// the receiver.
	if sorted[0].OriginSmeID() == nil {
		return ErrEndpointInvariant
	}
	if !sorted[len(sorted)-1].DestinationIsReceiver() {
		return ErrEndpointInvariant
	}

	// Adjacent legs chain: leg[i].destination_warehouse_id ==
	// leg[i+1].origin_warehouse_id whenever both are present.
	for i := 0; i < len(sorted)-1; i++ {
		dst := sorted[i].DestinationWarehouseID()
		src := sorted[i+1].OriginWarehouseID()
		if dst != nil && src != nil && *dst != *src {
			return ErrEndpointInvariant
		}
	}

	return nil
}

// CanCompleteLeg checks spec.md §8 property 2: a leg may be COMPLETED
// only if every lower-sequence leg on the same order is already COMPLETED.
func CanCompleteLeg(target *Leg, allLegs []*Leg) error {
	for _, l := range allLegs {
		if l.Sequence() < target.Sequence() && l.Status() != LegStatusCompleted {
			return &ErrOutOfOrder{OrderID: target.OrderID().String(), Sequence: target.Sequence(), BlockingSeq: l.Sequence()}
		}
	}

	return nil
}

// EarliestNonCompleted returns the leg with the smallest sequence whose
// status is not COMPLETED, used by the universal scan variant (spec.md
// §4.5). Returns nil if every leg is COMPLETED (or CANCELLED).
func EarliestNonCompleted(legs []*Leg) *Leg {
	sorted := make([]*Leg, len(legs))
	copy(sorted, legs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sequence() < sorted[j].Sequence() })

	for _, l := range sorted {
		if l.Status() != LegStatusCompleted && l.Status() != LegStatusCancelled {
			return l
		}
	}

	return nil
}

package journey

import "sort"

// View is the read model returned by JourneyView(order_id) (spec.md §4.1):
// the order plus its legs ordered by sequence, each optionally enriched
// with a resolved courier display name for UI use only.
type View struct {
	Order *Order
	Legs  []LegView
}

// LegView enriches a Leg with a courier display name, resolved by the
// caller (read-only, not persisted).
type LegView struct {
	*Leg
	CourierDisplayName string
}

// NewView sorts legs by sequence and assembles the read model.
func NewView(order *Order, legs []*Leg, courierNames map[string]string) View {
	sorted := make([]*Leg, len(legs))
	copy(sorted, legs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Sequence() < sorted[j].Sequence() })

	views := make([]LegView, 0, len(sorted))
	for _, l := range sorted {
		name := ""
		if l.AssignedCourierID() != nil {
			name = courierNames[l.AssignedCourierID().String()]
		}
		views = append(views, LegView{Leg: l, CourierDisplayName: name})
	}

	return View{Order: order, Legs: views}
}

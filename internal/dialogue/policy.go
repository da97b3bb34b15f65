package dialogue

// Policy holds the configuration flags the slot requirements depend on.
type Policy struct {
	RequireName           bool
	RequirePhoneForClinic bool
}

// RequiredSlots returns the slots that must all be present before a
// conversation in sector can close. The order is the order questions are
// asked in.
func (p Policy) RequiredSlots(sector Sector) []Slot {
	slots := []Slot{SlotService, SlotDate, SlotTime}
	if sector == SectorRestaurant {
		slots = append(slots, SlotPartySize)
	}
	if p.RequireName {
		slots = append(slots, SlotName)
	}
	if sector == SectorSalonClinic && p.RequirePhoneForClinic {
		slots = append(slots, SlotPhone)
	}
	return slots
}

// Evaluate computes the missing slots, in policy order, and closure.
func Evaluate(e Entities, required []Slot) (missing []Slot, closed bool) {
	missing = []Slot{}
	for _, s := range required {
		if e.Get(s) == "" {
			missing = append(missing, s)
		}
	}
	return missing, len(missing) == 0
}

package booking

// BuildIndex folds batches into a fresh AvailabilityMap for tz. Batches with no
// slots never produce a key. Each converted slot lands under its own local
// date, so one UTC day can feed two local dates near midnight.
func BuildIndex(batches []RawSlotBatch, tz string) AvailabilityMap {
	m := make(AvailabilityMap)
	for _, b := range batches {
		if len(b.Slots) == 0 {
			continue
		}
		for _, raw := range b.Slots {
			cs := ConvertSlot(b.UTCDate, raw, tz)
			m[cs.LocalDate] = append(m[cs.LocalDate], cs)
		}
	}
	return m
}

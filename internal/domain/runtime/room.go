package runtime

// Room is the in-memory record of one active room. Participants holds
// connection IDs in join order; the first remaining participant becomes the
// new host when the current one leaves. A room with zero participants must
// not be kept in the registry.
type Room struct {
	ID           string
	Participants []string
	HostID       string
}

func (r *Room) Has(connID string) bool {
	for _, id := range r.Participants {
		if id == connID {
			return true
		}
	}
	return false
}

package domain

// IsChair reports whether ghid is in the chairs of the given snapshot.
// Callers must hold the meeting's serialization point when the answer gates a mutation.
func IsChair(m *Meeting, ghid int64) bool {
	if m == nil {
		return false
	}
	return m.IsChair(ghid)
}

func requireChair(m *Meeting, actor Participant) error {
	if !IsChair(m, actor.GHID) {
		return ErrNotChair
	}
	return nil
}

// requireSelfOrChair allows a participant to act on their own queue entry, and chairs on anyone's.
func requireSelfOrChair(m *Meeting, actor Participant, target int64) error {
	if actor.GHID == target {
		return nil
	}
	return requireChair(m, actor)
}

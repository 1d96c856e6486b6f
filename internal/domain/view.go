package domain

// ViewFor returns the snapshot as the viewer may see it. With HideQueueIdentities,
// non-chairs only see their own queue entry's owner; other entries keep their topic and position.
func ViewFor(m *Meeting, viewer Participant, p Policy) *Meeting {
	v := m.Clone()
	if !p.HideQueueIdentities || IsChair(m, viewer.GHID) {
		return v
	}
	for i, e := range v.QueuedSpeakers {
		if e.Participant.GHID != viewer.GHID {
			v.QueuedSpeakers[i].Participant = Participant{}
		}
	}
	return v
}

package conversations

import "huntx-client/internal/models"

// MergeMessages returns the union of a and b keyed by message id, ordered by
// (CreatedAt, ID). For a shared id the entry from b wins. Neither input is
// modified.
func MergeMessages(a, b []models.Message) []models.Message {
	byID := make(map[string]models.Message, len(a)+len(b))
	for _, m := range a {
		byID[m.ID] = m
	}
	for _, m := range b {
		byID[m.ID] = m
	}
	out := make([]models.Message, 0, len(byID))
	for _, m := range byID {
		out = append(out, m)
	}
	models.SortMessages(out)
	return out
}

// mergeConversation folds incoming into existing. Participants are taken from
// incoming when it carries a valid pair, so a stub is filled by a later load.
func mergeConversation(existing, incoming models.Conversation) models.Conversation {
	merged := models.Conversation{ID: existing.ID, Participants: existing.Participants}
	if incoming.ValidParticipants() {
		merged.Participants = mergeParticipants(existing.Participants, incoming.Participants)
	}
	merged.Messages = MergeMessages(existing.Messages, incoming.Messages)
	return merged
}

func mergeParticipants(existing, incoming []models.Participant) []models.Participant {
	out := make([]models.Participant, len(incoming))
	copy(out, incoming)
	for i, p := range out {
		if p.Name != "" {
			continue
		}
		for _, e := range existing {
			if e.ID == p.ID {
				out[i].Name = e.Name
			}
		}
	}
	return out
}

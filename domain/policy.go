package domain

// Authorization rules are pure functions over the participant set.
// Callers translate a false result into a protocol-level error event,
// never a silent no-op.

func CanJoin(user User, conversation Conversation) bool {
	return conversation.HasParticipant(user.ID)
}

func CanSend(user User, conversation Conversation) bool {
	return CanJoin(user, conversation)
}

func CanDelete(user User, conversation Conversation) bool {
	return user.IsAdmin() || CanJoin(user, conversation)
}

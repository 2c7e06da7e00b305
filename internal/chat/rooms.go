// ABOUTME: Room name derivation for chat broadcast targeting
// ABOUTME: Rooms are ephemeral string keys; they exist only in the registry index

package chat

import "fmt"

// ParentRoom names the room every connection of a parent account joins.
func ParentRoom(parentID string) string {
	return "parent:" + parentID
}

// ChildRoom names the room every connection of a child account joins.
func ChildRoom(childID string) string {
	return "child:" + childID
}

// ConversationRoom names the room scoped to one parent-child conversation.
func ConversationRoom(parentID, childID string) string {
	return fmt.Sprintf("conversation:parent:%s:child:%s", parentID, childID)
}

// MessageRooms returns the broadcast targets for a conversation: the parent's
// room and the child's room. Events about a message go to both sides.
func MessageRooms(parentID, childID string) []string {
	return []string{ParentRoom(parentID), ChildRoom(childID)}
}

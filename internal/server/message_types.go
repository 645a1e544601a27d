package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants for the client-server protocol.
const (
	// Client to server messages
	MessageTypeAuth       MessageType = "auth"
	MessageTypeJoinTable  MessageType = "join_table"
	MessageTypeLeaveTable MessageType = "leave_table"
	MessageTypeListTables MessageType = "list_tables"
	MessageTypeStartHand  MessageType = "start_hand"
	MessageTypeAction     MessageType = "action"
	MessageTypeRebuy      MessageType = "rebuy"

	// Server to client messages
	MessageTypeAuthResponse   MessageType = "auth_response"
	MessageTypeTableJoined    MessageType = "table_joined"
	MessageTypeTableLeft      MessageType = "table_left"
	MessageTypeTableList      MessageType = "table_list"
	MessageTypeTableState     MessageType = "table_state"
	MessageTypeHoleCards      MessageType = "hole_cards"
	MessageTypeActionRequired MessageType = "action_required"
	MessageTypeNotice         MessageType = "notice"
	MessageTypeHandResult     MessageType = "hand_result"
	MessageTypeError          MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Package proto defines the chat socket wire format.
//
// Clients send text frames shaped {"message": "<text>"}; the server
// pushes frames shaped {"message": "<display name>: <text>"}. There is
// no acknowledgment and no application-level NACK for a failed send.
package proto

// Inbound is a chat frame from the client. Message is a pointer so a
// frame missing the field can be told apart from an empty string.
type Inbound struct {
	Message *string `json:"message"`
}

// Outbound is a chat frame pushed to the client, pre-formatted as
// "sender: text".
type Outbound struct {
	Message string `json:"message"`
}

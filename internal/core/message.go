package core

// Message is the domain model for a chat message. The sender name and
// timestamp are snapshots taken when the message was sent; later renames do
// not rewrite history entries.
type Message struct {
	From      string
	Text      string
	Timestamp string
}

// TimeLayout formats timestamps as local wall-clock time of day,
// e.g. "3:04:05 PM".
const TimeLayout = "3:04:05 PM"

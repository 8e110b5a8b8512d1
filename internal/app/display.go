package app

// DisplayRole selects the text-wrapping rule for a delivered message.
type DisplayRole int

const (
	DisplayNeutral DisplayRole = iota
	DisplayIncoming
	DisplayOutgoing
)

// BuildDisplayText wraps text with the counterpart's label so clients
// can render it directly. Without a label the text passes through
// unchanged.
func BuildDisplayText(role DisplayRole, counterpartLabel, text string) string {
	switch {
	case role == DisplayIncoming && counterpartLabel != "":
		return "[from " + counterpartLabel + "] " + text
	case role == DisplayOutgoing && counterpartLabel != "":
		return "[to " + counterpartLabel + "] " + text
	default:
		return text
	}
}

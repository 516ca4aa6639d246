package theme

import "github.com/jmylchreest/toaststack/internal/model"

// Body text limits, in characters. An icon takes room from the text.
const (
	TextLimit         = 108
	TextLimitWithIcon = 88
)

// BodyText returns the notification text shortened to fit the popup.
func BodyText(n *model.Notification, hasIcon bool) string {
	limit := TextLimit
	if hasIcon {
		limit = TextLimitWithIcon
	}
	return n.TextTruncated(limit)
}

package services

import (
	"regexp"
	"strconv"
	"strings"
)

// chatRefPattern matches the wire convention for threading a reply to a
// specific case: chat#<caseId># followed by the message text.
var chatRefPattern = regexp.MustCompile(`^\s*(?i:chat)#(\d+)#\s*`)

// ParseChatRef extracts a leading chat#<id># reference from an SMS body.
// Returns 0 and the untouched body when no reference is present.
func ParseChatRef(body string) (int64, string) {
	match := chatRefPattern.FindStringSubmatch(body)
	if match == nil {
		return 0, body
	}
	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, body
	}
	return id, strings.TrimSpace(body[len(match[0]):])
}

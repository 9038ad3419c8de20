package nats

import (
	"fmt"
	"strings"

	"github.com/mcoot/tarot-go2/internal/model"
)

// Subjects, per room id:
//
//	tarot.room.<id>.public          public deliveries
//	tarot.room.<id>.player.<player> deliveries private to one player
//	tarot.room.<id>.actions         inbound actions (wire action envelopes)
const subjectPrefix = "tarot.room"

// ActionsWildcard matches the inbound action subject of every room
const ActionsWildcard = subjectPrefix + ".*.actions"

var tokenReplacer = strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_")

// token makes s safe to use as a single subject token
func token(s string) string {
	return tokenReplacer.Replace(s)
}

// PublicSubject is where a room's public deliveries are published
func PublicSubject(roomID model.RoomID) string {
	return fmt.Sprintf("%s.%s.public", subjectPrefix, token(string(roomID)))
}

// PlayerSubject is where deliveries private to playerID are published
func PlayerSubject(roomID model.RoomID, playerID model.PlayerID) string {
	return fmt.Sprintf("%s.%s.player.%s", subjectPrefix, token(string(roomID)), token(string(playerID)))
}

// ActionsSubject is where clients publish actions for a room
func ActionsSubject(roomID model.RoomID) string {
	return fmt.Sprintf("%s.%s.actions", subjectPrefix, token(string(roomID)))
}

// roomFromActionsSubject extracts the room id from an actions subject
func roomFromActionsSubject(subject string) (model.RoomID, bool) {
	parts := strings.Split(subject, ".")
	if len(parts) != 4 || parts[0]+"."+parts[1] != subjectPrefix || parts[3] != "actions" || parts[2] == "" {
		return "", false
	}
	return model.RoomID(parts[2]), true
}

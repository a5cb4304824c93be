package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var roomIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func init() {
	MustRegisterGin("roomid", ValidateRoomID)
	MustRegisterGinAlias("peerid", "uuid4")
	MustRegisterGinAlias("mediakind", "oneof=audio video")
	MustRegisterGinAlias("direction", "oneof=send recv")
}

// ValidateRoomID validates room name format: 1-64 characters, alphanumeric with hyphens and underscores
func ValidateRoomID(fl validator.FieldLevel) bool {
	return IsRoomID(fl.Field().String())
}

func IsRoomID(s string) bool {
	return roomIDRegex.MatchString(s)
}

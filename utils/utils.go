/*
Package utils contains all the helper functions for tokenmap.
*/
package utils

import (
	"encoding/json"
	"runtime/debug"
	"strings"

	log "github.com/sirupsen/logrus"
)

var logTag = "tokenmap.utils"

// GetJSONStr will return an mashaled json string from struct, if failed, return empty string
func GetJSONStr(t interface{}) string {
	item, err := json.Marshal(t)
	if err == nil {
		return string(item)
	}
	log.WithField("tag", logTag).Warnf("Failed to marshal json object. %s", err)
	return ""
}

// SelectString takes an option and a default value and returns the default value if
// the option is equal to zero, and the option otherwise.
func SelectString(opt, def string) string {
	if opt == "" {
		return def
	}
	return opt
}

// LeadingInt parses the decimal digits at the start of s after optional whitespace.
// Anything else yields 0, so "3" is 3, "3/1" is 3 and "x" is 0.
func LeadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\r\n")
	value := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		value = value*10 + int(s[i]-'0')
	}
	return value
}

// DoPanicRecovery is the common panic recover pattern for go routing
// All the go routing normal failure should return error, instead of panic.
func DoPanicRecovery(name string) {
	if r := recover(); r != nil {
		log.WithField("tag", logTag).Errorf("%s failed with error %s %s", name, r, string(debug.Stack()))
	}
}

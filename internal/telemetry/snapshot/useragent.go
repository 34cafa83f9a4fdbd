package snapshot

import (
	"strings"

	"github.com/mssola/useragent"

	"sessiontrail/internal/telemetry/models"
)

// Device classes derived from a User-Agent.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceBot     = "bot"
)

// FromRequestHeaders derives a snapshot from a User-Agent and an
// Accept-Language header. Fields that cannot be derived are left blank.
func FromRequestHeaders(userAgent, acceptLanguage string) models.ClientSnapshot {
	snap := models.ClientSnapshot{Locale: primaryLocale(acceptLanguage)}
	if strings.TrimSpace(userAgent) == "" {
		return snap
	}

	ua := useragent.New(userAgent)
	name, version := ua.Browser()
	snap.Browser = strings.TrimSpace(name + " " + version)
	snap.OS = ua.OS()
	switch {
	case ua.Bot():
		snap.Device = DeviceBot
	case ua.Mobile():
		snap.Device = DeviceMobile
	default:
		snap.Device = DeviceDesktop
	}
	return snap
}

// Complete fills blank fields of snap from the request headers. Fields the
// client reported are kept as-is.
func Complete(snap models.ClientSnapshot, userAgent, acceptLanguage string) models.ClientSnapshot {
	derived := FromRequestHeaders(userAgent, acceptLanguage)
	if snap.Browser == "" {
		snap.Browser = derived.Browser
	}
	if snap.OS == "" {
		snap.OS = derived.OS
	}
	if snap.Device == "" {
		snap.Device = derived.Device
	}
	if snap.Locale == "" {
		snap.Locale = derived.Locale
	}
	return snap
}

// primaryLocale returns the first language tag of an Accept-Language value.
func primaryLocale(acceptLanguage string) string {
	first, _, _ := strings.Cut(acceptLanguage, ",")
	tag, _, _ := strings.Cut(first, ";")
	return strings.TrimSpace(tag)
}

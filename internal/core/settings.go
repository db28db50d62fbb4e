package core

import "strings"

const (
	SettingFacilityName     = "facilityName"
	SettingCurrency         = "currency"
	SettingDefaultPhone     = "defaultPhone"
	SettingWhatsAppTemplate = "whatsappTemplate"

	DefaultCurrency = "ر.س"
)

// Settings is the flat key/value configuration kept by the remote API.
type Settings map[string]string

// Get returns the trimmed value for key or "".
func (s Settings) Get(key string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(s[key])
}

// Currency returns the configured currency symbol, falling back to the
// default riyal symbol.
func (s Settings) Currency() string {
	if c := s.Get(SettingCurrency); c != "" {
		return c
	}
	return DefaultCurrency
}

// Clone returns an independent copy.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

package model

import (
	"context"
	"encoding/json"
	"strings"
)

// Well-known site setting keys.
const (
	SettingStoreName      = "store_name"
	SettingPaymentMethods = "payment_methods"
)

// Settings is a read-only snapshot of site-wide key/value settings.
type Settings struct {
	values map[string]string
}

// NewSettings copies values into a snapshot.
func NewSettings(values map[string]string) Settings {
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return Settings{values: cp}
}

// Get returns the value for key.
func (s Settings) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Value returns the value for key or def when unset or empty.
func (s Settings) Value(key, def string) string {
	if v, ok := s.values[key]; ok && v != "" {
		return v
	}
	return def
}

// Map returns a copy of all values.
func (s Settings) Map() map[string]string {
	cp := make(map[string]string, len(s.values))
	for k, v := range s.values {
		cp[k] = v
	}
	return cp
}

// PaymentMethods returns the accepted payment method names. An empty
// result means any non-empty method is accepted.
func (s Settings) PaymentMethods() []string {
	raw := s.Value(SettingPaymentMethods, "")
	if raw == "" {
		return nil
	}
	var methods []string
	for _, m := range strings.Split(raw, ",") {
		if m = strings.TrimSpace(m); m != "" {
			methods = append(methods, m)
		}
	}
	return methods
}

// AcceptsPaymentMethod reports whether method may be used at checkout.
func (s Settings) AcceptsPaymentMethod(method string) bool {
	methods := s.PaymentMethods()
	if len(methods) == 0 {
		return true
	}
	for _, m := range methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// MarshalJSON renders the snapshot as a flat object.
func (s Settings) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Map())
}

// UnmarshalJSON reads a flat object.
func (s *Settings) UnmarshalJSON(data []byte) error {
	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewSettings(values)
	return nil
}

type settingsCtxKey struct{}

// WithSettings stores a snapshot in ctx.
func WithSettings(ctx context.Context, s Settings) context.Context {
	return context.WithValue(ctx, settingsCtxKey{}, s)
}

// SettingsFromContext returns the request's snapshot, or an empty one.
func SettingsFromContext(ctx context.Context) Settings {
	if s, ok := ctx.Value(settingsCtxKey{}).(Settings); ok {
		return s
	}
	return NewSettings(nil)
}

// Package document defines the persisted finance document: metadata, plan,
// accounts and a dated ledger, together with the decode/encode boundary that
// keeps unknown JSON keys intact across load, merge and save.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrParse indicates the payload is not valid JSON at all.
	ErrParse = errors.New("payload is not valid JSON")

	// ErrMalformed indicates the ledger section is structurally unusable:
	// ledger.days is not list-shaped, or a day record carries a non-string
	// date key. An empty date string is legal (legacy data).
	ErrMalformed = errors.New("malformed finance document")
)

// Epoch is the fallback instant for missing or unparsable timestamps.
var Epoch = time.Unix(0, 0).UTC()

// Document is the root aggregate. Sections the reconciler never inspects
// (plan, accounts, goals, alerts, settings) are carried as raw JSON so
// their contents, including keys this code has never heard of, survive a
// load -> merge -> save round trip byte for byte.
type Document struct {
	Meta     Meta
	Settings json.RawMessage
	Plan     json.RawMessage
	Accounts json.RawMessage
	Ledger   Ledger
	Goals    json.RawMessage
	Alerts   json.RawMessage

	extra map[string]json.RawMessage // unknown top-level keys
}

// Decode parses a JSON payload into a Document. Invalid JSON yields ErrParse;
// a ledger that is not list-shaped, or a day without a usable date key,
// yields ErrMalformed. Opaque sections are never validated.
func Decode(data []byte) (*Document, error) {
	fields, err := splitObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	d := &Document{}
	for key, raw := range fields {
		switch key {
		case "meta":
			// A non-object meta decodes as empty; merge rebuilds it anyway.
			_ = json.Unmarshal(raw, &d.Meta)
		case "settings":
			d.Settings = raw
		case "plan":
			d.Plan = raw
		case "accounts":
			d.Accounts = raw
		case "ledger":
			if err := json.Unmarshal(raw, &d.Ledger); err != nil {
				return nil, err
			}
		case "goals":
			d.Goals = raw
		case "alerts":
			d.Alerts = raw
		default:
			if d.extra == nil {
				d.extra = make(map[string]json.RawMessage)
			}
			d.extra[key] = raw
		}
	}
	return d, nil
}

// Encode serializes the document as indented JSON, the format written both
// to the local store and to the remote file.
func (d *Document) Encode() ([]byte, error) {
	compact, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// MarshalJSON implements json.Marshaler with a stable key order: known
// sections first, unknown top-level keys after, sorted.
func (d *Document) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	if !d.Meta.isZero() {
		w.field("meta", &d.Meta)
	}
	w.rawField("settings", d.Settings)
	w.rawField("plan", d.Plan)
	w.rawField("accounts", d.Accounts)
	w.field("ledger", &d.Ledger)
	w.rawField("goals", d.Goals)
	w.rawField("alerts", d.Alerts)
	w.extras(d.extra)
	return w.finish()
}

// Clone returns a deep copy. The reconciler treats its inputs as immutable
// snapshots, so every merge starts from a clone of the remote document.
func (d *Document) Clone() *Document {
	out := &Document{
		Meta:     d.Meta.clone(),
		Settings: cloneRaw(d.Settings),
		Plan:     cloneRaw(d.Plan),
		Accounts: cloneRaw(d.Accounts),
		Ledger:   d.Ledger.clone(),
		Goals:    cloneRaw(d.Goals),
		Alerts:   cloneRaw(d.Alerts),
		extra:    cloneRawMap(d.extra),
	}
	return out
}

// Meta holds document-level metadata. Timestamps stay strings so odd legacy
// values round-trip; ParseTimestamp interprets them where it matters.
type Meta struct {
	Version   string
	Currency  string
	Timezone  string
	CreatedAt string
	UpdatedAt string
	DeviceID  string

	extra map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Meta) UnmarshalJSON(data []byte) error {
	fields, err := splitObject(data)
	if err != nil {
		return err
	}
	for key, raw := range fields {
		switch key {
		case "version":
			decodeString(raw, &m.Version)
		case "currency":
			decodeString(raw, &m.Currency)
		case "timezone":
			decodeString(raw, &m.Timezone)
		case "created_at":
			decodeString(raw, &m.CreatedAt)
		case "updated_at":
			decodeString(raw, &m.UpdatedAt)
		case "device_id":
			decodeString(raw, &m.DeviceID)
		default:
			if m.extra == nil {
				m.extra = make(map[string]json.RawMessage)
			}
			m.extra[key] = raw
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m *Meta) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.stringField("version", m.Version)
	w.stringField("currency", m.Currency)
	w.stringField("timezone", m.Timezone)
	w.stringField("created_at", m.CreatedAt)
	w.stringField("updated_at", m.UpdatedAt)
	w.stringField("device_id", m.DeviceID)
	w.extras(m.extra)
	return w.finish()
}

func (m *Meta) isZero() bool {
	return m.Version == "" && m.Currency == "" && m.Timezone == "" &&
		m.CreatedAt == "" && m.UpdatedAt == "" && m.DeviceID == "" &&
		len(m.extra) == 0
}

func (m Meta) clone() Meta {
	m.extra = cloneRawMap(m.extra)
	return m
}

// ParseTimestamp reads an RFC 3339 timestamp, falling back to the Unix epoch
// when the value is missing or unparsable. The epoch fallback makes a record
// with a broken timestamp lose every merge comparison rather than fail it.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return Epoch
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC()
	}
	return Epoch
}

// FormatTimestamp renders an instant the way the documents store it:
// UTC, millisecond precision, trailing Z.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// splitObject decodes a JSON object into its raw fields.
func splitObject(data []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// decodeString fills dst when raw holds a JSON string and leaves it alone
// otherwise. Known string fields are permissive: a wrong-typed value is
// treated as absent, matching how the original client read them.
func decodeString(raw json.RawMessage, dst *string) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		*dst = s
	}
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}

func cloneRawMap(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = cloneRaw(v)
	}
	return out
}

// objectWriter assembles a JSON object with deterministic key order.
type objectWriter struct {
	buf   bytes.Buffer
	wrote bool
	err   error
}

func newObjectWriter() *objectWriter {
	w := &objectWriter{}
	w.buf.WriteByte('{')
	return w
}

func (w *objectWriter) raw(key string, value []byte) {
	if w.err != nil {
		return
	}
	name, err := json.Marshal(key)
	if err != nil {
		w.err = err
		return
	}
	if w.wrote {
		w.buf.WriteByte(',')
	}
	w.buf.Write(name)
	w.buf.WriteByte(':')
	w.buf.Write(value)
	w.wrote = true
}

func (w *objectWriter) field(key string, value json.Marshaler) {
	if w.err != nil {
		return
	}
	data, err := value.MarshalJSON()
	if err != nil {
		w.err = err
		return
	}
	w.raw(key, data)
}

func (w *objectWriter) rawField(key string, value json.RawMessage) {
	if value == nil {
		return
	}
	w.raw(key, value)
}

func (w *objectWriter) stringField(key, value string) {
	if value == "" {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		w.err = err
		return
	}
	w.raw(key, data)
}

func (w *objectWriter) anyField(key string, value any) {
	if w.err != nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		w.err = err
		return
	}
	w.raw(key, data)
}

func (w *objectWriter) extras(extra map[string]json.RawMessage) {
	if len(extra) == 0 {
		return
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		w.raw(k, extra[k])
	}
}

func (w *objectWriter) finish() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}

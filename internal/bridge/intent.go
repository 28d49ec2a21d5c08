package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kingrea/wasteless/internal/nav"
)

const (
	// ProtocolVersion identifies the bridge contract version exposed via /health.
	ProtocolVersion = "1.0.0"
	// IntentSchemaVersion is the currently supported inbound intent version.
	IntentSchemaVersion = 1
)

// IntentType names one user action the bridge can replay.
type IntentType string

const (
	IntentSetReminder    IntentType = "set_reminder"
	IntentRemoveItem     IntentType = "remove_item"
	IntentCancelReminder IntentType = "cancel_reminder"
	IntentGoToTab        IntentType = "go_to_tab"
	IntentStartScan      IntentType = "start_scan"
	IntentCommitScan     IntentType = "commit_scan"
)

// Intent is one action posted to /intents.
type Intent struct {
	Version    int             `json:"version"`
	IntentID   string          `json:"intent_id"`
	Type       IntentType      `json:"type"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	ServerTime time.Time       `json:"server_time"`
}

// SetReminderPayload carries set_reminder arguments.
type SetReminderPayload struct {
	ItemID int    `json:"item_id"`
	Days   int    `json:"days"`
	Time   string `json:"time"`
}

// ItemPayload carries remove_item arguments.
type ItemPayload struct {
	ItemID int `json:"item_id"`
}

// ReminderPayload carries cancel_reminder arguments.
type ReminderPayload struct {
	ReminderID int `json:"reminder_id"`
}

// TabPayload carries go_to_tab arguments.
type TabPayload struct {
	Tab string `json:"tab"`
}

// Normalize applies defaults and canonical formatting before validation.
func (in *Intent) Normalize() {
	if in == nil {
		return
	}
	if in.Version == 0 {
		in.Version = IntentSchemaVersion
	}
	in.IntentID = strings.TrimSpace(in.IntentID)
	in.Type = IntentType(strings.ToLower(strings.TrimSpace(string(in.Type))))
}

// StampServerTime overwrites ServerTime with the supplied clock reading (UTC).
func (in *Intent) StampServerTime(now time.Time) {
	if in == nil {
		return
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	in.ServerTime = now.UTC()
}

// Validate checks the envelope and decodes the payload for its type.
func (in Intent) Validate() error {
	if in.Version != IntentSchemaVersion {
		return fmt.Errorf("version %d not supported", in.Version)
	}
	if in.IntentID == "" {
		return errors.New("intent_id is required")
	}
	switch in.Type {
	case IntentSetReminder:
		p, err := in.SetReminder()
		if err != nil {
			return err
		}
		if p.ItemID <= 0 {
			return errors.New("payload.item_id is required")
		}
		if p.Days < 0 {
			return errors.New("payload.days must be >= 0")
		}
	case IntentRemoveItem:
		p, err := in.Item()
		if err != nil {
			return err
		}
		if p.ItemID <= 0 {
			return errors.New("payload.item_id is required")
		}
	case IntentCancelReminder:
		p, err := in.Reminder()
		if err != nil {
			return err
		}
		if p.ReminderID <= 0 {
			return errors.New("payload.reminder_id is required")
		}
	case IntentGoToTab:
		p, err := in.Tab()
		if err != nil {
			return err
		}
		if _, ok := nav.ParseTab(p.Tab); !ok {
			return fmt.Errorf("payload.tab %q is not a tab", p.Tab)
		}
	case IntentStartScan, IntentCommitScan:
	case "":
		return errors.New("type is required")
	default:
		return fmt.Errorf("type %q not supported", in.Type)
	}
	return nil
}

// SetReminder decodes a set_reminder payload.
func (in Intent) SetReminder() (SetReminderPayload, error) {
	var p SetReminderPayload
	return p, in.decode(&p)
}

// Item decodes a remove_item payload.
func (in Intent) Item() (ItemPayload, error) {
	var p ItemPayload
	return p, in.decode(&p)
}

// Reminder decodes a cancel_reminder payload.
func (in Intent) Reminder() (ReminderPayload, error) {
	var p ReminderPayload
	return p, in.decode(&p)
}

// Tab decodes a go_to_tab payload.
func (in Intent) Tab() (TabPayload, error) {
	var p TabPayload
	return p, in.decode(&p)
}

func (in Intent) decode(v any) error {
	if len(in.Payload) == 0 {
		return errors.New("payload is required")
	}
	if err := json.Unmarshal(in.Payload, v); err != nil {
		return fmt.Errorf("payload: %w", err)
	}
	return nil
}

// IntentProcessor consumes validated intents.
type IntentProcessor interface {
	HandleIntent(Intent) error
}

// IntentProcessorFunc adapts a function into an IntentProcessor.
type IntentProcessorFunc func(Intent) error

// HandleIntent executes f(in).
func (f IntentProcessorFunc) HandleIntent(in Intent) error {
	if f == nil {
		return nil
	}
	return f(in)
}

// Logger records bridge status information.
type Logger interface {
	Printf(format string, args ...any)
}

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type intentResponse struct {
	Status     string    `json:"status"`
	IntentID   string    `json:"intent_id"`
	ServerTime time.Time `json:"server_time"`
}

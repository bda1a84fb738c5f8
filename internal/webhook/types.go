package webhook

import "encoding/json"

// rawSlot is one element of entry.field_1, the form system's native name
// for the slot array.
type rawSlot struct {
	ItemName       string `json:"item_name"`
	ScheduledLabel string `json:"scheduled_label"`
	Number         int    `json:"number"`
	ScheduledAt    string `json:"scheduled_at"`
	APICode        string `json:"api_code"`
}

// namedEntryFields lists the entry keys with a dedicated struct field, so
// UnmarshalJSON can fold everything else into Extra — the equivalent of
// the form system's flattened extra-fields map.
var namedEntryFields = map[string]bool{
	"token":                         true,
	"field_1":                       true,
	"field_8":                       true,
	"reservation_status_fsf_field": true,
}

// entry is the form system's native submission shape. Extra holds every
// field not already named here — most notably the operator-name field,
// whose key is configured rather than fixed.
type entry struct {
	Token                     string
	Field1                    []rawSlot
	Field8                    string
	ReservationStatusFsfField string
	Extra                     map[string]string
}

func (e *entry) UnmarshalJSON(data []byte) error {
	var named struct {
		Token                     string    `json:"token"`
		Field1                    []rawSlot `json:"field_1"`
		Field8                    string    `json:"field_8"`
		ReservationStatusFsfField string    `json:"reservation_status_fsf_field"`
	}
	if err := json.Unmarshal(data, &named); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	extra := make(map[string]string, len(raw))
	for key, value := range raw {
		if namedEntryFields[key] {
			continue
		}
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			extra[key] = s
		}
	}

	e.Token = named.Token
	e.Field1 = named.Field1
	e.Field8 = named.Field8
	e.ReservationStatusFsfField = named.ReservationStatusFsfField
	e.Extra = extra
	return nil
}

// payload is the full webhook request body.
type payload struct {
	Form     string `json:"form"`
	FormName string `json:"form_name"`
	Entry    entry  `json:"entry"`
}

package campaigns

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/promogame/backend/internal/models"
)

// designColumns holds the JSON-encoded design slices of a campaign row.
type designColumns struct {
	colors, style, screens []byte
}

func encodeDesign(c *models.Campaign) (designColumns, error) {
	var d designColumns
	var err error
	if c.Colors != nil {
		if d.colors, err = json.Marshal(c.Colors); err != nil {
			return d, fmt.Errorf("encode colors: %w", err)
		}
	}
	if c.Style != nil {
		if d.style, err = json.Marshal(c.Style); err != nil {
			return d, fmt.Errorf("encode style: %w", err)
		}
	}
	if c.Screens != nil {
		if d.screens, err = json.Marshal(c.Screens); err != nil {
			return d, fmt.Errorf("encode screens: %w", err)
		}
	}
	return d, nil
}

func (d designColumns) decode(c *models.Campaign) error {
	if len(d.colors) > 0 {
		c.Colors = &models.Colors{}
		if err := json.Unmarshal(d.colors, c.Colors); err != nil {
			return fmt.Errorf("decode colors: %w", err)
		}
	}
	if len(d.style) > 0 {
		c.Style = &models.Style{}
		if err := json.Unmarshal(d.style, c.Style); err != nil {
			return fmt.Errorf("decode style: %w", err)
		}
	}
	if len(d.screens) > 0 {
		c.Screens = &models.Screens{}
		if err := json.Unmarshal(d.screens, c.Screens); err != nil {
			return fmt.Errorf("decode screens: %w", err)
		}
	}
	return nil
}

func encodeOptions(opts []string) ([]byte, error) {
	if opts == nil {
		opts = []string{}
	}
	return json.Marshal(opts)
}

func decodeOptions(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var opts []string
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	return opts, nil
}

// liveSettings returns the encoded live configuration, or nil when the type has none.
func liveSettings(c *models.Campaign) (string, []byte, error) {
	table := SettingsTable(c.Type)
	cfg := c.LiveGameConfig()
	if table == "" || cfg == nil {
		return "", nil, nil
	}
	raw, err := models.EncodeGameConfig(cfg)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s settings: %w", c.Type, err)
	}
	return table, raw, nil
}

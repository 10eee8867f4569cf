package campaign

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/promogame/backend/internal/models"
)

var (
	// ErrUnknownPath is returned when a path does not name a field of the campaign.
	ErrUnknownPath = errors.New("unknown campaign path")
	// ErrReadOnlyPath is returned for identity and counter fields.
	ErrReadOnlyPath = errors.New("campaign path is read-only")
	// ErrInvalidValue is returned when a value cannot be decoded for its path.
	ErrInvalidValue = errors.New("invalid value for campaign path")
)

var readOnly = map[string]bool{
	"id":           true,
	"user_id":      true,
	"participants": true,
	"created_at":   true,
	"updated_at":   true,
}

// Update returns a copy of c with the dotted path replaced by value (JSON encoded).
// Only the structs, slices and maps along the path are copied; every other slice of the
// campaign is shared with c, and c itself is never modified.
//
// Paths address JSON field names: "name", "colors.button", "style.typography.titleSize",
// "screens.end.contrastBackground.color", "questions.0.text", "game_config.wheel.segments".
func Update(c *models.Campaign, path string, value []byte) (*models.Campaign, error) {
	parts := strings.Split(strings.TrimSpace(path), ".")
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("%w: empty path", ErrUnknownPath)
	}
	head := parts[0]
	if readOnly[head] {
		return nil, fmt.Errorf("%w: %s", ErrReadOnlyPath, head)
	}

	switch head {
	case "type":
		var t models.CampaignType
		if err := json.Unmarshal(value, &t); err != nil || !t.Valid() {
			return nil, fmt.Errorf("%w: type", ErrInvalidValue)
		}
		return WithType(c, t), nil
	case "status":
		var s models.CampaignStatus
		if err := json.Unmarshal(value, &s); err != nil || !s.Valid() {
			return nil, fmt.Errorf("%w: status", ErrInvalidValue)
		}
		cp := *c
		cp.Status = s
		return &cp, nil
	case "public_url":
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return nil, fmt.Errorf("%w: public_url", ErrInvalidValue)
		}
		cp := *c
		cp.PublicURL = Slugify(s)
		return &cp, nil
	case "game_config":
		return updateGameConfig(c, parts[1:], value)
	}

	cp := *c
	if err := setPath(reflect.ValueOf(&cp).Elem(), parts, value); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cp, nil
}

func updateGameConfig(c *models.Campaign, parts []string, value []byte) (*models.Campaign, error) {
	if len(parts) == 0 {
		var gc models.GameConfigs
		if err := json.Unmarshal(value, &gc); err != nil {
			return nil, fmt.Errorf("%w: game_config: %v", ErrInvalidValue, err)
		}
		cp := *c
		cp.GameConfig = gc
		return &cp, nil
	}
	t := models.CampaignType(parts[0])
	if !t.IsGame() {
		return nil, fmt.Errorf("%w: game_config.%s", ErrUnknownPath, parts[0])
	}

	var next models.GameConfig
	if len(parts) == 1 {
		cfg, err := models.DecodeGameConfig(t, value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		next = cfg
	} else {
		cur := c.GameConfig[t]
		if cur == nil {
			cur = models.DefaultGameConfig(t)
		}
		src := reflect.ValueOf(cur).Elem()
		dst := reflect.New(src.Type())
		dst.Elem().Set(src)
		if err := setPath(dst.Elem(), parts[1:], value); err != nil {
			return nil, fmt.Errorf("game_config.%s: %w", strings.Join(parts, "."), err)
		}
		next = dst.Interface().(models.GameConfig)
	}

	cp := *c
	cp.GameConfig = WithGameConfigEntry(c.GameConfig, t, next)
	return &cp, nil
}

// setPath assigns value at path inside the addressable struct v. Pointers and slices met on
// the way are replaced by fresh copies before being written to.
func setPath(v reflect.Value, path []string, value []byte) error {
	if v.Kind() != reflect.Struct {
		return ErrUnknownPath
	}
	f, ok := fieldByJSONName(v, path[0])
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPath, path[0])
	}
	if len(path) == 1 {
		return assignLeaf(f, value)
	}
	rest := path[1:]

	switch f.Kind() {
	case reflect.Struct:
		return setPath(f, rest, value)
	case reflect.Pointer:
		if f.Type().Elem().Kind() != reflect.Struct {
			return fmt.Errorf("%w: %s", ErrUnknownPath, rest[0])
		}
		cp := reflect.New(f.Type().Elem())
		if !f.IsNil() {
			cp.Elem().Set(f.Elem())
		}
		if err := setPath(cp.Elem(), rest, value); err != nil {
			return err
		}
		f.Set(cp)
		return nil
	case reflect.Slice:
		i, err := strconv.Atoi(rest[0])
		if err != nil || i < 0 || i >= f.Len() {
			return fmt.Errorf("%w: index %s", ErrUnknownPath, rest[0])
		}
		cp := reflect.MakeSlice(f.Type(), f.Len(), f.Len())
		reflect.Copy(cp, f)
		elem := cp.Index(i)
		if len(rest) == 1 {
			err = assignLeaf(elem, value)
		} else {
			err = setPath(elem, rest[1:], value)
		}
		if err != nil {
			return err
		}
		f.Set(cp)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownPath, rest[0])
}

func fieldByJSONName(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := strings.Split(sf.Tag.Get("json"), ",")[0]
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = sf.Name
		}
		if tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// assignLeaf decodes value into f. Numbers sent as strings are coerced the way form inputs
// are, keeping the current value when nothing numeric can be read.
func assignLeaf(f reflect.Value, value []byte) error {
	nv := reflect.New(f.Type())
	err := json.Unmarshal(value, nv.Interface())
	if err == nil {
		f.Set(nv.Elem())
		return nil
	}
	var s string
	if json.Unmarshal(value, &s) == nil {
		switch f.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f.SetInt(int64(ParseIntDefault(s, int(f.Int()))))
			return nil
		case reflect.Float32, reflect.Float64:
			f.SetFloat(ParseFloatDefault(s, f.Float()))
			return nil
		}
	}
	return fmt.Errorf("%w: %v", ErrInvalidValue, err)
}

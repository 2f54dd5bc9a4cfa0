package entity

import (
	"fmt"
	"strings"
)

// Metadata is the externally authored JSON document an NFT points to.
// Nothing about its shape is guaranteed.
type Metadata map[string]interface{}

type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

func (m Metadata) GetData(key string) interface{} {
	if m == nil {
		return nil
	}
	if val, ok := m[key]; ok {
		return val
	}

	return nil
}

func (m Metadata) getString(key string) string {
	if val, ok := m.GetData(key).(string); ok {
		return val
	}

	return ""
}

func (m Metadata) Name() string {
	return m.getString("name")
}

func (m Metadata) Description() string {
	return m.getString("description")
}

func (m Metadata) Type() string {
	return m.getString("type")
}

func (m Metadata) CID() string {
	return m.getString("CID")
}

// Image returns the image reference. Some collections publish the image as
// an object, in which case its description holds the reference.
func (m Metadata) Image() string {
	switch image := m.GetData("image").(type) {
	case string:
		return image
	case map[string]interface{}:
		if description, ok := image["description"].(string); ok {
			return description
		}
	}

	return ""
}

func (m Metadata) IsVideo() bool {
	return strings.HasPrefix(m.Type(), "video")
}

func (m Metadata) Attributes() []Attribute {
	raw, ok := m.GetData("attributes").([]interface{})
	if !ok {
		return nil
	}

	attributes := make([]Attribute, 0, len(raw))
	for _, el := range raw {
		attr, ok := el.(map[string]interface{})
		if !ok {
			continue
		}
		traitType, ok := attr["trait_type"].(string)
		if !ok || traitType == "" {
			continue
		}
		value, ok := attr["value"]
		if !ok || value == nil {
			continue
		}
		attributes = append(attributes, Attribute{TraitType: traitType, Value: stringValue(value)})
	}

	return attributes
}

func stringValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
	default:
		return fmt.Sprintf("%v", v)
	}
}

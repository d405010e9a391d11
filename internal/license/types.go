package license

import (
	"encoding/json"
	"time"
)

const (
	mediaType    = "application/vnd.api+json"
	typeLicenses = "licenses"
	typePolicies = "policies"

	// MetadataOrderID is the metadata key that ties a license to its order.
	MetadataOrderID = "fastSpringOrderId"
)

// ResourceIdentifier points at another resource by type and id.
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// LicenseAttributes are the license fields the bridge sets or displays.
type LicenseAttributes struct {
	Key      string         `json:"key"`
	Name     string         `json:"name,omitempty"`
	Status   string         `json:"status,omitempty"`
	Expiry   *time.Time     `json:"expiry,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// License is a license resource as created by the licensing service.
// Raw holds the resource object exactly as returned.
type License struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Attributes LicenseAttributes `json:"attributes"`
	Raw        json.RawMessage   `json:"-"`
}

// UnmarshalJSON decodes the known fields and retains the original bytes.
func (l *License) UnmarshalJSON(data []byte) error {
	type plain License
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = License(p)
	l.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the resource unmodified when it came from the service.
func (l License) MarshalJSON() ([]byte, error) {
	if len(l.Raw) > 0 {
		return l.Raw, nil
	}
	type plain License
	return json.Marshal(plain(l))
}

// CreateRequest describes the license to create for a verified order.
type CreateRequest struct {
	Key     string
	OrderID string
}

// ErrorObject is a single entry of a document's errors list.
type ErrorObject struct {
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

type createDocument struct {
	Data createResource `json:"data"`
}

type createResource struct {
	Type          string              `json:"type"`
	Attributes    createAttributes    `json:"attributes"`
	Relationships createRelationships `json:"relationships"`
}

type createAttributes struct {
	Key      string            `json:"key"`
	Metadata map[string]string `json:"metadata"`
}

type createRelationships struct {
	Policy relationship `json:"policy"`
}

type relationship struct {
	Data ResourceIdentifier `json:"data"`
}

type responseDocument struct {
	Data   json.RawMessage `json:"data"`
	Errors []ErrorObject   `json:"errors"`
}

package hubspot

import "encoding/json"

// Object is a single CRM record. The remote system assigns the opaque id,
// which is stable and serves as the natural key for upserts. Property values
// are string-typed; absent properties read as the empty string.
type Object struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

// Property returns the named property value, or the empty string if absent
func (o Object) Property(name string) string {
	return o.Properties[name]
}

// objectPage is the wire shape of the paginated object listing
type objectPage struct {
	Results []Object `json:"results"`
}

// Association is one edge returned by the v4 associations endpoint. Older
// API versions report the target as `id`, newer ones as `toObjectId`.
type Association struct {
	ID         string      `json:"id"`
	ToObjectID json.Number `json:"toObjectId"`
}

// TargetID resolves the associated object id from whichever field the API
// populated, falling back to "unknown"
func (a Association) TargetID() string {
	if a.ID != "" {
		return a.ID
	}
	if a.ToObjectID.String() != "" {
		return a.ToObjectID.String()
	}
	return "unknown"
}

// associationPage is the wire shape of the association listing
type associationPage struct {
	Results []Association `json:"results"`
}

// propertyPage is the wire shape of the property (schema) listing
type propertyPage struct {
	Results []struct {
		Name string `json:"name"`
	} `json:"results"`
}

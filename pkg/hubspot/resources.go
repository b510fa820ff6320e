package hubspot

import "fmt"

// ResourceType identifies a CRM object collection
type ResourceType string

const (
	ResourceCompanies ResourceType = "companies"
	ResourceContacts  ResourceType = "contacts"
	ResourceNotes     ResourceType = "notes"
	ResourceTasks     ResourceType = "tasks"
	ResourceCalls     ResourceType = "calls"
)

// associationPartners is the explicit dispatch table from resource type to
// the partner types its associations are fetched against. Built once at
// startup; there is no name-based lookup at runtime.
var associationPartners = map[ResourceType][]ResourceType{
	ResourceCompanies: {ResourceContacts},
	ResourceContacts:  {},
	ResourceNotes:     {ResourceCompanies, ResourceContacts},
	ResourceTasks:     {ResourceCompanies, ResourceContacts},
	ResourceCalls:     {ResourceCompanies, ResourceContacts},
}

// AllResources lists every exported resource type in pipeline order
func AllResources() []ResourceType {
	return []ResourceType{
		ResourceCompanies,
		ResourceContacts,
		ResourceNotes,
		ResourceTasks,
		ResourceCalls,
	}
}

// AssociationPartners returns the resource types this type's associations
// point at. Contacts have no outgoing association phase.
func (r ResourceType) AssociationPartners() []ResourceType {
	return associationPartners[r]
}

// Valid reports whether the resource type is one of the exported collections
func (r ResourceType) Valid() bool {
	_, ok := associationPartners[r]
	return ok
}

func (r ResourceType) String() string {
	return string(r)
}

// ParseResourceType converts a string into a known ResourceType
func ParseResourceType(s string) (ResourceType, error) {
	r := ResourceType(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown resource type: %q", s)
	}
	return r, nil
}

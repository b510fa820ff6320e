package hubspot

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the production HubSpot API endpoint
	DefaultBaseURL = "https://api.hubapi.com"

	// PageSize is the fixed page size requested from the object listing
	// endpoint. Every page fetch asks for exactly this many records.
	PageSize = 100
)

// ObjectsURL constructs the URL for one page of the paginated object listing.
// An empty after cursor requests the start of the stream.
func ObjectsURL(baseURL string, resource ResourceType, properties []string, after string) string {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(PageSize))
	if len(properties) > 0 {
		params.Set("properties", strings.Join(properties, ","))
	}
	if after != "" {
		params.Set("after", after)
	}

	return fmt.Sprintf("%s/crm/v3/objects/%s?%s", baseURL, resource, params.Encode())
}

// AssociationsURL constructs the URL for listing associations from one object
// to all objects of the target resource type.
func AssociationsURL(baseURL string, from ResourceType, objectID string, to ResourceType) string {
	return fmt.Sprintf("%s/crm/v4/objects/%s/%s/associations/%s",
		baseURL, from, url.PathEscape(objectID), to)
}

// PropertiesURL constructs the URL for the property (schema) listing of a
// resource type.
func PropertiesURL(baseURL string, resource ResourceType) string {
	return fmt.Sprintf("%s/crm/v3/properties/%s", baseURL, resource)
}

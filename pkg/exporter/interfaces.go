package exporter

import (
	"context"

	"hubexport/pkg/checkpoint"
	"hubexport/pkg/hubspot"
	"hubexport/pkg/store"
)

// Client is the remote API surface the driver depends on
type Client interface {
	ListProperties(ctx context.Context, resource hubspot.ResourceType) ([]string, error)
	FetchObjectPage(ctx context.Context, resource hubspot.ResourceType, properties []string, after string) ([]hubspot.Object, error)
	ListAssociations(ctx context.Context, from hubspot.ResourceType, objectID string, to hubspot.ResourceType) ([]hubspot.Association, error)
}

// RecordStore is the persistence surface the driver depends on
type RecordStore interface {
	EnsureSchema(ctx context.Context, properties map[hubspot.ResourceType][]string) error
	UpsertObjects(ctx context.Context, resource hubspot.ResourceType, properties []string, batch []hubspot.Object) error
	InsertAssociations(ctx context.Context, edges []store.Association) error
	ObjectIDs(ctx context.Context, resource hubspot.ResourceType) ([]string, error)
	SnapshotAll(ctx context.Context, dir string) error
}

// CheckpointStore is the resume-state surface the driver depends on
type CheckpointStore interface {
	Load(resource string, phase checkpoint.Phase) (*checkpoint.Checkpoint, error)
	SaveCursor(resource string, phase checkpoint.Phase, cursor string) error
	SaveIndex(resource string, phase checkpoint.Phase, index int) error
	Clear(resource string, phase checkpoint.Phase) error
	IsComplete(resource string, phase checkpoint.Phase) bool
	MarkComplete(resource string, phase checkpoint.Phase) error
	ClearAll(resources []string) error
}

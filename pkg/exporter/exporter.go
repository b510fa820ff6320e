package exporter

import (
	"context"
	"fmt"

	"hubexport/pkg/checkpoint"
	"hubexport/pkg/config"
	"hubexport/pkg/hubspot"
	"hubexport/pkg/logger"
	"hubexport/pkg/store"
)

// stuckCursorThreshold is the number of consecutive pages allowed to return
// the same next cursor before the phase is abandoned. A stuck cursor means
// the API keeps serving the same page and the loop would otherwise never end.
const stuckCursorThreshold = 3

// Exporter drives the full export pipeline: per-resource data phases first,
// then per-resource association phases, then a CSV snapshot of everything
// stored. It is strictly sequential; one page or one object is in flight at
// any time, and every page boundary is checkpointed so an interrupted run
// resumes without refetching completed pages.
type Exporter struct {
	client      Client
	store       RecordStore
	checkpoints CheckpointStore
	resources   []hubspot.ResourceType
	limit       int
	snapshotDir string
	logger      logger.Logger

	// properties per resource, discovered once per run
	properties map[hubspot.ResourceType][]string
}

// New creates an exporter from its collaborators and export settings
func New(client Client, recordStore RecordStore, checkpoints CheckpointStore, cfg config.ExportConfig) *Exporter {
	log := logger.GetLogger()

	resources := hubspot.AllResources()
	if len(cfg.Resources) > 0 {
		resources = resources[:0]
		for _, name := range cfg.Resources {
			resource, err := hubspot.ParseResourceType(name)
			if err != nil {
				log.WithField("resource", name).Warn("ignoring unknown resource type")
				continue
			}
			resources = append(resources, resource)
		}
	}

	return &Exporter{
		client:      client,
		store:       recordStore,
		checkpoints: checkpoints,
		resources:   resources,
		limit:       cfg.Limit,
		snapshotDir: cfg.SnapshotDir,
		logger:      log,
		properties:  make(map[hubspot.ResourceType][]string),
	}
}

// Run executes the whole pipeline. Any fatal error, including transport
// exhaustion, aborts the entire run immediately; checkpoints already written
// remain on disk so the next run resumes where this one stopped. After a
// clean unlimited run that drained every phase, all resume state is wiped so
// the next invocation starts fresh.
func (e *Exporter) Run(ctx context.Context) error {
	if err := e.discoverSchemas(ctx); err != nil {
		return err
	}

	for _, resource := range e.resources {
		if err := e.ExportObjects(ctx, resource); err != nil {
			return err
		}
	}

	for _, resource := range e.resources {
		if err := e.ExportAssociations(ctx, resource); err != nil {
			return err
		}
	}

	if err := e.store.SnapshotAll(ctx, e.snapshotDir); err != nil {
		return err
	}

	if e.limit == 0 && e.allPhasesComplete() {
		names := make([]string, 0, len(e.resources))
		for _, resource := range e.resources {
			names = append(names, resource.String())
		}
		if err := e.checkpoints.ClearAll(names); err != nil {
			return err
		}
		e.logger.Info("export run complete, resume state cleared")
	}

	return nil
}

// discoverSchemas fetches the property list for every resource type and
// creates the matching tables. Discovery runs before any data phase so a
// resumed run sees the same schema as the interrupted one.
func (e *Exporter) discoverSchemas(ctx context.Context) error {
	for _, resource := range e.resources {
		props, err := e.client.ListProperties(ctx, resource)
		if err != nil {
			return fmt.Errorf("failed to discover %s properties: %w", resource, err)
		}
		e.properties[resource] = props
	}

	return e.store.EnsureSchema(ctx, e.properties)
}

// ExportObjects runs the data phase for one resource type: fetch pages from
// the saved cursor (or the start), upsert each page, and checkpoint the
// cursor after every persisted page. The phase ends when a page comes back
// empty (drained), when the record limit is reached, or when the cursor
// stops advancing (stuck).
func (e *Exporter) ExportObjects(ctx context.Context, resource hubspot.ResourceType) error {
	res := resource.String()

	if e.checkpoints.IsComplete(res, checkpoint.PhaseData) {
		e.logger.InfoWithFields("data phase already complete, skipping", map[string]interface{}{
			"resource": res,
		})
		return nil
	}

	cursor := ""
	cp, err := e.checkpoints.Load(res, checkpoint.PhaseData)
	if err != nil {
		return err
	}
	if cp != nil && cp.Kind == checkpoint.KindCursor {
		cursor = cp.Cursor
		e.logger.InfoWithFields("resuming data phase", map[string]interface{}{
			"resource": res,
			"cursor":   cursor,
		})
	} else {
		e.logger.InfoWithFields("starting data phase", map[string]interface{}{
			"resource": res,
		})
	}

	total := 0
	sameCursor := 0
	drained := false
	limitReached := false

	for {
		page, err := e.client.FetchObjectPage(ctx, resource, e.properties[resource], cursor)
		if err != nil {
			return fmt.Errorf("failed to fetch %s page: %w", res, err)
		}

		if len(page) == 0 {
			drained = true
			break
		}

		if err := e.store.UpsertObjects(ctx, resource, e.properties[resource], page); err != nil {
			return err
		}
		total += len(page)

		next := page[len(page)-1].ID
		if next == cursor {
			sameCursor++
			if sameCursor >= stuckCursorThreshold {
				// Leave the checkpoint in place and move on; the phase is
				// neither complete nor resumable past this point.
				e.logger.ErrorWithFields("cursor not advancing, abandoning data phase", map[string]interface{}{
					"resource":   res,
					"cursor":     cursor,
					"iterations": sameCursor,
				})
				return nil
			}
		} else {
			sameCursor = 0
		}
		cursor = next

		e.logger.InfoWithFields("page persisted", map[string]interface{}{
			"resource": res,
			"records":  len(page),
			"total":    total,
			"cursor":   cursor,
		})

		if e.limit > 0 && total >= e.limit {
			e.logger.InfoWithFields("record limit reached, stopping data phase", map[string]interface{}{
				"resource": res,
				"limit":    e.limit,
				"total":    total,
			})
			limitReached = true
			break
		}

		// A checkpoint save failure is fatal: continuing without durable
		// resume state would make an interruption unrecoverable.
		if err := e.checkpoints.SaveCursor(res, checkpoint.PhaseData, cursor); err != nil {
			return err
		}
	}

	if err := e.checkpoints.Clear(res, checkpoint.PhaseData); err != nil {
		return err
	}
	if drained && !limitReached && e.limit == 0 {
		if err := e.checkpoints.MarkComplete(res, checkpoint.PhaseData); err != nil {
			return err
		}
	}

	e.logger.InfoWithFields("data phase finished", map[string]interface{}{
		"resource": res,
		"total":    total,
		"drained":  drained,
	})

	return nil
}

// ExportAssociations runs the association phase for one resource type: walk
// the locally stored ids in sorted order from the saved index, fetch each
// object's associations to every partner type, and checkpoint the index after
// every object. Resources with no association partners have no phase at all.
func (e *Exporter) ExportAssociations(ctx context.Context, resource hubspot.ResourceType) error {
	partners := resource.AssociationPartners()
	if len(partners) == 0 {
		return nil
	}

	res := resource.String()

	if e.checkpoints.IsComplete(res, checkpoint.PhaseAssociations) {
		e.logger.InfoWithFields("association phase already complete, skipping", map[string]interface{}{
			"resource": res,
		})
		return nil
	}

	start := 0
	cp, err := e.checkpoints.Load(res, checkpoint.PhaseAssociations)
	if err != nil {
		return err
	}
	if cp != nil && cp.Kind == checkpoint.KindIndex {
		start = cp.Index
		e.logger.InfoWithFields("resuming association phase", map[string]interface{}{
			"resource": res,
			"index":    start,
		})
	} else {
		e.logger.InfoWithFields("starting association phase", map[string]interface{}{
			"resource": res,
		})
	}

	// Sorted ascending, so the index always addresses the same object across
	// runs regardless of insertion order.
	ids, err := e.store.ObjectIDs(ctx, resource)
	if err != nil {
		return err
	}
	if start > len(ids) {
		start = len(ids)
	}

	limitReached := false

	for index := start; index < len(ids); index++ {
		id := ids[index]

		for _, partner := range partners {
			assocs, err := e.client.ListAssociations(ctx, resource, id, partner)
			if err != nil {
				return fmt.Errorf("failed to fetch %s associations for %s: %w", res, id, err)
			}

			edges := make([]store.Association, 0, len(assocs))
			for _, a := range assocs {
				edges = append(edges, store.Association{
					FromObjectType: res,
					FromObjectID:   id,
					ToObjectType:   partner.String(),
					ToObjectID:     a.TargetID(),
				})
			}
			if err := e.store.InsertAssociations(ctx, edges); err != nil {
				return err
			}
		}

		if e.limit > 0 && index+1 >= e.limit {
			e.logger.InfoWithFields("record limit reached, stopping association phase", map[string]interface{}{
				"resource": res,
				"limit":    e.limit,
				"index":    index + 1,
			})
			limitReached = true
			break
		}

		if err := e.checkpoints.SaveIndex(res, checkpoint.PhaseAssociations, index+1); err != nil {
			return err
		}
	}

	if err := e.checkpoints.Clear(res, checkpoint.PhaseAssociations); err != nil {
		return err
	}
	if !limitReached && e.limit == 0 {
		if err := e.checkpoints.MarkComplete(res, checkpoint.PhaseAssociations); err != nil {
			return err
		}
	}

	e.logger.InfoWithFields("association phase finished", map[string]interface{}{
		"resource": res,
		"objects":  len(ids) - start,
	})

	return nil
}

// allPhasesComplete reports whether every phase of every selected resource
// carries a completion marker. A phase abandoned as stuck leaves no marker,
// which keeps the end-of-run cleanup from wiping its checkpoint.
func (e *Exporter) allPhasesComplete() bool {
	for _, resource := range e.resources {
		res := resource.String()
		if !e.checkpoints.IsComplete(res, checkpoint.PhaseData) {
			return false
		}
		if len(resource.AssociationPartners()) > 0 && !e.checkpoints.IsComplete(res, checkpoint.PhaseAssociations) {
			return false
		}
	}
	return true
}

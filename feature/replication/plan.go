package replication

import (
	"context"
	"fmt"

	"bucket-diff/core/diff"
	"bucket-diff/core/listing"
	"bucket-diff/core/metrics"

	"github.com/minio/minio-go/v7"
)

// ActionType represents the type of replication action.
type ActionType string

const (
	// ActionCopy copies the latest version of a key missing from the second bucket.
	ActionCopy ActionType = "copy"
	// ActionCopyVersions replays versions of the first bucket missing from the second, oldest first.
	ActionCopyVersions ActionType = "copy_versions"
	// ActionDelete removes a key that exists only in the second bucket.
	ActionDelete ActionType = "delete"
	// ActionReport records a difference without changing anything.
	ActionReport ActionType = "report"
)

// Action represents a planned replication operation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the object key.
	Key string `json:"key"`

	// Versions are the versions to replay, oldest first. Copy actions carry exactly one.
	Versions []listing.Entry `json:"versions,omitempty"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`
}

// Bytes returns the number of bytes the action transfers.
func (a Action) Bytes() int64 {
	var n int64
	for _, v := range a.Versions {
		if !v.IsDeleteMarker {
			n += v.Size
		}
	}
	return n
}

// PlanSummary provides aggregate statistics for a replication plan.
type PlanSummary struct {
	// OnlyInFirst counts keys missing from the second bucket.
	OnlyInFirst int `json:"only_in_first"`

	// OnlyInSecond counts keys missing from the first bucket.
	OnlyInSecond int `json:"only_in_second"`

	// Differing counts keys whose content differs.
	Differing int `json:"differing"`

	// Equal counts keys in sync.
	Equal int `json:"equal"`

	// CopyActions counts planned copy and copy_versions actions.
	CopyActions int `json:"copy_actions"`

	// DeleteActions counts planned delete actions.
	DeleteActions int `json:"delete_actions"`

	// ReportActions counts differences that are only reported.
	ReportActions int `json:"report_actions"`

	// CopyBytes is the total payload of the copy actions.
	CopyBytes int64 `json:"copy_bytes"`
}

// Add accumulates other into s.
func (s *PlanSummary) Add(other PlanSummary) {
	s.OnlyInFirst += other.OnlyInFirst
	s.OnlyInSecond += other.OnlyInSecond
	s.Differing += other.Differing
	s.Equal += other.Equal
	s.CopyActions += other.CopyActions
	s.DeleteActions += other.DeleteActions
	s.ReportActions += other.ReportActions
	s.CopyBytes += other.CopyBytes
}

// Plan contains the actions derived from one diff round.
type Plan struct {
	// Actions are ordered by key within each classification.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// ApplyOptions controls whether a plan is executed.
type ApplyOptions struct {
	// DryRun prevents execution of any action if true.
	DryRun bool

	// Confirmed indicates the caller accepted the changes.
	// If false, nothing is executed regardless of DryRun.
	Confirmed bool
}

// Enabled reports whether the plan should be executed.
func (o ApplyOptions) Enabled() bool {
	return o.Confirmed && !o.DryRun
}

// BuildPlan derives replication actions from a diff outcome.
func BuildPlan(out *diff.Outcome, policy string) *Plan {
	plan := &Plan{Summary: PlanSummary{
		OnlyInFirst:  len(out.OnlyInFirst),
		OnlyInSecond: len(out.OnlyInSecond),
		Differing:    len(out.Differing),
		Equal:        len(out.Equal),
	}}

	add := func(a Action) {
		switch a.Type {
		case ActionCopy, ActionCopyVersions:
			plan.Summary.CopyActions++
			plan.Summary.CopyBytes += a.Bytes()
		case ActionDelete:
			plan.Summary.DeleteActions++
		case ActionReport:
			plan.Summary.ReportActions++
		}
		plan.Actions = append(plan.Actions, a)
	}

	for _, key := range diff.SortedKeys(out.OnlyInFirst) {
		newest := out.OnlyInFirst[key].Newest()
		if newest.IsDeleteMarker {
			// Copying an older version would resurrect a deleted object.
			add(Action{Type: ActionReport, Key: key, Reason: "deleted in first bucket, absent from second"})
			continue
		}
		add(Action{Type: ActionCopy, Key: key, Versions: []listing.Entry{newest}, Reason: "missing in second bucket"})
	}

	for _, key := range diff.SortedKeys(out.Differing) {
		missing := out.Differing[key]
		versions := make([]listing.Entry, 0, len(missing))
		for i := len(missing) - 1; i >= 0; i-- {
			versions = append(versions, missing[i])
		}
		add(Action{
			Type:     ActionCopyVersions,
			Key:      key,
			Versions: versions,
			Reason:   fmt.Sprintf("%d newer version(s) missing in second bucket", len(versions)),
		})
	}

	for _, key := range diff.SortedKeys(out.OnlyInSecond) {
		if policy == PolicyDelete {
			add(Action{Type: ActionDelete, Key: key, Reason: "absent from first bucket"})
			continue
		}
		add(Action{Type: ActionReport, Key: key, Reason: "only in second bucket"})
	}

	return plan
}

// Apply executes the copy and delete actions of plan from first to second.
// It returns the number of actions executed. Requires opts.Confirmed and !opts.DryRun.
// Actions are idempotent, so a failed apply can be repeated with the same plan.
func Apply(ctx context.Context, plan *Plan, first, second Endpoint, opts ApplyOptions) (executed int, err error) {
	if !opts.Enabled() {
		return 0, nil
	}

	var deleteKeys []string
	for _, action := range plan.Actions {
		switch action.Type {
		case ActionCopy, ActionCopyVersions:
			if err := replay(ctx, action, first, second); err != nil {
				metrics.RecordReplicationAction(string(action.Type), false)
				return executed, err
			}
			metrics.RecordReplicationAction(string(action.Type), true)
			executed++
		case ActionDelete:
			deleteKeys = append(deleteKeys, action.Key)
		}
	}

	if len(deleteKeys) > 0 {
		if err := removeBatch(ctx, second, deleteKeys); err != nil {
			metrics.RecordReplicationAction(string(ActionDelete), false)
			return executed, err
		}
		for range deleteKeys {
			metrics.RecordReplicationAction(string(ActionDelete), true)
		}
		executed += len(deleteKeys)
	}

	return executed, nil
}

// replay writes the action's versions to the second bucket in order.
// A delete marker becomes a plain delete, which versioned targets record as a delete marker.
func replay(ctx context.Context, action Action, first, second Endpoint) error {
	if first.Client == nil {
		return fmt.Errorf("%s backend cannot read objects", first.Backend)
	}
	if second.Client == nil {
		return fmt.Errorf("%s backend cannot write objects", second.Backend)
	}

	for _, v := range action.Versions {
		if v.IsDeleteMarker {
			if err := removeBatch(ctx, second, []string{action.Key}); err != nil {
				return err
			}
			continue
		}
		if err := copyVersion(ctx, first, second, action.Key, v); err != nil {
			return err
		}
	}
	return nil
}

func copyVersion(ctx context.Context, first, second Endpoint, key string, v listing.Entry) error {
	reader, err := first.Client.GetObject(ctx, first.Bucket, key, minio.GetObjectOptions{VersionID: v.VersionID})
	if err != nil {
		return fmt.Errorf("failed to read %s from %s: %w", key, first.Bucket, err)
	}
	defer reader.Close()

	if _, err := second.Client.PutObject(ctx, second.Bucket, key, reader, v.Size, minio.PutObjectOptions{}); err != nil {
		return fmt.Errorf("failed to write %s to %s: %w", key, second.Bucket, err)
	}
	return nil
}

func removeBatch(ctx context.Context, ep Endpoint, keys []string) error {
	if ep.Client == nil {
		return fmt.Errorf("%s backend cannot delete objects", ep.Backend)
	}

	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	var failed []string
	var firstErr error
	for rErr := range ep.Client.RemoveObjects(ctx, ep.Bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		failed = append(failed, rErr.ObjectName)
		if firstErr == nil {
			firstErr = rErr.Err
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to delete %d object(s) from %s (first: %s): %w", len(failed), ep.Bucket, failed[0], firstErr)
	}
	return nil
}

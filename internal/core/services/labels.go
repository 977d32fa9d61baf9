package services

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/fess-mcp/internal/core/domain"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/fess-mcp/internal/core/ports/driving"
)

// Ensure LabelCatalog implements the interface.
var _ driving.LabelService = (*LabelCatalog)(nil)

const refreshKey = "labels"

// failureCooldown bounds how often a failing index is retried by callers
// that did not ask for a refresh. It never exceeds the TTL.
const failureCooldown = 30 * time.Second

// refreshFailure records the last failed refresh.
type refreshFailure struct {
	at  time.Time
	err error
}

// LabelCatalog reconciles configured labels with the index's live label
// list. The merged snapshot is swapped atomically and read without locks.
type LabelCatalog struct {
	source     driven.LabelSource
	configured map[string]domain.LabelDefinition
	strict     bool
	ttl        time.Duration
	timeout    time.Duration
	log        *zap.Logger

	// now is replaceable in tests.
	now func() time.Time

	snapshot atomic.Pointer[domain.LabelCatalogSnapshot]
	failure  atomic.Pointer[refreshFailure]
	group    singleflight.Group
}

// NewLabelCatalog creates a catalog. The initial snapshot contains only the
// configured labels (plus "all") and is treated as stale.
func NewLabelCatalog(source driven.LabelSource, settings domain.Settings, log *zap.Logger) *LabelCatalog {
	if log == nil {
		log = zap.NewNop()
	}

	configured := make(map[string]domain.LabelDefinition, len(settings.Labels))
	for value, def := range settings.Labels {
		def.Value = value
		configured[value] = def
	}

	c := &LabelCatalog{
		source:     source,
		configured: configured,
		strict:     settings.StrictLabels,
		ttl:        settings.Limits.LabelCacheTTL,
		timeout:    settings.UpstreamTimeout,
		log:        log,
		now:        time.Now,
	}
	c.snapshot.Store(MergeLabels(configured, nil, time.Time{}, false))
	return c
}

// Snapshot returns the current snapshot without refreshing.
func (c *LabelCatalog) Snapshot() *domain.LabelCatalogSnapshot {
	return c.snapshot.Load()
}

// Get returns the catalog, refreshing it first when it is older than the
// TTL or forceRefresh is set. Concurrent refreshes share one remote fetch.
// A failed refresh serves the previous snapshot with a warning.
func (c *LabelCatalog) Get(ctx context.Context, forceRefresh bool) domain.LabelListing {
	current := c.snapshot.Load()
	if !forceRefresh && c.fresh(current) {
		return domain.LabelListing{Snapshot: current}
	}
	if !forceRefresh {
		if f := c.recentFailure(); f != nil {
			return domain.LabelListing{Snapshot: current, Stale: true, Warning: failureWarning(f.err)}
		}
	}

	ch := c.group.DoChan(refreshKey, func() (any, error) {
		return c.refresh()
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			c.log.Warn("label refresh failed", zap.Error(res.Err), zap.Bool("shared", res.Shared))
			return domain.LabelListing{Snapshot: c.snapshot.Load(), Stale: true, Warning: failureWarning(res.Err)}
		}
		snap, _ := res.Val.(*domain.LabelCatalogSnapshot)
		return domain.LabelListing{Snapshot: snap}
	case <-ctx.Done():
		return domain.LabelListing{
			Snapshot: current,
			Stale:    true,
			Warning:  fmt.Sprintf("label refresh still in progress: %v", ctx.Err()),
		}
	}
}

// ValidateLabel accepts "all", configured labels and labels the index
// knows. Unknown labels are rejected in strict mode and logged otherwise.
func (c *LabelCatalog) ValidateLabel(ctx context.Context, label string) error {
	if label == domain.LabelAll {
		return nil
	}
	if _, ok := c.configured[label]; ok {
		return nil
	}

	listing := c.Get(ctx, false)
	if entry, ok := listing.Snapshot.Lookup(label); ok && entry.PresentInIndex() {
		if c.strict {
			c.log.Warn("label exists in the index but not in config",
				zap.String("label", label))
		}
		return nil
	}

	if c.strict {
		return domain.Validation(
			fmt.Sprintf("unknown label %q", label),
			"call list_labels to see available labels, or use 'all' to search without a label filter")
	}
	c.log.Warn("label is not configured and may not exist in the index; proceeding",
		zap.String("label", label))
	return nil
}

// recentFailure returns the last failed refresh while it is inside the
// cooldown window.
func (c *LabelCatalog) recentFailure() *refreshFailure {
	f := c.failure.Load()
	if f == nil {
		return nil
	}
	if c.now().Sub(f.at) >= min(failureCooldown, c.ttl) {
		return nil
	}
	return f
}

func failureWarning(err error) string {
	return fmt.Sprintf("label refresh failed, serving last known labels: %v", err)
}

func (c *LabelCatalog) fresh(snap *domain.LabelCatalogSnapshot) bool {
	if snap == nil || snap.FetchedAt.IsZero() {
		return false
	}
	return c.now().Sub(snap.FetchedAt) < c.ttl
}

// refresh fetches the remote catalog, retrying once, and publishes a new
// snapshot. It runs detached from any caller's context so that one caller
// giving up does not abort the refresh others are waiting on.
func (c *LabelCatalog) refresh() (*domain.LabelCatalogSnapshot, error) {
	remote, err := c.fetch()
	if err != nil {
		c.log.Debug("label fetch failed, retrying once", zap.Error(err))
		remote, err = c.fetch()
	}
	if err != nil {
		c.failure.Store(&refreshFailure{at: c.now(), err: err})
		return nil, err
	}

	snap := MergeLabels(c.configured, remote, c.now(), true)
	c.snapshot.Store(snap)
	c.failure.Store(nil)
	c.log.Debug("label catalog refreshed", zap.Int("labels", len(snap.Order)))
	return snap, nil
}

func (c *LabelCatalog) fetch() ([]domain.RemoteLabel, error) {
	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.source.ListLabels(ctx)
}

// MergeLabels builds a snapshot from configured and remote labels.
// Configured prose is authoritative; remote-only labels get placeholder
// metadata; "all" is always present. remoteReached reports whether remote
// is a successful fetch result (as opposed to no fetch yet).
func MergeLabels(
	configured map[string]domain.LabelDefinition,
	remote []domain.RemoteLabel,
	fetchedAt time.Time,
	remoteReached bool,
) *domain.LabelCatalogSnapshot {
	remoteNames := make(map[string]string, len(remote))
	for _, r := range remote {
		if r.Value == "" {
			continue
		}
		remoteNames[r.Value] = r.Name
	}

	entries := make(map[string]domain.LabelEntry, len(configured)+len(remoteNames)+1)
	var configuredOrder, remoteOrder []string

	for value, def := range configured {
		def.Value = value
		name, inRemote := remoteNames[value]
		entries[value] = domain.LabelEntry{
			LabelDefinition: def,
			Name:            name,
			Availability:    configuredAvailability(inRemote || (value == domain.LabelAll && remoteReached)),
		}
		if value != domain.LabelAll {
			configuredOrder = append(configuredOrder, value)
		}
	}

	if _, ok := entries[domain.LabelAll]; !ok {
		entries[domain.LabelAll] = domain.LabelEntry{
			LabelDefinition: domain.DefaultAllLabel,
			Availability:    configuredAvailability(remoteReached),
		}
	}

	for value, name := range remoteNames {
		if _, ok := entries[value]; ok {
			continue
		}
		title := name
		if title == "" {
			title = value
		}
		entries[value] = domain.LabelEntry{
			LabelDefinition: domain.LabelDefinition{
				Value:       value,
				Title:       title,
				Description: domain.UnconfiguredLabelDescription,
				Examples:    []string{},
			},
			Name:         name,
			Availability: domain.AvailabilityRemoteOnly,
		}
		remoteOrder = append(remoteOrder, value)
	}

	sort.Strings(configuredOrder)
	sort.Strings(remoteOrder)

	order := make([]string, 0, len(entries))
	order = append(order, domain.LabelAll)
	order = append(order, configuredOrder...)
	order = append(order, remoteOrder...)

	return &domain.LabelCatalogSnapshot{
		Entries:   entries,
		Order:     order,
		FetchedAt: fetchedAt,
	}
}

func configuredAvailability(inRemote bool) domain.Availability {
	if inRemote {
		return domain.AvailabilityBoth
	}
	return domain.AvailabilityConfigOnly
}

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"PortalDHT/internal/domain"
	"PortalDHT/internal/logger"
	"PortalDHT/internal/storage/contentdb"
	"PortalDHT/internal/storage/metaindex"
	"PortalDHT/internal/telemetry"
	"PortalDHT/internal/usage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "PortalDHT/internal/storage"

var tracer = otel.Tracer(tracerName)

// On-disk layout beneath the data directory.
const (
	contentSubdir = "content"
	indexFile     = "portal.sqlite"
)

// Config carries the identity and disk budget of the local store.
type Config struct {
	// NodeID is the identifier all content distances are ranked against.
	NodeID domain.NodeID
	// CapacityKB is the disk budget in kilobytes. Once measured usage
	// exceeds it the engine switches permanently to eviction mode.
	CapacityKB uint64
}

// Engine is the radius bounded store. It admits every key while the
// data radius is still unbounded; after the capacity budget has been
// exceeded it evicts the farthest entry on each store and only admits
// keys strictly closer than the current radius.
//
// A single write lock guards the whole store path, so radius, farthest
// key and the saturation flag always change together. Readers take the
// shared side of the same lock and never observe a half-applied store.
type Engine struct {
	cfg     Config
	dataDir string
	content ContentStore
	index   MetadataIndex
	probe   UsageProbe
	lgr     logger.Logger

	mu              sync.RWMutex
	dataRadius      domain.Distance
	farthestKey     domain.ContentKey
	capacityReached bool
}

func newEngine(cfg Config, dataDir string, opts ...Option) *Engine {
	e := &Engine{
		cfg:        cfg,
		dataDir:    dataDir,
		probe:      usage.DirBytes,
		lgr:        &logger.NopLogger{},
		dataRadius: domain.MaxDistance,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// New builds an engine over already opened content and index handles
// and recovers radius state from whatever the index holds. Both
// handles become exclusively owned by the engine: no other component
// may write through them while the engine is open.
func New(cfg Config, dataDir string, content ContentStore, index MetadataIndex, opts ...Option) (*Engine, error) {
	e := newEngine(cfg, dataDir, opts...)
	e.content = content
	e.index = index
	if err := e.recoverState(context.Background()); err != nil {
		return nil, err
	}
	return e, nil
}

// Open creates or reopens the standard on-disk layout beneath dataDir:
// a badger content database under "content" and the sqlite metadata
// index in "portal.sqlite". The schema is created when absent, so
// opening a fresh directory and reopening an existing one are the same
// call.
func Open(cfg Config, dataDir string, opts ...Option) (*Engine, error) {
	e := newEngine(cfg, dataDir, opts...)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir %s: %w", dataDir, err)
	}
	content, err := contentdb.New(filepath.Join(dataDir, contentSubdir), contentdb.WithLogger(e.lgr))
	if err != nil {
		return nil, err
	}
	index, err := metaindex.New(filepath.Join(dataDir, indexFile), cfg.NodeID)
	if err != nil {
		if cerr := content.Close(); cerr != nil {
			e.lgr.Error("close content store after failed index open", logger.F("err", cerr))
		}
		return nil, err
	}
	e.content = content
	e.index = index
	if err := e.recoverState(context.Background()); err != nil {
		if cerr := e.content.Close(); cerr != nil {
			e.lgr.Error("close content store after failed recovery", logger.F("err", cerr))
		}
		if cerr := e.index.Close(); cerr != nil {
			e.lgr.Error("close metadata index after failed recovery", logger.F("err", cerr))
		}
		return nil, err
	}
	return e, nil
}

// recoverState rebuilds the in-memory radius and farthest-key state
// from the persisted index. When the measured usage already exceeds
// the budget the engine resumes saturated with a finite radius;
// otherwise it restarts permissive and lets the first overflowing
// store re-establish saturation.
func (e *Engine) recoverState(ctx context.Context) error {
	farthest, ok, err := e.index.Farthest(ctx)
	if err != nil {
		return fmt.Errorf("storage: recover farthest key: %w", err)
	}
	if !ok {
		return nil
	}
	e.farthestKey = farthest

	entries, err := e.index.Count(ctx)
	if err != nil {
		e.lgr.Warn("index count unavailable during recovery", logger.F("err", err))
	}
	usageKB, err := e.totalUsageKB()
	if err != nil {
		e.lgr.Warn("usage probe failed during recovery, admission stays unbounded",
			logger.F("err", err))
		return nil
	}
	if usageKB > e.cfg.CapacityKB {
		e.capacityReached = true
		if dist, derr := e.cfg.NodeID.DistanceTo(farthest); derr != nil {
			e.lgr.Warn("distance of recovered farthest key unusable, radius stays unbounded",
				logger.FKey("key", farthest), logger.F("err", derr))
		} else {
			e.dataRadius = dist
		}
	}
	e.lgr.Info("storage state recovered",
		logger.F("entries", entries),
		logger.F("usageKb", usageKB),
		logger.F("capacityKb", e.cfg.CapacityKB),
		logger.F("capacityReached", e.capacityReached),
		logger.FKey("farthest", e.farthestKey),
		logger.F("radius", e.dataRadius))
	return nil
}

// ShouldStore reports whether key currently falls inside the data
// radius. While the radius is unbounded every key is accepted; once
// eviction has established a finite radius only strictly closer keys
// pass, so a key exactly on the boundary is rejected. Pure predicate,
// safe to call concurrently with reads and stores.
func (e *Engine) ShouldStore(key domain.ContentKey) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.shouldStoreLocked(key)
}

func (e *Engine) shouldStoreLocked(key domain.ContentKey) bool {
	if e.dataRadius == domain.MaxDistance {
		return true
	}
	dist, err := e.cfg.NodeID.DistanceTo(key)
	if err != nil {
		e.lgr.Warn("distance computation failed, treating key as closest",
			logger.FKey("key", key), logger.F("err", err))
		dist = 0
	}
	return dist < e.dataRadius
}

// Store writes a content entry and keeps the capacity bookkeeping
// consistent. The whole call runs under the write lock.
//
// Behavior:
//   - Keys outside the data radius are silently skipped: no write, no
//     index mutation, nil error. Callers pre-filter via ShouldStore,
//     but the method is safe to call unconditionally.
//   - The content write happens first and the index insert second; if
//     the insert fails the just-written content is deleted again so
//     the two stores never diverge.
//   - Once the store is saturated, every accepted entry evicts the
//     current farthest entry from both stores, then the farthest key
//     and the radius are re-derived from the remaining population. A
//     failed re-query degrades the farthest pointer instead of failing
//     the call; a failed delete is returned as an error.
//   - Until saturation, each store measures usage and flips the
//     saturation flag once it exceeds the budget. The flag never
//     clears again.
//   - Finally the stored key takes over the farthest pointer when it
//     is farther than the current one. A store can therefore become
//     the next eviction victim immediately.
func (e *Engine) Store(ctx context.Context, key domain.ContentKey, value []byte) error {
	ctx, span := tracer.Start(ctx, "storage.Store", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	span.SetAttributes(telemetry.KeyAttributes("store.key", key)...)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.shouldStoreLocked(key) {
		span.SetAttributes(telemetry.DistanceAttribute("store.radius", e.dataRadius))
		e.lgr.Debug("store rejected by admission gate",
			logger.FKey("key", key),
			logger.F("radius", e.dataRadius))
		return nil
	}

	if err := e.content.Put(ctx, key, value); err != nil {
		return fmt.Errorf("storage: put content: %w", err)
	}
	if err := e.index.Insert(ctx, key); err != nil {
		if derr := e.content.Delete(ctx, key); derr != nil {
			e.lgr.Error("rollback of content write failed",
				logger.FKey("key", key), logger.F("err", derr))
		}
		return fmt.Errorf("storage: index key: %w", err)
	}

	if e.capacityReached {
		evicted, err := e.evictFarthestLocked(ctx)
		if err != nil {
			return err
		}
		if evicted != nil && evicted.Equal(key) {
			// The incoming key was itself the farthest entry. It is
			// gone again and must not seed the farthest pointer.
			e.lgr.Debug("stored key evicted within the same call", logger.FKey("key", key))
			return nil
		}
	} else {
		usageKB, err := e.totalUsageKB()
		switch {
		case err != nil:
			// The entry is already committed, so a failed probe only
			// delays saturation until the next store.
			e.lgr.Warn("usage probe failed, capacity check skipped", logger.F("err", err))
		case usageKB > e.cfg.CapacityKB:
			e.capacityReached = true
			e.lgr.Info("storage capacity reached, eviction enabled",
				logger.F("usageKb", usageKB),
				logger.F("capacityKb", e.cfg.CapacityKB))
		}
	}

	e.trackFarthestLocked(key)
	return nil
}

// evictFarthestLocked removes the current farthest entry from both the
// content store and the index, then re-derives the farthest pointer
// and the data radius from the remaining population. The caller must
// hold the write lock.
//
// Returns the evicted key, or nil when no farthest entry was tracked.
// Delete failures are fatal to the calling store; a failed or empty
// farthest re-query only degrades the pointer to nil and leaves the
// radius untouched until a later store corrects it.
func (e *Engine) evictFarthestLocked(ctx context.Context) (domain.ContentKey, error) {
	victim := e.farthestKey
	if victim == nil {
		e.lgr.Warn("eviction requested with no farthest key tracked")
		return nil, nil
	}
	if err := e.content.Delete(ctx, victim); err != nil {
		return nil, fmt.Errorf("storage: evict content %s: %w", victim, err)
	}
	if err := e.index.Remove(ctx, victim); err != nil {
		return nil, fmt.Errorf("storage: evict index entry %s: %w", victim, err)
	}
	e.farthestKey = nil

	next, ok, err := e.index.Farthest(ctx)
	if err != nil {
		e.lgr.Error("farthest re-query failed after eviction",
			logger.FKey("evicted", victim), logger.F("err", err))
		return victim, nil
	}
	if !ok {
		e.lgr.Debug("index empty after eviction", logger.FKey("evicted", victim))
		return victim, nil
	}
	if dist, derr := e.cfg.NodeID.DistanceTo(next); derr != nil {
		// A radius of zero would lock admission up entirely, so the
		// previous radius is kept when the distance is unusable.
		e.lgr.Warn("distance of new farthest key unusable, radius kept",
			logger.FKey("key", next), logger.F("err", derr))
	} else {
		e.dataRadius = dist
	}
	e.farthestKey = next

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(telemetry.KeyAttributes("store.evicted", victim)...)
	span.SetAttributes(telemetry.DistanceAttribute("store.radius", e.dataRadius))
	e.lgr.Info("farthest entry evicted",
		logger.FKey("evicted", victim),
		logger.FKey("farthest", next),
		logger.F("radius", e.dataRadius))
	return victim, nil
}

// trackFarthestLocked lets key take over the farthest pointer when it
// is strictly farther than the current one, or when none is tracked
// yet. The data radius is never touched here; it only moves on
// eviction. The caller must hold the write lock.
func (e *Engine) trackFarthestLocked(key domain.ContentKey) {
	dist, err := e.cfg.NodeID.DistanceTo(key)
	if err != nil {
		e.lgr.Warn("distance computation failed, treating key as closest",
			logger.FKey("key", key), logger.F("err", err))
		dist = 0
	}
	if e.farthestKey == nil {
		e.farthestKey = key.Clone()
		return
	}
	curr, err := e.cfg.NodeID.DistanceTo(e.farthestKey)
	if err != nil {
		curr = 0
	}
	if dist > curr {
		e.farthestKey = key.Clone()
	}
}

// Get returns the value stored under key, or nil when the key is not
// present. Reads never touch radius or eviction state.
func (e *Engine) Get(ctx context.Context, key domain.ContentKey) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "storage.Get", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	span.SetAttributes(telemetry.KeyAttributes("get.key", key)...)

	e.mu.RLock()
	defer e.mu.RUnlock()
	value, err := e.content.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("storage: get content: %w", err)
	}
	return value, nil
}

// CurrentRadius returns the admission radius. MaxDistance means the
// store has never evicted and still accepts every key.
func (e *Engine) CurrentRadius() domain.Distance {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dataRadius
}

// FarthestKey returns a copy of the tracked farthest key. ok is false
// when none is tracked yet.
func (e *Engine) FarthestKey() (domain.ContentKey, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.farthestKey == nil {
		return nil, false
	}
	return e.farthestKey.Clone(), true
}

// DistanceToKey computes the XOR distance between key and the local
// node identifier.
func (e *Engine) DistanceToKey(key domain.ContentKey) (domain.Distance, error) {
	return e.cfg.NodeID.DistanceTo(key)
}

// NodeID returns the identifier the engine ranks distances against.
func (e *Engine) NodeID() domain.NodeID {
	return e.cfg.NodeID
}

// TotalStorageUsageKB reports current usage in kilobytes: the content
// store's own statistic plus a recursive probe of the data directory,
// truncated to whole kilobytes. The probe walks the filesystem, so
// this belongs on a slow reporting path, never on the read path.
func (e *Engine) TotalStorageUsageKB() (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totalUsageKB()
}

func (e *Engine) totalUsageKB() (uint64, error) {
	onDisk, err := e.probe(e.dataDir)
	if err != nil {
		return 0, fmt.Errorf("storage: usage probe: %w", err)
	}
	return (e.content.SizeBytes() + onDisk) / 1000, nil
}

// Close releases the content store and the metadata index. The engine
// must not be used afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	var firstErr error
	if err := e.content.Close(); err != nil {
		firstErr = fmt.Errorf("storage: close content store: %w", err)
	}
	if err := e.index.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("storage: close metadata index: %w", err)
	}
	return firstErr
}

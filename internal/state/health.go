package state

import (
	"context"
	"fmt"
	"strconv"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/analytics"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/health"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/persist"
)

// RefreshHealth re-derives quality and timeline and extends episodes when quiet.
func (s *Store) RefreshHealth(ctx context.Context) Decision {
	s.refreshHealth(s.clock.Now())
	s.save(ctx, persist.KeyHealth)
	return s.record(ctx, "refreshHealth", applied(fmt.Sprintf("quality %d, %d episodes", s.e.Health.Quality.Score, len(s.e.Health.Episodes))))
}

// SetHealthConnected toggles the simulated device bridge.
func (s *Store) SetHealthConnected(ctx context.Context, connected bool) Decision {
	const intent = "setHealthConnected"
	if s.e.Health.Connected == connected {
		return s.record(ctx, intent, noop("connection unchanged"))
	}
	s.e.Health.Connected = connected
	s.refreshHealth(s.clock.Now())
	s.save(ctx, persist.KeyHealth)
	return s.record(ctx, intent, applied("connected="+strconv.FormatBool(connected)))
}

// RebuildHealth regenerates the profile from the scenario seed, keeping permissions.
func (s *Store) RebuildHealth(ctx context.Context) Decision {
	s.e.Health = health.Rebuild(s.e.Health, s.healthInputs(s.clock.Now()))
	s.save(ctx, persist.KeyHealth)
	s.emit(analytics.EventHealthRebuilt, map[string]string{"episodes": strconv.Itoa(len(s.e.Health.Episodes))})
	return s.record(ctx, "rebuildHealth", applied("health profile rebuilt"))
}

// DeleteDerivedHealth clears episodes and timeline and floors the quality scores.
func (s *Store) DeleteDerivedHealth(ctx context.Context) Decision {
	s.e.Health = health.DeleteDerived(s.e.Health)
	s.save(ctx, persist.KeyHealth)
	s.emit(analytics.EventHealthDerivedCleared, nil)
	return s.record(ctx, "deleteDerivedHealth", applied("derived health data cleared"))
}

// SaveEpisodeContext merges user tags, note and attribution into one episode.
func (s *Store) SaveEpisodeContext(ctx context.Context, id string, c health.EpisodeContext) Decision {
	const intent = "saveEpisodeContext"
	p, ok := health.ApplyEpisodeContext(s.e.Health, id, c)
	if !ok {
		return s.record(ctx, intent, noop(fmt.Sprintf("unknown episode %q", id)))
	}
	s.e.Health = p
	s.save(ctx, persist.KeyHealth)
	meta := map[string]string{"tags": strconv.Itoa(len(c.Tags))}
	if c.Attribution != nil {
		meta["attribution"] = string(*c.Attribution)
	}
	s.emit(analytics.EventEpisodeContextSaved, meta)
	return s.record(ctx, intent, applied("episode context saved"))
}

// SetHealthPermission changes one checklist row. Unsupported signals stay unsupported.
func (s *Store) SetHealthPermission(ctx context.Context, signal health.SignalType, status health.PermissionStatus) Decision {
	const intent = "setHealthPermission"
	p, ok := health.SetPermission(s.e.Health, signal, status)
	if !ok {
		return s.record(ctx, intent, noop(fmt.Sprintf("permission %s unchanged", signal)))
	}
	s.e.Health = p
	s.save(ctx, persist.KeyHealth)
	return s.record(ctx, intent, applied(fmt.Sprintf("%s %s", signal, status)))
}

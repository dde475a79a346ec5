package state

import "github.com/danielpatrickdp/mindsense/go-engine/internal/persist"

// HealthScreen is the view state of the health profile surface.
func (s *Store) HealthScreen() ScreenState {
	if !s.loaded {
		return ScreenState{Kind: ScreenLoading}
	}
	if issue := s.adapter.Issue(); issue != nil && issue.Key == persist.KeyHealth {
		return ScreenState{Kind: ScreenError, Info: issue.Message}
	}
	if !s.e.Health.Connected {
		return ScreenState{Kind: ScreenEmpty, Info: "Connect a health source to see stress episodes."}
	}
	if len(s.e.Health.Episodes) == 0 {
		return ScreenState{Kind: ScreenEmpty, Info: "No stress episodes detected yet. Rebuild to regenerate insights."}
	}
	return ScreenState{Kind: ScreenReady}
}

// SessionScreen is the view state of the session history surface.
func (s *Store) SessionScreen() ScreenState {
	if !s.loaded {
		return ScreenState{Kind: ScreenLoading}
	}
	if issue := s.adapter.Issue(); issue != nil &&
		(issue.Key == persist.KeySessionHistory || issue.Key == persist.KeyActiveSession) {
		return ScreenState{Kind: ScreenError, Info: issue.Message}
	}
	if s.e.Active == nil && len(s.e.Sessions) == 0 {
		return ScreenState{Kind: ScreenEmpty, Info: "No sessions yet. Start the recommended preset to begin."}
	}
	return ScreenState{Kind: ScreenReady}
}

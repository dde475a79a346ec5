package state

// ShowBanner replaces any visible banner. The previous banner's pending
// auto-dismiss is cancelled; the new one dismisses after the configured delay.
// The dismiss timer is only armed under a Loop, whose inbox carries the callback
// onto the owning goroutine. Without one, Banner hides it once ExpiresAt passes.
func (s *Store) ShowBanner(message string) Banner {
	if s.bannerTimer != nil {
		s.bannerTimer.Stop()
		s.bannerTimer = nil
	}
	s.bannerSeq++
	id := s.bannerSeq
	now := s.clock.Now()
	b := Banner{ID: id, Message: message, ShownAt: now, ExpiresAt: now.Add(s.bannerDelay)}
	s.banner = &b
	if dispatch := s.dispatch; dispatch != nil {
		s.bannerTimer = s.scheduler.AfterFunc(s.bannerDelay, func() {
			dispatch(func(st *Store) { st.expireBanner(id) })
		})
	}
	return b
}

// DismissBanner hides the banner immediately.
func (s *Store) DismissBanner() {
	if s.bannerTimer != nil {
		s.bannerTimer.Stop()
		s.bannerTimer = nil
	}
	s.banner = nil
}

// expireBanner drops the banner only if it is still the one the timer was armed for.
func (s *Store) expireBanner(id int) {
	if s.banner == nil || s.banner.ID != id {
		return
	}
	s.banner = nil
	s.bannerTimer = nil
}

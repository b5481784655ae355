package usecase

import (
	"context"
	"sync"
	"time"

	"mutitpay-storefront/internal/domain"
)

// SearchSession drives the live search box of one connected client.
// Every keystroke bumps a generation counter; only work started for the
// current generation may publish, older answers are dropped.
type SearchSession struct {
	search   *SearchUsecase
	debounce time.Duration
	publish  func(domain.SearchPanel)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	term       string
	open       bool
	closed     bool
	generation uint64
	timer      *time.Timer
	last       domain.SearchPanel

	best, sale []domain.SearchHit
	haveRecs   bool
}

// NewSearchSession binds a session to ctx. publish is called for every
// panel change and must not block or call back into the session.
func NewSearchSession(ctx context.Context, search *SearchUsecase, debounce time.Duration, publish func(domain.SearchPanel)) *SearchSession {
	ctx, cancel := context.WithCancel(ctx)
	return &SearchSession{
		search:   search,
		debounce: debounce,
		publish:  publish,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Term returns the current query text
func (s *SearchSession) Term() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// Input stores the new term and restarts the debounce timer
func (s *SearchSession) Input(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.term = term
	s.open = true
	s.generation++
	gen := s.generation
	s.stopTimerLocked()
	s.wg.Add(1)
	s.timer = time.AfterFunc(s.debounce, func() {
		defer s.wg.Done()
		s.evaluate(gen)
	})
}

// Focus opens the panel. With a short query the recommendations are loaded.
func (s *SearchSession) Focus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.open = true
	if !s.search.IsShortQuery(s.term) {
		s.emitLocked(s.last)
		return
	}
	s.generation++
	gen := s.generation
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.evaluate(gen)
	}()
}

// Blur closes the panel and keeps the term
func (s *SearchSession) Blur() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.open = false
	s.emitLocked(s.last)
}

// Submit returns the listing URL for the term, closes the panel and resets
// the term. It reports false and changes nothing for a blank term.
func (s *SearchSession) Submit() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false
	}
	target, ok := SubmitURL(s.term)
	if !ok {
		return "", false
	}
	s.stopTimerLocked()
	s.generation++
	s.term = ""
	s.open = false
	s.emitLocked(domain.SearchPanel{Mode: domain.SearchModeRecommendations})
	return target, true
}

// Close stops pending work and waits for it to finish
func (s *SearchSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.generation++
	s.stopTimerLocked()
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *SearchSession) stopTimerLocked() {
	if s.timer != nil && s.timer.Stop() {
		// the callback will never run, release its slot
		s.wg.Done()
	}
	s.timer = nil
}

func (s *SearchSession) current(gen uint64) bool {
	return !s.closed && gen == s.generation
}

// emitLocked publishes p with the session's open flag and remembers it
func (s *SearchSession) emitLocked(p domain.SearchPanel) {
	p.Open = s.open
	s.last = p
	s.publish(p)
}

// publishIf emits p only if gen is still the latest generation
func (s *SearchSession) publishIf(gen uint64, p domain.SearchPanel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(gen) {
		return false
	}
	s.emitLocked(p)
	return true
}

func (s *SearchSession) evaluate(gen uint64) {
	s.mu.Lock()
	if !s.current(gen) {
		s.mu.Unlock()
		return
	}
	term := s.term
	short := s.search.IsShortQuery(term)
	best, sale, haveRecs := s.best, s.sale, s.haveRecs
	s.mu.Unlock()

	if short {
		if !haveRecs {
			best, sale = s.search.Recommendations(s.ctx)
			if len(best) > 0 || len(sale) > 0 {
				s.mu.Lock()
				s.best, s.sale, s.haveRecs = best, sale, true
				s.mu.Unlock()
			}
		}
		s.publishIf(gen, s.search.RecommendationPanel(term, best, sale))
		return
	}

	cats, subs := s.search.MatchCategories(s.ctx, term)
	if !s.publishIf(gen, s.search.LoadingPanel(term, cats, subs)) {
		return
	}
	products, err := s.search.SearchProducts(s.ctx, term)
	if s.ctx.Err() != nil {
		return
	}
	s.publishIf(gen, s.search.ResultPanel(s.ctx, term, cats, subs, products, err))
}

package repository

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/polylab/thegallery/internal/model"
)

// Stream delivers pages of one filtered listing on demand. The first page
// loads immediately; each LoadMore pulls the next. The stream is pinned to
// the generation current at open time: once the repository is refreshed or
// the filter changes, the stream closes and the consumer reopens with a
// fresh one, so no page ever mixes filters or library states.
//
// C carries Loading before each fetch and then Success or Failure. A Failure
// terminates the stream; there is no automatic retry. C is closed on
// termination, exhaustion, cancellation and Close.
type Stream struct {
	C <-chan model.Result[Page]

	demand    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// MediaStream opens a paging stream over the filtered gallery. The stream
// runs until exhausted, failed, invalidated, cancelled or closed.
func (r *Repository) MediaStream(ctx context.Context, filter model.Filter) *Stream {
	out := make(chan model.Result[Page], 1)
	s := &Stream{
		C:      out,
		demand: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	// The first page needs no explicit demand.
	s.demand <- struct{}{}

	go r.serveStream(ctx, filter, s, out)
	return s
}

// LoadMore requests the next page. Redundant calls while a fetch is already
// pending collapse into one.
func (s *Stream) LoadMore() {
	select {
	case s.demand <- struct{}{}:
	case <-s.done:
	default:
	}
}

// Close terminates the stream. Safe to call more than once.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (r *Repository) serveStream(ctx context.Context, filter model.Filter, s *Stream, out chan<- model.Result[Page]) {
	defer close(out)

	gen := r.Generation()

	for page := 0; ; page++ {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-s.demand:
		}

		if r.Generation() != gen {
			log.Debug().Int("page", page).Msg("media stream invalidated, closing")
			return
		}

		if !emit(ctx, out, model.Loading[Page]()) {
			return
		}

		p, err := r.LoadPage(ctx, filter, page, r.pageSize)
		if err != nil {
			emit(ctx, out, model.Failure[Page](err))
			return
		}

		// A write may have landed between the fetch and now; a stale page
		// must not reach the consumer.
		if r.Generation() != gen {
			log.Debug().Int("page", page).Msg("media stream invalidated, dropping page")
			return
		}

		if !emit(ctx, out, model.Success(p)) {
			return
		}

		if !p.HasMore {
			return
		}
	}
}

package diff

import (
	"context"
	"errors"
	"fmt"

	"bucket-diff/core/listing"

	"golang.org/x/sync/errgroup"
)

// RunRound performs one diff round from state. Only the sides with nothing left to walk are
// fetched; when both need a page they are listed concurrently. On error no new state is
// produced and the round can be repeated from the same state.
func RunRound(ctx context.Context, sides Sides, opts Options, state State) (*Outcome, error) {
	need := state.needs()

	var first, second *NormalizedPage
	g, gctx := errgroup.WithContext(ctx)
	if need.First {
		g.Go(func() error {
			p, err := fetch(gctx, "first", sides.First, opts, state.Cursor.FirstToken, state.Cursor.FirstDrained, state.FirstDeferred, state.FirstLastKey)
			first = p
			return err
		})
	}
	if need.Second {
		g.Go(func() error {
			p, err := fetch(gctx, "second", sides.Second, opts, state.Cursor.SecondToken, state.Cursor.SecondDrained, state.SecondDeferred, state.SecondLastKey)
			second = p
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return Merge(state, first, second, opts), nil
}

func fetch(ctx context.Context, name string, side Side, opts Options, token string, drained bool, deferred *KeyGroup, lastKey string) (*NormalizedPage, error) {
	if side.Source == nil {
		return nil, fmt.Errorf("%s side has no listing source", name)
	}

	// A drained side only has its held-back group left; an empty final page closes it.
	page := &listing.Page{}
	if !drained {
		var err error
		page, err = side.Source.List(ctx, listing.Request{
			Bucket:    side.Bucket,
			Prefix:    opts.Prefix,
			MaxKeys:   opts.MaxKeys,
			Versioned: opts.Versioned,
			Token:     token,
		})
		if err != nil {
			return nil, fmt.Errorf("list %s bucket %s: %w", name, side.Bucket, err)
		}
	}

	normalized, err := Normalize(page, deferred, lastKey, opts)
	if err != nil {
		return nil, fmt.Errorf("normalize %s bucket %s: %w", name, side.Bucket, err)
	}
	return &normalized, nil
}

// Run drives rounds from state until both listings are exhausted or fn returns ErrStop.
// fn sees every outcome before the next round starts; it is the place to persist
// outcome.Next. The returned state is the last one fn accepted.
func Run(ctx context.Context, sides Sides, opts Options, state State, fn func(*Outcome) error) (State, error) {
	for !state.Done() {
		out, err := RunRound(ctx, sides, opts, state)
		if err != nil {
			return state, err
		}
		if err := fn(out); err != nil {
			if errors.Is(err, ErrStop) {
				return out.Next, nil
			}
			return state, err
		}
		state = out.Next
	}
	return state, nil
}

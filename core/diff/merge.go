package diff

import "fmt"

// window is the unclassified part of one side during a merge.
type window struct {
	groups    []KeyGroup
	deferred  *KeyGroup
	lastKey   string
	exhausted bool
	drained   bool
}

func (w *window) absorb(p *NormalizedPage) {
	w.groups = append(w.groups, cloneGroups(p.Groups)...)
	w.deferred = cloneGroup(p.Deferred)
	if n := len(p.Groups); n > 0 {
		w.lastKey = p.Groups[n-1].Key
	}
	w.exhausted = !p.Truncated && p.Deferred == nil
	w.drained = p.Drained
}

// mayProduce reports whether key can still show up on this side, either from pages not
// read yet or as more versions of the open group. Everything a side has not delivered
// sorts above its last finalized key.
func (w *window) mayProduce(key string) bool {
	switch {
	case w.exhausted:
		return false
	case w.drained:
		return w.deferred != nil && key == w.deferred.Key
	case w.deferred != nil:
		return key >= w.deferred.Key
	default:
		return key > w.lastKey
	}
}

// Merge classifies the keys of the carried-over state together with the pages fetched
// this round. first or second is nil when that side was not fetched.
//
// Keys are walked in ascending order. A key present on one side only is classified once
// the other side can no longer produce it; keys present on both sides are compared. The
// walk stops as soon as one side runs dry while the other may still deliver matching keys,
// so at most one side carries leftover groups into the next round.
func Merge(state State, first, second *NormalizedPage, opts Options) *Outcome {
	out := newOutcome()

	a := &window{
		groups:    cloneGroups(state.FirstLeft),
		deferred:  cloneGroup(state.FirstDeferred),
		lastKey:   state.FirstLastKey,
		exhausted: state.Cursor.FirstExhausted,
		drained:   state.Cursor.FirstDrained,
	}
	b := &window{
		groups:    cloneGroups(state.SecondLeft),
		deferred:  cloneGroup(state.SecondDeferred),
		lastKey:   state.SecondLastKey,
		exhausted: state.Cursor.SecondExhausted,
		drained:   state.Cursor.SecondDrained,
	}

	cursor := state.Cursor
	if first != nil {
		a.absorb(first)
		cursor.FirstToken = first.NextToken
		cursor.FirstExhausted = a.exhausted
		cursor.FirstDrained = a.drained
		out.Fetched.First = true
		out.Malformed = append(out.Malformed, first.Malformed...)
		out.Warnings = append(out.Warnings, describeMalformed("first", first.Malformed)...)
	}
	if second != nil {
		b.absorb(second)
		cursor.SecondToken = second.NextToken
		cursor.SecondExhausted = b.exhausted
		cursor.SecondDrained = b.drained
		out.Fetched.Second = true
		out.Malformed = append(out.Malformed, second.Malformed...)
		out.Warnings = append(out.Warnings, describeMalformed("second", second.Malformed)...)
	}

	i, j := 0, 0
walk:
	for i < len(a.groups) || j < len(b.groups) {
		switch {
		case i < len(a.groups) && j < len(b.groups):
			ga, gb := a.groups[i], b.groups[j]
			switch {
			case ga.Key == gb.Key:
				out.compare(ga, gb)
				i++
				j++
			case ga.Key < gb.Key:
				out.onlyInFirst(ga)
				i++
			default:
				out.onlyInSecond(gb, opts)
				j++
			}
		case i < len(a.groups):
			if b.mayProduce(a.groups[i].Key) {
				break walk
			}
			out.onlyInFirst(a.groups[i])
			i++
		default:
			if a.mayProduce(b.groups[j].Key) {
				break walk
			}
			out.onlyInSecond(b.groups[j], opts)
			j++
		}
	}

	out.Next = State{
		Cursor:         cursor,
		FirstLeft:      remaining(a.groups[i:]),
		SecondLeft:     remaining(b.groups[j:]),
		FirstDeferred:  a.deferred,
		SecondDeferred: b.deferred,
		FirstLastKey:   a.lastKey,
		SecondLastKey:  b.lastKey,
		Round:          state.Round + 1,
	}
	out.Cursor = cursor
	out.FirstExhausted = cursor.FirstExhausted
	out.SecondExhausted = cursor.SecondExhausted
	return out
}

func remaining(groups []KeyGroup) []KeyGroup {
	if len(groups) == 0 {
		return nil
	}
	return append([]KeyGroup(nil), groups...)
}

// compare looks up the newest content of the second bucket in the first bucket's history.
// A match at position 0 means the key is in sync; a later match means the newer versions
// before it are missing from the second bucket; no match means the whole history is.
// The scan is linear in the number of versions of the key.
func (o *Outcome) compare(first, second KeyGroup) {
	o.noteDropped("first", first)
	o.noteDropped("second", second)

	target := second.Newest()
	for i, e := range first.Entries {
		if !e.SameContent(target) {
			continue
		}
		if i == 0 {
			o.Equal = append(o.Equal, first.Key)
		} else {
			o.Differing[first.Key] = first.Entries[:i:i]
		}
		return
	}
	o.Differing[first.Key] = first.Entries
}

func (o *Outcome) onlyInFirst(g KeyGroup) {
	o.noteDropped("first", g)
	o.OnlyInFirst[g.Key] = g
}

func (o *Outcome) onlyInSecond(g KeyGroup, opts Options) {
	if opts.RefFirstBucketOnly {
		return
	}
	o.noteDropped("second", g)
	o.OnlyInSecond[g.Key] = g
}

func (o *Outcome) noteDropped(side string, g KeyGroup) {
	if g.Dropped > 0 {
		o.Warnings = append(o.Warnings, fmt.Sprintf("%s: key %q has %d versions beyond the history limit", side, g.Key, g.Dropped))
	}
}

package diff

import (
	"sort"

	"bucket-diff/core/listing"
)

// DefaultMaxVersionsPerKey bounds how many versions of a single key are held in memory.
const DefaultMaxVersionsPerKey = 1000

// KeyGroup holds the versions of one key, newest first.
type KeyGroup struct {
	Key     string          `json:"key"`
	Entries []listing.Entry `json:"entries"`

	// Dropped counts older versions discarded by the history limit.
	Dropped int `json:"dropped,omitempty"`
}

// Newest returns the most recent version of the key.
func (g KeyGroup) Newest() listing.Entry {
	if len(g.Entries) == 0 {
		return listing.Entry{Key: g.Key}
	}
	return g.Entries[0]
}

func (g KeyGroup) clone() KeyGroup {
	g.Entries = append([]listing.Entry(nil), g.Entries...)
	return g
}

func cloneGroups(groups []KeyGroup) []KeyGroup {
	if len(groups) == 0 {
		return nil
	}
	out := make([]KeyGroup, len(groups))
	for i, g := range groups {
		out[i] = g.clone()
	}
	return out
}

func cloneGroup(g *KeyGroup) *KeyGroup {
	if g == nil {
		return nil
	}
	c := g.clone()
	return &c
}

// NormalizedPage is a listing page grouped by key.
type NormalizedPage struct {
	// Groups are final key groups in ascending key order.
	Groups []KeyGroup

	// Deferred is the trailing group of a truncated versioned page. More versions of
	// it may follow on the next page.
	Deferred *KeyGroup

	// Malformed entries were dropped from the page.
	Malformed []listing.Entry

	Truncated bool
	NextToken string

	// Drained is set when the listing is finished but Deferred was held back to keep the
	// page within MaxKeys groups. No further page is requested for the side.
	Drained bool
}

// ByKey indexes the final groups by key.
func (p NormalizedPage) ByKey() map[string]KeyGroup {
	out := make(map[string]KeyGroup, len(p.Groups))
	for _, g := range p.Groups {
		out[g.Key] = g
	}
	return out
}

// Cursor is the resume position of both listings.
// An empty token on a side that is not exhausted means the listing starts from the beginning.
type Cursor struct {
	FirstToken      string `json:"first_token,omitempty"`
	SecondToken     string `json:"second_token,omitempty"`
	FirstExhausted  bool   `json:"first_exhausted"`
	SecondExhausted bool   `json:"second_exhausted"`

	// FirstDrained and SecondDrained mark a finished listing whose deferred group is still
	// open. The next round finalizes it without calling the source.
	FirstDrained  bool `json:"first_drained,omitempty"`
	SecondDrained bool `json:"second_drained,omitempty"`
}

// State is everything a round needs to continue a diff. The zero value starts a new diff.
type State struct {
	Cursor Cursor `json:"cursor"`

	// FirstLeft and SecondLeft are final groups that could not be classified yet.
	FirstLeft  []KeyGroup `json:"first_left,omitempty"`
	SecondLeft []KeyGroup `json:"second_left,omitempty"`

	FirstDeferred  *KeyGroup `json:"first_deferred,omitempty"`
	SecondDeferred *KeyGroup `json:"second_deferred,omitempty"`

	// FirstLastKey and SecondLastKey are the greatest keys finalized on each side.
	FirstLastKey  string `json:"first_last_key,omitempty"`
	SecondLastKey string `json:"second_last_key,omitempty"`

	Round int `json:"round"`
}

// Done reports whether both listings are fully consumed and classified.
func (s State) Done() bool {
	return s.Cursor.FirstExhausted && s.Cursor.SecondExhausted &&
		len(s.FirstLeft) == 0 && len(s.SecondLeft) == 0
}

// Leftover returns the number of groups carried to the next round.
func (s State) Leftover() int {
	n := len(s.FirstLeft) + len(s.SecondLeft)
	if s.FirstDeferred != nil {
		n++
	}
	if s.SecondDeferred != nil {
		n++
	}
	return n
}

// needs reports which sides must be fetched in the next round: a side is fetched when
// nothing of it is left to walk and its listing is not finished.
func (s State) needs() Fetch {
	return Fetch{
		First:  len(s.FirstLeft) == 0 && !s.Cursor.FirstExhausted,
		Second: len(s.SecondLeft) == 0 && !s.Cursor.SecondExhausted,
	}
}

// Fetch records which sides were listed in a round.
type Fetch struct {
	First  bool `json:"first"`
	Second bool `json:"second"`
}

// Options configure a diff.
type Options struct {
	Prefix  string
	MaxKeys int

	// Versioned compares full version histories instead of latest objects.
	Versioned bool

	// RefFirstBucketOnly suppresses keys that exist only in the second bucket.
	RefFirstBucketOnly bool

	// MaxVersionsPerKey keeps at most this many newest versions per key. Zero uses the default.
	MaxVersionsPerKey int
}

// pageSize is the number of entries requested per page.
func (o Options) pageSize() int {
	return listing.Request{MaxKeys: o.MaxKeys}.PageSize()
}

func (o Options) maxVersions() int {
	if o.MaxVersionsPerKey <= 0 {
		return DefaultMaxVersionsPerKey
	}
	return o.MaxVersionsPerKey
}

// Side is one bucket of the comparison.
type Side struct {
	Source listing.Source
	Bucket string
}

// Sides are the two buckets being compared.
type Sides struct {
	First  Side
	Second Side
}

// Outcome is the result of one round. It is never modified after being returned.
type Outcome struct {
	OnlyInFirst  map[string]KeyGroup
	OnlyInSecond map[string]KeyGroup

	// Differing maps a key to the versions of the first bucket missing from the second,
	// newest first.
	Differing map[string][]listing.Entry

	Equal []string

	Cursor          Cursor
	FirstExhausted  bool
	SecondExhausted bool

	// Next is the state to pass to the following round.
	Next State

	Fetched   Fetch
	Malformed []listing.Entry
	Warnings  []string
}

func newOutcome() *Outcome {
	return &Outcome{
		OnlyInFirst:  make(map[string]KeyGroup),
		OnlyInSecond: make(map[string]KeyGroup),
		Differing:    make(map[string][]listing.Entry),
	}
}

// Done reports whether the diff is complete after this round.
func (o *Outcome) Done() bool {
	return o.Next.Done()
}

// Classified returns the number of keys decided in this round.
func (o *Outcome) Classified() int {
	return len(o.OnlyInFirst) + len(o.OnlyInSecond) + len(o.Differing) + len(o.Equal)
}

// SortedKeys returns the keys of a classification map in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fast Bernoulli sampling for high-frequency event streams.
//
// Naively, sampling each event with probability P means drawing a
// uniform variate per event and comparing it against P.  When events
// arrive millions of times per second that per-event draw dominates.
// Instead, draw one variate per *selected* event and derive from it a
// count of upcoming events that are guaranteed to be rejected.
//
// The count of failures between successes in a Bernoulli process
// follows a geometric distribution, and inverse transform sampling
// gives a closed form for it: if U is uniform on (0, 1), then
//
//	floor(log(U) / log(1-P))
//
// is distributed exactly as the number of rejected trials before the
// next selected one.  Counting that skip down costs one integer
// decrement per event; the logarithm and the fresh draw happen only
// once per selection, so the amortized cost shrinks as P does.  The
// results are indistinguishable from rolling the dice on every event.

package bernoulli

import (
	"errors"
	"fmt"
	"math"
)

// Source supplies uniform variates in [0, 1).  *math/rand.Rand
// satisfies Source.  A zero return value is tolerated: the sampler
// redraws until the variate is non-zero, since log(0) is undefined.
//
// The sampler never stores the Source it is given; each call borrows
// it for at most a handful of draws.  Sources have no thread-safety
// obligation beyond what their own contract states.
type Source interface {
	Float64() float64
}

// ErrInvalidProbability is returned by New and Init when the requested
// probability lies outside [0, 1].
var ErrInvalidProbability = errors.New("probability out of range [0, 1]")

// The skip count saturates here rather than wrapping.  For very small
// probabilities this skews sampling slightly, but the alternative is
// arbitrary-precision counters for events that would fire once per
// few hundred years.
const maxSkip = math.MaxUint64

// Bernoulli performs independent fixed-probability trials, drawing
// from its Source only when a trial succeeds.
//
// A Bernoulli is plain value state: it may be copied or embedded
// freely, and holds no reference to any Source.  Each instance is
// meant for one logical caller at a time; sharing one instance across
// goroutines without external locking corrupts the skip counter.
type Bernoulli struct {
	// probability is the chance that any given call to Trial
	// returns true.
	probability float64

	// invLogNotP caches 1 / log1p(-probability).  Unused (and zero)
	// when probability is exactly 0 or 1.
	invLogNotP float64

	// skip is the number of upcoming trials that will be rejected
	// before the next one is accepted.  maxSkip doubles as the
	// "never sample" sentinel when probability is 0.
	skip uint64
}

// New returns a sampler that selects events with the given
// probability.  One variate is drawn from src to seed the skip
// counter, except for the degenerate probabilities 0 and 1, which
// consume no randomness here or on any later call.
func New(probability float64, src Source) (*Bernoulli, error) {
	b := &Bernoulli{}
	if err := b.Init(probability, src); err != nil {
		return nil, err
	}
	return b, nil
}

// Init configures b as if freshly constructed with the given
// probability, discarding any countdown in progress.  There is no
// meaningful way to carry an in-flight skip count from one
// probability to another, so reconfiguration and construction are
// the same operation.
func (b *Bernoulli) Init(probability float64, src Source) error {
	// Written so that NaN fails the check too.
	if !(probability >= 0 && probability <= 1) {
		return fmt.Errorf("%w: %v", ErrInvalidProbability, probability)
	}
	b.probability = probability
	b.invLogNotP = 0
	if probability > 0 && probability < 1 {
		// log1p keeps precision for small probabilities, where
		// 1-p would round away the interesting digits.
		b.invLogNotP = 1 / math.Log1p(-probability)
	}
	b.resetSkip(src)
	return nil
}

// Probability returns the configured selection probability, as passed
// to New or Init.
func (b *Bernoulli) Probability() float64 {
	return b.probability
}

// Trial reports whether this event is selected.  Call it once per
// event.
//
// Almost every call only decrements the skip counter; the logarithm
// and the draw from src happen once per selection, so the lower the
// probability, the cheaper the average call.
func (b *Bernoulli) Trial(src Source) bool {
	if b.skip > 0 {
		b.skip--
		return false
	}
	b.resetSkip(src)
	return b.probability != 0
}

// MultiTrial performs n trials at once, reporting whether any of them
// selected.  It is equivalent in distribution to calling Trial n times
// and or-ing the results, but runs in constant time.
//
// This suits events with a size: treat an allocation of s bytes as s
// per-byte trials by calling MultiTrial(s), and larger allocations are
// proportionally more likely to be sampled.
func (b *Bernoulli) MultiTrial(n uint64, src Source) bool {
	if n == 0 {
		return false
	}
	if n < b.skip {
		b.skip -= n
		return false
	}
	// n overshot the skip count.  Because trials are independent, a
	// fresh skip count drawn at any moment has the right
	// distribution, so the overshoot needs no accounting.
	b.resetSkip(src)
	return b.probability != 0
}

// resetSkip draws the next skip count.  This is the only place
// randomness is consumed, and the degenerate probabilities bypass it.
func (b *Bernoulli) resetSkip(src Source) {
	switch b.probability {
	case 0:
		// Never selects.  The sentinel re-arms itself through this
		// same branch if the counter ever runs down.
		b.skip = maxSkip
	case 1:
		// Selects every event.
		b.skip = 0
	default:
		skip := math.Floor(math.Log(uniform(src)) * b.invLogNotP)
		if skip >= float64(maxSkip) {
			b.skip = maxSkip
		} else {
			b.skip = uint64(skip)
		}
	}
}

// uniform draws a variate in (0, 1), redrawing the [0, 1) sources
// until the value is non-zero.
func uniform(src Source) float64 {
	for {
		u := src.Float64()
		if u != 0.0 {
			return u
		}
	}
}

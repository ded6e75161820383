// The interesting figure is the gap between the two paths: the
// countdown path is a branch and a decrement, while the refill path
// pays for a logarithm and a draw from the source.  Lowering the
// probability shifts the mix toward the cheap path.

package bernoulli_test

import (
	"math/rand"
	"testing"

	bernoulli "github.com/fitzgen/fast-bernoulli"
)

func BenchmarkTrial_Half(b *testing.B) {
	benchmarkTrial(b, 0.5)
}

func BenchmarkTrial_1In100(b *testing.B) {
	benchmarkTrial(b, 0.01)
}

func BenchmarkTrial_1In10000(b *testing.B) {
	benchmarkTrial(b, 0.0001)
}

func BenchmarkMultiTrial_1In10000(b *testing.B) {
	b.ReportAllocs()

	rnd := rand.New(rand.NewSource(3441))
	sampler, err := bernoulli.New(0.0001, rnd)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	selected := 0
	for i := 0; i < b.N; i++ {
		if sampler.MultiTrial(64, rnd) {
			selected++
		}
	}
	_ = selected
}

func benchmarkTrial(b *testing.B, p float64) {
	b.ReportAllocs()

	rnd := rand.New(rand.NewSource(3441))
	sampler, err := bernoulli.New(p, rnd)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	selected := 0
	for i := 0; i < b.N; i++ {
		if sampler.Trial(rnd) {
			selected++
		}
	}
	_ = selected
}

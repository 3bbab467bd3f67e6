// Package randomname generates identifier-safe lowercase tokens from a
// caller-supplied *rand.Rand, rather than the global math/rand state that
// e.g. docker's moby/moby/pkg/namesgenerator relies on. The simulator needs
// one independent seeded stream per logical entity (spec.md §3's Seed and
// §5's per-entity RNG ownership), so a generator tied to global RNG state
// cannot be reused here without breaking determinism.
package randomname

import "math/rand"

var adjectives = []string{
	"quick", "lazy", "brave", "calm", "eager", "fuzzy", "gentle", "happy",
	"icy", "jolly", "keen", "lively", "mellow", "nimble", "odd", "proud",
	"quiet", "rapid", "shy", "tidy", "upbeat", "vivid", "witty", "zany",
}

var nouns = []string{
	"otter", "falcon", "maple", "cedar", "river", "meadow", "comet", "ember",
	"ridge", "harbor", "willow", "canyon", "lagoon", "prairie", "thicket",
	"summit", "delta", "grove", "tundra", "basin", "cove", "dune", "fjord",
}

// Generate returns a two-word, hyphen-joined name with the hyphen replaced
// by an underscore (spec.md §3's column-naming rule), e.g. "quick_otter".
func Generate(rng *rand.Rand) string {
	a := adjectives[rng.Intn(len(adjectives))]
	n := nouns[rng.Intn(len(nouns))]
	return a + "_" + n
}

// GenerateUnique returns a name not already present in taken, retrying
// until one is found. Used to satisfy spec.md §3's per-table column-name
// uniqueness invariant.
func GenerateUnique(rng *rand.Rand, taken map[string]bool) string {
	for {
		name := Generate(rng)
		if !taken[name] {
			return name
		}
	}
}

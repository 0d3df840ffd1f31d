// Package domain models news articles and the threat alerts derived from them.
//
// # Data Source
//
// Articles arrive from a GNews-style search API (and optionally from RSS
// feeds) as flat JSON records with title, description, content, url,
// publishedAt, and source fields. Missing fields are defaulted to the empty
// string rather than rejected; the upstream feeds are noisy and a partial
// record is still useful for scoring.
//
// # Threat Scoring
//
// A [Classifier] scores free text against a fixed weighted vocabulary.
// Matching is a plain lower-cased substring scan, not word-bounded: "strike"
// matches inside "airstrike". Weights are small integers (1 for a mild
// indicator, 2 for a strong one) and the text is classified unsafe when the
// summed weight of matched keywords reaches the threshold (2). The scan is
// order-independent because the score is a sum. This deliberately favors
// recall over precision; see the resolver notes below for the same trade-off.
//
// # Location Resolution
//
// A [Resolver] maps free text onto exactly one gazetteer place through an
// ordered fallback chain, returning at the first tier that produces a match:
//
//  1. Exact match: the first gazetteer name (in table-definition order) whose
//     lower-cased form appears as a substring of the text.
//  2. Entity match: place-typed spans from an external [Recognizer] are
//     re-scanned against the gazetteer the same way.
//  3. Region keywords: broad geography words ("north", "airport", "temple")
//     mapped to a representative place. Only consulted when the recognizer
//     produced spans that matched nothing.
//  4. Context keywords: incident-themed words ("militant", "strategic")
//     mapped to a representative place.
//  5. Default pool: a pseudo-random pick from a small fixed set of places.
//
// The chain never fails: a flagged threat always resolves to some plausible
// location, because the downstream map treats "somewhere nearby" as more
// valuable than "nothing shown". The tier-5 randomness source is injected so
// tests can pin it.
//
// # Gazetteer
//
// The gazetteer is a fixed table of place names to WGS-84 coordinates for
// the Kashmir region, loaded once at startup from the rules file. The source
// data contains a repeated place name; following the original dataset, the
// last definition wins for coordinates while the first keeps its position in
// the scan order.
package domain

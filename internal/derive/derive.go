// Package derive holds the pure read-side computations: order totals,
// revenue rollups, item status counts, the derived customer directory, and
// worker earnings. Every function operates on already-loaded collections
// passed in explicitly and never touches the store. Malformed or missing
// fields default to zero/empty; derivations return best-effort partial
// results instead of failing the view.
package derive

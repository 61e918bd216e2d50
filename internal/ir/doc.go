// Package ir is the serializable form of a codebook vocabulary.
//
// ElementSpec and ArgSpec describe vocabulary elements independently of a
// live model.Database. The CUE compiler produces them, the journal store
// persists them as canonical JSON, and scenario files embed them.
//
// Key design constraints:
//   - NO float types in canonical JSON; float bounds travel as text
//   - All JSON tags use snake_case
//   - Predicate approvals are carried by element name, so a spec can be
//     written before the approved elements have IDs
package ir

// Package model implements the codebook data model: a typed, ID-indexed
// object store holding a vocabulary of predicates and matrix column types
// and the data values bound to it.
//
// STRUCTURE:
//
// A Database owns exactly one Index and one VocabList. The Index is the only
// allocator of IDs; every vocabulary element and every formal argument it
// owns (including the column-predicate arguments synthesized for matrices)
// lives in the Index under its own ID.
//
// Data values, predicates and column predicates are not indexed. They refer
// to formal arguments and vocabulary elements by ID and are resolved through
// the Index on demand, so a structural edit can never leave a dangling
// pointer behind.
//
// SCHEMA EVOLUTION:
//
// Vocabulary elements are edited as detached clones:
//
//	ve, _ := db.Vocab().VocabElement(id)
//	fa, _ := ve.FormalArg(0)
//	_ = fa.SetName("<renamed>")
//	_ = ve.ReplaceFormalArg(fa, 0)
//	_ = db.Vocab().ReplaceVocabElement(ve)
//
// ReplaceVocabElement diffs the old and new argument lists by ID and runs
// the cascade over every registered dependent before the new shape is
// committed. A dependent is a data value, predicate or column predicate
// created through this package's constructors; it stays registered until
// Database.Release is called for it.
//
// CONCURRENCY:
//
// A Database is not safe for concurrent use. All operations, cascades
// included, complete synchronously before returning.
package model

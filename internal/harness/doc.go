// Package harness runs vocabulary editing scenarios.
//
// A scenario builds a vocabulary from CUE files, creates tracked
// predicates and column predicates, applies a sequence of vocabulary
// edits and checks that every instance followed them.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: rename_cascade
//	description: "Renaming an argument reaches every instance"
//	vocab:
//	  - vocab/gaze.cue
//	token: test-db-rename            # optional
//	instances:
//	  - name: p1
//	    element: looks
//	    args: {"<who>": child, "<at>": "(60,00:00:01:000)"}
//	  - name: row
//	    element: events
//	    args: {"<act>": {instance: p1}}
//	steps:
//	  - op: rename_arg
//	    element: looks
//	    arg: "<who>"
//	    to: "<subject>"
//	  - op: remove_element
//	    element: missing
//	    expect_error: NOT_FOUND
//	assertions:
//	  - type: instance_string
//	    instance: p1
//	    expect: "looks(child, 00:00:01:000)"
//	  - type: replay_matches
//
// # Edit Operations
//
//   - add_element, remove_element, rename_element, set_var_len
//   - add_arg, delete_arg, rename_arg, retype_arg, move_arg
//   - set_range, set_approved
//
// # Assertion Types
//
//   - instance_string: an instance's display string
//   - instance_db_string: a substring of an instance's DB string
//   - element_args: an element's argument names, in order
//   - element_exists, element_absent: whether an element is registered
//   - stats: database counts
//   - replay_matches: the journal replays to the same vocabulary
//
// # Deterministic Testing
//
// Every scenario runs against a fresh database with a fixed token
// (testutil.FixedTokenGenerator), journaled to an in-memory SQLite store.
// IDs are allocated in edit order, so traces are identical across runs
// and compare against golden files.
package harness

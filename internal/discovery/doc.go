// Package discovery implements the search-and-filter session behind the Explore view.
//
// A [Session] owns the query, the active preset scoping, the raw result set and the derived
// filtered/sorted view, plus the recent-search history. Every search supersedes the previous one:
// a generation counter is bumped and the previous context cancelled before the new request
// starts, and a completing search mutates state only if its generation is still current.
//
// State machine:
//
//	idle -> loading -> content | empty | error
//	error -> loading
//	content | empty -> loading
//
// Filter and sort changes never leave the error state and never leave idle before the first search.
package discovery

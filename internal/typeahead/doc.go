// Package typeahead coordinates search-as-you-type lookups.
//
// An Orchestrator turns raw input into at most one lookup per quiet
// window, tags every lookup with a sequencer token, and lets a response
// change the visible State only while its token is still current. Results
// that arrive after a newer query was dispatched, or after Clear, are
// discarded. The lookup itself is never aborted.
//
// Every transition replaces the State wholesale and is delivered to each
// subscriber in the order the transitions happened:
//
//	o := typeahead.New(lookup, typeahead.WithDebounce(300*time.Millisecond))
//	defer o.Close()
//	o.Subscribe(func(s typeahead.State) { render(s) })
//	o.SetQuery("re")
package typeahead

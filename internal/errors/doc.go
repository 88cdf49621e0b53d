// Package errors provides structured, actionable error messages for doclisten.
//
// Every error carries a short code (e.g. "L002") that maps to a registered
// template with a message, a longer explanation, and a category:
//   - listener: invalid listener declarations (unknown event, bad phase)
//   - target: misuse of the document event target
//   - config: configuration file problems
//   - protocol: WebSocket bridge frame errors
//   - cli: command line usage errors
//
// # Usage
//
//	err := errors.New("L002").
//	    WithField("listeners[1].event").
//	    WithSuggestion(`Use a document event name such as "keydown"`)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR L002: Unknown document event
//	//
//	//   listeners[1].event
//	//
//	//   The event name is not one of the recognized document event types.
//	//
//	//   Hint: Use a document event name such as "keydown"
package errors

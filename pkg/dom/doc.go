// Package dom provides a document-level event target.
//
// A Document keeps an ordered list of listeners per event type and invokes
// them when an event is dispatched, following the semantics of a browser's
// document.addEventListener / removeEventListener:
//
//   - Listeners are identified by their *Callback. Adding the same callback
//     twice for the same event type is a no-op; removing a callback that was
//     never added is a no-op.
//   - Listeners run in the order they were added.
//   - A listener added while an event is being dispatched does not see that
//     event; a listener removed while an event is being dispatched is skipped.
//   - A panicking listener is recovered and logged; the remaining listeners
//     still run.
//
// Callbacks are values with a stable identity. Create one per logical
// handler and keep it for as long as the listener may need removing:
//
//	onKey := dom.NewCallback(func(e *dom.Event) {
//	    fmt.Println("key:", e.String("key"))
//	})
//
//	doc := dom.NewDocument()
//	doc.AddEventListener(dom.KeyDown, onKey)
//	doc.Dispatch(ctx, dom.NewEvent(dom.KeyDown, map[string]any{"key": "Enter"}))
//	doc.RemoveEventListener(dom.KeyDown, onKey)
package dom

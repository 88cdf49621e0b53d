// Package listen attaches a declarative list of document event listeners to
// a component's lifecycle.
//
// Use is called once during component setup. It schedules two actions on the
// component's lifecycle hooks: on mount it adds every listener whose phase is
// Mounted or Both, and on unmount it removes every listener whose phase is
// Unmounted or Both. Both passes walk the list in the order given.
//
//	onKey := dom.NewCallback(func(e *dom.Event) { ... })
//
//	listen.Use(owner, doc, []listen.Listener{
//	    {Event: dom.KeyDown, Callback: onKey, When: listen.Both},
//	})
//
// The same *dom.Callback is used for adding and for removing, so a listener
// declared with When == Both is always detached at teardown.
//
// Use does not deduplicate. Declaring the same event and callback twice adds
// it twice; the document itself ignores the repeated add.
package listen

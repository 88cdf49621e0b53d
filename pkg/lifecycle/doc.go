// Package lifecycle provides component scopes with mount and unmount hooks.
//
// An Owner represents one component instance. Code running during the
// component's setup registers hooks on it:
//
//	owner := lifecycle.NewOwner(nil)
//	owner.OnMount(func() { fmt.Println("mounted") })
//	owner.OnUnmount(func() { fmt.Println("unmounting") })
//
//	owner.Mount()   // prints "mounted"
//	owner.Dispose() // prints "unmounting"
//
// Mount hooks run once, in registration order. Unmount hooks run once, in
// reverse registration order, and only for owners that were mounted. Owners
// form a tree mirroring the component tree: mounting a parent mounts its
// children after the parent's own hooks, and disposing a parent disposes its
// children first.
//
// Hooks run synchronously on the goroutine that calls Mount or Dispose.
package lifecycle

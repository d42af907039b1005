// Package watcher re-runs an import whenever its input files change.
//
// The Watcher subscribes to the directories holding the watched files via
// fsnotify, so files replaced by an editor's rename-on-save are still seen.
// Bursts of events are debounced into a single callback, and callbacks run
// one at a time on the watcher goroutine.
//
// Example usage:
//
//	w, err := watcher.New([]string{reviews, restaurants}, 2*time.Second, reimport)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	if err := w.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
package watcher

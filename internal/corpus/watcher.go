package corpus

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the store whenever the backing file is rewritten outside
// the process, e.g. when an admin upload replaces the dataset wholesale.
// Reloading after our own appends is harmless since Load is idempotent
// over the file contents. Returns a stop function.
func (s *Store) Watch() (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// watch the directory: editors and atomic renames replace the inode
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := s.Load(); err != nil {
					log.Printf("⚠️ Corpus reload failed after %s: %v", event.Op, err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️ Corpus watcher error: %v", err)
			}
		}
	}()

	return func() { watcher.Close() }, nil
}

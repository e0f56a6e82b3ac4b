package ldfilewatch

import (
	"fmt"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/launchdarkly/go-config-monitor/changetoken"
	"github.com/launchdarkly/go-config-monitor/interfaces"

	"github.com/launchdarkly/go-sdk-common/v3/ldlog"

	"github.com/fsnotify/fsnotify"
)

const retryDuration = time.Second

// FileChangeSource is an interfaces.ChangeTokenSource that fires whenever one of its files is
// created, written, renamed, or removed. A burst of file system events produces one notification.
type FileChangeSource struct {
	signal    *changetoken.Signal
	watcher   *fsnotify.Watcher
	loggers   ldlog.Loggers
	paths     []string
	absPaths  map[string]bool
	closeCh   chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
}

// WatchFiles starts watching the given files, reporting changes for the configuration called name.
// The watches are in place by the time it returns, so any later write is reported.
//
// The files do not need to exist yet; if a file or its directory is missing, the watch is retried
// every second, and a change is reported once it can be set up, since the file may have been created
// in the meantime. Symbolic links in the directory part of each path are resolved.
//
// Call Close to stop watching.
func WatchFiles(name string, paths []string, loggers ldlog.Loggers) (*FileChangeSource, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create file watcher: %w", err)
	}
	fw := &FileChangeSource{
		signal:   changetoken.NewSignal(name),
		watcher:  watcher,
		loggers:  loggers,
		paths:    paths,
		absPaths: make(map[string]bool),
		closeCh:  make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	watching := fw.trySetupWatches()
	go fw.run(watching)
	return fw, nil
}

var _ interfaces.ChangeTokenSource = (*FileChangeSource)(nil)

// Name is a standard method of ChangeTokenSource.
func (fw *FileChangeSource) Name() string {
	return fw.signal.Name()
}

// GetChangeToken is a standard method of ChangeTokenSource.
func (fw *FileChangeSource) GetChangeToken() interfaces.ChangeToken {
	return fw.signal.GetChangeToken()
}

// Close stops watching. It waits for the watch goroutine to exit, so no notification is delivered
// after Close returns. Calling it again has no effect.
func (fw *FileChangeSource) Close() error {
	var err error
	fw.closeOnce.Do(func() {
		close(fw.closeCh)
		<-fw.doneCh
		err = fw.watcher.Close()
	})
	return err
}

func (fw *FileChangeSource) run(watching bool) {
	defer close(fw.doneCh)
	retryCh := make(chan struct{}, 1)
	scheduleRetry := func() {
		time.AfterFunc(retryDuration, func() {
			select {
			case retryCh <- struct{}{}: // don't need multiple retries so no need to block
			default:
			}
		})
	}
	if watching {
		fw.logWatching()
	} else {
		scheduleRetry()
	}
	for {
		quit, changed := fw.waitForEvents(retryCh)
		if quit {
			return
		}
		if changed {
			fw.signal.Notify()
		}

		// Set up the watches again after every event; a file replaced by a rename is a new file.
		if !fw.trySetupWatches() {
			watching = false
			scheduleRetry()
		} else if !watching {
			// the files may have appeared while we could not watch them
			watching = true
			fw.logWatching()
			fw.signal.Notify()
		}
	}
}

func (fw *FileChangeSource) trySetupWatches() bool {
	if err := fw.setupWatches(); err != nil {
		fw.loggers.Warn(err.Error())
		return false
	}
	return true
}

func (fw *FileChangeSource) logWatching() {
	fw.loggers.Debugf("Watching %d file(s) for changes to configuration %q", len(fw.paths), fw.Name())
}

func (fw *FileChangeSource) setupWatches() error {
	for _, p := range fw.paths {
		absDirPath := path.Dir(p)
		realDirPath, err := filepath.EvalSymlinks(absDirPath)
		if err != nil {
			return fmt.Errorf(`unable to evaluate symlinks for "%s": %w`, absDirPath, err)
		}

		realPath := path.Join(realDirPath, path.Base(p))
		fw.absPaths[realPath] = true
		if err = fw.watcher.Add(realPath); err != nil {
			// The file may not exist yet; watching its directory is enough to see it appear.
			fw.loggers.Debugf(`Unable to watch path "%s" yet: %s`, realPath, err)
		}
		if err = fw.watcher.Add(realDirPath); err != nil {
			return fmt.Errorf(`unable to watch path "%s": %w`, realDirPath, err)
		}
	}
	return nil
}

// waitForEvents blocks until a relevant event or a retry is due. It reports whether the source has
// been closed, and whether one of the watched files changed.
func (fw *FileChangeSource) waitForEvents(retryCh <-chan struct{}) (quit, changed bool) {
	for {
		select {
		case <-fw.closeCh:
			return true, false
		case event := <-fw.watcher.Events:
			if !fw.absPaths[event.Name] {
				break
			}
			fw.consumeExtraEvents()
			return false, true
		case err := <-fw.watcher.Errors:
			fw.loggers.Errorf("File watcher error: %s", err)
		case <-retryCh:
			consumeExtraRetries(retryCh)
			return false, false
		}
	}
}

func (fw *FileChangeSource) consumeExtraEvents() {
	for {
		select {
		case <-fw.watcher.Events:
		default:
			return
		}
	}
}

func consumeExtraRetries(retryCh <-chan struct{}) {
	for {
		select {
		case <-retryCh:
		default:
			return
		}
	}
}

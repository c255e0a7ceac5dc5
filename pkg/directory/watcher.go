package directory

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DatasetWatcher watches the services dataset file for edits so operators
// can re-ingest without restarting the service.
type DatasetWatcher struct {
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
	onChange func()
	debounce time.Duration
	timer    *time.Timer
	stopCh   chan struct{}
}

// NewDatasetWatcher creates a watcher that fires onChange after dataset
// writes settle.
func NewDatasetWatcher(logger zerolog.Logger, onChange func()) (*DatasetWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dw := &DatasetWatcher{
		watcher:  watcher,
		logger:   logger,
		onChange: onChange,
		debounce: 500 * time.Millisecond,
		stopCh:   make(chan struct{}),
	}

	go dw.run()

	return dw, nil
}

// Watch starts watching the directory containing the dataset file.
func (dw *DatasetWatcher) Watch(datasetPath string) error {
	return dw.watcher.Add(filepath.Dir(datasetPath))
}

// Stop stops the watcher.
func (dw *DatasetWatcher) Stop() error {
	close(dw.stopCh)
	return dw.watcher.Close()
}

func (dw *DatasetWatcher) run() {
	for {
		select {
		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}

			// Only dataset files are interesting.
			if !strings.HasSuffix(strings.ToLower(event.Name), ".json") {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				dw.logger.Debug().
					Str("file", filepath.Base(event.Name)).
					Str("op", event.Op.String()).
					Msg("Dataset change detected")

				dw.scheduleChange()
			}

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			dw.logger.Error().Err(err).Msg("Dataset watcher error")

		case <-dw.stopCh:
			return
		}
	}
}

// scheduleChange debounces bursts of writes into one notification.
func (dw *DatasetWatcher) scheduleChange() {
	if dw.timer != nil {
		dw.timer.Stop()
	}

	dw.timer = time.AfterFunc(dw.debounce, func() {
		dw.logger.Debug().Msg("Dataset settled after changes")
		dw.onChange()
	})
}

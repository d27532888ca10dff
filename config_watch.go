package main

import (
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config whenever the file changes and delivers the
// result on configs. Runs until done closes.
func Watch(path string, configs chan<- *Config, errors chan<- error, done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("can't create watcher: %w", err)
	}
	go func() {
	loop:
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					break loop
				}
				// editors saving the file produce rename events, a write
				// only shows up when the file is changed in place
				if event.Op&(fsnotify.Write|fsnotify.Rename) > 0 {
					c, err := ReadConfig(path)
					if err != nil {
						errors <- err
						continue loop
					}
					slog.Info("config reloaded", "path", path)
					configs <- c
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					break loop
				}
				errors <- err
			case <-done:
				break loop
			}
		}
		// ignore Close error
		watcher.Close()
	}()
	err = watcher.Add(path)
	if err != nil {
		return err
	}
	return nil
}

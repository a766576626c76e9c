package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/mutagen-io/dirwatch/cmd"
	"github.com/mutagen-io/dirwatch/pkg/filesystem/watching"
	"github.com/mutagen-io/dirwatch/pkg/logging"
)

// updateInterval is the interval between watcher updates.
const updateInterval = 50 * time.Millisecond

func main() {
	// Parse arguments.
	if len(os.Args) != 2 {
		cmd.Fatal(errors.New("invalid number of arguments"))
	}
	watchRoot := os.Args[1]

	// Track termination signals.
	signalTermination := make(chan os.Signal, 1)
	signal.Notify(signalTermination, cmd.TerminationSignals...)

	// Create a watcher with trace logging.
	watcher, err := watching.NewDirectoryWatcher(
		watching.WithLogger(logging.NewLogger(logging.LevelTrace, os.Stderr)),
		watching.WithOverflowHandler(func() {
			fmt.Println("Event queue overflowed")
		}),
	)
	if err != nil {
		cmd.Fatal(errors.Wrap(err, "unable to create watcher"))
	}

	// Establish a recursive watch.
	id := watcher.AddWatch(watchRoot, true, func(kind watching.EventKind, directory, path string) {
		fmt.Printf("%s \"%s\"\n", kind, filepath.Join(directory, path))
	})
	if id == watching.InvalidWatchID {
		watcher.Close()
		cmd.Fatal(errors.New("unable to establish watch"))
	}
	fmt.Println("Watching", watchRoot, "with", watching.NativeBackendName)

	// Print events until termination.
	ticker := time.NewTicker(updateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			watcher.Update()
		case <-signalTermination:
			fmt.Println("Received termination signal, terminating watching...")
			fmt.Println("Registered directories at termination:", watcher.HandleCount(id))
			if err := watcher.Close(); err != nil {
				cmd.Fatal(errors.Wrap(err, "unable to close watcher"))
			}
			return
		}
	}
}

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gordonklaus/portaudio"
	"gitlab.com/gomidi/midi/v2"
)

// commandQueueSize bounds how many note events can pile up between two
// audio blocks before the engine starts dropping.
const commandQueueSize = 256

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level, AddSource: debug})
	slog.SetDefault(slog.New(h))
}

// reportUnderruns logs underruns as they accumulate, the audio callback
// itself must not log.
func reportUnderruns(eng *engine, done <-chan struct{}) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	var last int64
	for {
		select {
		case <-ticker.C:
			n := eng.underruns.Load()
			if n > last {
				slog.Warn("audio underruns", "new", n-last, "total", n)
				last = n
			}
		case <-done:
			return
		}
	}
}

func main() {
	configFile := flag.String("config", "", "Path to config, created with defaults if not found.")
	debug := flag.Bool("debug", false, "Log note events and ignored messages.")
	list := flag.Bool("list", false, "List MIDI input ports and exit.")
	wavFile := flag.String("wav", "", "Render the demo phrase to this file and exit.")
	flag.Parse()
	initLogger(*debug)
	defer midi.CloseDriver()
	if *list {
		if err := listInputs(); err != nil {
			slog.Error("can't list midi inputs", "err", err)
			os.Exit(1)
		}
		return
	}
	if *configFile == "" {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		return
	}
	config, err := ReadConfig(*configFile)
	if err != nil {
		slog.Error("can't read config", "path", *configFile, "err", err)
		os.Exit(1)
	}
	if *wavFile != "" {
		if err := writeWav(*wavFile, config); err != nil {
			slog.Error("can't render wav", "path", *wavFile, "err", err)
			os.Exit(1)
		}
		return
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	eng := newEngine(float64(config.SampleRate), config.BlockSize, commandQueueSize)
	tbl := newWavetable(waveSine, config.WavetableFrequency, config.WavetableSize, float64(config.SampleRate))
	d, err := newDispatcher(eng, tbl, &config.DynamicConfig)
	if err != nil {
		slog.Error("config invalid", "err", err)
		os.Exit(1)
	}

	err = portaudio.Initialize()
	if err != nil {
		slog.Error("can't init portaudio", "err", err)
		os.Exit(1)
	}
	// ignore Terminate error
	defer portaudio.Terminate()
	// mono out at a fixed block size
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(config.SampleRate), config.BlockSize,
		func(out []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
			if flags&portaudio.OutputUnderflow != 0 {
				eng.underruns.Add(1)
			}
			eng.renderBlock(out)
		})
	if err != nil {
		slog.Error("can't open default stream", "err", err)
		os.Exit(1)
	}
	err = stream.Start()
	if err != nil {
		slog.Error("can't start stream", "err", err)
		os.Exit(1)
	}
	// ignore Close error
	defer stream.Close()

	in, err := openInput(config.MidiPort)
	if err != nil {
		slog.Error("can't open midi input", "err", err)
		os.Exit(1)
	}
	stopListen, err := d.listen(in)
	if err != nil {
		slog.Error("can't start midi listener", "err", err)
		os.Exit(1)
	}
	defer stopListen()
	slog.Info("listening", "midi", in.String(), "sampleRate", config.SampleRate,
		"blockSize", config.BlockSize, "oscillator", config.Oscillator)

	configs := make(chan *Config)
	done := make(chan struct{})
	defer close(done)
	errors := make(chan error)
	if config.WatchConfig {
		err := Watch(*configFile, configs, errors, done)
		if err != nil {
			slog.Error("can't start watcher", "err", err)
			os.Exit(1)
		}
	}

	go reportUnderruns(eng, done)

	for {
		select {
		// handle config changes
		case c := <-configs:
			if c.StaticConfig != config.StaticConfig {
				slog.Warn("static settings changed, restart to apply")
			}
			if err := d.applyDynamic(&c.DynamicConfig); err != nil {
				slog.Error("config reload rejected", "err", err)
			}
		case err := <-errors:
			slog.Error("config watch", "err", err)
		// block until the stop control or SIGINT | SIGTERM
		case <-d.stopped:
			slog.Info("exiting", "underruns", eng.underruns.Load(), "droppedCommands", eng.dropped.Load())
			return
		case <-signals:
			slog.Info("exiting", "underruns", eng.underruns.Load(), "droppedCommands", eng.dropped.Load())
			return
		}
	}
}

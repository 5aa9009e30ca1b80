// krura is a standalone G-code post-processor. It runs the scripts a
// profile enables (currently the annealing script) over sliced G-code,
// the same way a slicer's post-processing plugin stage would.
//
// Usage:
//
//	krura -profile anneal.cfg [options] input.gcode
//
// Options:
//
//	-profile string  Post-processing profile file (required)
//	-config string   Tool options file (default "krura.yaml")
//	-o string        Output path ("-" for stdout; default: input with suffix)
//	-watch           Watch the configured directories instead of processing one file
//	-describe        Print the JSON settings definitions of all scripts and exit
//
// Examples:
//
//	# Post-process one file, writing model_post.gcode
//	krura -profile anneal.cfg model.gcode
//
//	# Filter stdin to stdout
//	krura -profile anneal.cfg -o - -
//
//	# Post-process every file a slicer drops into the watched directories
//	krura -profile anneal.cfg -watch
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/Kreyren/Krura/pkg/anneal"
	"github.com/Kreyren/Krura/pkg/config"
	"github.com/Kreyren/Krura/pkg/logging"
	"github.com/Kreyren/Krura/pkg/process"
	"github.com/Kreyren/Krura/pkg/script"
)

func main() {
	profilePath := flag.String("profile", "", "Post-processing profile file (required)")
	optionsPath := flag.String("config", "krura.yaml", "Tool options file")
	outPath := flag.String("o", "", "Output path (\"-\" for stdout; default: input with suffix)")
	watch := flag.Bool("watch", false, "Watch configured directories for new G-code files")
	describe := flag.Bool("describe", false, "Print script settings definitions and exit")

	flag.Parse()

	// Environment overrides (KRURA_LOG_LEVEL etc.) may come from a
	// .env next to the binary.
	_ = godotenv.Load()

	reg := script.NewRegistry()
	reg.Register(anneal.ScriptName, anneal.NewScript)

	if *describe {
		if err := describeScripts(reg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *profilePath == "" {
		fmt.Fprintf(os.Stderr, "Error: -profile is required\n")
		flag.Usage()
		os.Exit(1)
	}

	opts, err := process.LoadOptions(*optionsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if lvl := os.Getenv("KRURA_LOG_LEVEL"); lvl != "" {
		opts.Log.Level = lvl
	}
	logging.Setup(opts.Log.Level)
	if opts.Log.File != "" {
		if err := logging.ConfigureFileOutput(opts.Log.File, opts.Log.MaxSizeMB); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logging.Close()
	}

	cfg, err := config.Load(*profilePath)
	if err != nil {
		log.Fatalf("Error loading profile: %v", err)
	}

	proc, err := process.New(cfg, reg, opts)
	if err != nil {
		log.Fatalf("Error building pipeline: %v", err)
	}

	if *watch {
		if len(opts.Watch.Dirs) == 0 {
			log.Fatal("watch mode needs watch.dirs in the tool options file")
		}
		runWatch(proc)
		return
	}

	inPath := flag.Arg(0)
	if inPath == "" {
		fmt.Fprintf(os.Stderr, "Error: input file is required (or \"-\" for stdin)\n")
		flag.Usage()
		os.Exit(1)
	}

	if inPath == "-" || *outPath == "-" {
		if err := runStream(proc, inPath, *outPath); err != nil {
			log.Fatalf("Error: %v", err)
		}
		return
	}

	if err := proc.ProcessFile(inPath, *outPath); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// runStream handles the stdin/stdout paths of a single job.
func runStream(proc *process.Processor, inPath, outPath string) error {
	in := os.Stdin
	if inPath != "-" {
		f, err := os.Open(inPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	out := os.Stdout
	if outPath != "-" && outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return proc.ProcessStream(in, out)
}

// runWatch runs watch mode until interrupted.
func runWatch(proc *process.Processor) {
	w, err := process.NewWatcher(proc)
	if err != nil {
		log.Fatalf("Error creating watcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		cancel()
	}()

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Error: %v", err)
	}
}

// describeScripts prints each registered script's settings definition,
// with its current defaults stamped in, as a frontend would consume it.
func describeScripts(reg *script.Registry) error {
	for _, name := range reg.RegisteredNames() {
		// Instantiate from an empty section so defaults apply.
		cfg, err := config.LoadString("[" + name + "]")
		if err != nil {
			return err
		}
		scripts, err := reg.LoadScripts(cfg)
		if err != nil {
			return err
		}
		for _, s := range scripts {
			values := map[string]interface{}{}
			if a, ok := s.(*anneal.Script); ok {
				p := a.Params()
				values = map[string]interface{}{
					"heatingElement":    a.HeatingElement(),
					"annealBedTemp":     p.BedTemp,
					"annealChamberTemp": p.ChamberTemp,
					"annealMinutes":     p.Minutes,
					"reminderBeep":      p.StartBeep,
					"endCoolingTemp":    p.EndCoolingTemp,
				}
			}
			stamped, err := script.StampValues(s.SettingData(), values)
			if err != nil {
				return err
			}
			fmt.Println(stamped)
		}
	}
	return nil
}

// jitimage CLI - build, register, and inspect JIT executable images
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/hollis/jitimage/config"
	"github.com/hollis/jitimage/gdb"
	"github.com/hollis/jitimage/jit"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	useRaw := flag.Bool("raw", false, "Build a raw image without debugger visibility")
	noRegister := flag.Bool("no-register", false, "Do not register the debug image with the debugger protocol")
	run := flag.Bool("run", false, "Invoke the built image (the code must return to its caller)")
	disasm := flag.Bool("disasm", false, "Print a disassembly of the image's code")
	elfOut := flag.String("o", "", "Write the debug image's ELF container to `file`")
	snapshotOut := flag.String("snapshot", "", "Write a CBOR registration snapshot to `file`")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: jitimage [options] [codefile]\n\n")
		fmt.Fprintf(os.Stderr, "Places raw machine code in executable memory, optionally wrapped in an\n")
		fmt.Fprintf(os.Stderr, "in-memory ELF container registered with an attached debugger.\n\n")
		fmt.Fprintf(os.Stderr, "codefile holds raw machine instructions for this host; with no codefile,\n")
		fmt.Fprintf(os.Stderr, "a built-in single-return stub is used.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  jitimage -run -disasm            # Build, register, disassemble, run the stub\n")
		fmt.Fprintf(os.Stderr, "  jitimage -raw -run code.bin      # Raw mapping, no debugger visibility\n")
		fmt.Fprintf(os.Stderr, "  jitimage -o code.elf code.bin    # Keep the synthesized ELF container\n")
		fmt.Fprintf(os.Stderr, "  jitimage -snapshot reg.cbor      # Dump the registration list for tooling\n")
		fmt.Fprintf(os.Stderr, "\nConfiguration is read from the nearest %s.\n", config.FileName)
	}
	flag.Parse()

	cfg, err := config.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", config.FileName, err)
		os.Exit(1)
	}
	verbosity := cfg.Log.Verbosity
	if *verbose && verbosity < 1 {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)

	code := jit.ReturnStub()
	source := "built-in return stub"
	switch paths := flag.Args(); len(paths) {
	case 0:
	case 1:
		data, err := os.ReadFile(paths[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading code file: %v\n", err)
			os.Exit(1)
		}
		if len(data) == 0 {
			fmt.Fprintf(os.Stderr, "Code file %s is empty\n", paths[0])
			os.Exit(1)
		}
		code = data
		source = paths[0]
	default:
		flag.Usage()
		os.Exit(2)
	}

	raw := buildRawImage(cfg, *useRaw)
	elfPath := firstNonEmpty(*elfOut, cfg.Dump.ELFPath)
	if raw && elfPath != "" {
		fmt.Fprintf(os.Stderr, "Error: ELF container output requires a debug image; drop -o or the [dump] elf-path setting, or build without -raw\n")
		os.Exit(2)
	}

	if *verbose {
		kind := "debug"
		if raw {
			kind = "raw"
		}
		fmt.Printf("Building %s image from %s (%d bytes)\n", kind, source, len(code))
	}

	var ne *jit.NativeExecutable
	if raw {
		img, err := jit.NewRawImage(code)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building raw image: %v\n", err)
			os.Exit(1)
		}
		ne = jit.NewNativeExecutable(img)
	} else {
		img, err := jit.NewGDBImage(code)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error building debug image: %v\n", err)
			os.Exit(1)
		}

		// This process is single-threaded, which satisfies the registration
		// protocol's external serialization contract on its own.
		if cfg.Image.Register && !*noRegister {
			img.Register()
			if *verbose {
				fmt.Printf("Registered with debugger protocol (%d entries)\n", gdb.Len())
			}
		}

		if elfPath != "" {
			if err := os.WriteFile(elfPath, img.ELFImage(), 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing ELF container: %v\n", err)
				os.Exit(1)
			}
			if *verbose {
				fmt.Printf("Wrote ELF container to %s (%d bytes)\n", elfPath, len(img.ELFImage()))
			}
		}

		ne = jit.NewNativeExecutable(img)
	}

	// The snapshot describes the registration list, which is meaningful
	// whether or not this particular build was debugger-visible.
	if path := firstNonEmpty(*snapshotOut, cfg.Dump.SnapshotPath); path != "" {
		data, err := gdb.MarshalSnapshot(gdb.TakeSnapshot())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding registration snapshot: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing registration snapshot: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("Wrote registration snapshot to %s\n", path)
		}
	}

	finish(ne, *run, *disasm || cfg.Dump.Disassembly)
}

// buildRawImage reports whether to build a raw image instead of a
// debugger-visible one: the -raw flag forces a raw image, otherwise the
// configuration decides.
func buildRawImage(cfg *config.Config, rawFlag bool) bool {
	return rawFlag || !cfg.Image.Debug
}

// finish runs the diagnostic steps common to both image kinds, then
// releases the executable (and, through it, the image).
func finish(ne *jit.NativeExecutable, run, disasm bool) {
	defer ne.Close()

	if disasm {
		listing, err := ne.Disassembly()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error disassembling: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(listing)
	}

	if run {
		ne.Run()
		fmt.Println("ok")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

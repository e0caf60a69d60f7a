package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/huangsam/cadence/internal/contract"
)

// prof is the process-wide profiler driven by --profile.
var prof = &profiler{out: os.Stderr}

// profiler writes <prefix>.cpu.prof while a command runs and <prefix>.mem.prof when it stops.
type profiler struct {
	cfg     contract.ProfileConfig
	out     io.Writer
	cpuFile *os.File
}

func (p *profiler) start(prefix string) error {
	contract.ProcessProfilingConfig(&p.cfg, prefix)
	if !p.cfg.Enabled {
		return nil
	}

	cpuFile, err := os.Create(p.cfg.Prefix + ".cpu.prof")
	if err != nil {
		p.cfg.Enabled = false
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		p.cfg.Enabled = false
		_ = cpuFile.Close()
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}
	p.cpuFile = cpuFile
	_, err = fmt.Fprintf(p.out, "Profiling enabled. CPU profile: %s.cpu.prof, Memory profile: %s.mem.prof\n", p.cfg.Prefix, p.cfg.Prefix)
	return err
}

func (p *profiler) stop() error {
	if !p.cfg.Enabled {
		return nil
	}
	pprof.StopCPUProfile()
	p.cfg.Enabled = false
	if err := p.cpuFile.Close(); err != nil {
		return fmt.Errorf("could not close CPU profile: %w", err)
	}

	memFile, err := os.Create(p.cfg.Prefix + ".mem.prof")
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = memFile.Close() }()

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}
	_, err = fmt.Fprintf(p.out, "Profiling complete. Use 'go tool pprof %s.cpu.prof' to analyze.\n", p.cfg.Prefix)
	return err
}

package telemetry

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/grafana/pyroscope-go"
	"github.com/shopadmin/backoffice/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Profiler wraps the Pyroscope profiler with lifecycle management
type Profiler struct {
	profiler *pyroscope.Profiler
	logger   *zap.Logger
	stopOnce sync.Once
	stopErr  error
}

// NewProfiler starts continuous profiling. CPU and in-use heap profiles are
// always collected; goroutine, mutex and allocation profiles are opt-in.
func NewProfiler(cfg config.ProfilingConfig, applicationName string, logger *zap.Logger) (*Profiler, error) {
	p := &Profiler{logger: logger}

	if !cfg.Enabled {
		logger.Info("Continuous profiling disabled")
		return p, nil
	}
	if cfg.ServerAddress == "" {
		return nil, errors.New("profiling.server_address is required when profiling is enabled")
	}
	if applicationName == "" {
		return nil, errors.New("profiler application name is required")
	}

	if cfg.ProfileMutexes {
		runtime.SetMutexProfileFraction(5)
	}

	tags := map[string]string{}
	if hostname, err := os.Hostname(); err == nil {
		tags["hostname"] = hostname
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   applicationName,
		ServerAddress:     cfg.ServerAddress,
		BasicAuthUser:     cfg.BasicAuthUser,
		BasicAuthPassword: cfg.BasicAuthPassword,
		Logger:            pyroscopeLogger{logger.Named("pyroscope").Sugar()},
		Tags:              tags,
		ProfileTypes:      ProfileTypes(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}
	p.profiler = profiler

	logger.Info("Pyroscope profiler started",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application_name", applicationName),
	)
	return p, nil
}

// ProfileTypes returns the profile types collected for cfg
func ProfileTypes(cfg config.ProfilingConfig) []pyroscope.ProfileType {
	types := []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileInuseObjects,
		pyroscope.ProfileInuseSpace,
	}
	if cfg.ProfileAllocations {
		types = append(types, pyroscope.ProfileAllocObjects, pyroscope.ProfileAllocSpace)
	}
	if cfg.ProfileGoroutines {
		types = append(types, pyroscope.ProfileGoroutines)
	}
	if cfg.ProfileMutexes {
		types = append(types, pyroscope.ProfileMutexCount, pyroscope.ProfileMutexDuration)
	}
	return types
}

// IsEnabled returns whether the profiler is running
func (p *Profiler) IsEnabled() bool {
	return p.profiler != nil
}

// Stop flushes and stops the profiler. Repeated calls return the first result.
func (p *Profiler) Stop() error {
	p.stopOnce.Do(func() {
		if p.profiler == nil {
			return
		}
		if err := p.profiler.Stop(); err != nil {
			p.stopErr = fmt.Errorf("failed to stop profiler: %w", err)
			return
		}
		p.logger.Info("Pyroscope profiler stopped")
	})
	return p.stopErr
}

// pyroscopeLogger adapts zap to pyroscope.Logger
type pyroscopeLogger struct {
	s *zap.SugaredLogger
}

func (l pyroscopeLogger) Infof(format string, args ...any)  { l.s.Infof(format, args...) }
func (l pyroscopeLogger) Debugf(format string, args ...any) { l.s.Debugf(format, args...) }
func (l pyroscopeLogger) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }

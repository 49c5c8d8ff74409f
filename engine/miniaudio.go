// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gen2brain/malgo"
)

// MiniaudioBackend drives the default system device through miniaudio.
// It is callback-driven: miniaudio owns the real-time thread and
// invokes the engine's DataProc from it.
type MiniaudioBackend struct {
	logger *slog.Logger

	ctx    *malgo.AllocatedContext
	device *malgo.Device
}

// NewMiniaudioBackend creates an unopened backend. Context log messages
// from miniaudio are forwarded to logger at debug level; a nil logger
// discards them.
func NewMiniaudioBackend(logger *slog.Logger) *MiniaudioBackend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MiniaudioBackend{logger: logger}
}

func (b *MiniaudioBackend) Open(cfg DeviceConfig, proc DataProc) error {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		b.logger.Debug("miniaudio", "message", strings.TrimSpace(message))
	})
	if err != nil {
		return backendErr("init context", err)
	}

	var deviceType malgo.DeviceType
	switch {
	case cfg.Capability.CanPlay() && cfg.Capability.CanRecord():
		deviceType = malgo.Duplex
	case cfg.Capability.CanRecord():
		deviceType = malgo.Capture
	default:
		deviceType = malgo.Playback
	}

	deviceConfig := malgo.DefaultDeviceConfig(deviceType)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.PerformanceProfile = malgo.LowLatency
	deviceConfig.PeriodSizeInMilliseconds = uint32(cfg.PeriodMillis)
	if cfg.Capability.CanPlay() {
		deviceConfig.Playback.Format = malgo.FormatType(cfg.Format)
		deviceConfig.Playback.Channels = uint32(cfg.Channels)
	}
	if cfg.Capability.CanRecord() {
		deviceConfig.Capture.Format = malgo.FormatType(cfg.Format)
		deviceConfig.Capture.Channels = uint32(cfg.Channels)
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: func(output, input []byte, frameCount uint32) {
			proc(output, input, int(frameCount))
		},
	})
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return backendErr("init device", err)
	}

	b.ctx = ctx
	b.device = device
	return nil
}

func (b *MiniaudioBackend) Start() error {
	return backendErr("start", b.device.Start())
}

func (b *MiniaudioBackend) Stop() error {
	return backendErr("stop", b.device.Stop())
}

func (b *MiniaudioBackend) Close() error {
	if b.device != nil {
		b.device.Uninit()
		b.device = nil
	}
	if b.ctx != nil {
		b.ctx.Uninit()
		b.ctx.Free()
		b.ctx = nil
	}
	return nil
}

// backendErr wraps a miniaudio failure, extracting the native result
// code when the error carries one.
func backendErr(op string, err error) error {
	if err == nil {
		return nil
	}
	code := 0
	var result malgo.Result
	if errors.As(err, &result) {
		code = int(result)
	}
	return &BackendError{Op: op, Code: code, Err: err}
}

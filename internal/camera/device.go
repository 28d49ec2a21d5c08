package camera

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var facingHints = map[Facing][]string{
	FacingEnvironment: {"back", "rear", "environment", "world"},
	FacingUser:        {"front", "user", "facetime", "integrated", "webcam"},
}

// DeviceSource opens Video4Linux device nodes.
type DeviceSource struct {
	// DevDir holds the videoN nodes. Defaults to /dev.
	DevDir string
	// SysDir holds videoN/name descriptions. Defaults to
	// /sys/class/video4linux.
	SysDir string
}

// NewDeviceSource uses the standard Linux locations.
func NewDeviceSource() DeviceSource {
	return DeviceSource{DevDir: "/dev", SysDir: "/sys/class/video4linux"}
}

type device struct {
	path string
	name string
}

type deviceStream struct {
	file  *os.File
	label string
}

func (d *deviceStream) Label() string { return d.label }
func (d *deviceStream) Close() error  { return d.file.Close() }

// Open picks the first device whose description matches c and opens it.
func (d DeviceSource) Open(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	devices, err := d.devices()
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, ErrUnsupported
	}
	for _, dev := range devices {
		if !matches(dev.name, c.Facing) {
			continue
		}
		f, err := os.OpenFile(dev.path, os.O_RDWR, 0)
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return nil, fmt.Errorf("%w: %s", ErrDenied, dev.path)
			}
			return nil, fmt.Errorf("camera: open %s: %w", dev.path, err)
		}
		label := dev.name
		if label == "" {
			label = filepath.Base(dev.path)
		}
		return &deviceStream{file: f, label: label}, nil
	}
	return nil, ErrNoMatch
}

func (d DeviceSource) devices() ([]device, error) {
	devDir := d.DevDir
	if devDir == "" {
		devDir = "/dev"
	}
	paths, err := filepath.Glob(filepath.Join(devDir, "video*"))
	if err != nil {
		return nil, fmt.Errorf("camera: list devices: %w", err)
	}
	sort.Strings(paths)
	out := make([]device, 0, len(paths))
	for _, p := range paths {
		out = append(out, device{path: p, name: d.describe(filepath.Base(p))})
	}
	return out, nil
}

func (d DeviceSource) describe(node string) string {
	if d.SysDir == "" {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(d.SysDir, node, "name"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func matches(name string, facing Facing) bool {
	if facing == FacingAny {
		return true
	}
	lower := strings.ToLower(name)
	for _, hint := range facingHints[facing] {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

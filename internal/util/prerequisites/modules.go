package prerequisites

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// RequiredModules are the kernel modules bind-mounted containers need
// on this host. They are loaded before provisioning and persisted into
// the boot-time module list.
var RequiredModules = []string{"overlay", "aufs"}

// ModulesFile is the boot-time module list.
const ModulesFile = "/etc/modules"

// ModuleLoaded reports whether the module appears in /proc/modules.
func ModuleLoaded(module string) (bool, error) {
	return moduleLoaded(module, "/proc/modules")
}

func moduleLoaded(module, procFile string) (bool, error) {
	data, err := os.ReadFile(procFile) // #nosec G304
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", procFile, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if name, _, ok := strings.Cut(line, " "); ok && name == module {
			return true, nil
		}
	}
	return false, nil
}

// LoadModule loads a kernel module via modprobe.
func LoadModule(ctx context.Context, module string) error {
	cmd := exec.CommandContext(ctx, "modprobe", module) // #nosec G204 -- module names come from RequiredModules
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("modprobe %s failed: %s: %w", module, strings.TrimSpace(stderr.String()), err)
	}
	return nil
}

// PersistModule appends the module to the boot-time module list unless
// it is already present. The append is idempotent.
func PersistModule(module string) error {
	return persistModule(module, ModulesFile)
}

func persistModule(module, file string) error {
	data, err := os.ReadFile(file) // #nosec G304
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == module {
			return nil
		}
	}

	f, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) // #nosec G302,G304
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer f.Close()

	entry := module + "\n"
	if len(data) > 0 && !bytes.HasSuffix(data, []byte("\n")) {
		entry = "\n" + entry
	}
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("failed to append to %s: %w", file, err)
	}
	return nil
}

// EnsureModules loads every required module and persists it into the
// boot-time list.
func EnsureModules(ctx context.Context) error {
	for _, module := range RequiredModules {
		loaded, err := ModuleLoaded(module)
		if err != nil {
			return err
		}
		if !loaded {
			if err := LoadModule(ctx, module); err != nil {
				return err
			}
		}
		if err := PersistModule(module); err != nil {
			return err
		}
	}
	return nil
}

package browser

import (
	"os"
	"os/exec"
	"strings"
)

var chromiumNames = []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable"}

var chromiumPaths = []string{
	"/snap/bin/chromium",
	"/opt/google/chrome/chrome",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
}

// resolveChromium picks the browser binary. A configured path wins when it exists;
// otherwise PATH is searched, then well-known install locations. Empty lets rod
// download its own revision.
func resolveChromium(configured string) string {
	if configured != "" && fileExists(configured) {
		return configured
	}
	for _, name := range chromiumNames {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	for _, p := range chromiumPaths {
		if fileExists(p) {
			return p
		}
	}
	return ""
}

// inContainer reports whether the process runs under Docker or containerd, where
// Chromium needs the extra sandbox flags.
func inContainer() bool {
	if fileExists("/.dockerenv") {
		return true
	}
	data, err := os.ReadFile("/proc/1/cgroup")
	if err != nil {
		return false
	}
	cgroup := string(data)
	return strings.Contains(cgroup, "docker") || strings.Contains(cgroup, "containerd")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

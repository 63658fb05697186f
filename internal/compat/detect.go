package compat

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// frameworkPackage is the dependency whose pin identifies the SharePoint
// Framework release a sample targets.
const frameworkPackage = "@microsoft/sp-core-library"

// DetectFrameworkVersion reads the framework release from the project's
// package descriptor. ok is false when the descriptor is missing, is not
// valid JSON, or declares no framework dependency.
func DetectFrameworkVersion(projectDir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(projectDir, "package.json"))
	if err != nil {
		return "", false
	}

	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", false
	}

	pin := pkg.Dependencies[frameworkPackage]
	if pin == "" {
		pin = pkg.DevDependencies[frameworkPackage]
	}

	version := strings.TrimSpace(strings.TrimLeft(pin, "^~=v"))
	if version == "" {
		return "", false
	}
	return version, true
}

// DetectVersionManager reports which Node version manager the user has
// installed, if any, so switching advice can name the right tool. nvm and
// nvs are shell functions rather than binaries, so they are detected
// through their home environment variables.
func DetectVersionManager() (string, bool) {
	if os.Getenv("NVM_DIR") != "" {
		return "nvm", true
	}
	if os.Getenv("NVS_HOME") != "" {
		return "nvs", true
	}
	for _, tool := range []string{"fnm", "volta", "n"} {
		if _, err := exec.LookPath(tool); err == nil {
			return tool, true
		}
	}
	return "", false
}

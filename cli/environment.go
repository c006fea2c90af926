package cli

import (
	"os"
	"runtime"
	"strings"
)

// modelPath is the device tree node naming the board.
var modelPath = "/sys/firmware/devicetree/base/model"

// RunningOnBMC reports whether tpi runs on the Turing Pi BMC itself, where
// the local API trusts its callers.
func RunningOnBMC() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	return isTuringPiModel(modelPath)
}

func isTuringPiModel(path string) bool {
	model, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.HasPrefix(string(model), "Turing Pi")
}

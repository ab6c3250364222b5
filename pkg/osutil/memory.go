package osutil

import (
	"os"
	"strconv"
	"strings"

	"github.com/pbnjay/memory"
)

// Container memory limits, checked in order. The first readable file wins.
var cgroupMemoryLimitFiles = []string{
	"/sys/fs/cgroup/memory.max",                   // cgroup v2
	"/sys/fs/cgroup/memory/memory.limit_in_bytes", // cgroup v1
}

// cgroup v1 reports this page aligned max int64 when no limit is set
const unrestrictedCgroupV1Limit = 9223372036854771712

// GetTotalMemory returns the total available memory size. The call is
// container-aware.
func GetTotalMemory() uint64 {
	return totalMemory(memory.TotalMemory(), cgroupMemoryLimitFiles)
}

func totalMemory(hostMemory uint64, limitFiles []string) uint64 {
	for _, path := range limitFiles {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		if limit, ok := parseCgroupLimit(string(raw)); ok {
			return limit
		}
		return hostMemory
	}
	return hostMemory
}

func parseCgroupLimit(raw string) (uint64, bool) {
	value := strings.TrimSpace(raw)
	if value == "max" {
		return 0, false
	}

	limit, err := strconv.ParseUint(value, 10, 64)
	if err != nil || limit == 0 || limit == unrestrictedCgroupV1Limit {
		return 0, false
	}
	return limit, true
}

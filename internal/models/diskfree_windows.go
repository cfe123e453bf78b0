//go:build windows

package models

import "golang.org/x/sys/windows"

// freeDiskBytes returns the free space on the volume containing path.
func freeDiskBytes(path string) (int64, error) {
	var free, total, totalFree uint64
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	if err := windows.GetDiskFreeSpaceEx(pathPtr, &free, &total, &totalFree); err != nil {
		return 0, err
	}
	return int64(free), nil
}

// Package main builds hwprobe as a C shared library:
//
//	go build -buildmode=c-shared -o libhwprobe.so ./cmd/libhwprobe
//
// Every string-returning function hands ownership of a malloc'd,
// NUL-terminated JSON document to the caller, who must release it with
// free_cstr exactly once. Scalar functions return a double.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"unsafe"

	"github.com/Guliveer/hwprobe/internal/report"
)

func cstr(doc string) *C.char { return C.CString(doc) }

//export batteryInfo
func batteryInfo() *C.char { return cstr(reportJSON("battery")) }

//export cpuData
func cpuData() *C.char { return cstr(reportJSON("cpu")) }

//export cpuUsages
func cpuUsages() C.double {
	return C.double(scalar(0, func(ctx context.Context, s *report.Service) float64 { return s.CPUUsage(ctx) }))
}

//export gpuInfo
func gpuInfo() *C.char { return cstr(reportJSON("gpu")) }

//export gpuUsages
func gpuUsages() C.double {
	return C.double(scalar(0, func(ctx context.Context, s *report.Service) float64 { return s.GPUUsage(ctx) }))
}

//export diskUsage
func diskUsage(path *C.char) *C.char {
	p := C.GoString(path)
	return cstr(document(func(ctx context.Context, s *report.Service) string { return s.DiskUsage(ctx, p) }))
}

//export diskDetails
func diskDetails() *C.char { return cstr(reportJSON("disks")) }

//export volumeDetails
func volumeDetails(path *C.char) *C.char {
	p := C.GoString(path)
	return cstr(document(func(ctx context.Context, s *report.Service) string { return s.Volume(ctx, p) }))
}

//export diskSpeed
func diskSpeed(path *C.char) *C.char {
	p := C.GoString(path)
	return cstr(document(func(ctx context.Context, s *report.Service) string { return s.DiskSpeed(ctx, p) }))
}

//export ramInfo
func ramInfo() *C.char { return cstr(reportJSON("ram")) }

//export osInfo
func osInfo() *C.char { return cstr(reportJSON("os")) }

//export runningProcesses
func runningProcesses() *C.char { return cstr(reportJSON("processes")) }

//export installedApps
func installedApps() *C.char { return cstr(reportJSON("apps")) }

//export fanInfo
func fanInfo() *C.char { return cstr(reportJSON("fans")) }

//export fanSpeed
func fanSpeed() C.double {
	return C.double(scalar(-1, func(ctx context.Context, s *report.Service) float64 { return s.FanSpeed(ctx) }))
}

//export networkInfo
func networkInfo() *C.char { return cstr(reportJSON("network")) }

//export temperatureInfo
func temperatureInfo() *C.char { return cstr(reportJSON("temperature")) }

//export snapshot
func snapshot() *C.char {
	return cstr(document(func(ctx context.Context, s *report.Service) string { return s.SnapshotJSON(ctx) }))
}

// free_cstr releases a string returned by this library. NULL is ignored.
//
//export free_cstr
func free_cstr(p *C.char) {
	if p != nil {
		C.free(unsafe.Pointer(p))
	}
}

func main() {}

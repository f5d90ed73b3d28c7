// Package compute provides the energy reduction backends.
//
// Two backends share the [Backend] interface and are picked at startup with
// [Select]:
//
//   - cpu: a fixed worker pool summing unique pairs (i > j) once
//   - device: one kernel work item per particle on a [Device]; every pair is
//     counted from both ends and the host halves the total
//
// Both conventions give the same energy up to rounding. The device path runs
// in single precision like the accelerator it models.
//
// # Devices
//
// The host device runs the kernel in process and is always available:
//
//	backend, err := compute.Select(compute.KindDevice, compute.Options{Device: "host"})
//	e, err := backend.Energy(req)
//
// CUDA needs the kernel library and a build tag:
//
//	go build -tags cuda ./cmd/mcsim
package compute

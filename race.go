// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package smon

// RaceEnabled is true when the race detector is active.
// Used by tests to skip scenarios that poll the atomix observation
// counters while mutators run; atomix operations appear as plain
// memory accesses to the detector and trigger false positives.
const RaceEnabled = true
